package notify

import (
	"strings"
	"testing"

	"signal-radar/internal/domain"
)

func TestFormatAlert(t *testing.T) {
	job := domain.AlertJob{
		RuleName:    "Финансирование",
		CompanyName: "Acme <Corp>",
		SignalType:  domain.SignalFunding,
		Title:       "Acme raises $5M",
		Body:        "Seed round led by Global Ventures",
		URL:         "https://acme.example/news/1",
	}
	text := FormatAlert(job)

	if !strings.Contains(text, "<b>Финансирование</b>") {
		t.Fatalf("имя правила должно быть выделено: %q", text)
	}
	if !strings.Contains(text, "Acme &lt;Corp&gt;") {
		t.Fatalf("HTML в имени компании должен экранироваться: %q", text)
	}
	if !strings.Contains(text, "Раунд финансирования") {
		t.Fatalf("тип сигнала должен отображаться подписью: %q", text)
	}
	if !strings.Contains(text, `<a href="https://acme.example/news/1">`) {
		t.Fatalf("заголовок должен быть ссылкой: %q", text)
	}
}

func TestFormatAlertWithoutOptionalFields(t *testing.T) {
	job := domain.AlertJob{
		RuleName:    "Правило",
		CompanyName: "Acme",
		SignalType:  domain.SignalType("unknown_type"),
	}
	text := FormatAlert(job)
	if strings.Contains(text, "<a ") {
		t.Fatalf("без URL ссылки быть не должно: %q", text)
	}
	if !strings.Contains(text, "unknown_type") {
		t.Fatalf("неизвестный тип отображается как есть: %q", text)
	}
}

func TestFormatAlertTruncatesLongBody(t *testing.T) {
	job := domain.AlertJob{
		RuleName:    "Правило",
		CompanyName: "Acme",
		SignalType:  domain.SignalPositiveNews,
		Body:        strings.Repeat("ж", bodyPreviewLimit+200),
	}
	text := FormatAlert(job)
	if !strings.Contains(text, "…") {
		t.Fatalf("длинное тело должно обрезаться с многоточием")
	}
	if strings.Contains(text, strings.Repeat("ж", bodyPreviewLimit+1)) {
		t.Fatalf("тело не должно превышать лимит предпросмотра")
	}
}

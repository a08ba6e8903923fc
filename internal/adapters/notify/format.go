package notify

import (
	"fmt"
	"html"
	"strings"

	"signal-radar/internal/domain"
)

const bodyPreviewLimit = 500

// signalTypeLabels — человекочитаемые подписи типов сигналов.
var signalTypeLabels = map[domain.SignalType]string{
	domain.SignalFunding:         "Раунд финансирования",
	domain.SignalExecutiveChange: "Смена руководства",
	domain.SignalProductLaunch:   "Запуск продукта",
	domain.SignalPartnership:     "Партнёрство",
	domain.SignalAcquisition:     "Поглощение",
	domain.SignalNegativeNews:    "Негативные новости",
	domain.SignalPositiveNews:    "Позитивные новости",
	domain.SignalJobPostingSpike: "Всплеск вакансий",
}

// FormatAlert формирует HTML-текст оповещения для отправки оператору.
func FormatAlert(job domain.AlertJob) string {
	var sections []string

	header := "🔔 <b>" + escapeHTML(job.RuleName) + "</b>\n" +
		escapeHTML(job.CompanyName) + " — " + escapeHTML(typeLabel(job.SignalType))
	sections = append(sections, header)

	if title := strings.TrimSpace(job.Title); title != "" {
		line := escapeHTML(title)
		if url := strings.TrimSpace(job.URL); url != "" {
			line = fmt.Sprintf("<a href=\"%s\">%s</a>", html.EscapeString(url), line)
		}
		sections = append(sections, line)
	}

	if body := strings.TrimSpace(job.Body); body != "" {
		runes := []rune(body)
		if len(runes) > bodyPreviewLimit {
			body = string(runes[:bodyPreviewLimit]) + "…"
		}
		sections = append(sections, escapeHTML(body))
	}

	return strings.TrimSpace(strings.Join(sections, "\n\n"))
}

func typeLabel(t domain.SignalType) string {
	if label, ok := signalTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}

package collector

import (
	"testing"

	"signal-radar/internal/domain"
)

func TestClassifySignalType(t *testing.T) {
	cases := []struct {
		text string
		want domain.SignalType
	}{
		{"Acme привлекла инвестиции в раунде Series A", domain.SignalFunding},
		{"Acme raised $20M in a seed round", domain.SignalFunding},
		{"Назначен новый CEO компании", domain.SignalExecutiveChange},
		{"Компания запустила новый продукт для рынка", domain.SignalProductLaunch},
		{"Acme announces partnership with Globex", domain.SignalPartnership},
		{"Acme acquires smaller rival in takeover", domain.SignalAcquisition},
		{"Massive layoffs and lawsuit hit the company", domain.SignalNegativeNews},
		{"Компания расширяет штат и нанимает инженеров", domain.SignalJobPostingSpike},
		{"Обычная новость без ключевых слов", domain.SignalPositiveNews},
	}
	for _, tc := range cases {
		if got := ClassifySignalType(tc.text); got != tc.want {
			t.Fatalf("%q: ожидали %s, получили %s", tc.text, tc.want, got)
		}
	}
}

func TestClassifySignalTypePicksBestScore(t *testing.T) {
	// Два словаря задеты, но про поглощение совпадений больше.
	text := "Acme announces acquisition: компания приобрела и купила конкурента, сделка по покупке закрыта, partnership упомянуто вскользь"
	if got := ClassifySignalType(text); got != domain.SignalAcquisition {
		t.Fatalf("ожидали acquisition по числу совпадений, получили %s", got)
	}
}

func TestPriorityForType(t *testing.T) {
	cases := map[domain.SignalType]domain.SignalPriority{
		domain.SignalFunding:         domain.PriorityHigh,
		domain.SignalAcquisition:     domain.PriorityHigh,
		domain.SignalNegativeNews:    domain.PriorityHigh,
		domain.SignalJobPostingSpike: domain.PriorityLow,
		domain.SignalProductLaunch:   domain.PriorityMedium,
		domain.SignalPositiveNews:    domain.PriorityMedium,
	}
	for signalType, want := range cases {
		if got := PriorityForType(signalType); got != want {
			t.Fatalf("%s: ожидали %s, получили %s", signalType, want, got)
		}
	}
}

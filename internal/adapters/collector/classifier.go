package collector

import (
	"strings"

	"signal-radar/internal/domain"
)

// Паттерны эвристической классификации типа сигнала по тексту новости.
var fundingPatterns = []string{
	"раунд", "инвестиции", "инвестиц", "привлекла", "финансирование",
	"funding", "raised", "series a", "series b", "series c", "seed round",
	"investment", "venture",
}

var executivePatterns = []string{
	"назначен", "назначена", "покидает", "возглавил", "возглавила", "новый директор",
	"ceo", "cto", "cfo", "chief", "executive", "appointed", "steps down", "resigns",
	"joins as", "new head of",
}

var launchPatterns = []string{
	"запустила", "запуск", "представила", "анонсировала", "релиз", "новый продукт",
	"launches", "launched", "unveils", "introduces", "releases", "new product",
	"now available", "beta",
}

var partnershipPatterns = []string{
	"партнёрство", "партнерство", "соглашение", "сотрудничество", "совместно с",
	"partnership", "partners with", "teams up", "collaboration", "joint venture",
	"agreement with",
}

var acquisitionPatterns = []string{
	"поглощение", "приобрела", "купила", "слияние", "сделка по покупке",
	"acquires", "acquired", "acquisition", "merger", "buys", "takeover",
}

var negativePatterns = []string{
	"увольнения", "сокращения", "убытки", "иск", "расследование", "утечка", "скандал",
	"банкротство", "layoff", "layoffs", "lawsuit", "losses", "breach", "scandal",
	"investigation", "bankruptcy", "shutdown", "recall",
}

var jobSpikePatterns = []string{
	"вакансии", "набор сотрудников", "расширяет штат", "нанимает",
	"hiring", "job opening", "job openings", "recruiting", "headcount", "new positions",
}

// signalPatterns связывает тип сигнала с его словарём.
var signalPatterns = []struct {
	signalType domain.SignalType
	patterns   []string
}{
	{domain.SignalFunding, fundingPatterns},
	{domain.SignalExecutiveChange, executivePatterns},
	{domain.SignalProductLaunch, launchPatterns},
	{domain.SignalPartnership, partnershipPatterns},
	{domain.SignalAcquisition, acquisitionPatterns},
	{domain.SignalNegativeNews, negativePatterns},
	{domain.SignalJobPostingSpike, jobSpikePatterns},
}

// ClassifySignalType определяет тип сигнала по тексту. Без явных совпадений
// новость считается нейтрально-позитивной.
func ClassifySignalType(text string) domain.SignalType {
	lower := strings.ToLower(text)

	best := domain.SignalPositiveNews
	bestScore := 0
	for _, candidate := range signalPatterns {
		score := 0
		for _, p := range candidate.patterns {
			if strings.Contains(lower, p) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = candidate.signalType
		}
	}
	return best
}

// PriorityForType задаёт стартовый приоритет по типу сигнала; оператор
// может поменять его позже.
func PriorityForType(t domain.SignalType) domain.SignalPriority {
	switch t {
	case domain.SignalFunding, domain.SignalAcquisition, domain.SignalNegativeNews:
		return domain.PriorityHigh
	case domain.SignalJobPostingSpike:
		return domain.PriorityLow
	default:
		return domain.PriorityMedium
	}
}

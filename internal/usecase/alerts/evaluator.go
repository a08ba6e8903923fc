package alerts

import (
	"strings"

	"signal-radar/internal/domain"
)

// Matches решает, срабатывает ли правило на сигнал. Функция чистая и
// детерминированная: повторный прогон по историческим сигналам с новым
// набором правил даёт идентичный результат.
func Matches(rule domain.AlertRule, signal domain.Signal) bool {
	if !rule.IsActive {
		return false
	}
	if rule.CompanyID != nil && *rule.CompanyID != signal.CompanyID {
		return false
	}
	switch rule.TriggerType {
	case domain.TriggerAnySignal:
		return true
	case domain.TriggerCustomKeyword:
		return matchesKeywords(rule.Keywords, signal)
	default:
		return string(rule.TriggerType) == string(signal.Type)
	}
}

// matchesKeywords ищет хотя бы одно ключевое слово в заголовке и теле
// сигнала без учёта регистра. Пустой список слов не срабатывает никогда:
// неправильно настроенное правило инертно, а не матчит всё подряд.
func matchesKeywords(keywords []string, signal domain.Signal) bool {
	if len(keywords) == 0 {
		return false
	}
	searchable := strings.ToLower(signal.Title + " " + signal.Body)
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if strings.Contains(searchable, keyword) {
			return true
		}
	}
	return false
}

// Evaluate возвращает подмножество правил, сработавших на сигнал,
// в исходном порядке.
func Evaluate(rules []domain.AlertRule, signal domain.Signal) []domain.AlertRule {
	var matched []domain.AlertRule
	for _, rule := range rules {
		if Matches(rule, signal) {
			matched = append(matched, rule)
		}
	}
	return matched
}

package collector

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	moneyRegex      = regexp.MustCompile(`[$€£]\s?\d+(?:[.,]\d+)?\s?(?:млн|млрд|тыс\.?|[KMB]\b|million|billion)?`)
	yearRegex       = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	properNameRegex = regexp.MustCompile(`\b[A-ZА-ЯЁ][a-zа-яё]+(?:\s+[A-ZА-ЯЁ][a-zа-яё]+)+\b`)
)

// HarvestEntities наивно выбирает из текста денежные суммы, годы и
// многословные имена собственные и упаковывает их в полуструктурированный
// блок сущностей сигнала. Имя компании добавляется всегда.
func HarvestEntities(text, companyName string) []byte {
	entities := map[string][]string{}

	if amounts := dedupe(moneyRegex.FindAllString(text, 10)); len(amounts) > 0 {
		entities["financials"] = amounts
	}
	if years := dedupe(yearRegex.FindAllString(text, 10)); len(years) > 0 {
		entities["dates"] = years
	}

	organizations := []string{companyName}
	organizations = append(organizations, dedupe(properNameRegex.FindAllString(text, 20))...)
	entities["organizations"] = dedupe(organizations)

	raw, err := json.Marshal(entities)
	if err != nil {
		return nil
	}
	return raw
}

// dedupe удаляет пустые и дублирующиеся значения, сохраняя порядок.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

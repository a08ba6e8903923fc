package collector

import (
	"encoding/json"
	"testing"
)

func TestHarvestEntities(t *testing.T) {
	text := "Acme Corp привлекла $5M от Global Ventures в 2026 году, раунд закрыт в январе 2026"
	raw := HarvestEntities(text, "Acme Corp")

	var entities map[string][]string
	if err := json.Unmarshal(raw, &entities); err != nil {
		t.Fatalf("блок сущностей должен быть валидным JSON: %v", err)
	}

	if len(entities["financials"]) == 0 || entities["financials"][0] != "$5M" {
		t.Fatalf("ожидали сумму $5M, получили %v", entities["financials"])
	}
	if len(entities["dates"]) != 1 || entities["dates"][0] != "2026" {
		t.Fatalf("год должен попасть один раз, получили %v", entities["dates"])
	}
	if entities["organizations"][0] != "Acme Corp" {
		t.Fatalf("имя компании должно стоять первым, получили %v", entities["organizations"])
	}
	found := false
	for _, org := range entities["organizations"] {
		if org == "Global Ventures" {
			found = true
		}
	}
	if !found {
		t.Fatalf("многословное имя собственное должно быть извлечено, получили %v", entities["organizations"])
	}
}

func TestHarvestEntitiesDeduplicates(t *testing.T) {
	raw := HarvestEntities("Acme Corp и снова Acme Corp", "Acme Corp")
	var entities map[string][]string
	if err := json.Unmarshal(raw, &entities); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(entities["organizations"]) != 1 {
		t.Fatalf("дубликаты должны схлопываться, получили %v", entities["organizations"])
	}
}

func TestHarvestEntitiesEmptyText(t *testing.T) {
	raw := HarvestEntities("", "Acme")
	var entities map[string][]string
	if err := json.Unmarshal(raw, &entities); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(entities["organizations"]) != 1 || entities["organizations"][0] != "Acme" {
		t.Fatalf("даже без текста компания должна присутствовать, получили %v", entities["organizations"])
	}
}

package signals

import (
	"encoding/json"
	"strconv"
	"strings"
)

// entityCategories — известные категории блока сущностей в порядке объявления.
var entityCategories = []string{"people", "organizations", "locations", "financials", "dates"}

// ExtractEntityNames достаёт из полуструктурированного блока сущностей сигнала
// нормализованные имена для подстрочного поиска. Функция тотальна: отсутствующие
// поля, не-массивы и элементы неожиданной формы молча пропускаются, ошибок нет.
func ExtractEntityNames(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	var names []string
	for _, category := range entityCategories {
		rawList, ok := payload[category]
		if !ok {
			continue
		}
		var elements []json.RawMessage
		if err := json.Unmarshal(rawList, &elements); err != nil {
			continue
		}
		for _, element := range elements {
			if name, ok := entityName(element); ok {
				names = append(names, strings.ToLower(name))
			}
		}
	}
	return names
}

// entityName разбирает один элемент категории: голую строку либо объект с
// полем name (строковым или числовым).
func entityName(raw json.RawMessage) (string, bool) {
	// json.Unmarshal молча принимает null в строку, не трогая её;
	// такой элемент должен пропускаться, а не давать пустое имя.
	if trimmed := strings.TrimSpace(string(raw)); trimmed == "" || trimmed == "null" {
		return "", false
	}

	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, true
	}

	var named struct {
		Name any `json:"name"`
	}
	if err := json.Unmarshal(raw, &named); err != nil {
		return "", false
	}
	switch v := named.Name.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

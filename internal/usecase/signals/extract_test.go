package signals

import (
	"reflect"
	"testing"
)

func TestExtractEntityNamesEmptyInput(t *testing.T) {
	if names := ExtractEntityNames(nil); names != nil {
		t.Fatalf("ожидали nil для пустого входа, получили %v", names)
	}
	if names := ExtractEntityNames([]byte("{not json")); names != nil {
		t.Fatalf("ожидали nil для битого JSON, получили %v", names)
	}
}

func TestExtractEntityNamesBareStrings(t *testing.T) {
	raw := []byte(`{"people":["Ivan Petrov","Anna"],"organizations":["Acme Corp"]}`)
	names := ExtractEntityNames(raw)
	want := []string{"ivan petrov", "anna", "acme corp"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("ожидали %v, получили %v", want, names)
	}
}

func TestExtractEntityNamesObjectElements(t *testing.T) {
	raw := []byte(`{"financials":[{"name":"$5M"},{"name":2024},{"amount":"no name"}],"dates":["Q3"]}`)
	names := ExtractEntityNames(raw)
	want := []string{"$5m", "2024", "q3"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("ожидали %v, получили %v", want, names)
	}
}

func TestExtractEntityNamesSkipsMalformedCategories(t *testing.T) {
	raw := []byte(`{"people":"not an array","locations":[true,null,{"name":["x"]}],"organizations":["OpenAI"],"unknown":["ignored"]}`)
	names := ExtractEntityNames(raw)
	want := []string{"openai"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("ожидали %v, получили %v", want, names)
	}
}

func TestExtractEntityNamesSkipsNullElements(t *testing.T) {
	raw := []byte(`{"people":[null,"Ivan"],"organizations":[null],"dates":[{"name":null}]}`)
	names := ExtractEntityNames(raw)
	want := []string{"ivan"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("null-элементы должны пропускаться: ожидали %v, получили %v", want, names)
	}
}

func TestExtractEntityNamesCategoryOrder(t *testing.T) {
	raw := []byte(`{"dates":["2025"],"people":["Bob"],"financials":["$1M"]}`)
	names := ExtractEntityNames(raw)
	want := []string{"bob", "$1m", "2025"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("ожидали порядок категорий %v, получили %v", want, names)
	}
}

package signals

import (
	"reflect"
	"testing"
	"time"

	"signal-radar/internal/domain"
)

var filterNow = time.Date(2026, time.March, 18, 12, 0, 0, 0, time.UTC)

func sig(id int64, opts ...func(*domain.Signal)) domain.Signal {
	s := domain.Signal{
		ID:            id,
		CompanyID:     1,
		Type:          domain.SignalPositiveNews,
		Priority:      domain.PriorityMedium,
		Title:         "заголовок",
		CreatedAt:     filterNow.Add(-time.Hour),
		ContentStatus: domain.ContentStatusNew,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func published(ts time.Time) func(*domain.Signal) {
	return func(s *domain.Signal) { s.PublishedAt = &ts }
}

func companies() map[int64]domain.Company {
	return map[int64]domain.Company{
		1: {ID: 1, Name: "Acme", Industry: "fintech"},
		2: {ID: 2, Name: "Globex", Industry: "biotech"},
	}
}

func TestApplyDefaultCriteriaKeepsAll(t *testing.T) {
	input := []domain.Signal{sig(1), sig(2), sig(3)}
	out := Apply(input, companies(), DefaultCriteria(), filterNow)
	if len(out) != len(input) {
		t.Fatalf("нейтральные фильтры должны пропускать всё: ожидали %d, получили %d", len(input), len(out))
	}
}

func TestApplySortsByEffectiveDateDesc(t *testing.T) {
	old := filterNow.Add(-48 * time.Hour)
	fresh := filterNow.Add(-time.Minute)
	input := []domain.Signal{
		sig(1, published(old)),
		sig(2, func(s *domain.Signal) { s.CreatedAt = time.Time{} }), // без даты
		sig(3, published(fresh)),
	}
	out := Apply(input, companies(), DefaultCriteria(), filterNow)
	if len(out) != 3 {
		t.Fatalf("ожидали 3 сигнала, получили %d", len(out))
	}
	if out[0].ID != 3 || out[1].ID != 1 {
		t.Fatalf("ожидали порядок по убыванию даты [3 1 2], получили [%d %d %d]", out[0].ID, out[1].ID, out[2].ID)
	}
	if out[2].ID != 2 {
		t.Fatalf("сигнал без даты должен уйти в конец, получили id=%d", out[2].ID)
	}
}

func TestApplySortIsStable(t *testing.T) {
	same := filterNow.Add(-time.Hour)
	input := []domain.Signal{
		sig(10, published(same)),
		sig(11, published(same)),
		sig(12, published(same)),
	}
	out := Apply(input, companies(), DefaultCriteria(), filterNow)
	for i, want := range []int64{10, 11, 12} {
		if out[i].ID != want {
			t.Fatalf("стабильная сортировка нарушена: позиция %d содержит id=%d", i, out[i].ID)
		}
	}
}

func TestApplyPublishedAtWinsOverCreatedAt(t *testing.T) {
	input := []domain.Signal{
		// publishedAt старый, createdAt свежий: эффективная дата — publishedAt.
		sig(1, published(filterNow.Add(-72*time.Hour)), func(s *domain.Signal) { s.CreatedAt = filterNow }),
		sig(2, published(filterNow.Add(-time.Hour))),
	}
	out := Apply(input, companies(), DefaultCriteria(), filterNow)
	if out[0].ID != 2 {
		t.Fatalf("ожидали сигнал 2 первым, получили %d", out[0].ID)
	}
}

func TestApplyTypesFilter(t *testing.T) {
	input := []domain.Signal{
		sig(1, func(s *domain.Signal) { s.Type = domain.SignalFunding }),
		sig(2, func(s *domain.Signal) { s.Type = domain.SignalAcquisition }),
		sig(3, func(s *domain.Signal) { s.Type = domain.SignalProductLaunch }),
	}
	c := DefaultCriteria()
	c.Types = []domain.SignalType{domain.SignalFunding, domain.SignalAcquisition}
	out := Apply(input, companies(), c, filterNow)
	if len(out) != 2 {
		t.Fatalf("ожидали 2 сигнала, получили %d", len(out))
	}
	for _, s := range out {
		if s.Type == domain.SignalProductLaunch {
			t.Fatalf("запуск продукта не должен пройти фильтр типов")
		}
	}
}

func TestApplyPrioritiesUsesMediumDefault(t *testing.T) {
	input := []domain.Signal{
		sig(1, func(s *domain.Signal) { s.Priority = "" }),
		sig(2, func(s *domain.Signal) { s.Priority = domain.PriorityHigh }),
	}
	c := DefaultCriteria()
	c.Priorities = []domain.SignalPriority{domain.PriorityMedium}
	out := Apply(input, companies(), c, filterNow)
	if len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("сигнал без приоритета должен считаться medium, получили %v", out)
	}
}

func TestApplyStatusAndFlags(t *testing.T) {
	input := []domain.Signal{
		sig(1, func(s *domain.Signal) { s.ContentStatus = domain.ContentStatusPublished; s.IsRead = true }),
		sig(2, func(s *domain.Signal) { s.IsBookmarked = true }),
		sig(3),
	}

	c := DefaultCriteria()
	c.Status = domain.ContentStatusPublished
	if out := Apply(input, companies(), c, filterNow); len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("фильтр статуса: ожидали только сигнал 1, получили %v", out)
	}

	c = DefaultCriteria()
	c.Bookmarked = true
	if out := Apply(input, companies(), c, filterNow); len(out) != 1 || out[0].ID != 2 {
		t.Fatalf("фильтр закладок: ожидали только сигнал 2, получили %v", out)
	}

	c = DefaultCriteria()
	c.Unread = true
	if out := Apply(input, companies(), c, filterNow); len(out) != 2 {
		t.Fatalf("фильтр непрочитанных: ожидали 2 сигнала, получили %d", len(out))
	}
}

func TestApplyEntityQuery(t *testing.T) {
	input := []domain.Signal{
		sig(1, func(s *domain.Signal) {
			s.RawEntitiesJSON = []byte(`{"people":[{"name":"Ivan Petrov"}],"organizations":["Acme Corp"]}`)
		}),
		sig(2, func(s *domain.Signal) {
			s.RawEntitiesJSON = []byte(`{"organizations":["Globex"]}`)
		}),
		sig(3), // сущностей нет вовсе
	}
	c := DefaultCriteria()
	c.EntityQuery = "  PETROV "
	out := Apply(input, companies(), c, filterNow)
	if len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("поиск по сущностям: ожидали только сигнал 1, получили %v", out)
	}
}

func TestApplyIndustryJoin(t *testing.T) {
	input := []domain.Signal{
		sig(1),                                                // компания 1, fintech
		sig(2, func(s *domain.Signal) { s.CompanyID = 2 }),    // biotech
		sig(3, func(s *domain.Signal) { s.CompanyID = 9999 }), // осиротевший
	}
	c := DefaultCriteria()
	c.Industry = "fintech"
	out := Apply(input, companies(), c, filterNow)
	if len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("джойн по индустрии: ожидали только сигнал 1, получили %v", out)
	}
}

func TestApplyDateRange(t *testing.T) {
	input := []domain.Signal{
		sig(1, published(filterNow.Add(-2*time.Hour))),
		sig(2, published(filterNow.AddDate(0, 0, -3))),
		sig(3, published(filterNow.AddDate(0, 0, -20))),
		sig(4, func(s *domain.Signal) { s.CreatedAt = time.Time{} }), // без даты
	}

	c := DefaultCriteria()
	c.DateRange = DateRangeToday
	if out := Apply(input, companies(), c, filterNow); len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("окно today: ожидали только сигнал 1, получили %v", out)
	}

	c.DateRange = DateRangeWeek
	if out := Apply(input, companies(), c, filterNow); len(out) != 2 {
		t.Fatalf("окно week: ожидали 2 сигнала, получили %d", len(out))
	}

	c.DateRange = DateRangeMonth
	if out := Apply(input, companies(), c, filterNow); len(out) != 3 {
		t.Fatalf("окно month: ожидали 3 сигнала, получили %d", len(out))
	}
}

func TestApplyCriteriaAreConjunctive(t *testing.T) {
	input := []domain.Signal{
		sig(1, func(s *domain.Signal) { s.Type = domain.SignalFunding; s.IsBookmarked = true }),
		sig(2, func(s *domain.Signal) { s.Type = domain.SignalFunding }),
		sig(3, func(s *domain.Signal) { s.IsBookmarked = true }),
	}
	c := DefaultCriteria()
	c.Types = []domain.SignalType{domain.SignalFunding}
	c.Bookmarked = true
	out := Apply(input, companies(), c, filterNow)
	if len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("конъюнкция фильтров: ожидали только сигнал 1, получили %v", out)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	input := []domain.Signal{
		sig(1, published(filterNow.Add(-time.Hour)), func(s *domain.Signal) { s.Type = domain.SignalFunding }),
		sig(2, published(filterNow.AddDate(0, 0, -3)), func(s *domain.Signal) { s.Type = domain.SignalFunding; s.IsBookmarked = true }),
		sig(3, published(filterNow.AddDate(0, 0, -20)), func(s *domain.Signal) { s.Type = domain.SignalFunding }),
		sig(4, func(s *domain.Signal) { s.Type = domain.SignalAcquisition }),
		sig(5, func(s *domain.Signal) { s.Type = domain.SignalFunding; s.CreatedAt = time.Time{} }),
	}
	c := DefaultCriteria()
	c.Types = []domain.SignalType{domain.SignalFunding}
	c.DateRange = DateRangeWeek

	first := Apply(input, companies(), c, filterNow)
	second := Apply(first, companies(), c, filterNow)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("повторное применение тех же критериев должно быть идемпотентным:\nпервый проход: %v\nвторой проход: %v", first, second)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	input := []domain.Signal{
		sig(1, published(filterNow.Add(-48*time.Hour))),
		sig(2, published(filterNow.Add(-time.Hour))),
	}
	_ = Apply(input, companies(), DefaultCriteria(), filterNow)
	if input[0].ID != 1 || input[1].ID != 2 {
		t.Fatalf("вход не должен мутироваться: получили [%d %d]", input[0].ID, input[1].ID)
	}
}

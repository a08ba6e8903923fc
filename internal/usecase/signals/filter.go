package signals

import (
	"sort"
	"strings"
	"time"

	"signal-radar/internal/domain"
)

// FilterAll — нейтральное значение одиночных фильтров (status, industry).
const FilterAll = "all"

// DateRange задаёт окно отсечки по эффективной дате.
type DateRange string

const (
	DateRangeAll     DateRange = "all"
	DateRangeToday   DateRange = "today"
	DateRangeWeek    DateRange = "week"
	DateRangeMonth   DateRange = "month"
	DateRangeQuarter DateRange = "quarter"
)

// Cutoff вычисляет момент отсечки относительно now. Второе значение false
// означает отсутствие ограничения по дате.
func (r DateRange) Cutoff(now time.Time) (time.Time, bool) {
	switch r {
	case DateRangeToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	case DateRangeWeek:
		return now.AddDate(0, 0, -7), true
	case DateRangeMonth:
		return now.AddDate(0, -1, 0), true
	case DateRangeQuarter:
		return now.AddDate(0, -3, 0), true
	default:
		return time.Time{}, false
	}
}

// Criteria — набор независимых предикатов конвейера фильтрации. Все критерии
// конъюнктивны; пустые множества, значение "all", false и пустой текст —
// нейтральные элементы («фильтр не выбран» означает «показать всё»).
type Criteria struct {
	Types       []domain.SignalType
	Priorities  []domain.SignalPriority
	Status      string
	Bookmarked  bool
	Unread      bool
	EntityQuery string
	Industry    string
	DateRange   DateRange
}

// DefaultCriteria возвращает нейтральный набор фильтров. Значение строится
// заново при каждом вызове и служит целью сброса фильтров на стороне UI.
func DefaultCriteria() Criteria {
	return Criteria{
		Status:    FilterAll,
		Industry:  FilterAll,
		DateRange: DateRangeAll,
	}
}

// Apply применяет критерии к срезу сигналов и сортирует выживших по
// эффективной дате по убыванию. Сортировка стабильна, сигналы без пригодной
// даты уходят в конец. Вход не мутируется; конвейер никогда не возвращает
// ошибку — нерезолвящийся джойн или битая дата валят только свой предикат.
func Apply(sigs []domain.Signal, companies map[int64]domain.Company, c Criteria, now time.Time) []domain.Signal {
	cutoff, hasCutoff := c.DateRange.Cutoff(now)
	query := strings.ToLower(strings.TrimSpace(c.EntityQuery))

	out := make([]domain.Signal, 0, len(sigs))
	for _, s := range sigs {
		if !survives(s, companies, c, query, cutoff, hasCutoff) {
			continue
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, oki := out[i].EffectiveDate()
		dj, okj := out[j].EffectiveDate()
		if oki != okj {
			return oki
		}
		if !oki {
			return false
		}
		return di.After(dj)
	})
	return out
}

func survives(s domain.Signal, companies map[int64]domain.Company, c Criteria, query string, cutoff time.Time, hasCutoff bool) bool {
	if len(c.Types) > 0 && !containsType(c.Types, s.Type) {
		return false
	}
	if len(c.Priorities) > 0 && !containsPriority(c.Priorities, s.EffectivePriority()) {
		return false
	}
	if c.Status != "" && c.Status != FilterAll && s.ContentStatus != c.Status {
		return false
	}
	if c.Bookmarked && !s.IsBookmarked {
		return false
	}
	if c.Unread && s.IsRead {
		return false
	}
	if query != "" && !entityQueryMatches(s, query) {
		return false
	}
	if c.Industry != "" && c.Industry != FilterAll {
		company, ok := companies[s.CompanyID]
		if !ok || company.Industry != c.Industry {
			return false
		}
	}
	if hasCutoff {
		date, ok := s.EffectiveDate()
		if !ok || date.Before(cutoff) {
			return false
		}
	}
	return true
}

func entityQueryMatches(s domain.Signal, query string) bool {
	for _, name := range ExtractEntityNames(s.RawEntitiesJSON) {
		if strings.Contains(name, query) {
			return true
		}
	}
	return false
}

func containsType(set []domain.SignalType, t domain.SignalType) bool {
	for _, v := range set {
		if v == t {
			return true
		}
	}
	return false
}

func containsPriority(set []domain.SignalPriority, p domain.SignalPriority) bool {
	for _, v := range set {
		if v == p {
			return true
		}
	}
	return false
}

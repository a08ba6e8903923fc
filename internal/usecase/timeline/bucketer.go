package timeline

import (
	"fmt"
	"time"

	"signal-radar/internal/domain"
)

// Group — одна дневная секция хронологической ленты. Состояние
// свёрнутости секций живёт на стороне отображения и адресуется по Key.
type Group struct {
	Key     string          `json:"key"`
	Label   string          `json:"label"`
	Date    time.Time       `json:"date"`
	Signals []domain.Signal `json:"signals"`
}

// Bucket группирует уже отсортированный конвейером список сигналов по
// календарным дням UTC. Единый часовой пояс ключа делает разбиение
// детерминированным: два сигнала одного UTC-дня попадают в одну секцию
// независимо от локальной зоны наблюдателя. Порядок входа сохраняется и
// внутри групп, и между ними — пересортировки нет, секции идут в порядке
// появления их первого сигнала. Вторым значением возвращается число
// сигналов без пригодной даты; они не теряются молча, а отдаются счётчиком.
func Bucket(ordered []domain.Signal, now time.Time) ([]Group, int) {
	var groups []Group
	index := make(map[string]int)
	unbucketed := 0

	for _, s := range ordered {
		date, ok := s.EffectiveDate()
		if !ok {
			unbucketed++
			continue
		}
		day := date.UTC().Truncate(24 * time.Hour)
		key := day.Format("2006-01-02")
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, Label: Label(day, now), Date: day})
		}
		groups[i].Signals = append(groups[i].Signals, s)
	}
	return groups, unbucketed
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
	time.Sunday:    "Воскресенье",
}

var monthGenitive = map[time.Month]string{
	time.January:   "января",
	time.February:  "февраля",
	time.March:     "марта",
	time.April:     "апреля",
	time.May:       "мая",
	time.June:      "июня",
	time.July:      "июля",
	time.August:    "августа",
	time.September: "сентября",
	time.October:   "октября",
	time.November:  "ноября",
	time.December:  "декабря",
}

// Label строит подпись дня относительно "сейчас": сегодня, вчера, день
// недели в пределах текущей календарной недели, день и месяц в пределах
// текущего месяца, иначе полная дата.
func Label(day time.Time, now time.Time) string {
	today := now.UTC().Truncate(24 * time.Hour)
	switch {
	case day.Equal(today):
		return "Сегодня"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Вчера"
	}
	if !day.Before(startOfWeek(today)) && day.Before(today) {
		return weekdayNames[day.Weekday()]
	}
	if day.Year() == today.Year() && day.Month() == today.Month() {
		return fmt.Sprintf("%d %s", day.Day(), monthGenitive[day.Month()])
	}
	return fmt.Sprintf("%d %s %d", day.Day(), monthGenitive[day.Month()], day.Year())
}

// startOfWeek возвращает понедельник недели указанного дня.
func startOfWeek(day time.Time) time.Time {
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

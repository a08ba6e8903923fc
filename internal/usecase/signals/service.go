package signals

import (
	"fmt"
	"time"

	"signal-radar/internal/domain"
	"signal-radar/internal/infra/metrics"
)

// Service загружает срез данных из хранилища и прогоняет его через конвейер
// фильтрации. Сам конвейер чистый; сервис лишь поставляет ему вход.
type Service struct {
	signals   domain.SignalRepo
	companies domain.CompanyRepo
}

// NewService создаёт сервис сигналов.
func NewService(signals domain.SignalRepo, companies domain.CompanyRepo) *Service {
	return &Service{signals: signals, companies: companies}
}

// List возвращает отфильтрованный, отсортированный по убыванию даты список
// сигналов вместе с индексом компаний для рендеринга.
func (s *Service) List(criteria Criteria) ([]domain.Signal, map[int64]domain.Company, error) {
	return s.list(criteria, time.Now())
}

func (s *Service) list(criteria Criteria, now time.Time) ([]domain.Signal, map[int64]domain.Company, error) {
	metrics.IncFilterRequest()
	start := time.Now()

	// Отсечка по дате применяется и при выборке из хранилища: это только
	// оптимизация, семантику задаёт сам конвейер.
	since, hasCutoff := criteria.DateRange.Cutoff(now)
	if !hasCutoff {
		since = time.Time{}
	}

	sigs, err := s.signals.ListSignals(since)
	if err != nil {
		return nil, nil, fmt.Errorf("получение сигналов: %w", err)
	}
	companies, err := s.companies.ListCompanies(false)
	if err != nil {
		return nil, nil, fmt.Errorf("получение компаний: %w", err)
	}

	index := domain.Snapshot{Companies: companies}.CompaniesByID()
	filtered := Apply(sigs, index, criteria, now)
	metrics.ObserveFilterBuild(start)
	return filtered, index, nil
}

package signals

import (
	"testing"
	"time"

	"signal-radar/internal/domain"
)

type stubSignalRepo struct {
	signals   []domain.Signal
	lastSince time.Time
}

func (s *stubSignalRepo) SaveSignals(int64, []domain.Signal) ([]domain.Signal, error) {
	return nil, nil
}
func (s *stubSignalRepo) ListSignals(since time.Time) ([]domain.Signal, error) {
	s.lastSince = since
	return s.signals, nil
}
func (s *stubSignalRepo) SetSignalRead(int64, bool) error             { return nil }
func (s *stubSignalRepo) SetSignalBookmarked(int64, bool) error       { return nil }
func (s *stubSignalRepo) UpdateSignalContentStatus(int64, string) error { return nil }
func (s *stubSignalRepo) UpdateSignalNotes(int64, string) error       { return nil }

type stubCompanyRepo struct {
	companies []domain.Company
}

func (s *stubCompanyRepo) UpsertCompany(c domain.Company) (domain.Company, error) { return c, nil }
func (s *stubCompanyRepo) GetCompany(id int64) (domain.Company, error) {
	for _, c := range s.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Company{}, domain.ErrCompanyNotFound
}
func (s *stubCompanyRepo) ListCompanies(bool) ([]domain.Company, error) { return s.companies, nil }
func (s *stubCompanyRepo) SetCompanyActive(int64, bool) error           { return nil }

func TestServiceListFiltersAndIndexesCompanies(t *testing.T) {
	now := time.Date(2026, time.March, 18, 12, 0, 0, 0, time.UTC)
	signalRepo := &stubSignalRepo{signals: []domain.Signal{
		{ID: 1, CompanyID: 1, Type: domain.SignalFunding, CreatedAt: now.Add(-time.Hour)},
		{ID: 2, CompanyID: 2, Type: domain.SignalNegativeNews, CreatedAt: now.Add(-2 * time.Hour)},
	}}
	companyRepo := &stubCompanyRepo{companies: []domain.Company{
		{ID: 1, Name: "Acme"},
		{ID: 2, Name: "Globex"},
	}}
	svc := NewService(signalRepo, companyRepo)

	criteria := DefaultCriteria()
	criteria.Types = []domain.SignalType{domain.SignalFunding}
	list, index, err := svc.list(criteria, now)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(list) != 1 || list[0].ID != 1 {
		t.Fatalf("ожидали только сигнал 1, получили %v", list)
	}
	if len(index) != 2 || index[2].Name != "Globex" {
		t.Fatalf("ожидали индекс из 2 компаний, получили %v", index)
	}
}

func TestServiceListPassesCutoffToRepo(t *testing.T) {
	now := time.Date(2026, time.March, 18, 12, 0, 0, 0, time.UTC)
	signalRepo := &stubSignalRepo{}
	svc := NewService(signalRepo, &stubCompanyRepo{})

	criteria := DefaultCriteria()
	criteria.DateRange = DateRangeWeek
	if _, _, err := svc.list(criteria, now); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !signalRepo.lastSince.Equal(now.AddDate(0, 0, -7)) {
		t.Fatalf("отсечка недели должна дойти до хранилища, получили %v", signalRepo.lastSince)
	}

	if _, _, err := svc.list(DefaultCriteria(), now); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !signalRepo.lastSince.IsZero() {
		t.Fatalf("без окна даты отсечка должна быть нулевой, получили %v", signalRepo.lastSince)
	}
}

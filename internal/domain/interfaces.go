package domain

import "time"

// CompanyRepo управляет отслеживаемыми компаниями.
type CompanyRepo interface {
	UpsertCompany(company Company) (Company, error)
	GetCompany(id int64) (Company, error)
	ListCompanies(onlyActive bool) ([]Company, error)
	SetCompanyActive(id int64, active bool) error
}

// SignalRepo управляет сигналами.
type SignalRepo interface {
	// SaveSignals сохраняет сигналы батчем и возвращает только реально
	// вставленные (дубликаты по hash молча пропускаются).
	SaveSignals(companyID int64, signals []Signal) ([]Signal, error)
	ListSignals(since time.Time) ([]Signal, error)
	SetSignalRead(id int64, read bool) error
	SetSignalBookmarked(id int64, bookmarked bool) error
	UpdateSignalContentStatus(id int64, status string) error
	UpdateSignalNotes(id int64, notes string) error
}

// AlertRuleRepo управляет правилами оповещений.
type AlertRuleRepo interface {
	CreateAlertRule(rule AlertRule) (AlertRule, error)
	ListAlertRules(onlyActive bool) ([]AlertRule, error)
	SetAlertRuleActive(id int64, active bool) error
	DeleteAlertRule(id int64) error
}

// SnapshotProvider отдаёт ядру срез данных для одного прохода.
type SnapshotProvider interface {
	LoadSnapshot(since time.Time) (Snapshot, error)
}

// Cache обеспечивает идемпотентность с ограниченным временем жизни ключей.
type Cache interface {
	// Once выполняет функцию, если ключ ещё не был установлен, и возвращает
	// true, когда выполнение состоялось.
	Once(key string, ttl time.Duration, fn func() error) (bool, error)
}

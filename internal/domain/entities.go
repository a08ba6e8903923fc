package domain

import "time"

// SignalType классифицирует событие о компании.
type SignalType string

const (
	SignalFunding         SignalType = "funding_announcement"
	SignalExecutiveChange SignalType = "executive_change"
	SignalProductLaunch   SignalType = "product_launch"
	SignalPartnership     SignalType = "partnership"
	SignalAcquisition     SignalType = "acquisition"
	SignalNegativeNews    SignalType = "negative_news"
	SignalPositiveNews    SignalType = "positive_news"
	SignalJobPostingSpike SignalType = "job_posting_spike"
)

// KnownSignalTypes перечисляет все поддерживаемые типы сигналов.
var KnownSignalTypes = []SignalType{
	SignalFunding,
	SignalExecutiveChange,
	SignalProductLaunch,
	SignalPartnership,
	SignalAcquisition,
	SignalNegativeNews,
	SignalPositiveNews,
	SignalJobPostingSpike,
}

// IsValid сообщает, распознан ли тип сигнала.
func (t SignalType) IsValid() bool {
	for _, known := range KnownSignalTypes {
		if t == known {
			return true
		}
	}
	return false
}

// SignalPriority задаёт важность сигнала.
type SignalPriority string

const (
	PriorityLow    SignalPriority = "low"
	PriorityMedium SignalPriority = "medium"
	PriorityHigh   SignalPriority = "high"
)

// Статусы обработки сигнала операторами контента.
const (
	ContentStatusNew        = "new"
	ContentStatusInProgress = "in_progress"
	ContentStatusPublished  = "published"
)

// Company описывает отслеживаемую компанию.
type Company struct {
	ID            int64
	Name          string
	Industry      string
	Location      string
	Size          string
	FoundedYear   int
	Website       string
	RSSFeedURL    string
	LinkedInURL   string
	TwitterHandle string
	IsActive      bool
	CreatedAt     time.Time
}

// Signal представляет дискретное событие об отслеживаемой компании.
type Signal struct {
	ID        int64
	CompanyID int64
	Type      SignalType
	Priority  SignalPriority
	Title     string
	Body      string
	URL       string
	Hash      string
	// RawEntitiesJSON хранит полуструктурированный блок извлечённых сущностей:
	// опциональные массивы people/organizations/locations/financials/dates,
	// элементы которых — строки либо объекты с полем name.
	RawEntitiesJSON []byte
	PublishedAt     *time.Time
	CreatedAt       time.Time
	IsRead          bool
	IsBookmarked    bool
	ContentStatus   string
	Notes           string
}

// EffectivePriority возвращает приоритет сигнала, подставляя medium по умолчанию.
func (s Signal) EffectivePriority() SignalPriority {
	if s.Priority == "" {
		return PriorityMedium
	}
	return s.Priority
}

// EffectiveDate возвращает дату для сортировки и группировки: publishedAt,
// а при его отсутствии createdAt. Второе значение false означает, что
// пригодной даты у сигнала нет вовсе.
func (s Signal) EffectiveDate() (time.Time, bool) {
	if s.PublishedAt != nil && !s.PublishedAt.IsZero() {
		return *s.PublishedAt, true
	}
	if !s.CreatedAt.IsZero() {
		return s.CreatedAt, true
	}
	return time.Time{}, false
}

// TriggerType описывает условие срабатывания правила оповещения:
// конкретный тип сигнала, любой сигнал или ключевые слова.
type TriggerType string

const (
	TriggerAnySignal     TriggerType = "any_signal"
	TriggerCustomKeyword TriggerType = "custom_keyword"
)

// Каналы доставки оповещений.
const (
	ChannelTelegram = "telegram"
	ChannelWebhook  = "webhook"
)

// AlertRule описывает настроенное оператором правило оповещения.
type AlertRule struct {
	ID   int64
	Name string
	// CompanyID равный nil означает «для всех компаний».
	CompanyID           *int64
	TriggerType         TriggerType
	Keywords            []string
	NotificationChannel string
	IsActive            bool
	CreatedAt           time.Time
}

// Snapshot — неизменяемый срез данных для одного прохода фильтрации/оценки.
// Ядро читает его и никогда не мутирует.
type Snapshot struct {
	Companies []Company
	Signals   []Signal
	Rules     []AlertRule
}

// UnknownCompanyName — заглушка для сигналов, чья компания не резолвится.
// Осиротевший сигнал отображается с ней, но никогда не считается ошибкой.
const UnknownCompanyName = "Неизвестная компания"

// CompanyNameOrFallback возвращает имя компании сигнала либо заглушку.
func CompanyNameOrFallback(companies map[int64]Company, companyID int64) string {
	if company, ok := companies[companyID]; ok && company.Name != "" {
		return company.Name
	}
	return UnknownCompanyName
}

// CompaniesByID строит индекс компаний для джойнов фильтра.
func (s Snapshot) CompaniesByID() map[int64]Company {
	index := make(map[int64]Company, len(s.Companies))
	for _, c := range s.Companies {
		index[c.ID] = c
	}
	return index
}

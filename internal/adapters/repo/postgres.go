package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"signal-radar/internal/domain"
	"signal-radar/internal/infra/metrics"
)

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.CompanyRepo      = (*Postgres)(nil)
	_ domain.SignalRepo       = (*Postgres)(nil)
	_ domain.AlertRuleRepo    = (*Postgres)(nil)
	_ domain.SnapshotProvider = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// UpsertCompany сохраняет компанию; конфликт по имени обновляет её атрибуты.
func (p *Postgres) UpsertCompany(company domain.Company) (domain.Company, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	var saved domain.Company
	var foundedYear sql.NullInt32
	if company.FoundedYear > 0 {
		foundedYear = sql.NullInt32{Int32: int32(company.FoundedYear), Valid: true}
	}

	start := time.Now()
	var founded sql.NullInt32
	err := p.pool.QueryRow(ctx, `
INSERT INTO companies (name, industry, location, size, founded_year, website, rss_feed_url, linkedin_url, twitter_handle, is_active)
VALUES ($1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,''), $5, NULLIF($6,''), NULLIF($7,''), NULLIF($8,''), NULLIF($9,''), $10)
ON CONFLICT (name) DO UPDATE SET
    industry = EXCLUDED.industry,
    location = EXCLUDED.location,
    size = EXCLUDED.size,
    founded_year = EXCLUDED.founded_year,
    website = EXCLUDED.website,
    rss_feed_url = EXCLUDED.rss_feed_url,
    linkedin_url = EXCLUDED.linkedin_url,
    twitter_handle = EXCLUDED.twitter_handle,
    is_active = EXCLUDED.is_active
RETURNING id, name, COALESCE(industry,''), COALESCE(location,''), COALESCE(size,''), founded_year,
    COALESCE(website,''), COALESCE(rss_feed_url,''), COALESCE(linkedin_url,''), COALESCE(twitter_handle,''), is_active, created_at
`, company.Name, company.Industry, company.Location, company.Size, foundedYear,
		company.Website, company.RSSFeedURL, company.LinkedInURL, company.TwitterHandle, company.IsActive).
		Scan(&saved.ID, &saved.Name, &saved.Industry, &saved.Location, &saved.Size, &founded,
			&saved.Website, &saved.RSSFeedURL, &saved.LinkedInURL, &saved.TwitterHandle, &saved.IsActive, &saved.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "companies_upsert", "companies", start, err)
	if err != nil {
		return domain.Company{}, err
	}
	if founded.Valid {
		saved.FoundedYear = int(founded.Int32)
	}
	return saved, nil
}

// GetCompany возвращает компанию по идентификатору.
func (p *Postgres) GetCompany(id int64) (domain.Company, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	var company domain.Company
	var founded sql.NullInt32
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT id, name, COALESCE(industry,''), COALESCE(location,''), COALESCE(size,''), founded_year,
    COALESCE(website,''), COALESCE(rss_feed_url,''), COALESCE(linkedin_url,''), COALESCE(twitter_handle,''), is_active, created_at
FROM companies WHERE id=$1
`, id).Scan(&company.ID, &company.Name, &company.Industry, &company.Location, &company.Size, &founded,
		&company.Website, &company.RSSFeedURL, &company.LinkedInURL, &company.TwitterHandle, &company.IsActive, &company.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "companies_get", "companies", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Company{}, fmt.Errorf("компания %d: %w", id, domain.ErrCompanyNotFound)
	}
	if err != nil {
		return domain.Company{}, err
	}
	if founded.Valid {
		company.FoundedYear = int(founded.Int32)
	}
	return company, nil
}

// ListCompanies возвращает компании, опционально только активные.
func (p *Postgres) ListCompanies(onlyActive bool) ([]domain.Company, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	query := `
SELECT id, name, COALESCE(industry,''), COALESCE(location,''), COALESCE(size,''), founded_year,
    COALESCE(website,''), COALESCE(rss_feed_url,''), COALESCE(linkedin_url,''), COALESCE(twitter_handle,''), is_active, created_at
FROM companies`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	start := time.Now()
	rows, err := p.pool.Query(ctx, query)
	metrics.ObserveNetworkRequest("postgres", "companies_list", "companies", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		var company domain.Company
		var founded sql.NullInt32
		if err := rows.Scan(&company.ID, &company.Name, &company.Industry, &company.Location, &company.Size, &founded,
			&company.Website, &company.RSSFeedURL, &company.LinkedInURL, &company.TwitterHandle, &company.IsActive, &company.CreatedAt); err != nil {
			return nil, err
		}
		if founded.Valid {
			company.FoundedYear = int(founded.Int32)
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

// SetCompanyActive переключает мониторинг компании.
func (p *Postgres) SetCompanyActive(id int64, active bool) error {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE companies SET is_active=$2 WHERE id=$1`, id, active)
	metrics.ObserveNetworkRequest("postgres", "companies_set_active", "companies", start, err)
	return err
}

// SaveSignals сохраняет сигналы батчем. Дубликаты по hash пропускаются;
// возвращаются только реально вставленные строки с присвоенными ID.
func (p *Postgres) SaveSignals(companyID int64, sigs []domain.Signal) ([]domain.Signal, error) {
	if len(sigs) == 0 {
		return nil, nil
	}
	ctx, cancel := p.connCtx()
	defer cancel()

	batch := &pgx.Batch{}
	for _, s := range sigs {
		batch.Queue(`
INSERT INTO signals (company_id, type, priority, title, body, url, hash, raw_entities_json, published_at, content_status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (company_id, hash) DO NOTHING
RETURNING id, created_at
`, companyID, s.Type, s.EffectivePriority(), s.Title, s.Body, s.URL, s.Hash, s.RawEntitiesJSON, s.PublishedAt, s.ContentStatus)
	}

	start := time.Now()
	br := p.pool.SendBatch(ctx, batch)
	metrics.ObserveNetworkRequest("postgres", "signals_send_batch", "signals", start, nil)
	defer br.Close()

	var inserted []domain.Signal
	for _, s := range sigs {
		start = time.Now()
		err := br.QueryRow().Scan(&s.ID, &s.CreatedAt)
		metrics.ObserveNetworkRequest("postgres", "signals_batch_insert", "signals", start, err)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return inserted, err
		}
		s.CompanyID = companyID
		inserted = append(inserted, s)
	}
	return inserted, nil
}

const signalColumns = `
SELECT id, company_id, type, COALESCE(priority,''), title, COALESCE(body,''), COALESCE(url,''), COALESCE(hash,''),
    raw_entities_json, published_at, created_at, is_read, is_bookmarked, COALESCE(content_status,''), COALESCE(notes,'')
FROM signals`

// ListSignals возвращает сигналы начиная с указанной даты; нулевое since
// означает всю историю.
func (p *Postgres) ListSignals(since time.Time) ([]domain.Signal, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, signalColumns+`
WHERE COALESCE(published_at, created_at) >= $1
ORDER BY COALESCE(published_at, created_at) DESC
`, since)
	metrics.ObserveNetworkRequest("postgres", "signals_list", "signals", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sigs []domain.Signal
	for rows.Next() {
		var s domain.Signal
		var published sql.NullTime
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Type, &s.Priority, &s.Title, &s.Body, &s.URL, &s.Hash,
			&s.RawEntitiesJSON, &published, &s.CreatedAt, &s.IsRead, &s.IsBookmarked, &s.ContentStatus, &s.Notes); err != nil {
			return nil, err
		}
		if published.Valid {
			ts := published.Time
			s.PublishedAt = &ts
		}
		sigs = append(sigs, s)
	}
	return sigs, rows.Err()
}

// SetSignalRead помечает сигнал прочитанным или непрочитанным.
func (p *Postgres) SetSignalRead(id int64, read bool) error {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE signals SET is_read=$2 WHERE id=$1`, id, read)
	metrics.ObserveNetworkRequest("postgres", "signals_set_read", "signals", start, err)
	return err
}

// SetSignalBookmarked переключает закладку.
func (p *Postgres) SetSignalBookmarked(id int64, bookmarked bool) error {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE signals SET is_bookmarked=$2 WHERE id=$1`, id, bookmarked)
	metrics.ObserveNetworkRequest("postgres", "signals_set_bookmarked", "signals", start, err)
	return err
}

// UpdateSignalContentStatus обновляет статус обработки контента.
func (p *Postgres) UpdateSignalContentStatus(id int64, status string) error {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE signals SET content_status=$2 WHERE id=$1`, id, status)
	metrics.ObserveNetworkRequest("postgres", "signals_update_status", "signals", start, err)
	return err
}

// UpdateSignalNotes обновляет заметки оператора.
func (p *Postgres) UpdateSignalNotes(id int64, notes string) error {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE signals SET notes=$2 WHERE id=$1`, id, notes)
	metrics.ObserveNetworkRequest("postgres", "signals_update_notes", "signals", start, err)
	return err
}

// CreateAlertRule сохраняет правило оповещения.
func (p *Postgres) CreateAlertRule(rule domain.AlertRule) (domain.AlertRule, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	var companyID sql.NullInt64
	if rule.CompanyID != nil {
		companyID = sql.NullInt64{Int64: *rule.CompanyID, Valid: true}
	}

	start := time.Now()
	err := p.pool.QueryRow(ctx, `
INSERT INTO alert_rules (name, company_id, trigger_type, keywords, notification_channel, is_active)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, created_at
`, rule.Name, companyID, rule.TriggerType, rule.Keywords, rule.NotificationChannel, rule.IsActive).
		Scan(&rule.ID, &rule.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "alert_rules_insert", "alert_rules", start, err)
	return rule, err
}

// ListAlertRules возвращает правила, опционально только активные.
func (p *Postgres) ListAlertRules(onlyActive bool) ([]domain.AlertRule, error) {
	ctx, cancel := p.connCtx()
	defer cancel()

	query := `
SELECT id, name, company_id, trigger_type, COALESCE(keywords, '{}'), COALESCE(notification_channel,''), is_active, created_at
FROM alert_rules`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY id`

	start := time.Now()
	rows, err := p.pool.Query(ctx, query)
	metrics.ObserveNetworkRequest("postgres", "alert_rules_list", "alert_rules", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []domain.AlertRule
	for rows.Next() {
		var rule domain.AlertRule
		var companyID sql.NullInt64
		if err := rows.Scan(&rule.ID, &rule.Name, &companyID, &rule.TriggerType, &rule.Keywords,
			&rule.NotificationChannel, &rule.IsActive, &rule.CreatedAt); err != nil {
			return nil, err
		}
		if companyID.Valid {
			id := companyID.Int64
			rule.CompanyID = &id
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// SetAlertRuleActive включает или выключает правило.
func (p *Postgres) SetAlertRuleActive(id int64, active bool) error {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE alert_rules SET is_active=$2 WHERE id=$1`, id, active)
	metrics.ObserveNetworkRequest("postgres", "alert_rules_set_active", "alert_rules", start, err)
	return err
}

// DeleteAlertRule удаляет правило.
func (p *Postgres) DeleteAlertRule(id int64) error {
	ctx, cancel := p.connCtx()
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `DELETE FROM alert_rules WHERE id=$1`, id)
	metrics.ObserveNetworkRequest("postgres", "alert_rules_delete", "alert_rules", start, err)
	return err
}

// LoadSnapshot отдаёт ядру срез компаний, сигналов и правил одним вызовом.
func (p *Postgres) LoadSnapshot(since time.Time) (domain.Snapshot, error) {
	companies, err := p.ListCompanies(false)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("получение компаний: %w", err)
	}
	sigs, err := p.ListSignals(since)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("получение сигналов: %w", err)
	}
	rules, err := p.ListAlertRules(false)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("получение правил: %w", err)
	}
	return domain.Snapshot{Companies: companies, Signals: sigs, Rules: rules}, nil
}

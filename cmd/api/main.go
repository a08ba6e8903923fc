package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"signal-radar/internal/adapters/repo"
	"signal-radar/internal/domain"
	"signal-radar/internal/infra/config"
	"signal-radar/internal/infra/db"
	httpinfra "signal-radar/internal/infra/http"
	applog "signal-radar/internal/infra/log"
	"signal-radar/internal/infra/metrics"
	"signal-radar/internal/usecase/signals"
	"signal-radar/internal/usecase/timeline"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv, "api")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool)
	signalSvc := signals.NewService(repoAdapter, repoAdapter)

	h := &handler{repo: repoAdapter, signals: signalSvc}

	srv := httpinfra.NewServer(logger)
	srv.Router.Route("/api/v1", func(r chi.Router) {
		r.Get("/signals", h.listSignals)
		r.Get("/signals/timeline", h.signalsTimeline)
		r.Patch("/signals/{id}", h.updateSignal)

		r.Get("/companies", h.listCompanies)
		r.Post("/companies", h.upsertCompany)
		r.Patch("/companies/{id}/active", h.setCompanyActive)

		r.Get("/export", h.exportSnapshot)

		r.Get("/alerts", h.listAlertRules)
		r.Post("/alerts", h.createAlertRule)
		r.Patch("/alerts/{id}/active", h.setAlertRuleActive)
		r.Delete("/alerts/{id}", h.deleteAlertRule)
	})

	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("api: сервер остановлен")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("api: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

type handler struct {
	repo    *repo.Postgres
	signals *signals.Service
}

type signalResponse struct {
	ID            int64           `json:"id"`
	CompanyID     int64           `json:"company_id"`
	CompanyName   string          `json:"company_name"`
	Type          string          `json:"type"`
	Priority      string          `json:"priority"`
	Title         string          `json:"title"`
	Body          string          `json:"body,omitempty"`
	URL           string          `json:"url,omitempty"`
	Entities      json.RawMessage `json:"entities,omitempty"`
	PublishedAt   *time.Time      `json:"published_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	IsRead        bool            `json:"is_read"`
	IsBookmarked  bool            `json:"is_bookmarked"`
	ContentStatus string          `json:"content_status"`
	Notes         string          `json:"notes,omitempty"`
}

func toSignalResponse(s domain.Signal, companies map[int64]domain.Company) signalResponse {
	return signalResponse{
		ID:            s.ID,
		CompanyID:     s.CompanyID,
		CompanyName:   domain.CompanyNameOrFallback(companies, s.CompanyID),
		Type:          string(s.Type),
		Priority:      string(s.EffectivePriority()),
		Title:         s.Title,
		Body:          s.Body,
		URL:           s.URL,
		Entities:      json.RawMessage(s.RawEntitiesJSON),
		PublishedAt:   s.PublishedAt,
		CreatedAt:     s.CreatedAt,
		IsRead:        s.IsRead,
		IsBookmarked:  s.IsBookmarked,
		ContentStatus: s.ContentStatus,
		Notes:         s.Notes,
	}
}

// parseCriteria разбирает фильтры из query-параметров. Отсутствующий параметр
// нейтрален; нераспознанные значения не отбрасываются, они просто ни с чем не
// совпадут.
func parseCriteria(r *http.Request) signals.Criteria {
	q := r.URL.Query()
	criteria := signals.DefaultCriteria()

	for _, raw := range splitCSV(q.Get("types")) {
		criteria.Types = append(criteria.Types, domain.SignalType(raw))
	}
	for _, raw := range splitCSV(q.Get("priorities")) {
		criteria.Priorities = append(criteria.Priorities, domain.SignalPriority(raw))
	}
	if status := strings.TrimSpace(q.Get("status")); status != "" {
		criteria.Status = status
	}
	criteria.Bookmarked = q.Get("bookmarked") == "true"
	criteria.Unread = q.Get("unread") == "true"
	criteria.EntityQuery = q.Get("q")
	if industry := strings.TrimSpace(q.Get("industry")); industry != "" {
		criteria.Industry = industry
	}
	if dateRange := strings.TrimSpace(q.Get("range")); dateRange != "" {
		criteria.DateRange = signals.DateRange(dateRange)
	}
	return criteria
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (h *handler) listSignals(w http.ResponseWriter, r *http.Request) {
	list, companies, err := h.signals.List(parseCriteria(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "не удалось получить сигналы")
		return
	}
	items := make([]signalResponse, 0, len(list))
	for _, s := range list {
		items = append(items, toSignalResponse(s, companies))
	}
	writeJSON(w, map[string]any{
		"items": items,
		"total": len(items),
	})
}

func (h *handler) signalsTimeline(w http.ResponseWriter, r *http.Request) {
	metrics.IncTimelineRequest()
	list, companies, err := h.signals.List(parseCriteria(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "не удалось получить сигналы")
		return
	}
	groups, unbucketed := timeline.Bucket(list, time.Now())

	type groupResponse struct {
		Key     string           `json:"key"`
		Label   string           `json:"label"`
		Signals []signalResponse `json:"signals"`
	}
	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		items := make([]signalResponse, 0, len(g.Signals))
		for _, s := range g.Signals {
			items = append(items, toSignalResponse(s, companies))
		}
		out = append(out, groupResponse{Key: g.Key, Label: g.Label, Signals: items})
	}
	writeJSON(w, map[string]any{
		"groups":     out,
		"unbucketed": unbucketed,
	})
}

type updateSignalRequest struct {
	IsRead        *bool   `json:"is_read"`
	IsBookmarked  *bool   `json:"is_bookmarked"`
	ContentStatus *string `json:"content_status"`
	Notes         *string `json:"notes"`
}

func (h *handler) updateSignal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "некорректный идентификатор")
		return
	}
	defer r.Body.Close()
	var req updateSignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}

	if req.IsRead != nil {
		if err := h.repo.SetSignalRead(id, *req.IsRead); err != nil {
			writeError(w, http.StatusInternalServerError, "не удалось обновить сигнал")
			return
		}
	}
	if req.IsBookmarked != nil {
		if err := h.repo.SetSignalBookmarked(id, *req.IsBookmarked); err != nil {
			writeError(w, http.StatusInternalServerError, "не удалось обновить сигнал")
			return
		}
	}
	if req.ContentStatus != nil {
		status := *req.ContentStatus
		switch status {
		case domain.ContentStatusNew, domain.ContentStatusInProgress, domain.ContentStatusPublished:
		default:
			writeError(w, http.StatusBadRequest, "неизвестный статус контента")
			return
		}
		if err := h.repo.UpdateSignalContentStatus(id, status); err != nil {
			writeError(w, http.StatusInternalServerError, "не удалось обновить сигнал")
			return
		}
	}
	if req.Notes != nil {
		if err := h.repo.UpdateSignalNotes(id, *req.Notes); err != nil {
			writeError(w, http.StatusInternalServerError, "не удалось обновить сигнал")
			return
		}
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("active") == "true"
	companies, err := h.repo.ListCompanies(onlyActive)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "не удалось получить компании")
		return
	}
	writeJSON(w, map[string]any{"items": companies, "total": len(companies)})
}

type upsertCompanyRequest struct {
	Name          string `json:"name"`
	Industry      string `json:"industry"`
	Location      string `json:"location"`
	Size          string `json:"size"`
	FoundedYear   int    `json:"founded_year"`
	Website       string `json:"website"`
	RSSFeedURL    string `json:"rss_feed_url"`
	LinkedInURL   string `json:"linkedin_url"`
	TwitterHandle string `json:"twitter_handle"`
}

func (h *handler) upsertCompany(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req upsertCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name обязателен")
		return
	}
	company, err := h.repo.UpsertCompany(domain.Company{
		Name:          strings.TrimSpace(req.Name),
		Industry:      req.Industry,
		Location:      req.Location,
		Size:          req.Size,
		FoundedYear:   req.FoundedYear,
		Website:       req.Website,
		RSSFeedURL:    req.RSSFeedURL,
		LinkedInURL:   req.LinkedInURL,
		TwitterHandle: req.TwitterHandle,
		IsActive:      true,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "не удалось сохранить компанию")
		return
	}
	writeJSON(w, company)
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

func (h *handler) setCompanyActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "некорректный идентификатор")
		return
	}
	defer r.Body.Close()
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}
	if err := h.repo.SetCompanyActive(id, req.IsActive); err != nil {
		writeError(w, http.StatusInternalServerError, "не удалось обновить компанию")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// exportSnapshot отдаёт полный срез данных одним документом, например для
// выгрузки в аналитическое хранилище. Параметр since ограничивает сигналы.
func (h *handler) exportSnapshot(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "некорректный параметр since")
			return
		}
		since = parsed
	}
	snapshot, err := h.repo.LoadSnapshot(since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "не удалось выгрузить данные")
		return
	}
	writeJSON(w, map[string]any{
		"companies": snapshot.Companies,
		"signals":   snapshot.Signals,
		"rules":     snapshot.Rules,
	})
}

func (h *handler) listAlertRules(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("active") == "true"
	rules, err := h.repo.ListAlertRules(onlyActive)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "не удалось получить правила")
		return
	}
	writeJSON(w, map[string]any{"items": rules, "total": len(rules)})
}

type createAlertRuleRequest struct {
	Name                string   `json:"name"`
	CompanyID           *int64   `json:"company_id"`
	TriggerType         string   `json:"trigger_type"`
	Keywords            []string `json:"keywords"`
	NotificationChannel string   `json:"notification_channel"`
}

// alertRuleFromRequest валидирует запрос и собирает правило. Второе значение —
// сообщение об ошибке для клиента; пустая строка означает успех.
func alertRuleFromRequest(req createAlertRuleRequest) (domain.AlertRule, string) {
	if strings.TrimSpace(req.Name) == "" {
		return domain.AlertRule{}, "name обязателен"
	}
	trigger := domain.TriggerType(req.TriggerType)
	if trigger != domain.TriggerAnySignal && trigger != domain.TriggerCustomKeyword && !domain.SignalType(req.TriggerType).IsValid() {
		return domain.AlertRule{}, "неизвестный тип триггера"
	}

	keywords := make([]string, 0, len(req.Keywords))
	for _, keyword := range req.Keywords {
		if trimmed := strings.TrimSpace(keyword); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	// Правило по словам без слов никогда не сработает; такой запрос — ошибка
	// конфигурации, а не правило.
	if trigger == domain.TriggerCustomKeyword && len(keywords) == 0 {
		return domain.AlertRule{}, "keywords обязательны для custom_keyword"
	}

	channel := req.NotificationChannel
	if channel == "" {
		channel = domain.ChannelTelegram
	}
	if channel != domain.ChannelTelegram && channel != domain.ChannelWebhook {
		return domain.AlertRule{}, "неизвестный канал доставки"
	}

	return domain.AlertRule{
		Name:                strings.TrimSpace(req.Name),
		CompanyID:           req.CompanyID,
		TriggerType:         trigger,
		Keywords:            keywords,
		NotificationChannel: channel,
		IsActive:            true,
	}, ""
}

func (h *handler) createAlertRule(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req createAlertRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}
	rule, errMsg := alertRuleFromRequest(req)
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}
	created, err := h.repo.CreateAlertRule(rule)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "не удалось создать правило")
		return
	}
	writeJSON(w, created)
}

func (h *handler) setAlertRuleActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "некорректный идентификатор")
		return
	}
	defer r.Body.Close()
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}
	if err := h.repo.SetAlertRuleActive(id, req.IsActive); err != nil {
		writeError(w, http.StatusInternalServerError, "не удалось обновить правило")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *handler) deleteAlertRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "некорректный идентификатор")
		return
	}
	if err := h.repo.DeleteAlertRule(id); err != nil {
		writeError(w, http.StatusInternalServerError, "не удалось удалить правило")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

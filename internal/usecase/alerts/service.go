package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"signal-radar/internal/domain"
	"signal-radar/internal/infra/metrics"
)

// alertDedupTTL ограничивает окно идемпотентности пары (правило, сигнал).
const alertDedupTTL = 24 * time.Hour

// Service прогоняет свежесозданный сигнал через активные правила и ставит
// задачу доставки на каждое сработавшее. Сама оценка чистая (Evaluate);
// сервису принадлежат только загрузка правил и постановка в очередь.
type Service struct {
	rules     domain.AlertRuleRepo
	companies domain.CompanyRepo
	queue     domain.AlertQueue
	cache     domain.Cache
}

// NewService создаёт сервис оповещений. Кэш опционален: без него
// постановка выполняется без защиты от повторной оценки.
func NewService(rules domain.AlertRuleRepo, companies domain.CompanyRepo, queue domain.AlertQueue, cache domain.Cache) *Service {
	return &Service{rules: rules, companies: companies, queue: queue, cache: cache}
}

// HandleNewSignal возвращает число поставленных в очередь оповещений.
func (s *Service) HandleNewSignal(ctx context.Context, signal domain.Signal) (int, error) {
	rules, err := s.rules.ListAlertRules(true)
	if err != nil {
		return 0, fmt.Errorf("получение правил: %w", err)
	}
	matched := Evaluate(rules, signal)
	if len(matched) == 0 {
		return 0, nil
	}

	companyName := domain.UnknownCompanyName
	if company, err := s.companies.GetCompany(signal.CompanyID); err == nil && company.Name != "" {
		companyName = company.Name
	}

	enqueued := 0
	for _, rule := range matched {
		job := domain.AlertJob{
			ID:          uuid.NewString(),
			RuleID:      rule.ID,
			RuleName:    rule.Name,
			Channel:     rule.NotificationChannel,
			SignalID:    signal.ID,
			SignalType:  signal.Type,
			CompanyID:   signal.CompanyID,
			CompanyName: companyName,
			Title:       signal.Title,
			Body:        signal.Body,
			URL:         signal.URL,
			MatchedAt:   time.Now().UTC(),
		}
		ran, err := s.enqueueOnce(ctx, rule, signal, job)
		if err != nil {
			return enqueued, fmt.Errorf("постановка оповещения: %w", err)
		}
		if ran {
			enqueued++
			metrics.IncAlertMatched(rule.ID)
		}
	}
	return enqueued, nil
}

func (s *Service) enqueueOnce(ctx context.Context, rule domain.AlertRule, signal domain.Signal, job domain.AlertJob) (bool, error) {
	if s.cache == nil {
		return true, s.queue.Enqueue(ctx, job)
	}
	key := fmt.Sprintf("alert:rule:%d:signal:%d", rule.ID, signal.ID)
	return s.cache.Once(key, alertDedupTTL, func() error {
		return s.queue.Enqueue(ctx, job)
	})
}

package domain

import (
	"context"
	"time"
)

// AlertJob содержит всё необходимое диспетчеру для доставки одного оповещения.
type AlertJob struct {
	ID          string     `json:"job_id"`
	RuleID      int64      `json:"rule_id"`
	RuleName    string     `json:"rule_name"`
	Channel     string     `json:"channel"`
	SignalID    int64      `json:"signal_id"`
	SignalType  SignalType `json:"signal_type"`
	CompanyID   int64      `json:"company_id"`
	CompanyName string     `json:"company_name"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	URL         string     `json:"url,omitempty"`
	MatchedAt   time.Time  `json:"matched_at"`
}

// AlertQueue описывает очередь задач на доставку оповещений.
type AlertQueue interface {
	Enqueue(ctx context.Context, job AlertJob) error
	// Pop блокирующе читает следующую задачу; возвращает ошибку контекста
	// при завершении.
	Pop(ctx context.Context) (AlertJob, error)
}

// Notifier доставляет оповещение по одному каналу.
type Notifier interface {
	Send(ctx context.Context, job AlertJob) error
}

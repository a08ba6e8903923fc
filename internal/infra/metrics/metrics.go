package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	SignalsIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "signals_ingested_total",
		Help: "Количество принятых сигналов по типам",
	}, []string{"type"})

	CollectorErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "collector_errors_total",
		Help: "Ошибки при сборе фидов компаний",
	})

	AlertRulesMatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "alert_rules_matched_total",
		Help: "Количество срабатываний правил оповещений",
	}, []string{"rule_id"})

	NotifySendErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_send_errors_total",
		Help: "Ошибки доставки оповещений по каналам",
	}, []string{"channel"})

	FilterRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "filter_requests_total",
		Help: "Общее количество запросов к конвейеру фильтрации",
	})

	FilterBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "filter_build_seconds",
		Help:    "Время построения отфильтрованного списка сигналов",
		Buckets: prometheus.DefBuckets,
	})

	TimelineRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timeline_requests_total",
		Help: "Общее количество запросов хронологической ленты",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		SignalsIngested,
		CollectorErrors,
		AlertRulesMatched,
		NotifySendErrors,
		FilterRequestsTotal,
		FilterBuildSeconds,
		TimelineRequestsTotal,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncSignalIngested увеличивает счётчик принятых сигналов.
func IncSignalIngested(signalType string) {
	SignalsIngested.WithLabelValues(signalType).Inc()
}

// IncAlertMatched увеличивает счётчик срабатываний правила.
func IncAlertMatched(ruleID int64) {
	AlertRulesMatched.WithLabelValues(strconv.FormatInt(ruleID, 10)).Inc()
}

// IncNotifyError увеличивает счётчик ошибок доставки по каналу.
func IncNotifyError(channel string) {
	NotifySendErrors.WithLabelValues(channel).Inc()
}

// IncFilterRequest увеличивает счётчик запросов фильтрации.
func IncFilterRequest() {
	FilterRequestsTotal.Inc()
}

// IncTimelineRequest увеличивает счётчик запросов ленты.
func IncTimelineRequest() {
	TimelineRequestsTotal.Inc()
}

// ObserveFilterBuild записывает длительность построения списка.
func ObserveFilterBuild(start time.Time) {
	FilterBuildSeconds.Observe(time.Since(start).Seconds())
}

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"signal-radar/internal/adapters/collector"
	"signal-radar/internal/adapters/repo"
	"signal-radar/internal/domain"
	"signal-radar/internal/infra/cache"
	"signal-radar/internal/infra/config"
	"signal-radar/internal/infra/db"
	applog "signal-radar/internal/infra/log"
	"signal-radar/internal/infra/metrics"
	"signal-radar/internal/infra/queue"
	"signal-radar/internal/usecase/alerts"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv, "collector")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), ":9090")

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("collector: нет подключения к БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
	}

	var alertQueue domain.AlertQueue
	switch cfg.Queue.Backend {
	case "rabbitmq":
		rq, err := queue.NewRabbitAlertQueue(cfg.Queue.AMQPURL, cfg.Queue.Key)
		if err != nil {
			logger.Fatal().Err(err).Msg("collector: не удалось инициализировать очередь RabbitMQ")
		}
		defer rq.Close()
		alertQueue = rq
	default:
		if redisClient == nil {
			logger.Fatal().Msg("collector: не указан адрес Redis (REDIS_ADDR)")
		}
		alertQueue = queue.NewRedisAlertQueue(redisClient, cfg.Queue.Key)
	}

	var dedupCache domain.Cache
	if redisClient != nil {
		dedupCache = cache.NewRedis(redisClient)
	}

	alertSvc := alerts.NewService(repoAdapter, repoAdapter, alertQueue, dedupCache)
	rssCollector := collector.NewRSS(cfg.Collector.HTTPTimeout, logger.With().Str("component", "rss").Logger())

	w := &harvestWorker{
		log:       logger,
		companies: repoAdapter,
		signals:   repoAdapter,
		collector: rssCollector,
		alerts:    alertSvc,
	}

	logger.Info().Dur("interval", cfg.Collector.Interval).Msg("collector: запуск")
	w.runOnce(ctx)

	ticker := time.NewTicker(cfg.Collector.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("collector: остановлен")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

type harvestWorker struct {
	log       zerolog.Logger
	companies domain.CompanyRepo
	signals   domain.SignalRepo
	collector *collector.RSSCollector
	alerts    *alerts.Service
}

// runOnce обходит все активные компании. Сбой по одной компании не прерывает
// проход по остальным.
func (w *harvestWorker) runOnce(ctx context.Context) {
	companies, err := w.companies.ListCompanies(true)
	if err != nil {
		metrics.CollectorErrors.Inc()
		w.log.Error().Err(err).Msg("collector: ошибка выборки компаний")
		return
	}

	for _, company := range companies {
		if ctx.Err() != nil {
			return
		}
		if err := w.harvestCompany(ctx, company); err != nil {
			metrics.CollectorErrors.Inc()
			w.log.Error().Err(err).Str("company", company.Name).Msg("collector: сбор не удался")
		}
	}
}

func (w *harvestWorker) harvestCompany(ctx context.Context, company domain.Company) error {
	sigs, err := w.collector.Collect(ctx, company)
	if err != nil {
		return err
	}
	if len(sigs) == 0 {
		return nil
	}

	inserted, err := w.signals.SaveSignals(company.ID, sigs)
	if err != nil {
		return err
	}
	if len(inserted) == 0 {
		return nil
	}
	w.log.Info().Str("company", company.Name).Int("signals", len(inserted)).Msg("collector: новые сигналы")

	for _, s := range inserted {
		metrics.IncSignalIngested(string(s.Type))
		if _, err := w.alerts.HandleNewSignal(ctx, s); err != nil {
			w.log.Error().Err(err).Int64("signal", s.ID).Msg("collector: не удалось оценить правила оповещений")
		}
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"signal-radar/internal/adapters/notify"
	"signal-radar/internal/domain"
	"signal-radar/internal/infra/config"
	applog "signal-radar/internal/infra/log"
	"signal-radar/internal/infra/metrics"
	"signal-radar/internal/infra/queue"
)

const sendTimeout = 30 * time.Second

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv, "dispatcher")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), ":9091")

	var alertQueue domain.AlertQueue
	switch cfg.Queue.Backend {
	case "rabbitmq":
		rq, err := queue.NewRabbitAlertQueue(cfg.Queue.AMQPURL, cfg.Queue.Key)
		if err != nil {
			logger.Fatal().Err(err).Msg("dispatcher: не удалось инициализировать очередь RabbitMQ")
		}
		defer rq.Close()
		alertQueue = rq
	default:
		if cfg.RedisAddr == "" {
			logger.Fatal().Msg("dispatcher: не указан адрес Redis (REDIS_ADDR)")
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		alertQueue = queue.NewRedisAlertQueue(client, cfg.Queue.Key)
	}

	notifiers := map[string]domain.Notifier{}
	if cfg.Telegram.Token != "" {
		botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			logger.Fatal().Err(err).Msg("dispatcher: не удалось создать бота")
		}
		notifiers[domain.ChannelTelegram] = notify.NewTelegram(botAPI, cfg.Telegram.ChatID, logger.With().Str("component", "telegram").Logger())
	}
	if cfg.WebhookURL != "" {
		notifiers[domain.ChannelWebhook] = notify.NewWebhook(cfg.WebhookURL, sendTimeout, logger.With().Str("component", "webhook").Logger())
	}
	if len(notifiers) == 0 {
		logger.Fatal().Msg("dispatcher: не настроен ни один канал доставки")
	}

	logger.Info().Msg("dispatcher: запуск обработки очереди")
	for {
		job, err := alertQueue.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				logger.Info().Msg("dispatcher: остановлен")
				return
			}
			logger.Error().Err(err).Msg("dispatcher: ошибка чтения очереди")
			continue
		}

		notifier, ok := notifiers[job.Channel]
		if !ok {
			metrics.IncNotifyError(job.Channel)
			logger.Warn().Str("job", job.ID).Str("channel", job.Channel).Msg("dispatcher: канал не настроен, оповещение пропущено")
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err = notifier.Send(sendCtx, job)
		cancel()
		if err != nil {
			metrics.IncNotifyError(job.Channel)
			logger.Error().Err(err).Str("job", job.ID).Str("channel", job.Channel).Msg("dispatcher: доставка не удалась")
			continue
		}
		logger.Info().Str("job", job.ID).Str("rule", job.RuleName).Str("channel", job.Channel).Msg("dispatcher: оповещение доставлено")
	}
}

package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	Queue struct {
		// Backend выбирает реализацию очереди оповещений: redis или rabbitmq.
		Backend string `envconfig:"ALERT_QUEUE_BACKEND" default:"redis"`
		Key     string `envconfig:"ALERT_QUEUE_KEY" default:"alert_jobs"`
		AMQPURL string `envconfig:"AMQP_URL"`
	} `envconfig:""`

	Telegram struct {
		Token  string `envconfig:"TG_BOT_TOKEN"`
		ChatID int64  `envconfig:"TG_ALERT_CHAT_ID"`
	} `envconfig:""`

	WebhookURL string `envconfig:"ALERT_WEBHOOK_URL"`

	Collector struct {
		Interval    time.Duration `envconfig:"COLLECT_INTERVAL" default:"10m"`
		HTTPTimeout time.Duration `envconfig:"COLLECT_HTTP_TIMEOUT" default:"20s"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"signal-radar/internal/domain"
	"signal-radar/internal/infra/metrics"
)

// TelegramNotifier доставляет оповещения в служебный чат через Bot API.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

var _ domain.Notifier = (*TelegramNotifier)(nil)

// NewTelegram создаёт нотификатор поверх уже авторизованного бота.
func NewTelegram(bot *tgbotapi.BotAPI, chatID int64, log zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID, log: log}
}

// Send отправляет оповещение, при необходимости разбивая его на части.
func (n *TelegramNotifier) Send(ctx context.Context, job domain.AlertJob) error {
	text := FormatAlert(job)
	for _, part := range splitMessage(text) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(n.chatID, part)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		start := time.Now()
		_, err := n.bot.Send(msg)
		metrics.ObserveNetworkRequest("telegram_bot", "send_message", strconv.FormatInt(n.chatID, 10), start, err)
		if err != nil {
			return fmt.Errorf("отправка сообщения в telegram: %w", err)
		}
	}
	n.log.Debug().Str("job", job.ID).Int64("rule", job.RuleID).Msg("оповещение отправлено в telegram")
	return nil
}

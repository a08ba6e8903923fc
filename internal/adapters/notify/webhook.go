package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"signal-radar/internal/domain"
	"signal-radar/internal/infra/metrics"
)

// WebhookNotifier отправляет оповещение POST-запросом на внешний URL.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

var _ domain.Notifier = (*WebhookNotifier)(nil)

// NewWebhook создаёт нотификатор для указанного URL.
func NewWebhook(url string, timeout time.Duration, log zerolog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Send публикует задачу целиком как JSON.
func (n *WebhookNotifier) Send(ctx context.Context, job domain.AlertJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("сериализация оповещения: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := n.client.Do(req)
	metrics.ObserveNetworkRequest("webhook", "send_alert", n.url, start, err)
	if err != nil {
		return fmt.Errorf("отправка вебхука: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("вебхук ответил статусом %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	n.log.Debug().Str("job", job.ID).Msg("оповещение отправлено на вебхук")
	return nil
}

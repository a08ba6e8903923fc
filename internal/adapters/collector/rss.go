package collector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"signal-radar/internal/domain"
	"signal-radar/internal/infra/metrics"
)

const maxFeedBody = 2 << 20

// RSSCollector выгружает публичный RSS/Atom фид компании и превращает его
// записи в сигналы.
type RSSCollector struct {
	client *http.Client
	log    zerolog.Logger
}

// NewRSS создаёт коллектор с указанным таймаутом запросов.
func NewRSS(timeout time.Duration, logger zerolog.Logger) *RSSCollector {
	return &RSSCollector{
		client: &http.Client{Timeout: timeout},
		log:    logger,
	}
}

// Collect читает фид компании и возвращает новые сигналы. Компании без
// настроенного фида молча пропускаются.
func (c *RSSCollector) Collect(ctx context.Context, company domain.Company) ([]domain.Signal, error) {
	feedURL := strings.TrimSpace(company.RSSFeedURL)
	if feedURL == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.ObserveNetworkRequest("rss", "fetch", company.Name, start, err)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch feed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	items, err := parseFeed(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	sigs := make([]domain.Signal, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		text := title + " " + item.Body
		signalType := ClassifySignalType(text)
		s := domain.Signal{
			CompanyID:       company.ID,
			Type:            signalType,
			Priority:        PriorityForType(signalType),
			Title:           title,
			Body:            strings.TrimSpace(item.Body),
			URL:             item.Link,
			Hash:            itemHash(item),
			RawEntitiesJSON: HarvestEntities(text, company.Name),
			ContentStatus:   domain.ContentStatusNew,
		}
		if published, ok := parseFeedTime(item.Published); ok {
			s.PublishedAt = &published
		} else if item.Published != "" {
			c.log.Debug().Str("company", company.Name).Str("raw", item.Published).Msg("collector: дата записи не распознана")
		}
		sigs = append(sigs, s)
	}
	return sigs, nil
}

// feedItem — нормализованная запись фида независимо от формата.
type feedItem struct {
	Title     string
	Link      string
	GUID      string
	Published string
	Body      string
}

type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			GUID        string `xml:"guid"`
			PubDate     string `xml:"pubDate"`
			Description string `xml:"description"`
		} `xml:"item"`
	} `xml:"channel"`
}

type atomFeed struct {
	XMLName xml.Name `xml:"feed"`
	Entries []struct {
		Title string `xml:"title"`
		ID    string `xml:"id"`
		Links []struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
		Published string `xml:"published"`
		Updated   string `xml:"updated"`
		Summary   string `xml:"summary"`
		Content   string `xml:"content"`
	} `xml:"entry"`
}

func parseFeed(body []byte) ([]feedItem, error) {
	var rss rssFeed
	if err := xml.Unmarshal(body, &rss); err == nil && len(rss.Channel.Items) > 0 {
		items := make([]feedItem, 0, len(rss.Channel.Items))
		for _, item := range rss.Channel.Items {
			items = append(items, feedItem{
				Title:     item.Title,
				Link:      item.Link,
				GUID:      item.GUID,
				Published: item.PubDate,
				Body:      item.Description,
			})
		}
		return items, nil
	}

	var atom atomFeed
	if err := xml.Unmarshal(body, &atom); err == nil && len(atom.Entries) > 0 {
		items := make([]feedItem, 0, len(atom.Entries))
		for _, entry := range atom.Entries {
			item := feedItem{
				Title:     entry.Title,
				GUID:      entry.ID,
				Published: entry.Published,
				Body:      entry.Summary,
			}
			if item.Published == "" {
				item.Published = entry.Updated
			}
			if item.Body == "" {
				item.Body = entry.Content
			}
			if len(entry.Links) > 0 {
				item.Link = entry.Links[0].Href
			}
			items = append(items, item)
		}
		return items, nil
	}

	return nil, errors.New("неизвестный формат фида")
}

// feedTimeLayouts — форматы дат, встречающиеся в RSS и Atom.
var feedTimeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05",
}

func parseFeedTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range feedTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// itemHash строит стабильный ключ дедупликации записи фида.
func itemHash(item feedItem) string {
	key := item.GUID
	if key == "" {
		key = item.Link
	}
	if key == "" {
		key = item.Title + "|" + item.Published
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

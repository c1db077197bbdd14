package rss

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"history-digest-bot/internal/domain"
	"history-digest-bot/internal/infra/metrics"
)

// Feed описывает один RSS-провайдер рубрики.
type Feed struct {
	Name string
	URL  string
}

// DefaultFeeds возвращает провайдеров по рубрикам в порядке приоритета:
// основной источник первым, затем резервные.
func DefaultFeeds() map[domain.Category][]Feed {
	return map[domain.Category][]Feed{
		domain.CategoryHistory: {
			{Name: "History.com", URL: "https://www.history.com/.rss/full"},
			{Name: "Smithsonian Magazine", URL: "https://www.smithsonianmag.com/rss/latest_articles/"},
			{Name: "History Today", URL: "https://www.historytoday.com/rss.xml"},
		},
		domain.CategoryWorld: {
			{Name: "National Geographic", URL: "https://www.nationalgeographic.com/pages/feed/"},
			{Name: "BBC Science", URL: "https://www.bbc.com/news/science_and_environment/rss.xml"},
			{Name: "Scientific American", URL: "https://www.scientificamerican.com/xml/rss.xml"},
		},
	}
}

// Source реализует domain.ContentSource поверх RSS-лент.
type Source struct {
	parser *gofeed.Parser
	feeds  map[domain.Category][]Feed
	log    zerolog.Logger
}

// NewSource создаёт адаптер источников.
func NewSource(feeds map[domain.Category][]Feed, logger zerolog.Logger) *Source {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: 15 * time.Second}
	return &Source{parser: parser, feeds: feeds, log: logger}
}

var _ domain.ContentSource = (*Source)(nil)

// Fetch перебирает провайдеров рубрики по приоритету и возвращает статьи
// первого, который отдал хотя бы одну распарсенную запись.
func (s *Source) Fetch(ctx context.Context, category domain.Category) ([]domain.Item, error) {
	feeds, ok := s.feeds[category]
	if !ok || len(feeds) == 0 {
		return nil, fmt.Errorf("rss: нет провайдеров для рубрики %s", category)
	}
	for _, feed := range feeds {
		items, err := s.fetchFeed(ctx, category, feed)
		if err != nil {
			s.log.Warn().Err(err).Str("feed", feed.Name).Str("category", string(category)).Msg("провайдер недоступен, пробуем следующий")
			continue
		}
		return items, nil
	}
	return nil, fmt.Errorf("rss: все провайдеры рубрики %s недоступны", category)
}

// Ping проверяет доступность основного провайдера рубрики.
func (s *Source) Ping(ctx context.Context, category domain.Category) error {
	feeds, ok := s.feeds[category]
	if !ok || len(feeds) == 0 {
		return fmt.Errorf("rss: нет провайдеров для рубрики %s", category)
	}
	_, err := s.fetchFeed(ctx, category, feeds[0])
	return err
}

func (s *Source) fetchFeed(ctx context.Context, category domain.Category, feed Feed) ([]domain.Item, error) {
	start := time.Now()
	parsed, err := s.parser.ParseURLWithContext(feed.URL, ctx)
	metrics.ObserveNetworkRequest("rss", "parse_feed", feed.Name, start, err)
	if err != nil {
		return nil, fmt.Errorf("rss: парсинг %s: %w", feed.Name, err)
	}
	if len(parsed.Items) == 0 {
		return nil, fmt.Errorf("rss: %s не вернул записей", feed.Name)
	}
	items := make([]domain.Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}
		items = append(items, domain.Item{
			Title:      title,
			Body:       strings.TrimSpace(entry.Description),
			SourceName: feed.Name,
			Link:       entry.Link,
			Category:   category,
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("rss: %s не вернул пригодных записей", feed.Name)
	}
	return items, nil
}

package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"history-digest-bot/internal/domain"
	"history-digest-bot/internal/infra/metrics"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Client ищет короткие ролики через YouTube Data API v3.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewClient создаёт клиента поиска видео.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}, baseURL: baseURL, apiKey: apiKey}
}

var _ domain.VideoSearcher = (*Client)(nil)

// Search перебирает варианты запроса (сначала на иврите, потом исходный) и
// возвращает первый найденный короткий ролик.
func (c *Client) Search(ctx context.Context, query string) (domain.Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Video{}, domain.ErrNoVideo
	}
	ladder := []string{
		query + " בעברית",
		query + " היסטוריה",
		query,
	}
	for _, candidate := range ladder {
		video, err := c.search(ctx, candidate)
		if err != nil {
			return domain.Video{}, err
		}
		if video.URL != "" {
			return video, nil
		}
	}
	return domain.Video{}, domain.ErrNoVideo
}

// Ping проверяет доступность API. Отсутствие результатов не считается ошибкой.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.search(ctx, "test"); err != nil {
		return err
	}
	return nil
}

func (c *Client) search(ctx context.Context, query string) (domain.Video, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", "5")
	params.Set("order", "relevance")
	params.Set("videoDuration", "short")
	params.Set("q", query)
	params.Set("key", c.apiKey)

	endpoint := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Video{}, fmt.Errorf("youtube: build request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveNetworkRequest("youtube", "search", "search.list", start, err)
		return domain.Video{}, fmt.Errorf("youtube: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveNetworkRequest("youtube", "search", "search.list", start, err)
		return domain.Video{}, fmt.Errorf("youtube: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		err = fmt.Errorf("youtube: unexpected status %d", resp.StatusCode)
		metrics.ObserveNetworkRequest("youtube", "search", "search.list", start, err)
		return domain.Video{}, err
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.ObserveNetworkRequest("youtube", "search", "search.list", start, err)
		return domain.Video{}, fmt.Errorf("youtube: decode response: %w", err)
	}
	metrics.ObserveNetworkRequest("youtube", "search", "search.list", start, nil)

	for _, item := range payload.Items {
		if item.ID.VideoID == "" {
			continue
		}
		return domain.Video{
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			URL:         "https://www.youtube.com/watch?v=" + item.ID.VideoID,
		}, nil
	}
	return domain.Video{}, nil
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"snippet"`
	} `json:"items"`
}

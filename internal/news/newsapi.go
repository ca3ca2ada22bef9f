package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"aipost/internal/config"
	"aipost/internal/logger"
	"aipost/internal/models"
	"aipost/pkg/utils"
)

// ErrNewsAPI is returned when NewsAPI answers with status "error".
var ErrNewsAPI = errors.New("newsapi error")

const maxNewsAPIBytes = 4 << 20

// NewsAPIClient queries the NewsAPI "everything" endpoint.
type NewsAPIClient struct {
	httpClient *http.Client
	headers    *utils.HTTPHelper
	logger     *logger.Logger
	cfg        config.NewsAPIConfig
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// NewNewsAPIClient creates a NewsAPI client. An empty cfg.APIKey disables it.
func NewNewsAPIClient(cfg config.NewsAPIConfig, timeout time.Duration, log *logger.Logger) *NewsAPIClient {
	return &NewsAPIClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: utils.NewHTTPHelper(""),
		logger:  log,
	}
}

// Name returns the source name used in logs.
func (c *NewsAPIClient) Name() string {
	return "NewsAPI"
}

// Enabled reports whether an API key is configured.
func (c *NewsAPIClient) Enabled() bool {
	return c.cfg.APIKey != ""
}

// TopArticle returns the most recent matching article, or nil when the key
// is absent or the result set is empty.
func (c *NewsAPIClient) TopArticle(ctx context.Context) (*models.Article, error) {
	if !c.Enabled() {
		c.logger.Debug("NewsAPI key not set, skipping")
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", c.cfg.Query)
	params.Set("language", c.cfg.Language)
	params.Set("pageSize", strconv.Itoa(c.cfg.PageSize))
	params.Set("sortBy", c.cfg.SortBy)
	params.Set("apiKey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = c.headers.BuildHeaders(nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := utils.ReadBody(resp, maxNewsAPIBytes)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &utils.StatusError{Op: "NewsAPI request failed", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result newsAPIResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse NewsAPI response: %w", err)
	}

	if result.Status == "error" {
		return nil, fmt.Errorf("%w: %s: %s", ErrNewsAPI, result.Code, result.Message)
	}

	c.logger.Debug("NewsAPI returned articles", "count", len(result.Articles))

	if len(result.Articles) == 0 {
		return nil, nil
	}

	a := result.Articles[0]

	return &models.Article{
		Title:       a.Title,
		Description: a.Description,
		URL:         a.URL,
		SourceName:  a.Source.Name,
		PublishedAt: a.PublishedAt,
	}, nil
}

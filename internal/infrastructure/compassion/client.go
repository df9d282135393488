package compassion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	appsponsorship "github.com/sponsorship/backend/internal/application/sponsorship"
	"github.com/sponsorship/backend/internal/infrastructure/config"
)

// maxResponseSize is the maximum allowed response size from the provider API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client calls the Compassion International child information API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new provider API client
func NewClient(cfg config.CompassionConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Fetch retrieves the case study document for a child code. A missing or
// unavailable document is not an error: the provider answers with a non-2xx
// status and the caller gets (nil, nil).
func (c *Client) Fetch(ctx context.Context, childCode string) (*appsponsorship.CaseStudyDocument, error) {
	endpoint := fmt.Sprintf("%s/ci/v1/child/%s/casestudy?api_key=%s",
		c.baseURL, url.PathEscape(childCode), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build case study request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("case study request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("provider has no case study for child",
			zap.String("child_code", childCode),
			zap.Int("status", resp.StatusCode),
		)
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read case study response: %w", err)
	}

	var doc appsponsorship.CaseStudyDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse case study response: %w", err)
	}

	c.logger.Debug("case study fetched from provider",
		zap.String("child_code", childCode),
		zap.Duration("duration", time.Since(start)),
	)

	return &doc, nil
}

// Ensure Client implements CaseStudyFetcher
var _ appsponsorship.CaseStudyFetcher = (*Client)(nil)

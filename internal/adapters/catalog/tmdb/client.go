// Package tmdb fetches popular titles from a TMDB-compatible HTTP API.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/bnema/watchlist-cli/internal/ports"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w300"

	maxResponseBytes = 1 << 20
	defaultTimeout   = 15 * time.Second
	userAgent        = "wl/popular"
)

type Client struct {
	http    *http.Client
	baseURL string
}

var _ ports.CatalogClient = (*Client)(nil)

func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *Client) FetchPopular(ctx context.Context, apiKey string) ([]domain.CatalogEntry, error) {
	query := url.Values{}
	query.Set("api_key", apiKey)
	query.Set("language", "en-US")
	query.Set("page", "1")

	endpoint := c.baseURL + "/movie/popular?" + query.Encode()
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", userAgent)

	response, err := c.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	return decodePopular(body)
}

// decodePopular tolerates a missing or malformed results field and skips
// entries that do not decode.
func decodePopular(body []byte) ([]domain.CatalogEntry, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	entries := []domain.CatalogEntry{}

	var results []json.RawMessage
	if err := json.Unmarshal(payload["results"], &results); err != nil {
		return entries, nil
	}

	for _, raw := range results {
		var entry domain.CatalogEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		if entry.ID == 0 && entry.Title == "" {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Package websearch queries the Brave Search API. It is the fallback every
// specialist uses when the travel-data tools cannot answer.
package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/soyeahso/wayfarer/internal/version"
)

// DefaultURL is the Brave web-search endpoint.
const DefaultURL = "https://api.search.brave.com/res/v1/web/search"

// ErrNoAPIKey is returned when no subscription token is configured.
var ErrNoAPIKey = errors.New("websearch: BRAVE_API_KEY is not set")

// Result is a single ranked hit.
type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Age         string `json:"age,omitempty"`
}

// Results is a search response.
type Results struct {
	Query string
	Items []Result
}

type braveResponse struct {
	Query struct {
		Original string `json:"original"`
	} `json:"query"`
	Web struct {
		Results []Result `json:"results"`
	} `json:"web"`
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	APIKey     string
	Count      int    // results per query, 1-20
	Country    string // optional two-letter country bias
	HTTPClient *http.Client
}

// Client calls the Brave Search API.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a Client. Zero fields take defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultURL
	}
	if cfg.Count <= 0 || cfg.Count > 20 {
		cfg.Count = 5
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, http: hc}
}

// APIError is a non-200 reply.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("websearch: API error (status %d): %s", e.Status, e.Body)
}

// Search runs a web search for query.
func (c *Client) Search(ctx context.Context, query string) (*Results, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(c.cfg.Count))
	if c.cfg.Country != "" {
		params.Set("country", c.cfg.Country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("websearch: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.cfg.APIKey)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("websearch: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("websearch: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var br braveResponse
	if err := json.Unmarshal(body, &br); err != nil {
		return nil, fmt.Errorf("websearch: parse response: %w", err)
	}

	items := br.Web.Results
	if len(items) > c.cfg.Count {
		items = items[:c.cfg.Count]
	}
	q := br.Query.Original
	if q == "" {
		q = query
	}
	return &Results{Query: q, Items: items}, nil
}

// Format renders results as a numbered plain-text list.
func (r *Results) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Web search results for: %s\n\n", r.Query)
	if len(r.Items) == 0 {
		b.WriteString("No web results found.\n")
		return b.String()
	}
	for i, item := range r.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Title)
		fmt.Fprintf(&b, "   URL: %s\n", item.URL)
		if item.Age != "" {
			fmt.Fprintf(&b, "   Age: %s\n", item.Age)
		}
		fmt.Fprintf(&b, "   %s\n\n", item.Description)
	}
	return b.String()
}

// Package amadeus is a small client for the Amadeus self-service travel APIs:
// flight offers and schedules, airport and city reference data, hotels and
// hotel offers, and tours & activities.
package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/soyeahso/wayfarer/internal/logging"
	"github.com/soyeahso/wayfarer/internal/version"
)

const tokenPath = "/v1/security/oauth2/token"

// Config holds endpoint and credentials.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string

	// HTTPClient is the base transport for both token and API requests.
	HTTPClient *http.Client
}

// Client issues authenticated requests. Bearer tokens are fetched with the
// client-credentials grant and cached until they expire.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logging.Logger
}

// New creates a Client.
func New(cfg Config, log *logging.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     base + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	ctx := context.Background()
	if cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
	}
	hc := cc.Client(ctx)
	if cfg.HTTPClient != nil && cfg.HTTPClient.Timeout > 0 {
		hc.Timeout = cfg.HTTPClient.Timeout
	} else {
		hc.Timeout = 30 * time.Second
	}

	return &Client{baseURL: base, http: hc, log: log.Sub("amadeus")}
}

// APIError is a non-2xx reply from the Amadeus API.
type APIError struct {
	Status int
	Code   int
	Title  string
	Detail string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("Amadeus API error: %d", e.Status)
	switch {
	case e.Title != "" && e.Detail != "":
		msg += " " + e.Title + ": " + e.Detail
	case e.Title != "":
		msg += " " + e.Title
	case e.Detail != "":
		msg += " " + e.Detail
	}
	return msg
}

type errorBody struct {
	Errors []struct {
		Status int    `json:"status"`
		Code   int    `json:"code"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// get performs GET path?params and decodes the "data" member into out.
func get[T any](ctx context.Context, c *Client, path string, params url.Values) (T, error) {
	var zero T

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return zero, fmt.Errorf("amadeus: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.amadeus+json, application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return zero, fmt.Errorf("amadeus: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return zero, fmt.Errorf("amadeus: read %s: %w", path, err)
	}

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("amadeus request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && len(eb.Errors) > 0 {
			apiErr.Code = eb.Errors[0].Code
			apiErr.Title = eb.Errors[0].Title
			apiErr.Detail = eb.Errors[0].Detail
		}
		return zero, apiErr
	}

	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return zero, fmt.Errorf("amadeus: decode %s: %w", path, err)
	}
	return env.Data, nil
}

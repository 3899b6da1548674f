// Package geoip resolves the caller's approximate location from its public IP
// using the ip-api.com JSON endpoint.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultURL is the ip-api endpoint for the requester's own address.
const DefaultURL = "http://ip-api.com/json/"

// Location is the resolved position.
type Location struct {
	City        string  `json:"city"`
	Country     string  `json:"country"` // ISO 3166-1 alpha-2
	CountryName string  `json:"countryName,omitempty"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
}

type apiResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Client calls ip-api.
type Client struct {
	url  string
	http *http.Client
}

// New creates a Client. An empty url means DefaultURL.
func New(url string, hc *http.Client) *Client {
	if url == "" {
		url = DefaultURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{url: url, http: hc}
}

// Locate returns the location of the machine's public IP. The city is
// upper-cased with accents folded so it can be fed straight into keyword
// searches ("Montréal" becomes "MONTREAL").
func (c *Client) Locate(ctx context.Context) (*Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("geoip: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geoip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geoip: failed to get location: %d", resp.StatusCode)
	}

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("geoip: decode: %w", err)
	}
	if ar.Status != "" && ar.Status != "success" {
		return nil, fmt.Errorf("geoip: lookup failed: %s", ar.Message)
	}

	return &Location{
		City:        NormalizeCity(ar.City),
		Country:     ar.CountryCode,
		CountryName: ar.Country,
		Latitude:    ar.Lat,
		Longitude:   ar.Lon,
	}, nil
}

// NormalizeCity strips diacritics and upper-cases a city name.
func NormalizeCity(city string) string {
	// Chained transformers carry state, so each call builds its own.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(fold, city)
	if err != nil {
		out = city
	}
	return strings.ToUpper(strings.TrimSpace(out))
}

// Package amadeustest provides an in-process fake of the Amadeus API for tests.
package amadeustest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/soyeahso/wayfarer/internal/amadeus"
	"github.com/soyeahso/wayfarer/internal/logging"
)

const (
	ClientID     = "test-client"
	ClientSecret = "test-secret"
	Token        = "test-token"
)

// Server serves the token endpoint plus whatever routes a test registers.
// Unregistered paths answer 404 in the Amadeus error format.
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	routes  map[string]http.HandlerFunc
	calls   map[string][]url.Values
	tokens  int
	authErr int
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		routes: make(map[string]http.HandlerFunc),
		calls:  make(map[string][]url.Values),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/v1/security/oauth2/token" {
		s.token(w, r)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+Token {
		s.mu.Lock()
		s.authErr++
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Invalid access token")
		return
	}

	s.mu.Lock()
	s.calls[r.URL.Path] = append(s.calls[r.URL.Path], r.URL.Query())
	h, ok := s.routes[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}
	h(w, r)
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	if r.PostForm.Get("grant_type") != "client_credentials" ||
		r.PostForm.Get("client_id") != ClientID ||
		r.PostForm.Get("client_secret") != ClientSecret {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"invalid_client","error_description":"Client credentials are invalid"}`)
		return
	}
	s.mu.Lock()
	s.tokens++
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":         "amadeusOAuth2Token",
		"access_token": Token,
		"token_type":   "Bearer",
		"expires_in":   1799,
		"state":        "approved",
	})
}

func writeError(w http.ResponseWriter, status int, title string) {
	w.Header().Set("Content-Type", "application/vnd.amadeus+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"errors": []map[string]any{{"status": status, "code": 38190, "title": title}},
	})
}

// Handle registers a handler for path.
func (s *Server) Handle(path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[path] = h
}

// JSON registers a canned JSON reply for path.
func (s *Server) JSON(path string, status int, body string) {
	s.Handle(path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.amadeus+json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// Data registers a 200 reply wrapping v in {"data": v}.
func (s *Server) Data(path string, v any) {
	body, err := json.Marshal(map[string]any{"data": v})
	if err != nil {
		panic(err)
	}
	s.JSON(path, http.StatusOK, string(body))
}

// Calls returns the query strings seen on path, in order.
func (s *Server) Calls(path string) []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.calls[path]...)
}

// TokenRequests returns how many tokens were issued.
func (s *Server) TokenRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

// Client returns an amadeus.Client wired to this server.
func (s *Server) Client() *amadeus.Client {
	return amadeus.New(amadeus.Config{
		BaseURL:      s.URL,
		ClientID:     ClientID,
		ClientSecret: ClientSecret,
		HTTPClient:   s.Server.Client(),
	}, logging.New(nil, "silent"))
}

package llm

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/soyeahso/wayfarer/internal/config"
	"github.com/soyeahso/wayfarer/internal/logging"
)

// ProviderError is returned when an LLM provider fails.
type ProviderError struct {
	Provider string
	Message  string
	Code     int // HTTP status (401, 429, 500, ...), 0 when unknown
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s: %d %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Registry resolves model ids to the provider that serves them.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]Client // provider name → client
	aliases  map[string]string // model id → provider name
	fallback string            // provider for unlisted models
	log      *logging.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		clients: make(map[string]Client),
		aliases: make(map[string]string),
		log:     log.Sub("llm.registry"),
	}
}

// Register adds a client under the given provider name.
func (r *Registry) Register(name string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	r.log.Debug().Str("provider", name).Msg("registered LLM provider")
}

// Alias maps a model id to a provider.
func (r *Registry) Alias(model, provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[model] = provider
}

// SetFallback sets the provider used for models no provider lists.
func (r *Registry) SetFallback(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = provider
}

// Resolve returns the Client for a model id.
// Resolution order: exact provider name, model alias, fallback.
func (r *Registry) Resolve(model string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.clients[model]; ok {
		return c, nil
	}
	if provider, ok := r.aliases[model]; ok {
		if c, ok := r.clients[provider]; ok {
			return c, nil
		}
	}
	if r.fallback != "" {
		if c, ok := r.clients[r.fallback]; ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no LLM provider for model %q", model)
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for n := range r.clients {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// NewRegistryFromConfig registers one OpenAI-compatible client per
// configured provider and aliases every model it lists.
func NewRegistryFromConfig(cfg config.ModelsConfig, log *logging.Logger) *Registry {
	reg := NewRegistry(log)

	for name, p := range cfg.Providers {
		if p.APIKey == "" {
			reg.log.Warn().Str("provider", name).Msg("provider has no API key; requests will likely be rejected")
		}
		opts := []OpenAIOption{WithBaseURL(p.BaseURL)}
		if p.TimeoutSeconds > 0 {
			opts = append(opts, WithTimeout(time.Duration(p.TimeoutSeconds)*time.Second))
		}
		reg.Register(name, NewOpenAIClient(name, p.APIKey, opts...))
		for _, m := range p.Models {
			reg.Alias(m, name)
		}
	}
	if cfg.Default != "" {
		reg.SetFallback(cfg.Default)
	}
	return reg
}

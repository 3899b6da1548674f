package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/soyeahso/wayfarer/internal/llm"
	"github.com/soyeahso/wayfarer/internal/logging"
)

// Completer is the slice of llm.Client the agents depend on.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// FailoverClient resolves models through a registry and walks the
// fallback list when the provider fails with a retryable error.
type FailoverClient struct {
	registry  *llm.Registry
	primary   string
	fallbacks []string
	log       *logging.Logger
}

// NewFailoverClient creates a client that tries primary first, then each
// fallback in order.
func NewFailoverClient(registry *llm.Registry, primary string, fallbacks []string, log *logging.Logger) *FailoverClient {
	return &FailoverClient{
		registry:  registry,
		primary:   primary,
		fallbacks: fallbacks,
		log:       log.Sub("failover"),
	}
}

// Model returns the primary model.
func (f *FailoverClient) Model() string { return f.primary }

// Complete sends req to the first model that accepts it. req.Model is
// overwritten per attempt.
func (f *FailoverClient) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	models := append([]string{f.primary}, f.fallbacks...)

	var lastErr error
	for _, model := range models {
		client, err := f.registry.Resolve(model)
		if err != nil {
			f.log.Debug().Str("model", model).Err(err).Msg("no provider for model, skipping")
			lastErr = err
			continue
		}

		req.Model = model
		resp, err := client.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isRetryable(err) {
			return nil, err
		}
		f.log.Warn().Str("model", model).Err(err).Msg("retryable error, trying next model")
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no models configured")
	}
	return nil, lastErr
}

// isRetryable reports whether another model might succeed where this one failed.
func isRetryable(err error) bool {
	var provErr *llm.ProviderError
	if errors.As(err, &provErr) {
		switch provErr.Code {
		case 401, 403, 429, 500, 502, 503, 504, 529:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "capacity") ||
		strings.Contains(msg, "timeout")
}

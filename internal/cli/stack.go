package cli

import (
	"context"
	"fmt"

	"github.com/soyeahso/wayfarer/internal/agent"
	"github.com/soyeahso/wayfarer/internal/amadeus"
	"github.com/soyeahso/wayfarer/internal/config"
	"github.com/soyeahso/wayfarer/internal/geoip"
	"github.com/soyeahso/wayfarer/internal/hooks"
	"github.com/soyeahso/wayfarer/internal/llm"
	"github.com/soyeahso/wayfarer/internal/observe"
	"github.com/soyeahso/wayfarer/internal/store"
	"github.com/soyeahso/wayfarer/internal/travel"
	"github.com/soyeahso/wayfarer/internal/version"
	"github.com/soyeahso/wayfarer/internal/websearch"
)

// stack is the wired runtime shared by the commands that run turns.
type stack struct {
	cfg     config.Config
	runner  *agent.Runner
	store   agent.SessionStore
	hooks   *hooks.Manager
	metrics *observe.Metrics

	closers []func(context.Context) error
}

type stackOptions struct {
	telemetry   bool // install the otel providers and record metrics
	memoryStore bool // ignore session.store and keep threads in memory
}

// loadConfig loads and validates the config file.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}
	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return cfg, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}
	return cfg, nil
}

func buildStack(ctx context.Context, cfg config.Config, opts stackOptions) (*stack, error) {
	s := &stack{cfg: cfg, hooks: hooks.NewManager(log)}
	s.hooks.OnAll("audit", hooks.AuditLog(log.Sub("hooks")))

	if opts.telemetry && cfg.Telemetry.Metrics {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
			ServiceName:    "wayfarer",
			ServiceVersion: version.Version,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing telemetry: %w", err)
		}
		s.closers = append(s.closers, shutdown)
		s.metrics = observe.DefaultMetrics()
	}

	deps := travel.Deps{
		Amadeus: amadeus.New(amadeus.Config{
			BaseURL:      cfg.Amadeus.BaseURL,
			ClientID:     cfg.Amadeus.ClientID,
			ClientSecret: cfg.Amadeus.ClientSecret,
		}, log),
		Geo: geoip.New(cfg.Geo.URL, nil),
	}
	if cfg.Search.APIKey != "" {
		deps.Search = websearch.New(websearch.Config{
			BaseURL: cfg.Search.BaseURL,
			APIKey:  cfg.Search.APIKey,
			Count:   cfg.Search.Count,
			Country: cfg.Search.Country,
		})
	} else {
		log.Warn().Msg("search.apiKey is empty; web_search is disabled")
	}
	tools, err := travel.Registries(deps)
	if err != nil {
		s.Close(ctx)
		return nil, err
	}

	if opts.memoryStore || cfg.Session.Store != "sqlite" {
		s.store = agent.NewMemorySessionStore()
		log.Debug().Msg("using in-memory session store")
	} else {
		ts, db, err := openThreadStore(ctx)
		if err != nil {
			s.Close(ctx)
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) error { return db.Close() })
		s.store = ts
		log.Debug().Str("path", db.Path()).Msg("using SQLite session store")
	}

	s.runner, err = agent.Build(agent.BuildOptions{
		Config:   &s.cfg,
		Registry: llm.NewRegistryFromConfig(cfg.Models, log),
		Tools:    tools,
		Store:    s.store,
		Hooks:    s.hooks,
		Metrics:  s.metrics,
		Log:      log,
	})
	if err != nil {
		s.Close(ctx)
		return nil, err
	}
	return s, nil
}

// Close releases resources in reverse order of acquisition.
func (s *stack) Close(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.Warn().Err(err).Msg("closing stack")
		}
	}
	s.closers = nil
}

// openThreadStore opens the SQLite thread database under the data dir.
func openThreadStore(ctx context.Context) (*store.ThreadStore, *store.DB, error) {
	db, err := store.Open(ctx, paths.Threads, log)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return store.NewThreadStore(db), db, nil
}

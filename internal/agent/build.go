package agent

import (
	"fmt"
	"time"

	"github.com/soyeahso/wayfarer/internal/config"
	"github.com/soyeahso/wayfarer/internal/domain"
	"github.com/soyeahso/wayfarer/internal/hooks"
	"github.com/soyeahso/wayfarer/internal/llm"
	"github.com/soyeahso/wayfarer/internal/logging"
	"github.com/soyeahso/wayfarer/internal/observe"
)

// BuildOptions carries everything Build needs to assemble a Runner.
type BuildOptions struct {
	Config   *config.Config
	Registry *llm.Registry
	Tools    map[domain.Label]*ToolRegistry // per specialist
	Store    SessionStore
	Hooks    *hooks.Manager
	Metrics  *observe.Metrics
	Log      *logging.Logger
}

// Build wires the three specialists, the supervisor and the team from
// configuration.
func Build(opts BuildOptions) (*Runner, error) {
	cfg := opts.Config
	client := func(name string) (*FailoverClient, config.ResolvedAgent) {
		ra := cfg.Agent(name)
		if ra.Model == "" {
			ra.Model = config.DefaultModel
		}
		return NewFailoverClient(opts.Registry, ra.Model, ra.Fallbacks, opts.Log), ra
	}

	var specs []*Specialist
	for _, id := range []domain.AgentID{domain.AgentFlight, domain.AgentHotel, domain.AgentDestination} {
		fc, ra := client(string(id))
		label := id.Label()
		specs = append(specs, NewSpecialist(SpecialistConfig{
			Label:         label,
			Model:         ra.Model,
			Prompt:        SpecialistPrompt(label),
			Tools:         opts.Tools[label],
			MaxAttempts:   cfg.Agents.MaxAttempts,
			MaxToolRounds: cfg.Agents.MaxToolRounds,
			MaxTokens:     ra.MaxTokens,
			Temperature:   ra.Temperature,
			ToolTimeout:   time.Duration(cfg.Tools.TimeoutSeconds) * time.Second,
		}, fc, opts.Metrics, opts.Log))
	}

	fc, ra := client("supervisor")
	sup, err := NewSupervisor(SupervisorConfig{
		Model:       ra.Model,
		MaxTokens:   ra.MaxTokens,
		Temperature: ra.Temperature,
	}, fc, opts.Metrics, opts.Log)
	if err != nil {
		return nil, fmt.Errorf("building supervisor: %w", err)
	}

	return NewRunner(RunnerDeps{
		Store:       opts.Store,
		Specialists: specs,
		Team:        NewTeam(sup, specs, cfg.Team.MaxHops, opts.Metrics, opts.Log),
		Hooks:       opts.Hooks,
		Metrics:     opts.Metrics,
		Log:         opts.Log,
	}), nil
}

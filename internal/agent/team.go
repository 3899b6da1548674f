package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/soyeahso/wayfarer/internal/domain"
	"github.com/soyeahso/wayfarer/internal/logging"
	"github.com/soyeahso/wayfarer/internal/observe"
)

// DefaultMaxHops bounds specialist runs in one team turn.
const DefaultMaxHops = 10

// CapabilityReply answers a team turn in which no specialist ran and the
// supervisor gave no reasoning.
const CapabilityReply = "I can help with flights, hotels and things to do at your destination. What would you like to plan?"

// TeamResult is the outcome of one team turn.
type TeamResult struct {
	Response      string
	Contributions []*Contribution
	Routing       domain.Routing
	LastAgent     domain.Label // last specialist that contributed, or ""
	Hops          int
	Warnings      []string
}

// Team routes a turn between the supervisor and the specialists until
// the supervisor finishes or the hop limit is hit.
type Team struct {
	supervisor  *Supervisor
	specialists map[domain.Label]*Specialist
	maxHops     int
	metrics     *observe.Metrics
	log         *logging.Logger
}

// NewTeam wires a supervisor to its specialists. Each specialist returns
// control to the supervisor when it is done.
func NewTeam(sup *Supervisor, specialists []*Specialist, maxHops int, metrics *observe.Metrics, log *logging.Logger) *Team {
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}
	edges := make(map[domain.Label]*Specialist, len(specialists))
	for _, s := range specialists {
		edges[s.Label()] = s
	}
	return &Team{
		supervisor:  sup,
		specialists: edges,
		maxHops:     maxHops,
		metrics:     metrics,
		log:         log.Sub("team"),
	}
}

// Supervisor returns the team's supervisor.
func (t *Team) Supervisor() *Supervisor { return t.supervisor }

// Run executes one team turn over history. Specialist answers are added
// to a working copy of history so later hops can see them.
func (t *Team) Run(ctx context.Context, history []domain.Message, routing domain.Routing, onEvent EventFunc) (*TeamResult, error) {
	ctx, span := observe.StartSpan(ctx, "team.turn")
	defer span.End()

	working := append([]domain.Message(nil), history...)
	res := &TeamResult{}

	for {
		dec, next, err := t.supervisor.Decide(ctx, working, routing)
		routing = next
		res.Hops++

		var spec *Specialist
		if err == nil && dec.Next != domain.LabelFinish {
			var ok bool
			if spec, ok = t.specialists[dec.Next]; !ok {
				err = &RoutingError{Raw: string(dec.Next), Reason: fmt.Sprintf("no specialist wired for %q", dec.Next)}
				routing.Next = domain.LabelFinish
			}
		}
		if err == nil {
			onEvent.emit(Event{Type: EventRoute, Agent: string(dec.Next), Reasoning: dec.Reasoning, Hop: res.Hops})
		}

		var rerr *RoutingError
		if errors.As(err, &rerr) {
			onEvent.emit(Event{Type: EventRoute, Agent: string(domain.LabelFinish), Hop: res.Hops, Error: rerr.Error()})
			if len(res.Contributions) == 0 {
				return nil, err
			}
			res.Warnings = append(res.Warnings, rerr.Error())
			break
		}
		if err != nil {
			return nil, err
		}
		if dec.Next == domain.LabelFinish {
			break
		}

		if len(res.Contributions) >= t.maxHops {
			t.log.Warn().Int("maxHops", t.maxHops).Str("next", string(dec.Next)).Msg("hop limit reached, forcing FINISH")
			if t.metrics != nil {
				t.metrics.HopLimitHits.Add(ctx, 1)
			}
			res.Warnings = append(res.Warnings, fmt.Sprintf("%v after %d specialist runs", ErrHopLimit, t.maxHops))
			routing.Next = domain.LabelFinish
			break
		}

		c, err := spec.Run(ctx, working, onEvent)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dec.Next, err)
		}
		working = append(working, c.Message)
		res.Contributions = append(res.Contributions, c)
		res.Warnings = append(res.Warnings, c.Warnings...)
		res.LastAgent = dec.Next
	}

	res.Routing = routing
	res.Response = t.compose(res, routing)
	return res, nil
}

func (t *Team) compose(res *TeamResult, routing domain.Routing) string {
	if len(res.Contributions) == 0 {
		if r := strings.TrimSpace(routing.Reasoning); r != "" {
			return r
		}
		return CapabilityReply
	}
	parts := make([]string, 0, len(res.Contributions))
	for _, c := range res.Contributions {
		parts = append(parts, c.Message.Content)
	}
	return strings.Join(parts, "\n\n")
}

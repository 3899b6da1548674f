package travel

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/soyeahso/wayfarer/internal/agent"
	"github.com/soyeahso/wayfarer/internal/amadeus"
	"github.com/soyeahso/wayfarer/internal/domain"
	"github.com/soyeahso/wayfarer/internal/geoip"
	"github.com/soyeahso/wayfarer/internal/websearch"
)

// Deps are the backends the tools call. Search and Geo are optional.
type Deps struct {
	Amadeus *amadeus.Client
	Search  *websearch.Client
	Geo     *geoip.Client
}

// WebSearch returns the shared web_search fallback tool.
func WebSearch(s *websearch.Client) agent.Tool {
	return newTool("web_search",
		"Search the web for up-to-date travel information the other tools cannot provide.",
		object(map[string]*jsonschema.Schema{
			"query": str("The search query."),
		}, "query"),
		func(ctx context.Context, a struct {
			Query string `json:"query"`
		}) (string, error) {
			res, err := s.Search(ctx, a.Query)
			if err != nil {
				return "", err
			}
			return res.Format(), nil
		})
}

// Registries builds one tool registry per specialist. web_search is bound
// to all three when a search client is configured.
func Registries(d Deps) (map[domain.Label]*agent.ToolRegistry, error) {
	sets := map[domain.Label][]agent.Tool{
		domain.LabelFlight:      FlightTools(d.Amadeus),
		domain.LabelHotel:       HotelTools(d.Amadeus),
		domain.LabelDestination: DestinationTools(d.Amadeus, d.Geo),
	}

	out := make(map[domain.Label]*agent.ToolRegistry, len(sets))
	for label, tools := range sets {
		if d.Search != nil {
			tools = append(tools, WebSearch(d.Search))
		}
		reg := agent.NewToolRegistry()
		for _, t := range tools {
			if err := reg.Register(t); err != nil {
				return nil, fmt.Errorf("%s tools: %w", label, err)
			}
		}
		out[label] = reg
	}
	return out, nil
}

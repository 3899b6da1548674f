package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/wayfarer/internal/domain"
	"github.com/soyeahso/wayfarer/internal/llm"
)

func TestSupervisorDecide(t *testing.T) {
	mock, rec := scripted(routeReply(domain.LabelHotel, "user asks for hotels"))
	sup := newTestSupervisor(t, mock)

	history := []domain.Message{
		domain.UserMessage("earlier question"),
		domain.AssistantMessage("flight_agent", "earlier answer"),
		domain.UserMessage("Find hotels in Rome"),
	}
	dec, routing, err := sup.Decide(context.Background(), history, domain.Routing{})
	require.NoError(t, err)
	assert.Equal(t, domain.LabelHotel, dec.Next)
	assert.Equal(t, "user asks for hotels", dec.Reasoning)
	assert.Equal(t, domain.LabelHotel, routing.Next)
	assert.Equal(t, "Find hotels in Rome", routing.PendingQuery)

	req := rec.Requests()[0]
	assert.Len(t, req.Messages, 3, "supervisor sees the full history")
	require.NotNil(t, req.ResponseSchema)
	props := req.ResponseSchema.Schema["properties"].(map[string]any)
	next := props["next"].(map[string]any)
	assert.Equal(t, []any{"flight_agent", "hotel_agent", "destination_agent", "FINISH"}, next["enum"])
	assert.Equal(t, false, req.ResponseSchema.Schema["additionalProperties"])
	assert.Empty(t, req.Tools)
}

func TestSupervisorKeepsTrackedPendingQuery(t *testing.T) {
	mock, _ := scripted(routeReply(domain.LabelFinish, "done"))
	sup := newTestSupervisor(t, mock)

	_, routing, err := sup.Decide(context.Background(),
		[]domain.Message{domain.UserMessage("newest")},
		domain.Routing{PendingQuery: "tracked"})
	require.NoError(t, err)
	assert.Equal(t, "tracked", routing.PendingQuery)
}

func TestSupervisorInvalidOutput(t *testing.T) {
	cases := map[string]string{
		"unknown label":   `{"next":"car_rental_agent","reasoning":"cars"}`,
		"not json":        `route to hotels`,
		"missing next":    `{"reasoning":"hmm"}`,
		"empty":           ``,
		"wrong type":      `{"next":3,"reasoning":"x"}`,
		"extra property":  `{"next":"FINISH","reasoning":"x","mood":"happy"}`,
		"json array":      `["FINISH"]`,
		"lowercase label": `{"next":"finish","reasoning":"x"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			mock, _ := scripted(&llm.CompletionResponse{Content: raw})
			sup := newTestSupervisor(t, mock)

			dec, routing, err := sup.Decide(context.Background(), []domain.Message{domain.UserMessage("q")}, domain.Routing{})
			var rerr *RoutingError
			require.True(t, errors.As(err, &rerr), "got %v", err)
			assert.Equal(t, raw, rerr.Raw)
			assert.Equal(t, domain.LabelFinish, dec.Next)
			assert.Equal(t, domain.LabelFinish, routing.Next)
		})
	}
}

func TestSupervisorAcceptsFencedJSON(t *testing.T) {
	mock, _ := scripted(&llm.CompletionResponse{Content: "```json\n{\"next\":\"flight_agent\",\"reasoning\":\"flights\"}\n```"})
	sup := newTestSupervisor(t, mock)

	dec, _, err := sup.Decide(context.Background(), []domain.Message{domain.UserMessage("q")}, domain.Routing{})
	require.NoError(t, err)
	assert.Equal(t, domain.LabelFlight, dec.Next)
}

func TestSupervisorTransportError(t *testing.T) {
	boom := &llm.ProviderError{Provider: "mock", Code: 503, Message: "unavailable"}
	mock := &llm.MockClient{CompleteFunc: func(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return nil, boom
	}}
	sup := newTestSupervisor(t, mock)

	_, _, err := sup.Decide(context.Background(), nil, domain.Routing{})
	assert.ErrorIs(t, err, boom)
	var rerr *RoutingError
	assert.False(t, errors.As(err, &rerr))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripFences("  {\"a\":1}  "))
}

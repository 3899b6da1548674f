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

func TestSpecialistAnswersWithoutTools(t *testing.T) {
	mock, rec := scripted(textReply("Which city are you flying from?"))
	spec := newTestSpecialist(domain.LabelFlight, mock, registry(t, echoTool("search_flight")))

	var c collector
	got, err := spec.Run(context.Background(), []domain.Message{domain.UserMessage("book me a flight")}, c.fn())
	require.NoError(t, err)
	assert.Equal(t, "Which city are you flying from?", got.Message.Content)
	assert.Equal(t, "flight_agent", got.Message.Name)
	assert.Zero(t, got.Rounds)
	assert.Equal(t, []EventType{EventContribution}, c.types())

	req := rec.Requests()[0]
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "search_flight", req.Tools[0].Name)
	assert.Contains(t, req.System, "search_flight")
}

func TestSpecialistToolLoop(t *testing.T) {
	var seen []map[string]any
	mock, rec := scripted(
		callReply(call("c1", "search_hotels", `{"city_code":"ROM"}`)),
		textReply("Hotel Artemide is available."),
	)
	spec := newTestSpecialist(domain.LabelHotel, mock, registry(t, hotelSearchTool(&seen)))

	history := []domain.Message{domain.UserMessage("Find hotels in Rome from July 10 to July 15")}
	var c collector
	got, err := spec.Run(context.Background(), history, c.fn())
	require.NoError(t, err)

	assert.Equal(t, "Hotel Artemide is available.", got.Message.Content)
	assert.Equal(t, "hotel_agent", got.Message.Name)
	assert.Empty(t, got.Message.ToolCalls)
	assert.Equal(t, 1, got.Rounds)
	assert.Equal(t, 1, got.ToolCalls)

	require.Len(t, seen, 1)
	assert.Equal(t, "ROM", seen[0]["city_code"])
	assert.Equal(t, "5", seen[0]["radius"])

	reqs := rec.Requests()
	require.Len(t, reqs, 2)
	second := reqs[1].Messages
	require.Len(t, second, 3)
	assert.Equal(t, domain.RoleAssistant, second[1].Role)
	assert.Len(t, second[1].ToolCalls, 1)
	assert.Equal(t, domain.RoleTool, second[2].Role)
	assert.Equal(t, "c1", second[2].ToolCallID)

	assert.Len(t, history, 1)
	assert.Equal(t, []EventType{EventToolStart, EventToolResult, EventContribution}, c.types())
}

func TestSpecialistSurvivesBadToolCall(t *testing.T) {
	var seen []map[string]any
	mock, rec := scripted(
		callReply(call("c1", "search_hotels", `{"radius":"5"}`)),
		callReply(call("c2", "search_hotels", `{"city_code":"ROM"}`)),
		textReply("Found one."),
	)
	spec := newTestSpecialist(domain.LabelHotel, mock, registry(t, hotelSearchTool(&seen)))

	got, err := spec.Run(context.Background(), []domain.Message{domain.UserMessage("hotels please")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Found one.", got.Message.Content)
	assert.Len(t, seen, 1)

	errMsg := rec.Requests()[1].Messages[2]
	assert.Equal(t, "c1", errMsg.ToolCallID)
	assert.Contains(t, errMsg.Content, "Please fix your mistakes.")
}

func TestSpecialistEmptyResponseFallsBack(t *testing.T) {
	mock, _ := scripted(textReply(""))
	spec := newTestSpecialist(domain.LabelDestination, mock, nil)

	got, err := spec.Run(context.Background(), []domain.Message{domain.UserMessage("what to do?")}, nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, got.Message.Content)
	assert.Equal(t, "destination_agent", got.Message.Name)
	require.Len(t, got.Warnings, 1)
}

func TestSpecialistToolRoundLimit(t *testing.T) {
	loop := callReply(call("c", "echo", `{}`))
	final := textReply("giving up on tools")
	replies := make([]*llm.CompletionResponse, 0, 4)
	replies = append(replies, loop, loop, final)
	mock, rec := scripted(replies...)

	spec := NewSpecialist(SpecialistConfig{
		Label:         domain.LabelFlight,
		Tools:         registry(t, echoTool("echo")),
		MaxToolRounds: 2,
	}, mock, nil, silentLog())

	got, err := spec.Run(context.Background(), []domain.Message{domain.UserMessage("x")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "giving up on tools", got.Message.Content)
	assert.Equal(t, 2, got.Rounds)

	reqs := rec.Requests()
	require.Len(t, reqs, 3)
	assert.NotEmpty(t, reqs[1].Tools)
	assert.Empty(t, reqs[2].Tools, "last completion is requested without tools")
	assert.Contains(t, reqs[1].System, "- echo:")
	assert.NotContains(t, reqs[2].System, "- echo:")
	assert.Contains(t, reqs[2].System, FinalAnswerNote)
}

func TestSpecialistTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	mock := &llm.MockClient{CompleteFunc: func(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return nil, boom
	}}
	spec := newTestSpecialist(domain.LabelFlight, mock, nil)

	_, err := spec.Run(context.Background(), []domain.Message{domain.UserMessage("x")}, nil)
	assert.ErrorIs(t, err, boom)
}

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/wayfarer/internal/domain"
	"github.com/soyeahso/wayfarer/internal/hooks"
	"github.com/soyeahso/wayfarer/internal/llm"
)

type runnerFixture struct {
	runner *Runner
	store  *MemorySessionStore
	hooks  *hooks.Manager

	mu    sync.Mutex
	tools []string // tool names in execution order
	args  map[string]map[string]any
}

func (f *runnerFixture) record(name string, args json.RawMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var m map[string]any
	_ = json.Unmarshal(args, &m)
	f.tools = append(f.tools, name)
	f.args[name] = m
}

func (f *runnerFixture) tool(name, out string, schema *jsonschema.Schema) Tool {
	if schema == nil {
		schema = &jsonschema.Schema{Type: "object"}
	}
	return &funcTool{
		name:   name,
		schema: schema,
		fn: func(_ context.Context, args json.RawMessage) (string, error) {
			f.record(name, args)
			return out, nil
		},
	}
}

// newRunnerFixture wires three specialists and a team, each backed by its
// own scripted client.
func newRunnerFixture(t *testing.T, sup, flight, hotel, dest Completer) *runnerFixture {
	t.Helper()
	f := &runnerFixture{
		store: NewMemorySessionStore(),
		hooks: hooks.NewManager(silentLog()),
		args:  map[string]map[string]any{},
	}

	hotelSchema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"city_code": {Type: "string"},
			"radius":    {Types: []string{"string", "integer"}, Default: json.RawMessage(`"5"`)},
		},
		Required: []string{"city_code"},
	}
	specs := []*Specialist{
		newTestSpecialist(domain.LabelFlight, flight, registry(t,
			f.tool("search_flight", "Flight 1:\n• Flight Number(s): AF1204", nil))),
		newTestSpecialist(domain.LabelHotel, hotel, registry(t,
			f.tool("search_hotels", `[{"name":"Hotel Artemide","hotelId":"RMART001"}]`, hotelSchema))),
		newTestSpecialist(domain.LabelDestination, dest, registry(t,
			f.tool("get_user_location", `{"city":"ALGIERS","country":"DZ"}`, nil),
			f.tool("get_tours_and_activities", `[{"name":"Casbah walking tour"}]`, nil))),
	}
	var supervisor *Supervisor
	if sup != nil {
		supervisor = newTestSupervisor(t, sup)
	}
	var team *Team
	if supervisor != nil {
		team = NewTeam(supervisor, specs, 0, nil, silentLog())
	}
	f.runner = NewRunner(RunnerDeps{
		Store:       f.store,
		Specialists: specs,
		Team:        team,
		Hooks:       f.hooks,
		Log:         silentLog(),
	})
	return f
}

// --- End-to-end scenarios ---

func TestRunnerTeamHotelsThenFlights(t *testing.T) {
	sup, _ := scripted(
		routeReply(domain.LabelHotel, "hotel request"),
		routeReply(domain.LabelFinish, "hotels answered"),
		routeReply(domain.LabelFlight, "flight request"),
		routeReply(domain.LabelFinish, "flights answered"),
	)
	hotel, _ := scripted(
		callReply(call("h1", "search_hotels", `{"city_code":"ROM"}`)),
		textReply("In Rome, Hotel Artemide is available July 10 to July 15."),
	)
	flight, flightRec := scripted(
		callReply(call("f1", "search_flight", `{"originLocationCode":"PAR","destinationLocationCode":"ROM"}`)),
		textReply("Air France AF1204 leaves Paris for Rome at 09:05."),
	)
	f := newRunnerFixture(t, sup, flight, hotel, nil)
	ctx := context.Background()

	first, err := f.runner.Run(ctx, domain.AgentTeam, Request{Query: "Find hotels in Rome from July 10 to July 15"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, first.Response)
	assert.Equal(t, "hotel", first.AgentID)
	assert.NotEmpty(t, first.ThreadID)
	assert.Equal(t, 2, first.MessagesCount)
	assert.Equal(t, time.UTC, first.Timestamp.Location())
	assert.Equal(t, "ROM", f.args["search_hotels"]["city_code"])
	assert.Equal(t, "5", f.args["search_hotels"]["radius"])

	second, err := f.runner.Run(ctx, domain.AgentTeam, Request{Query: "and what about flights from Paris", ThreadID: first.ThreadID}, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ThreadID, second.ThreadID)
	assert.Equal(t, "flight", second.AgentID)
	assert.Equal(t, 4, second.MessagesCount)

	// The flight specialist sees the earlier turn.
	firstReq := flightRec.Requests()[0]
	require.Len(t, firstReq.Messages, 3)
	assert.Equal(t, "hotel_agent", firstReq.Messages[1].Name)

	th, err := f.store.Get(ctx, first.ThreadID)
	require.NoError(t, err)
	require.Len(t, th.Messages, 4)
	assert.Equal(t, domain.RoleUser, th.Messages[2].Role)
	assert.Equal(t, "flight_agent", th.Messages[3].Name)
	assert.Equal(t, domain.LabelFinish, th.Routing.Next)
	assert.Equal(t, "and what about flights from Paris", th.Routing.PendingQuery)
}

func TestRunnerDestinationLocatesUserFirst(t *testing.T) {
	dest, _ := scripted(
		callReply(call("d1", "get_user_location", `{}`)),
		callReply(call("d2", "get_tours_and_activities", `{"latitude":36.75,"longitude":3.05}`)),
		textReply("Near Algiers you can take a Casbah walking tour."),
	)
	f := newRunnerFixture(t, nil, nil, nil, dest)

	res, err := f.runner.Run(context.Background(), domain.AgentDestination, Request{Query: "What can I do around here?"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "destination", res.AgentID)
	assert.Equal(t, []string{"get_user_location", "get_tours_and_activities"}, f.tools)
	assert.Contains(t, res.Response, "Casbah")
}

// --- Runner behavior ---

func TestRunnerSpecialistDirect(t *testing.T) {
	flight, _ := scripted(textReply("Which date?"))
	f := newRunnerFixture(t, nil, flight, nil, nil)

	var c collector
	res, err := f.runner.Run(context.Background(), domain.AgentFlight, Request{Query: "  flight to Rome  "}, c.fn())
	require.NoError(t, err)
	assert.Equal(t, "Which date?", res.Response)
	assert.Equal(t, "flight", res.AgentID)
	assert.Equal(t, 2, res.MessagesCount)
	assert.Equal(t, []EventType{EventContribution, EventDone}, c.types())

	th, _ := f.store.Get(context.Background(), res.ThreadID)
	assert.Equal(t, "flight to Rome", th.Messages[0].Content)
	assert.Equal(t, domain.LabelFlight, th.Routing.Next)
}

func TestRunnerCountGrowsByTwo(t *testing.T) {
	hotel, _ := scripted(textReply("ok"))
	f := newRunnerFixture(t, nil, nil, hotel, nil)
	ctx := context.Background()

	res, err := f.runner.Run(ctx, domain.AgentHotel, Request{Query: "q0"}, nil)
	require.NoError(t, err)
	for i := 1; i < 5; i++ {
		next, err := f.runner.Run(ctx, domain.AgentHotel, Request{Query: fmt.Sprintf("q%d", i), ThreadID: res.ThreadID}, nil)
		require.NoError(t, err)
		assert.Equal(t, res.MessagesCount+2, next.MessagesCount)
		res = next
	}
	assert.Equal(t, 10, res.MessagesCount)
}

func TestRunnerUnknownThreadGetsFreshID(t *testing.T) {
	hotel, _ := scripted(textReply("ok"))
	f := newRunnerFixture(t, nil, nil, hotel, nil)

	res, err := f.runner.Run(context.Background(), domain.AgentHotel, Request{Query: "q", ThreadID: "made-up"}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, "made-up", res.ThreadID)
	assert.Equal(t, 2, res.MessagesCount)
}

func TestRunnerFailureAppendsNothing(t *testing.T) {
	calls := 0
	hotel := &llm.MockClient{CompleteFunc: func(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
		calls++
		if calls == 1 {
			return textReply("first answer"), nil
		}
		return nil, &llm.ProviderError{Provider: "mock", Code: 500, Message: "down"}
	}}
	f := newRunnerFixture(t, nil, nil, hotel, nil)
	ctx := context.Background()

	var failed []string
	f.hooks.On(hooks.EventTurnFailed, "test", func(_ context.Context, p hooks.Payload) error {
		failed = append(failed, p.Data["threadId"].(string))
		return nil
	})

	ok, err := f.runner.Run(ctx, domain.AgentHotel, Request{Query: "q1"}, nil)
	require.NoError(t, err)

	_, err = f.runner.Run(ctx, domain.AgentHotel, Request{Query: "q2", ThreadID: ok.ThreadID}, nil)
	var perr *llm.ProviderError
	require.True(t, errors.As(err, &perr))

	th, _ := f.store.Get(ctx, ok.ThreadID)
	assert.Len(t, th.Messages, 2)
	assert.Equal(t, []string{ok.ThreadID}, failed)
}

func TestRunnerTeamRoutingErrorPropagates(t *testing.T) {
	sup, _ := scripted(&llm.CompletionResponse{Content: `{"next":"spa_agent","reasoning":"?"}`})
	f := newRunnerFixture(t, sup, nil, nil, nil)

	_, err := f.runner.Run(context.Background(), domain.AgentTeam, Request{Query: "q"}, nil)
	var rerr *RoutingError
	assert.True(t, errors.As(err, &rerr))

	threads, _ := f.store.List(context.Background())
	require.Len(t, threads, 1)
	assert.Zero(t, threads[0].MessageCount)
}

func TestRunnerTeamFinishWithoutSpecialist(t *testing.T) {
	sup, _ := scripted(routeReply(domain.LabelFinish, "Hello! Ask me about flights, hotels or activities."))
	f := newRunnerFixture(t, sup, nil, nil, nil)

	res, err := f.runner.Run(context.Background(), domain.AgentTeam, Request{Query: "hi"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "team", res.AgentID)
	assert.Equal(t, "Hello! Ask me about flights, hotels or activities.", res.Response)
	assert.Equal(t, 2, res.MessagesCount)
}

func TestRunnerRejectsBadRequests(t *testing.T) {
	f := newRunnerFixture(t, nil, nil, nil, nil)
	ctx := context.Background()

	_, err := f.runner.Run(ctx, domain.AgentHotel, Request{Query: "   "}, nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = f.runner.Run(ctx, domain.AgentTeam, Request{Query: "q"}, nil)
	assert.ErrorIs(t, err, ErrUnknownAgent, "team is not wired in this fixture")

	_, err = f.runner.Run(ctx, domain.AgentID("cars"), Request{Query: "q"}, nil)
	assert.ErrorIs(t, err, ErrUnknownAgent)

	threads, _ := f.store.List(ctx)
	assert.Empty(t, threads)
}

func TestRunnerHooks(t *testing.T) {
	sup, _ := scripted(routeReply(domain.LabelHotel, "hotels"), routeReply(domain.LabelFinish, "done"))
	hotel, _ := scripted(textReply("ok"))
	f := newRunnerFixture(t, sup, nil, hotel, nil)

	var events []string
	for _, ev := range []string{hooks.EventTurnReceived, hooks.EventRoutingDecided, hooks.EventTurnCompleted} {
		f.hooks.On(ev, "test", func(_ context.Context, p hooks.Payload) error {
			events = append(events, p.Event)
			return nil
		})
	}

	_, err := f.runner.Run(context.Background(), domain.AgentTeam, Request{Query: "hotels"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		hooks.EventTurnReceived,
		hooks.EventRoutingDecided,
		hooks.EventRoutingDecided,
		hooks.EventTurnCompleted,
	}, events)
}

func TestRunnerSerializesSameThread(t *testing.T) {
	var inFlight, maxInFlight int
	var mu sync.Mutex
	hotel := &llm.MockClient{CompleteFunc: func(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		return textReply("ok"), nil
	}}
	f := newRunnerFixture(t, nil, nil, hotel, nil)
	ctx := context.Background()

	first, err := f.runner.Run(ctx, domain.AgentHotel, Request{Query: "start"}, nil)
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.runner.Run(ctx, domain.AgentHotel, Request{Query: fmt.Sprintf("q%d", i), ThreadID: first.ThreadID}, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	th, _ := f.store.Get(ctx, first.ThreadID)
	assert.Len(t, th.Messages, 2+2*n, "no lost updates")
	assert.Equal(t, 1, maxInFlight)
}

func TestRunnerDescribe(t *testing.T) {
	sup, _ := scripted()
	f := newRunnerFixture(t, sup, nil, nil, nil)

	info, ok := f.runner.Describe(domain.AgentHotel)
	require.True(t, ok)
	assert.Equal(t, "mock-model", info.Model)
	assert.Equal(t, []string{"search_hotels"}, info.Tools)

	team, ok := f.runner.Describe(domain.AgentTeam)
	require.True(t, ok)
	assert.Equal(t, []string{"search_flight", "search_hotels", "get_user_location", "get_tours_and_activities"}, team.Tools)

	assert.Len(t, f.runner.Agents(), 4)
}

func TestRunnerSweepDuringTurnKeepsThread(t *testing.T) {
	ctx := context.Background()
	ttl := time.Hour
	base := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	clock := base

	var (
		f        *runnerFixture
		turn     int
		idleOnly *Janitor
		locked   *Janitor
		evicted  []string
	)
	hotel := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(ctx context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			turn++
			if turn == 2 {
				// Just past the TTL measured from the first turn.
				ids, err := idleOnly.Sweep(ctx, base.Add(ttl+10*time.Second))
				require.NoError(t, err)
				evicted = append(evicted, ids...)
				// Far past the TTL: only the held turn lock keeps the thread.
				ids, err = locked.Sweep(ctx, clock.Add(3*ttl))
				require.NoError(t, err)
				evicted = append(evicted, ids...)
			}
			return textReply("Hotel Artemide is still available."), nil
		},
	}
	f = newRunnerFixture(t, nil, nil, hotel, nil)
	f.store.now = func() time.Time { return clock }
	idleOnly = &Janitor{Store: f.store, TTL: ttl, Log: silentLog()}
	locked = &Janitor{Store: f.store, TTL: ttl, Locks: f.runner.Locks(), Log: silentLog()}

	first, err := f.runner.Run(ctx, domain.AgentHotel, Request{Query: "Hotels in Rome"}, nil)
	require.NoError(t, err)

	clock = base.Add(ttl - 10*time.Second)
	second, err := f.runner.Run(ctx, domain.AgentHotel, Request{Query: "Any near Termini?", ThreadID: first.ThreadID}, nil)
	require.NoError(t, err)
	assert.Empty(t, evicted)
	assert.Equal(t, first.ThreadID, second.ThreadID)
	assert.Equal(t, 4, second.MessagesCount)

	// Once the turn is over the same sweep evicts the idle thread.
	ids, err := locked.Sweep(ctx, clock.Add(3*ttl))
	require.NoError(t, err)
	assert.Equal(t, []string{first.ThreadID}, ids)
}

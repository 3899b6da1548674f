package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/soyeahso/wayfarer/internal/agent"
	"github.com/soyeahso/wayfarer/internal/domain"
	"github.com/soyeahso/wayfarer/internal/observe"
	"github.com/soyeahso/wayfarer/internal/store"
)

// maxBodyBytes caps a search request body.
const maxBodyBytes = 64 << 10

// agentSegments maps URL path segments to agent ids.
var agentSegments = map[string]domain.AgentID{
	"flights":      domain.AgentFlight,
	"hotels":       domain.AgentHotel,
	"destinations": domain.AgentDestination,
	"team":         domain.AgentTeam,
}

// segmentOrder fixes route registration order.
var segmentOrder = []string{"flights", "hotels", "destinations", "team"}

// registerHTTPRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.serveMetrics {
		mux.Handle("GET /metrics", observe.MetricsHandler())
	}

	// Each agent gets literal routes so unknown segments fall through to 404
	// and the threads routes never overlap a wildcard.
	for _, seg := range segmentOrder {
		id := agentSegments[seg]
		mux.HandleFunc("POST /api/v1/"+seg+"/search", s.handleSearch(id))
		mux.HandleFunc("GET /api/v1/"+seg+"/status", s.handleStatus(id))
	}
	mux.HandleFunc("GET /api/v1/threads", s.handleListThreads)
	mux.HandleFunc("GET /api/v1/threads/{id}", s.handleGetThread)
	mux.HandleFunc("GET /api/v1/ws", s.handleWebSocket)

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Response      string    `json:"response"`
	AgentID       string    `json:"agent_id"`
	ThreadID      string    `json:"thread_id"`
	Timestamp     time.Time `json:"timestamp"`
	MessagesCount int       `json:"messages_count"`
	Warnings      []string  `json:"warnings,omitempty"`
}

func newSearchResponse(res *agent.Result) SearchResponse {
	return SearchResponse{
		Response:      res.Response,
		AgentID:       res.AgentID,
		ThreadID:      res.ThreadID,
		Timestamp:     res.Timestamp,
		MessagesCount: res.MessagesCount,
		Warnings:      res.Warnings,
	}
}

// StatusResponse describes one agent.
type StatusResponse struct {
	AgentID string   `json:"agent_id"`
	Status  string   `json:"status"`
	Model   string   `json:"model"`
	Tools   []string `json:"tools"`
}

func (s *Server) handleSearch(id domain.AgentID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.runner == nil {
			writeError(w, http.StatusServiceUnavailable, "no agents configured")
			return
		}

		var req agent.Request
		body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout())
		defer cancel()

		res, err := s.runner.Run(ctx, id, req, nil)
		if err != nil {
			status := httpStatus(err)
			if status >= http.StatusInternalServerError {
				s.log.Error().Err(err).Str("agent", string(id)).Msg("search failed")
			}
			writeError(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, newSearchResponse(res))
	}
}

// httpStatus maps a turn error to a response code.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, agent.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, agent.ErrUnknownAgent):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleStatus(id domain.AgentID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.runner == nil {
			writeError(w, http.StatusServiceUnavailable, "no agents configured")
			return
		}
		info, ok := s.runner.Describe(id)
		if !ok {
			writeError(w, http.StatusNotFound, "agent not configured: "+string(id))
			return
		}
		writeJSON(w, http.StatusOK, StatusResponse{
			AgentID: string(info.ID),
			Status:  "online",
			Model:   info.Model,
			Tools:   info.Tools,
		})
	}
}

func (s *Server) handleGetThread(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "no agents configured")
		return
	}
	t, err := s.runner.Store().Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, agent.ErrThreadNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// messageSearcher is implemented by stores with full-text search.
type messageSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]store.SearchHit, error)
}

// handleListThreads lists threads, or searches their messages when q is set.
func (s *Server) handleListThreads(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "no agents configured")
		return
	}
	st := s.runner.Store()

	q := r.URL.Query()
	if !q.Has("q") {
		list, err := st.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if list == nil {
			list = []domain.ThreadSummary{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"threads": list})
		return
	}

	searcher, ok := st.(messageSearcher)
	if !ok {
		writeError(w, http.StatusNotImplemented, "message search requires the sqlite session store")
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	hits, err := searcher.Search(r.Context(), q.Get("q"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if hits == nil {
		hits = []store.SearchHit{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

// registerRPCHandlers sets up all WebSocket RPC method handlers.
func (s *Server) registerRPCHandlers() {
	s.Handle("health", s.rpcHealth)
	s.Handle("agents.list", s.rpcAgentsList)
	s.Handle("thread.get", s.rpcThreadGet)
	s.Handle("chat.send", s.rpcChatSend)
}

func (s *Server) rpcHealth(rc *RequestContext) {
	resp := HealthResponse{
		Status:   "ok",
		Version:  s.version,
		Clients:  s.clients.Count(),
		UptimeMs: s.uptime().Milliseconds(),
	}
	if s.runner != nil {
		for _, a := range s.runner.Agents() {
			resp.Agents = append(resp.Agents, string(a.ID))
		}
	}
	rc.Respond(resp)
}

func (s *Server) rpcAgentsList(rc *RequestContext) {
	if s.runner == nil {
		rc.Respond(map[string]any{"agents": []any{}})
		return
	}
	rc.Respond(map[string]any{"agents": s.runner.Agents()})
}

type threadGetParams struct {
	ThreadID string `json:"thread_id"`
}

func (s *Server) rpcThreadGet(rc *RequestContext) {
	if s.runner == nil {
		rc.RespondError("unavailable", "no agents configured")
		return
	}
	var p threadGetParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}
	t, err := s.runner.Store().Get(rc.Ctx, p.ThreadID)
	if errors.Is(err, agent.ErrThreadNotFound) {
		rc.RespondError("not_found", err.Error())
		return
	}
	if err != nil {
		rc.RespondError("internal", err.Error())
		return
	}
	rc.Respond(t)
}

// rpcChatSend runs a turn and streams its progress as chat.event frames
// before the final response.
func (s *Server) rpcChatSend(rc *RequestContext) {
	if s.runner == nil {
		rc.RespondError("unavailable", "no agents configured")
		return
	}

	var p ChatSendParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}
	id := domain.AgentTeam
	if p.Agent != "" {
		id = domain.AgentID(p.Agent)
		if seg, ok := agentSegments[p.Agent]; ok {
			id = seg
		}
	}

	ctx, cancel := context.WithTimeout(rc.Ctx, s.requestTimeout())
	defer cancel()

	onEvent := func(ev agent.Event) {
		err := rc.Client.SendEvent(EventChatEvent, map[string]any{
			"requestId": rc.Frame.ID,
			"event":     ev,
		}, s.eventSeq.Add(1))
		if err != nil {
			s.log.Debug().Err(err).Str("connId", rc.Client.ConnID).Msg("dropping chat event")
		}
	}

	res, err := s.runner.Run(ctx, id, agent.Request{Query: p.Query, ThreadID: p.ThreadID}, onEvent)
	if err != nil {
		rc.RespondErrorShape(rpcError(err))
		return
	}
	rc.Respond(newSearchResponse(res))
}

// rpcError maps a turn error to an RPC error.
func rpcError(err error) ErrorShape {
	switch {
	case errors.Is(err, agent.ErrEmptyQuery):
		return ErrorShape{Code: "invalid_params", Message: err.Error()}
	case errors.Is(err, agent.ErrUnknownAgent):
		return ErrorShape{Code: "not_found", Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorShape{Code: "timeout", Message: err.Error(), Retryable: true}
	default:
		return ErrorShape{Code: "agent_error", Message: err.Error(), Retryable: true}
	}
}

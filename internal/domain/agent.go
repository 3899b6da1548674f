package domain

// AgentID is the public identifier of an agent as reported by the HTTP API.
type AgentID string

const (
	AgentFlight      AgentID = "flight"
	AgentHotel       AgentID = "hotel"
	AgentDestination AgentID = "destination"
	AgentTeam        AgentID = "team"
)

// AgentIDs lists every addressable agent in API order.
var AgentIDs = []AgentID{AgentFlight, AgentHotel, AgentDestination, AgentTeam}

// Valid reports whether id names a known agent.
func (id AgentID) Valid() bool {
	switch id {
	case AgentFlight, AgentHotel, AgentDestination, AgentTeam:
		return true
	}
	return false
}

// Label returns the routing label of a specialist. The team has none.
func (id AgentID) Label() Label {
	switch id {
	case AgentFlight:
		return LabelFlight
	case AgentHotel:
		return LabelHotel
	case AgentDestination:
		return LabelDestination
	}
	return ""
}

// Label is a supervisor routing target.
type Label string

const (
	LabelFlight      Label = "flight_agent"
	LabelHotel       Label = "hotel_agent"
	LabelDestination Label = "destination_agent"
	LabelFinish      Label = "FINISH"
)

// Labels is the closed set of routing targets, in priority order.
var Labels = []Label{LabelFlight, LabelHotel, LabelDestination, LabelFinish}

// Valid reports whether l is one of the four routing targets.
func (l Label) Valid() bool {
	switch l {
	case LabelFlight, LabelHotel, LabelDestination, LabelFinish:
		return true
	}
	return false
}

// AgentID maps a specialist label to its public id. FINISH maps to the team.
func (l Label) AgentID() AgentID {
	switch l {
	case LabelFlight:
		return AgentFlight
	case LabelHotel:
		return AgentHotel
	case LabelDestination:
		return AgentDestination
	}
	return AgentTeam
}

// RoutingDecision is the supervisor's structured output.
type RoutingDecision struct {
	Next      Label  `json:"next"`
	Reasoning string `json:"reasoning"`
}

package haul

type Event struct {
	T       int            `json:"t"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Action is one output token. Moves are one grid unit each.
type Action byte

const (
	ActUp    Action = 'U'
	ActDown  Action = 'D'
	ActLeft  Action = 'L'
	ActRight Action = 'R'
	ActPick  Action = '1'
)

func (a Action) String() string { return string(rune(a)) }
func (a Action) IsMove() bool {
	switch a {
	case ActUp, ActDown, ActLeft, ActRight:
		return true
	}
	return false
}

type Status string

const (
	StatusAllDelivered Status = "ALL_DELIVERED"
	StatusStuck        Status = "STUCK"
)

// Phase is the per-cycle state of the agent.
type Phase int

const (
	PhaseAtOriginEmpty Phase = iota
	PhasePlanning
	PhaseExecuting
	PhaseReturning
)

func (p Phase) String() string {
	switch p {
	case PhaseAtOriginEmpty:
		return "AT_ORIGIN_EMPTY"
	case PhasePlanning:
		return "PLANNING"
	case PhaseExecuting:
		return "EXECUTING"
	case PhaseReturning:
		return "RETURNING"
	}
	return "UNKNOWN"
}

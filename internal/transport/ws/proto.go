package ws

import (
	"encoding/json"

	"boxhaul/internal/haul"
	"boxhaul/internal/report"
)

const (
	TypeSolve = "SOLVE"
	TypeEvent = "EVENT"
	TypeDone  = "DONE"
	TypeError = "ERROR"
)

// SolveMsg asks the server to solve the grid text in Grid.
type SolveMsg struct {
	Type   string `json:"type"`
	Grid   string `json:"grid"`
	Header *bool  `json:"header,omitempty"`
	Size   int    `json:"size,omitempty"`
	Source string `json:"source,omitempty"`
}

type EventMsg struct {
	Type  string     `json:"type"`
	Run   string     `json:"run"`
	Event haul.Event `json:"event"`
}

type DoneMsg struct {
	Type    string        `json:"type"`
	Run     string        `json:"run"`
	Actions string        `json:"actions"`
	Report  report.Report `json:"report"`
	Error   string        `json:"error,omitempty"`
}

type ErrorMsg struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type baseMsg struct {
	Type string `json:"type"`
}

func decodeType(b []byte) (string, error) {
	var m baseMsg
	if err := json.Unmarshal(b, &m); err != nil {
		return "", err
	}
	return m.Type, nil
}

func actionString(actions []haul.Action) string {
	b := make([]byte, len(actions))
	for i, a := range actions {
		b[i] = byte(a)
	}
	return string(b)
}

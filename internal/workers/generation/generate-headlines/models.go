// internal/workers/generation/generate-headlines/models.go
package generateheadlines

import "time"

// State is the worker loop lifecycle state.
type State int32

const (
	StateStopped State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	default:
		return "STOPPED"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is a point-in-time view of the worker.
type Status struct {
	State     State      `json:"state"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	Processed int64      `json:"processed"`
	Failed    int64      `json:"failed"`
	LastError string     `json:"lastError,omitempty"`
}

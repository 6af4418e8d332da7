package model

import "time"

type GenerationState string

const (
	GenerationPending   GenerationState = "pending"
	GenerationRunning   GenerationState = "running"
	GenerationCompleted GenerationState = "completed"
	GenerationFailed    GenerationState = "failed"
	GenerationUnknown   GenerationState = "unknown"
)

// ParseGenerationState maps a raw backend value onto the known set.
// Unrecognized values become GenerationUnknown rather than an error;
// the backend may grow states this client has not seen yet.
func ParseGenerationState(raw string) GenerationState {
	switch GenerationState(raw) {
	case GenerationPending, GenerationRunning, GenerationCompleted, GenerationFailed:
		return GenerationState(raw)
	default:
		return GenerationUnknown
	}
}

// Terminal reports whether no further polling should happen for a job
// in this state.
func (s GenerationState) Terminal() bool {
	return s == GenerationCompleted || s == GenerationFailed
}

// GenerationStatus is the authoritative snapshot the backend returns for
// one generation job. RecordID is the caller-supplied identity; TaskID is
// backend-assigned and informational only.
type GenerationStatus struct {
	RecordID     string          `json:"recordId"`
	State        GenerationState `json:"status"`
	TaskID       string          `json:"taskId,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

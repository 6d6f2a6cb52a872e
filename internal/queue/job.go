package queue

import "time"

// Job status constants. Transitions are strictly forward:
// queued -> processing -> completed.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// Job represents a single prompt submission tracked through its lifecycle.
type Job struct {
	ID        string    `db:"id"`
	Prompt    string    `db:"prompt"`
	Status    string    `db:"status"`
	Result    *string   `db:"result"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsTerminal reports whether the job can never transition again.
func (j *Job) IsTerminal() bool {
	return j.Status == StatusCompleted
}

// CanTransition reports whether moving a job from one status to another is
// allowed. Only the two forward transitions are valid; nothing moves backward
// and nothing skips a stage.
func CanTransition(from, to string) bool {
	switch {
	case from == StatusQueued && to == StatusProcessing:
		return true
	case from == StatusProcessing && to == StatusCompleted:
		return true
	default:
		return false
	}
}

// ValidStatus reports whether s is one of the known job statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusQueued, StatusProcessing, StatusCompleted:
		return true
	}
	return false
}

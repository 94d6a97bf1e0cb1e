package domain

import "time"

// ActionLog is an append-only record of an administrative action.
type ActionLog struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewActionLog builds an entry for actor; a nil actor records a system action.
func NewActionLog(actor *Actor, action string) *ActionLog {
	entry := &ActionLog{Action: action, Timestamp: time.Now().UTC()}
	if actor != nil {
		id := actor.ID
		entry.UserID = &id
	}
	return entry
}

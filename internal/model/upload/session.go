package upload

import "time"

// Session captures one user's photo that is waiting to be named.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Image     []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// State describes where a user currently is in the naming conversation.
// It is derived from session presence and never stored on its own.
type State string

const (
	// StateIdle means no photo is pending for the user.
	StateIdle State = "idle"
	// StateAwaitingID means a photo is stored and an identifier is expected next.
	StateAwaitingID State = "awaiting_id"
)

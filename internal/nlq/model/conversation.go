package model

import (
	"context"
	"time"
)

// StateTag labels the conversation state machine position for a session.
type StateTag string

const (
	StateGreeting     StateTag = "greeting"
	StateQuerying     StateTag = "querying"
	StateClarifying   StateTag = "clarifying"
	StateFollowingUp  StateTag = "following_up"
	StateComparing    StateTag = "comparing"
	StateDrillingDown StateTag = "drilling_down"
)

// ConversationTurn is an immutable snapshot of one completed question/answer
// cycle. Once recorded it is owned by the session's bounded history.
type ConversationTurn struct {
	TurnID             string            `json:"turn_id"`
	Question           string            `json:"question"`
	ResolvedQuestion   string            `json:"resolved_question"`
	Intent             string            `json:"intent"`
	Entities           EntityBag         `json:"entities"`
	SQLQuery           string            `json:"sql_query"`
	ResultCount        int               `json:"result_count"`
	Timestamp          time.Time         `json:"timestamp"`
	ResolvedReferences map[string]string `json:"resolved_references,omitempty"`
}

// ConversationState tracks the per-session state machine. Created on the first
// turn, mutated on every subsequent turn, discarded when the idle TTL elapses.
type ConversationState struct {
	SessionID      string    `json:"session_id"`
	CurrentTopic   string    `json:"current_topic"`
	State          StateTag  `json:"state"`
	ActiveEntities EntityBag `json:"active_entities"`
	TurnCount      int       `json:"turn_count"`
	LastActivity   time.Time `json:"last_activity"`
}

// TurnStore persists the bounded per-session turn history. The default
// implementation is an in-memory ring buffer; a Redis-backed store is
// available for multi-process deployments.
type TurnStore interface {
	// Append records a turn for the session, evicting the oldest turn once
	// maxTurns is exceeded. Turns must be stored in arrival order.
	Append(ctx context.Context, sessionID string, turn ConversationTurn, maxTurns int) error

	// History returns the session's turns in arrival order (oldest first).
	History(ctx context.Context, sessionID string) ([]ConversationTurn, error)

	// Clear removes all history for the session.
	Clear(ctx context.Context, sessionID string) error
}

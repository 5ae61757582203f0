// Package conversation keeps per-session dialogue state: the retained turn
// window, the conversation state machine, reference resolution against prior
// turns and entity inheritance for follow-up questions.
package conversation

import (
	"context"
	"sync"
	"time"

	errx "github.com/hvacops-nlq/server/internal/core/error"
	"github.com/hvacops-nlq/server/internal/nlq/model"
	logx "github.com/hvacops-nlq/server/pkg/logger"
)

// ResolvedInput is the outcome of resolving one raw question against session
// history, before extraction and classification run.
type ResolvedInput struct {
	ResolvedText   string
	References     map[string]string
	IsFollowUp     bool
	FollowUpStyle  string
	PreviousIntent string
	History        []model.ConversationTurn
}

type sessionState struct {
	mu    sync.Mutex
	state model.ConversationState
}

// Manager owns all per-session conversation state. Reads and writes for one
// session are serialized through LockSession; distinct sessions never block
// each other beyond the registry lookup.
type Manager struct {
	cfg   model.ConversationSettings
	store model.TurnStore
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionState
}

func NewManager(cfg model.ConversationSettings, store model.TurnStore) (*Manager, error) {
	ttl, err := time.ParseDuration(cfg.TTL)
	if err != nil {
		return nil, errx.New(errx.ErrValidationRejected, 422, "invalid session ttl: "+cfg.TTL)
	}
	return &Manager{
		cfg:      cfg,
		store:    store,
		ttl:      ttl,
		sessions: map[string]*sessionState{},
	}, nil
}

// LockSession acquires the per-session lock and returns the unlock func. The
// pipeline holds it across resolve, compose and record so interleaved turns
// from the same session cannot observe half-recorded history.
func (m *Manager) LockSession(sessionID string) func() {
	s := m.session(sessionID)
	s.mu.Lock()
	return s.mu.Unlock
}

func (m *Manager) session(sessionID string) *sessionState {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		s = &sessionState{state: model.ConversationState{
			SessionID: sessionID,
			State:     model.StateGreeting,
		}}
		m.sessions[sessionID] = s
	}
	return s
}

// Resolve expires stale state, then rewrites reference expressions in the
// question using session history. The caller must hold the session lock.
func (m *Manager) Resolve(ctx context.Context, sessionID string, text string) (ResolvedInput, error) {
	if err := m.expireIfStale(ctx, sessionID); err != nil {
		return ResolvedInput{}, err
	}

	history, err := m.store.History(ctx, sessionID)
	if err != nil {
		return ResolvedInput{}, errx.WrapSessionCorrupt(err)
	}

	in := ResolvedInput{
		ResolvedText: text,
		References:   map[string]string{},
		History:      history,
	}
	if len(history) > 0 {
		in.PreviousIntent = history[len(history)-1].Intent
	}

	in.IsFollowUp = m.IsFollowUp(text, history)
	if in.IsFollowUp {
		in.FollowUpStyle = DetectFollowUpCategory(text)
		in.ResolvedText, in.References = m.ResolveReferences(text, history)
	}

	if in.ResolvedText != text {
		logx.Debug().
			Str("session_id", sessionID).
			Str("resolved", in.ResolvedText).
			Msg("reference expressions resolved from history")
	}
	return in, nil
}

// Record appends a completed turn and advances the state machine. A turn with
// ResultCount zero means the query executed and matched nothing; turns that
// never reached execution (greetings, rejected SQL) carry ResultCount -1 and
// do not trigger the zero-result clarifying transition.
func (m *Manager) Record(ctx context.Context, sessionID string, turn model.ConversationTurn, in ResolvedInput) error {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	if err := m.store.Append(ctx, sessionID, turn, m.cfg.MaxTurns); err != nil {
		return errx.WrapSessionCorrupt(err)
	}

	s := m.session(sessionID)
	desired := desiredState(turn.Intent, in.FollowUpStyle, in.IsFollowUp, turn.ResultCount)
	next := advance(s.state.State, desired, turn.ResultCount)

	if next != s.state.State {
		logx.Debug().
			Str("session_id", sessionID).
			Str("from", string(s.state.State)).
			Str("to", string(next)).
			Msg("conversation state transition")
	}

	s.state.State = next
	s.state.CurrentTopic = turn.Intent
	s.state.ActiveEntities = turn.Entities.Clone()
	s.state.TurnCount++
	s.state.LastActivity = turn.Timestamp
	return nil
}

// State returns a snapshot of the session's conversation state.
func (m *Manager) State(sessionID string) model.ConversationState {
	s := m.session(sessionID)
	return s.state
}

// Reset drops both the retained history and the state machine for a session.
func (m *Manager) Reset(ctx context.Context, sessionID string) error {
	if err := m.store.Clear(ctx, sessionID); err != nil {
		return errx.WrapSessionCorrupt(err)
	}
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

// expireIfStale clears a session whose last activity exceeds the TTL, so an
// abandoned conversation never leaks entities into an unrelated one.
func (m *Manager) expireIfStale(ctx context.Context, sessionID string) error {
	s := m.session(sessionID)
	if s.state.TurnCount == 0 || m.ttl <= 0 {
		return nil
	}
	if time.Since(s.state.LastActivity) <= m.ttl {
		return nil
	}

	logx.Info().Str("session_id", sessionID).Msg("session ttl expired; resetting conversation state")
	return m.Reset(ctx, sessionID)
}

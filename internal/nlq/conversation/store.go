package conversation

import (
	"context"
	"sync"

	"github.com/hvacops-nlq/server/internal/nlq/model"
)

// MemoryStore is a process-local TurnStore. It backs tests and single-node
// deployments; production sessions use the Redis store in internal/repo.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]model.ConversationTurn
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string][]model.ConversationTurn{}}
}

// Append pushes one turn and trims the window to the newest maxTurns entries.
func (s *MemoryStore) Append(ctx context.Context, sessionID string, turn model.ConversationTurn, maxTurns int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.sessions[sessionID], turn)
	if maxTurns > 0 && len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	s.sessions[sessionID] = turns
	return nil
}

// History returns the retained turns oldest-first. The slice is a copy; the
// caller may mutate it freely.
func (s *MemoryStore) History(ctx context.Context, sessionID string) ([]model.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[sessionID]
	out := make([]model.ConversationTurn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

package httpadapter

import (
	"sync"

	"github.com/google/uuid"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
)

type session struct {
	mu    sync.Mutex
	state *domain.ConversationState
}

// sessionRegistry keeps per-session conversation state in memory. The
// core defines the state shape but never stores it; this adapter owns
// the lifetime. Turns on the same session are serialized.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*session)}
}

// acquire returns the locked session for id, creating it when absent.
// An empty id allocates a fresh session. Callers must call the release
// func when the turn is done.
func (r *sessionRegistry) acquire(id string) (string, *domain.ConversationState, func()) {
	r.mu.Lock()
	if id == "" {
		id = uuid.NewString()
	}
	s, ok := r.sessions[id]
	if !ok {
		s = &session{state: domain.NewConversationState()}
		r.sessions[id] = s
	}
	r.mu.Unlock()

	s.mu.Lock()
	return id, s.state, s.mu.Unlock
}

package remote

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is the per-invocation state the command layer threads through a
// context.
type Session struct {
	ID        uuid.UUID
	Manager   *Manager
	StartedAt time.Time
}

func NewSession(m *Manager) *Session {
	return &Session{ID: uuid.New(), Manager: m, StartedAt: time.Now()}
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored in ctx, if any.
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}

// Package memory keeps the session in process memory. Used by tests.
package memory

import (
	"context"
	"sync"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/session"
)

type Store struct {
	mu   sync.Mutex
	sess *core.Session
}

var _ session.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) Get(_ context.Context) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil || !s.sess.Valid() {
		return nil, nil
	}
	copied := *s.sess
	return &copied, nil
}

func (s *Store) Set(_ context.Context, sess core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = &sess
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}

// Package session defines the port for the locally persisted session.
package session

import (
	"context"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"
)

// Store persists the minimal identity triple between runs.
type Store interface {
	// Get returns the persisted session, or nil when none is stored or the
	// stored payload is incomplete.
	Get(ctx context.Context) (*core.Session, error)
	Set(ctx context.Context, s core.Session) error
	Clear(ctx context.Context) error
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "session.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGet_EmptyReturnsNil(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil session, got %+v", sess)
	}
}

func TestSetGetClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := core.Session{UserID: "recUSER1", UserName: "Ana", HouseholdCode: "ABC234XYZ"}
	if err := s.Set(ctx, want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || *got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	// Overwrite keeps a single row.
	next := core.Session{UserID: "recUSER2", UserName: "Beto", HouseholdCode: "XYZ234ABC"}
	if err := s.Set(ctx, next); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err = s.Get(ctx)
	if err != nil {
		t.Fatalf("Get after overwrite: %v", err)
	}
	if got == nil || *got != next {
		t.Errorf("Get() after overwrite = %+v, want %+v", got, next)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err = s.Get(ctx)
	if err != nil {
		t.Fatalf("Get after clear: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after clear, got %+v", got)
	}
}

func TestReopenKeepsSession(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	first, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := core.Session{UserID: "recUSER1", UserName: "Ana", HouseholdCode: "ABC234XYZ"}
	if err := first.Set(ctx, want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	first.Close()

	second, err := New(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	got, err := second.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || *got != want {
		t.Errorf("session not persisted across reopen: %+v", got)
	}
}

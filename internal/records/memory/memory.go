// Package memory implements the records port in process memory. It backs
// tests and the "memory" data backend, mirroring the remote service's
// observable behavior: opaque ids, field maps, batch updates.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
)

type Store struct {
	mu          sync.Mutex
	collections map[string][]records.Record
	nextErr     error
}

var _ records.Store = (*Store)(nil)

func New() *Store {
	return &Store{collections: make(map[string][]records.Record)}
}

// FailNext makes the next call return err instead of operating. Used by
// tests to exercise remote-failure paths.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextErr = err
}

// Seed inserts a record with a generated id and returns it.
func (s *Store) Seed(collection string, fields records.Fields) records.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := records.Record{ID: newID(), Fields: cloneFields(fields)}
	s.collections[collection] = append(s.collections[collection], rec)
	return rec
}

func (s *Store) List(_ context.Context, collection string, q records.Query, opts records.Options) ([]records.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return nil, err
	}
	var out []records.Record
	for _, rec := range s.collections[collection] {
		if !q.Matches(rec.Fields) {
			continue
		}
		out = append(out, cloneRecord(rec))
		if opts.MaxRecords > 0 && len(out) >= opts.MaxRecords {
			break
		}
	}
	return out, nil
}

func (s *Store) Create(_ context.Context, collection string, fields records.Fields) (records.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return records.Record{}, err
	}
	rec := records.Record{ID: newID(), Fields: cloneFields(fields)}
	s.collections[collection] = append(s.collections[collection], rec)
	return cloneRecord(rec), nil
}

func (s *Store) Update(_ context.Context, collection, id string, fields records.Fields) (records.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return records.Record{}, err
	}
	return s.patch(collection, id, fields)
}

func (s *Store) Delete(_ context.Context, collection, id string) (records.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return records.Record{}, err
	}
	recs := s.collections[collection]
	for i, rec := range recs {
		if rec.ID == id {
			s.collections[collection] = append(recs[:i:i], recs[i+1:]...)
			return records.Record{ID: id}, nil
		}
	}
	return records.Record{}, notFound(collection, id)
}

func (s *Store) BatchUpdate(_ context.Context, collection string, updates []records.Update) ([]records.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return nil, err
	}
	out := make([]records.Record, 0, len(updates))
	for _, u := range updates {
		rec, err := s.patch(collection, u.ID, u.Fields)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Dump returns a copy of a collection's records, in insertion order.
func (s *Store) Dump(collection string) []records.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]records.Record, 0, len(s.collections[collection]))
	for _, rec := range s.collections[collection] {
		out = append(out, cloneRecord(rec))
	}
	return out
}

// Get returns a record by id, if present.
func (s *Store) Get(collection, id string) (records.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.collections[collection] {
		if rec.ID == id {
			return cloneRecord(rec), true
		}
	}
	return records.Record{}, false
}

func (s *Store) patch(collection, id string, fields records.Fields) (records.Record, error) {
	recs := s.collections[collection]
	for i, rec := range recs {
		if rec.ID != id {
			continue
		}
		for k, v := range fields {
			recs[i].Fields[k] = v
		}
		return cloneRecord(recs[i]), nil
	}
	return records.Record{}, notFound(collection, id)
}

func (s *Store) takeErr() error {
	err := s.nextErr
	s.nextErr = nil
	return err
}

func notFound(collection, id string) error {
	return &records.RemoteError{
		StatusCode: 404,
		Kind:       "NOT_FOUND",
		Message:    fmt.Sprintf("Record %s not found in %s", id, collection),
	}
}

func newID() string {
	return "rec" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}

func cloneFields(f records.Fields) records.Fields {
	out := make(records.Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func cloneRecord(r records.Record) records.Record {
	return records.Record{ID: r.ID, Fields: cloneFields(r.Fields)}
}

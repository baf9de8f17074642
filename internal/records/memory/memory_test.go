package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
)

func TestCRUDRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.Create(ctx, records.CollectionItems, records.Fields{"name": "Luz", "amount": float64(12000)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}

	if _, err := s.Update(ctx, records.CollectionItems, created.ID, records.Fields{"isPaid": true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, ok := s.Get(records.CollectionItems, created.ID)
	if !ok || !got.Fields.Bool("isPaid") {
		t.Errorf("update not applied: %+v", got)
	}

	if _, err := s.Delete(ctx, records.CollectionItems, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Get(records.CollectionItems, created.ID); ok {
		t.Error("record still present after delete")
	}
}

func TestList_FilterAndMax(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Seed(records.CollectionUsers, records.Fields{"email": "ana@example.com"})
	s.Seed(records.CollectionUsers, records.Fields{"email": "beto@example.com"})
	s.Seed(records.CollectionUsers, records.Fields{"email": "ana@example.com"})

	recs, err := s.List(ctx, records.CollectionUsers, records.EqFold("email", "ANA@example.com"), records.Options{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("got %d records, want 2", len(recs))
	}

	recs, err = s.List(ctx, records.CollectionUsers, records.Query{}, records.Options{MaxRecords: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("MaxRecords ignored, got %d", len(recs))
	}
}

func TestBatchUpdate(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := s.Seed(records.CollectionItems, records.Fields{"isPaid": true})
	b := s.Seed(records.CollectionItems, records.Fields{"isPaid": true})

	_, err := s.BatchUpdate(ctx, records.CollectionItems, []records.Update{
		{ID: a.ID, Fields: records.Fields{"isPaid": false}},
		{ID: b.ID, Fields: records.Fields{"isPaid": false}},
	})
	if err != nil {
		t.Fatalf("BatchUpdate: %v", err)
	}
	for _, rec := range s.Dump(records.CollectionItems) {
		if rec.Fields.Bool("isPaid") {
			t.Errorf("record %s still paid", rec.ID)
		}
	}
}

func TestFailNext(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := &records.RemoteError{StatusCode: 500, Message: "boom"}
	s.FailNext(boom)

	_, err := s.List(ctx, records.CollectionItems, records.Query{}, records.Options{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}

	// The failure is consumed; the next call succeeds.
	if _, err := s.List(ctx, records.CollectionItems, records.Query{}, records.Options{}); err != nil {
		t.Fatalf("second List: %v", err)
	}
}

func TestDeleteMissingIsRemoteError(t *testing.T) {
	s := New()
	_, err := s.Delete(context.Background(), records.CollectionItems, "recMISSING")
	var remote *records.RemoteError
	if !errors.As(err, &remote) || remote.StatusCode != 404 {
		t.Fatalf("expected 404 RemoteError, got %v", err)
	}
}

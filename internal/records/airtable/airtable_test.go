package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		BaseURL:    srv.URL,
		BaseID:     "appTEST",
		Token:      "patTEST",
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestNew_RequiresCredentials(t *testing.T) {
	if _, err := New(Config{Token: "patTEST"}); err == nil {
		t.Error("expected error for missing base id")
	}
	if _, err := New(Config{BaseID: "appTEST"}); err == nil {
		t.Error("expected error for missing token")
	}
}

func TestList_PaginatesUntilNoOffset(t *testing.T) {
	var gotAuth string
	var offsets []string

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		offset := r.URL.Query().Get("offset")
		offsets = append(offsets, offset)

		w.Header().Set("Content-Type", "application/json")
		if offset == "" {
			json.NewEncoder(w).Encode(map[string]any{
				"records": []map[string]any{
					{"id": "rec1", "fields": map[string]any{"name": "Luz"}},
					{"id": "rec2", "fields": map[string]any{"name": "Gas"}},
				},
				"offset": "page2",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"records": []map[string]any{
				{"id": "rec3", "fields": map[string]any{"name": "Agua"}},
			},
		})
	}))

	recs, err := c.List(context.Background(), records.CollectionItems, records.Query{}, records.Options{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if recs[2].ID != "rec3" || recs[2].Fields.String("name") != "Agua" {
		t.Errorf("unexpected last record: %+v", recs[2])
	}
	if gotAuth != "Bearer patTEST" {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if len(offsets) != 2 || offsets[1] != "page2" {
		t.Errorf("offsets = %v, want two pages", offsets)
	}
}

func TestList_SendsFilterFormula(t *testing.T) {
	var gotFormula string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFormula = r.URL.Query().Get("filterByFormula")
		json.NewEncoder(w).Encode(map[string]any{"records": []any{}})
	}))

	_, err := c.List(context.Background(), records.CollectionUsers,
		records.EqFold("email", "Ana@Example.COM"), records.Options{MaxRecords: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := "LOWER({email})='ana@example.com'"
	if gotFormula != want {
		t.Errorf("filterByFormula = %q, want %q", gotFormula, want)
	}
}

func TestFormulaFor_EscapesQuotes(t *testing.T) {
	got := formulaFor(records.Eq("name", "O'Higgins"))
	want := "{name}='O''Higgins'"
	if got != want {
		t.Errorf("formulaFor() = %q, want %q", got, want)
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var body struct {
				Fields records.Fields `json:"fields"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(map[string]any{"id": "recNEW", "fields": body.Fields})
		case http.MethodPatch:
			json.NewEncoder(w).Encode(map[string]any{"id": "recNEW", "fields": map[string]any{"isPaid": true}})
		case http.MethodDelete:
			json.NewEncoder(w).Encode(map[string]any{"id": "recNEW", "deleted": true})
		}
	}))

	ctx := context.Background()

	created, err := c.Create(ctx, records.CollectionItems, records.Fields{"name": "Luz", "amount": float64(12000)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "recNEW" || created.Fields.Int("amount") != 12000 {
		t.Errorf("unexpected created record: %+v", created)
	}

	updated, err := c.Update(ctx, records.CollectionItems, "recNEW", records.Fields{"isPaid": true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Fields.Bool("isPaid") {
		t.Errorf("expected isPaid true after update")
	}

	deleted, err := c.Delete(ctx, records.CollectionItems, "recNEW")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.ID != "recNEW" {
		t.Errorf("deleted id = %q", deleted.ID)
	}
}

func TestBatchUpdate_ChunksAtTen(t *testing.T) {
	var chunkSizes []int
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Records []struct {
				ID     string         `json:"id"`
				Fields records.Fields `json:"fields"`
			} `json:"records"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		chunkSizes = append(chunkSizes, len(body.Records))

		resp := map[string]any{"records": body.Records}
		json.NewEncoder(w).Encode(resp)
	}))

	updates := make([]records.Update, 23)
	for i := range updates {
		updates[i] = records.Update{ID: "rec" + string(rune('A'+i)), Fields: records.Fields{"isPaid": false}}
	}

	out, err := c.BatchUpdate(context.Background(), records.CollectionItems, updates)
	if err != nil {
		t.Fatalf("BatchUpdate: %v", err)
	}
	if len(out) != 23 {
		t.Errorf("got %d records back, want 23", len(out))
	}
	want := []int{10, 10, 3}
	if len(chunkSizes) != len(want) {
		t.Fatalf("chunk sizes = %v, want %v", chunkSizes, want)
	}
	for i := range want {
		if chunkSizes[i] != want[i] {
			t.Errorf("chunk %d size = %d, want %d", i, chunkSizes[i], want[i])
		}
	}
}

func TestRemoteError_MessageFromPayload(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":{"type":"INVALID_FILTER_BY_FORMULA","message":"The formula is invalid"}}`))
	}))

	_, err := c.List(context.Background(), records.CollectionItems, records.Query{}, records.Options{})
	var remote *records.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", remote.StatusCode)
	}
	if remote.Message != "The formula is invalid" || remote.Kind != "INVALID_FILTER_BY_FORMULA" {
		t.Errorf("unexpected payload: %+v", remote)
	}
}

func TestRemoteError_StringErrorBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"NOT_FOUND"}`))
	}))

	_, err := c.Delete(context.Background(), records.CollectionItems, "recMISSING")
	var remote *records.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.Message != "NOT_FOUND" {
		t.Errorf("message = %q", remote.Message)
	}
}

func TestRemoteError_EmptyBodyFallback(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.List(context.Background(), records.CollectionItems, records.Query{}, records.Options{})
	var remote *records.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.Message != "Error Airtable (502)" {
		t.Errorf("fallback message = %q", remote.Message)
	}
}

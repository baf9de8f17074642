package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"
	recmem "github.com/agustinEspinozaTech/gestor-de-gastos/internal/records/memory"
	sessmem "github.com/agustinEspinozaTech/gestor-de-gastos/internal/session/memory"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/store"
)

func newTestServer(t *testing.T, opts ...func(*store.Config)) (*Server, *recmem.Store) {
	t.Helper()
	rs := recmem.New()
	cfg := store.Config{
		Records:  rs,
		Sessions: sessmem.New(),
		NewCode:  func(int) string { return "CASA23456" },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	st := store.New(context.Background(), cfg)
	srv := NewServer(":0", st)
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv, rs
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeState(t *testing.T, rr *httptest.ResponseRecorder) stateJSON {
	t.Helper()
	var st stateJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode state: %v (body %q)", err, rr.Body.String())
	}
	return st
}

// register creates a fresh household and leaves the server logged in.
func register(t *testing.T, srv *Server) {
	t.Helper()
	rr := doJSON(t, srv, http.MethodPost, "/api/register",
		`{"name":"Ana","email":"ana@example.com","pin":"1234","mode":"new"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("register status = %d, body %s", rr.Code, rr.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rr.Code)
		}
	}
}

func TestRegisterAndState(t *testing.T) {
	srv, _ := newTestServer(t)
	register(t, srv)

	rr := doJSON(t, srv, http.MethodGet, "/api/state", "")
	st := decodeState(t, rr)
	if st.Session == nil || st.Session.HouseholdCode != "CASA23456" {
		t.Fatalf("session = %+v", st.Session)
	}
	if st.Info != "Usuario creado e ingresado." {
		t.Errorf("Info = %q", st.Info)
	}
}

func TestLoginWrongPin(t *testing.T) {
	srv, _ := newTestServer(t)
	register(t, srv)
	doJSON(t, srv, http.MethodPost, "/api/logout", "")

	rr := doJSON(t, srv, http.MethodPost, "/api/login", `{"email":"ana@example.com","pin":"9999"}`)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	st := decodeState(t, rr)
	if st.Error != "Pin incorrecto." {
		t.Errorf("Error = %q", st.Error)
	}
	if st.Session != nil {
		t.Errorf("session present after failed login")
	}
}

func TestMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := doJSON(t, srv, http.MethodPost, "/api/login", `{"email":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestItemLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	register(t, srv)

	rr := doJSON(t, srv, http.MethodPost, "/api/items", `{"name":"Luz","amount":1200.9}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("add status = %d, body %s", rr.Code, rr.Body.String())
	}
	st := decodeState(t, rr)
	if len(st.Items) != 1 || st.Items[0].Amount != 1200 {
		t.Fatalf("items = %+v, want truncated amount 1200", st.Items)
	}
	id := st.Items[0].ID

	rr = doJSON(t, srv, http.MethodPatch, "/api/items/"+id, `{"isPaid":true}`)
	st = decodeState(t, rr)
	if !st.Items[0].IsPaid {
		t.Fatalf("item not marked paid: %+v", st.Items)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/items/"+id, "")
	st = decodeState(t, rr)
	if len(st.Items) != 0 {
		t.Fatalf("items after delete = %+v", st.Items)
	}
}

func TestAddItemValidationStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	register(t, srv)

	rr := doJSON(t, srv, http.MethodPost, "/api/items", `{"name":"Luz","amount":0}`)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	st := decodeState(t, rr)
	if st.Error != "El monto debe ser un número mayor a 0." {
		t.Errorf("Error = %q", st.Error)
	}
}

func TestAddItemRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := doJSON(t, srv, http.MethodPost, "/api/items", `{"name":"Luz","amount":100}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestShoppingPurchaseClampsThroughAPI(t *testing.T) {
	srv, _ := newTestServer(t)
	register(t, srv)

	rr := doJSON(t, srv, http.MethodPost, "/api/shopping", `{"name":"Yerba","targetQty":5}`)
	st := decodeState(t, rr)
	if len(st.ShoppingItems) != 1 {
		t.Fatalf("shopping = %+v", st.ShoppingItems)
	}
	id := st.ShoppingItems[0].ID

	doJSON(t, srv, http.MethodPost, "/api/shopping/"+id+"/purchase", `{"qty":3}`)
	rr = doJSON(t, srv, http.MethodPost, "/api/shopping/"+id+"/purchase", `{"qty":10}`)

	st = decodeState(t, rr)
	if st.ShoppingItems[0].PurchasedQty != 5 {
		t.Fatalf("purchasedQty = %d, want clamped to 5", st.ShoppingItems[0].PurchasedQty)
	}
}

func TestRefreshRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := doJSON(t, srv, http.MethodPost, "/api/refresh", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestRefreshLoadsHousehold(t *testing.T) {
	srv, _ := newTestServer(t)
	register(t, srv)

	rr := doJSON(t, srv, http.MethodPost, "/api/refresh", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	st := decodeState(t, rr)
	if st.Household == nil || st.Household.Code != "CASA23456" {
		t.Fatalf("household = %+v", st.Household)
	}
}

func TestTotalsShape(t *testing.T) {
	srv, _ := newTestServer(t)
	register(t, srv)
	doJSON(t, srv, http.MethodPost, "/api/items", `{"name":"Luz","amount":1000}`)
	doJSON(t, srv, http.MethodPost, "/api/items", `{"name":"Agua","amount":2000}`)

	rr := doJSON(t, srv, http.MethodGet, "/api/totals", "")

	var totals totalsJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &totals); err != nil {
		t.Fatalf("decode totals: %v", err)
	}
	if totals.Total != 3000 || totals.Pending != 3000 {
		t.Errorf("totals = %+v", totals)
	}
	if totals.DaysLeft < 1 {
		t.Errorf("DaysLeft = %d", totals.DaysLeft)
	}
	if totals.DailyBase != core.DefaultDailyTargetARS*int64(totals.DaysLeft) {
		t.Errorf("DailyBase = %d with daysLeft %d", totals.DailyBase, totals.DaysLeft)
	}
	if totals.DailyRemaining != totals.DailyBase+totals.DailyAdjustment {
		t.Errorf("DailyRemaining = %d", totals.DailyRemaining)
	}
	if totals.MonthLabel == "" || totals.DailyFormatted == "" {
		t.Errorf("formatted fields empty: %+v", totals)
	}
}

func TestTotalsUseStoreClock(t *testing.T) {
	fixed := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	srv, _ := newTestServer(t, func(cfg *store.Config) {
		cfg.Now = func() time.Time { return fixed }
	})
	register(t, srv)

	rr := doJSON(t, srv, http.MethodGet, "/api/totals", "")

	var totals totalsJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &totals); err != nil {
		t.Fatalf("decode totals: %v", err)
	}
	if totals.MonthLabel != core.MonthLabel(fixed) {
		t.Errorf("MonthLabel = %q, want %q", totals.MonthLabel, core.MonthLabel(fixed))
	}
	if want := core.RemainingDaysIncludingToday(fixed); totals.DaysLeft != want {
		t.Errorf("DaysLeft = %d, want %d", totals.DaysLeft, want)
	}
}

func TestAmountsAcceptFormattedStrings(t *testing.T) {
	srv, _ := newTestServer(t)
	register(t, srv)

	rr := doJSON(t, srv, http.MethodPost, "/api/items", `{"name":"Alquiler","amount":"1.200"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("add status = %d, body %s", rr.Code, rr.Body.String())
	}
	st := decodeState(t, rr)
	if len(st.Items) != 1 || st.Items[0].Amount != 1200 {
		t.Fatalf("items = %+v, want parsed amount 1200", st.Items)
	}

	doJSON(t, srv, http.MethodPost, "/api/refresh", "")
	rr = doJSON(t, srv, http.MethodPost, "/api/adjustment", `{"value":"-3.000"}`)
	st = decodeState(t, rr)
	if st.Household == nil || st.Household.DailyAdjustment != -3000 {
		t.Fatalf("household = %+v, want adjustment -3000", st.Household)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	register(t, srv)
	rr := doJSON(t, srv, http.MethodPost, "/api/items", `{"name":"Luz","amount":100,"extra":true}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

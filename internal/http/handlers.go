package http

import (
	"net/http"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/store"
)

type loginRequest struct {
	Email string `json:"email"`
	Pin   string `json:"pin"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.store.Login(r.Context(), req.Email, req.Pin)
	s.respondState(w, r)
}

type registerRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Pin           string `json:"pin"`
	Mode          string `json:"mode"`
	HouseholdCode string `json:"householdCode"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	mode := store.ModeNew
	if req.Mode == string(store.ModeJoin) {
		mode = store.ModeJoin
	}
	s.store.Register(r.Context(), store.RegisterInput{
		Name:          req.Name,
		Email:         req.Email,
		Pin:           req.Pin,
		Mode:          mode,
		HouseholdCode: req.HouseholdCode,
	})
	s.respondState(w, r)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.store.Logout(r.Context())
	s.respondState(w, r)
}

type refreshRequest struct {
	ForceResetCheck bool `json:"forceResetCheck"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	req := refreshRequest{ForceResetCheck: true}
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}
	if s.store.Session() == nil {
		writeError(w, http.StatusUnauthorized, "No hay sesión activa.")
		return
	}
	s.store.LoadHouseholdAndItems(r.Context(), req.ForceResetCheck)
	s.respondState(w, r)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateView(s.store.Snapshot()))
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, totalsView(s.store.ComputeTotals(), s.store.Now()))
}

type addItemRequest struct {
	Name   string    `json:"name"`
	Amount amountARS `json:"amount"`
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if s.store.Session() == nil {
		writeError(w, http.StatusUnauthorized, "No hay sesión activa.")
		return
	}
	s.store.AddItem(r.Context(), req.Name, int64(req.Amount))
	s.respondState(w, r)
}

type updateItemRequest struct {
	Name   *string    `json:"name"`
	Amount *amountARS `json:"amount"`
	IsPaid *bool      `json:"isPaid"`
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	patch := store.ItemPatch{Name: req.Name, IsPaid: req.IsPaid}
	if req.Amount != nil {
		amount := int64(*req.Amount)
		patch.Amount = &amount
	}
	s.store.UpdateItem(r.Context(), r.PathValue("id"), patch)
	s.respondState(w, r)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	s.store.RemoveItem(r.Context(), r.PathValue("id"))
	s.respondState(w, r)
}

type adjustmentRequest struct {
	Value amountARS `json:"value"`
}

func (s *Server) handleAdjustment(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.store.UpdateDailyAdjustment(r.Context(), int64(req.Value))
	s.respondState(w, r)
}

type addShoppingRequest struct {
	Name      string  `json:"name"`
	TargetQty float64 `json:"targetQty"`
}

func (s *Server) handleAddShoppingItem(w http.ResponseWriter, r *http.Request) {
	var req addShoppingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if s.store.Session() == nil {
		writeError(w, http.StatusUnauthorized, "No hay sesión activa.")
		return
	}
	s.store.AddShoppingItem(r.Context(), req.Name, int64(req.TargetQty))
	s.respondState(w, r)
}

type updateShoppingRequest struct {
	Name         *string  `json:"name"`
	TargetQty    *float64 `json:"targetQty"`
	PurchasedQty *float64 `json:"purchasedQty"`
}

func (s *Server) handleUpdateShoppingItem(w http.ResponseWriter, r *http.Request) {
	var req updateShoppingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	patch := store.ShoppingPatch{Name: req.Name}
	if req.TargetQty != nil {
		target := int64(*req.TargetQty)
		patch.TargetQty = &target
	}
	if req.PurchasedQty != nil {
		purchased := int64(*req.PurchasedQty)
		patch.PurchasedQty = &purchased
	}
	s.store.UpdateShoppingItem(r.Context(), r.PathValue("id"), patch)
	s.respondState(w, r)
}

func (s *Server) handleRemoveShoppingItem(w http.ResponseWriter, r *http.Request) {
	s.store.RemoveShoppingItem(r.Context(), r.PathValue("id"))
	s.respondState(w, r)
}

type purchaseRequest struct {
	Qty float64 `json:"qty"`
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.store.RecordPurchase(r.Context(), r.PathValue("id"), int64(req.Qty))
	s.respondState(w, r)
}

// respondState writes the post-operation snapshot. Operations that failed
// leave their message in the snapshot's error field and answer 422 so API
// clients can branch without parsing Spanish text.
func (s *Server) respondState(w http.ResponseWriter, r *http.Request) {
	st := s.store.Snapshot()
	status := http.StatusOK
	if st.Error != "" {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, stateView(st))
}

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/store"
)

type sessionJSON struct {
	UserID        string `json:"userId"`
	UserName      string `json:"userName"`
	HouseholdCode string `json:"householdCode"`
}

type householdJSON struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	MonthID         string `json:"monthId"`
	DailyAdjustment int64  `json:"dailyAdjustment"`
}

type itemJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
	IsPaid bool   `json:"isPaid"`
}

type shoppingItemJSON struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TargetQty    int64  `json:"targetQty"`
	PurchasedQty int64  `json:"purchasedQty"`
}

type stateJSON struct {
	Session       *sessionJSON       `json:"session"`
	Loading       bool               `json:"loading"`
	Error         string             `json:"error,omitempty"`
	Info          string             `json:"info,omitempty"`
	Household     *householdJSON     `json:"household"`
	Items         []itemJSON         `json:"items"`
	ShoppingItems []shoppingItemJSON `json:"shoppingItems"`
}

type totalsJSON struct {
	Total           int64  `json:"total"`
	Pending         int64  `json:"pending"`
	DaysLeft        int    `json:"daysLeft"`
	DailyBase       int64  `json:"dailyBase"`
	DailyAdjustment int64  `json:"dailyAdjustment"`
	DailyRemaining  int64  `json:"dailyRemaining"`
	DailyFormatted  string `json:"dailyFormatted"`
	MonthLabel      string `json:"monthLabel"`
}

func stateView(st store.State) stateJSON {
	out := stateJSON{
		Loading:       st.Loading,
		Error:         st.Error,
		Info:          st.Info,
		Items:         make([]itemJSON, 0, len(st.Items)),
		ShoppingItems: make([]shoppingItemJSON, 0, len(st.ShoppingItems)),
	}
	if st.Session != nil {
		out.Session = &sessionJSON{
			UserID:        st.Session.UserID,
			UserName:      st.Session.UserName,
			HouseholdCode: st.Session.HouseholdCode,
		}
	}
	if st.Household != nil {
		out.Household = &householdJSON{
			ID:              st.Household.ID,
			Code:            st.Household.Code,
			MonthID:         st.Household.MonthID,
			DailyAdjustment: st.Household.DailyAdjustment,
		}
	}
	for _, it := range st.Items {
		out.Items = append(out.Items, itemJSON{
			ID:     it.ID,
			Name:   it.Name,
			Amount: it.Amount,
			IsPaid: it.IsPaid,
		})
	}
	for _, si := range st.ShoppingItems {
		out.ShoppingItems = append(out.ShoppingItems, shoppingItemJSON{
			ID:           si.ID,
			Name:         si.Name,
			TargetQty:    si.TargetQty,
			PurchasedQty: si.PurchasedQty,
		})
	}
	return out
}

func totalsView(t store.Totals, now time.Time) totalsJSON {
	return totalsJSON{
		Total:           t.Total,
		Pending:         t.Pending,
		DaysLeft:        t.DaysLeft,
		DailyBase:       t.DailyBase,
		DailyAdjustment: t.DailyAdjustment,
		DailyRemaining:  t.DailyRemaining,
		DailyFormatted:  core.FormatARSWithPrefix(t.DailyRemaining),
		MonthLabel:      core.MonthLabel(now),
	}
}

type errorJSON struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorJSON{Error: msg})
}

// amountARS accepts either a JSON number (truncated to whole pesos) or a
// free-form string like "1.200", the shape the original expense inputs send.
type amountARS int64

func (a *amountARS) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountARS(core.ParseARS(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = amountARS(f)
	return nil
}

// decodeJSON parses the request body into v, answering 400 on malformed
// input. Returns false when the response was already written.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Cuerpo de la petición inválido.")
		return false
	}
	return true
}

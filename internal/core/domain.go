package core

import (
	"errors"
	"math/rand"
	"regexp"
	"strings"
)

// DefaultDailyTargetARS is the fixed per-day spending target used to derive
// the daily allowance. ARS has no minor units here; everything is whole pesos.
const DefaultDailyTargetARS int64 = 23000

// HouseholdCodeAlphabet excludes ambiguous characters (0/O, 1/I).
const HouseholdCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// HouseholdCodeLength is the length of generated household codes.
const HouseholdCodeLength = 9

var (
	ErrEmptyEmail           = errors.New("empty email")
	ErrEmptyPin             = errors.New("empty pin")
	ErrEmptyName            = errors.New("empty name")
	ErrInvalidPin           = errors.New("pin must be 4 to 6 digits")
	ErrUserNotFound         = errors.New("user not found")
	ErrWrongPin             = errors.New("wrong pin")
	ErrEmailTaken           = errors.New("email already registered")
	ErrNoHousehold          = errors.New("user has no household assigned")
	ErrHouseholdNotFound    = errors.New("household not found")
	ErrEmptyHouseholdCode   = errors.New("empty household code")
	ErrCodeExhausted        = errors.New("household code generation exhausted")
	ErrEmptyItemName        = errors.New("empty item name")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrEmptyProductName     = errors.New("empty product name")
	ErrInvalidTargetQty     = errors.New("target quantity must be greater than zero")
	ErrInvalidDelta         = errors.New("purchase delta must be greater than zero")
	ErrShoppingItemNotFound = errors.New("shopping item not found")
)

type (
	// Session is the minimal identity triple kept in memory and mirrored to
	// the persisted session store.
	Session struct {
		UserID        string
		UserName      string
		HouseholdCode string
	}

	// Household is the shared budget unit. MonthID tracks the last month for
	// which the monthly reset was applied, as a "YYYY-MM" token.
	Household struct {
		ID              string
		Code            string
		MonthID         string
		DailyAdjustment int64
	}

	// Item is a monthly expense entry. Items belong to a household by
	// denormalized code; the record service enforces no referential integrity.
	Item struct {
		ID            string
		HouseholdCode string
		Name          string
		Amount        int64
		IsPaid        bool
	}

	// ShoppingItem tracks a recurring purchase against a monthly goal.
	// PurchasedQty stays within [0, TargetQty] after every mutation.
	ShoppingItem struct {
		ID            string
		HouseholdCode string
		Name          string
		TargetQty     int64
		PurchasedQty  int64
	}
)

// Valid reports whether all three session fields are present.
func (s Session) Valid() bool {
	return s.UserID != "" && s.UserName != "" && s.HouseholdCode != ""
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyItemName
	}
	if i.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (si ShoppingItem) Validate() error {
	if strings.TrimSpace(si.Name) == "" {
		return ErrEmptyProductName
	}
	if si.TargetQty <= 0 {
		return ErrInvalidTargetQty
	}
	return nil
}

// Clamped returns a copy with PurchasedQty clamped into [0, TargetQty].
func (si ShoppingItem) Clamped() ShoppingItem {
	si.PurchasedQty = ClampInt(si.PurchasedQty, 0, si.TargetQty)
	return si
}

var pinPattern = regexp.MustCompile(`^\d{4,6}$`)

// ValidPin reports whether pin is 4 to 6 digits.
func ValidPin(pin string) bool {
	return pinPattern.MatchString(pin)
}

// RandomHouseholdCode returns a random human-shareable code of n characters
// drawn from HouseholdCodeAlphabet.
func RandomHouseholdCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = HouseholdCodeAlphabet[rand.Intn(len(HouseholdCodeAlphabet))]
	}
	return string(b)
}

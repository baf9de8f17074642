package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
)

// RegisterMode selects between creating a fresh household and joining an
// existing one by code.
type RegisterMode string

const (
	ModeNew  RegisterMode = "new"
	ModeJoin RegisterMode = "join"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name          string
	Email         string
	Pin           string
	Mode          RegisterMode
	HouseholdCode string // only for ModeJoin
}

// Login authenticates by email/pin and establishes the session.
func (s *Store) Login(ctx context.Context, email, pin string) {
	s.begin()
	err := s.login(ctx, email, pin)
	s.finish(err, "Sesión iniciada.", "No se pudo iniciar sesión.")
}

func (s *Store) login(ctx context.Context, email, pin string) error {
	emailNorm := strings.ToLower(strings.TrimSpace(email))
	pinNorm := strings.TrimSpace(pin)

	if emailNorm == "" {
		return core.ErrEmptyEmail
	}
	if pinNorm == "" {
		return core.ErrEmptyPin
	}

	users, err := s.records.List(ctx, records.CollectionUsers,
		records.EqFold("email", emailNorm), records.Options{MaxRecords: maxLookupRecords})
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}
	if len(users) == 0 {
		return core.ErrUserNotFound
	}

	user := users[0]
	storedPin := strings.TrimSpace(user.Fields.String("pin"))
	if storedPin != pinNorm {
		return core.ErrWrongPin
	}

	householdCode := strings.TrimSpace(user.Fields.String("householdCode"))
	if householdCode == "" {
		return core.ErrNoHousehold
	}

	households, err := s.records.List(ctx, records.CollectionHouseholds,
		records.Eq("householdCode", householdCode), records.Options{MaxRecords: maxLookupRecords})
	if err != nil {
		return fmt.Errorf("look up household: %w", err)
	}
	if len(households) == 0 {
		return core.ErrHouseholdNotFound
	}

	userName := user.Fields.String("name")
	if userName == "" {
		userName = "Usuario"
	}
	sess := core.Session{
		UserID:        user.ID,
		UserName:      userName,
		HouseholdCode: householdCode,
	}

	if err := s.sessions.Set(ctx, sess); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.setState(func(st *State) { st.Session = &sess })
	slog.InfoContext(ctx, "Session established", "user_id", sess.UserID, "household_code", sess.HouseholdCode)
	return nil
}

// Register creates the user (and, for ModeNew, a household) and establishes
// the session.
func (s *Store) Register(ctx context.Context, in RegisterInput) {
	s.begin()
	err := s.register(ctx, in)
	s.finish(err, "Usuario creado e ingresado.", "No se pudo crear el usuario.")
}

func (s *Store) register(ctx context.Context, in RegisterInput) error {
	nameNorm := strings.TrimSpace(in.Name)
	emailNorm := strings.ToLower(strings.TrimSpace(in.Email))
	pinNorm := strings.TrimSpace(in.Pin)

	if nameNorm == "" {
		return core.ErrEmptyName
	}
	if emailNorm == "" {
		return core.ErrEmptyEmail
	}
	if pinNorm == "" {
		return core.ErrEmptyPin
	}
	if !core.ValidPin(pinNorm) {
		return core.ErrInvalidPin
	}

	existing, err := s.records.List(ctx, records.CollectionUsers,
		records.EqFold("email", emailNorm), records.Options{MaxRecords: maxLookupRecords})
	if err != nil {
		return fmt.Errorf("check existing email: %w", err)
	}
	if len(existing) > 0 {
		return core.ErrEmailTaken
	}

	var householdCode string
	switch in.Mode {
	case ModeJoin:
		householdCode = strings.ToUpper(strings.TrimSpace(in.HouseholdCode))
		if householdCode == "" {
			return core.ErrEmptyHouseholdCode
		}
		households, err := s.records.List(ctx, records.CollectionHouseholds,
			records.Eq("householdCode", householdCode), records.Options{MaxRecords: maxLookupRecords})
		if err != nil {
			return fmt.Errorf("look up household: %w", err)
		}
		if len(households) == 0 {
			return core.ErrHouseholdNotFound
		}

	default: // ModeNew
		householdCode, err = s.generateHouseholdCode(ctx)
		if err != nil {
			return err
		}
		_, err = s.records.Create(ctx, records.CollectionHouseholds, records.Fields{
			"householdCode":   householdCode,
			"monthId":         core.MonthID(s.now()),
			"dailyAdjustment": int64(0),
		})
		if err != nil {
			return fmt.Errorf("create household: %w", err)
		}
	}

	// The user record is always created last.
	user, err := s.records.Create(ctx, records.CollectionUsers, records.Fields{
		"name":          nameNorm,
		"email":         emailNorm,
		"pin":           pinNorm,
		"householdCode": householdCode,
		"createdAt":     s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	sess := core.Session{UserID: user.ID, UserName: nameNorm, HouseholdCode: householdCode}
	if err := s.sessions.Set(ctx, sess); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.setState(func(st *State) { st.Session = &sess })
	slog.InfoContext(ctx, "User registered", "user_id", sess.UserID,
		"household_code", householdCode, "mode", string(in.Mode))
	return nil
}

// generateHouseholdCode draws random codes until one is free, checking the
// record service each time. Gives up after codeAttempts collisions.
func (s *Store) generateHouseholdCode(ctx context.Context) (string, error) {
	for range codeAttempts {
		candidate := s.newCode(core.HouseholdCodeLength)
		found, err := s.records.List(ctx, records.CollectionHouseholds,
			records.Eq("householdCode", candidate), records.Options{MaxRecords: maxLookupRecords})
		if err != nil {
			return "", fmt.Errorf("check household code: %w", err)
		}
		if len(found) == 0 {
			return candidate, nil
		}
	}
	return "", core.ErrCodeExhausted
}

// Logout clears the persisted session and empties the snapshot.
func (s *Store) Logout(ctx context.Context) {
	if err := s.sessions.Clear(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to clear persisted session", "error", err)
	}
	s.setState(func(st *State) {
		st.Session = nil
		st.Household = nil
		st.Items = nil
		st.ShoppingItems = nil
	})
}

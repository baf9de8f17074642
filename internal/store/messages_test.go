package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"bare domain error", core.ErrWrongPin, "Pin incorrecto."},
		{"wrapped domain error", fmt.Errorf("look up user: %w", core.ErrUserNotFound), "Usuario no existe."},
		{
			"remote error with payload",
			fmt.Errorf("create item: %w", &records.RemoteError{StatusCode: 422, Kind: "INVALID_VALUE", Message: "Field amount is invalid"}),
			"Field amount is invalid (INVALID_VALUE)",
		},
		{"remote error without message", &records.RemoteError{StatusCode: 500}, "algo salió mal"},
		{"unknown error", errors.New("dial tcp: timeout"), "algo salió mal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userMessage(tt.err, "algo salió mal"); got != tt.want {
				t.Errorf("userMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

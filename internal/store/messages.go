package store

import (
	"errors"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
)

// User-facing messages are Spanish; domain errors map to fixed texts and
// remote service errors surface their own payload message.
var userMessages = []struct {
	err  error
	text string
}{
	{core.ErrEmptyEmail, "El email es obligatorio."},
	{core.ErrEmptyPin, "El pin es obligatorio."},
	{core.ErrEmptyName, "El nombre es obligatorio."},
	{core.ErrInvalidPin, "El pin debe tener 4 a 6 dígitos."},
	{core.ErrUserNotFound, "Usuario no existe."},
	{core.ErrWrongPin, "Pin incorrecto."},
	{core.ErrEmailTaken, "Ese email ya está registrado."},
	{core.ErrNoHousehold, "El usuario no tiene hogar asignado."},
	{core.ErrHouseholdNotFound, "Hogar inválido."},
	{core.ErrEmptyHouseholdCode, "Ingresá el código de hogar."},
	{core.ErrCodeExhausted, "No se pudo generar un código de hogar. Reintentá."},
	{core.ErrEmptyItemName, "El nombre del ítem es obligatorio."},
	{core.ErrInvalidAmount, "El monto debe ser un número mayor a 0."},
	{core.ErrEmptyProductName, "El nombre del producto es obligatorio."},
	{core.ErrInvalidTargetQty, "La cantidad total debe ser mayor a 0."},
	{core.ErrInvalidDelta, "La cantidad comprada debe ser mayor a 0."},
	{core.ErrShoppingItemNotFound, "Producto no encontrado."},
}

func userMessage(err error, fallback string) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.text
		}
	}
	var remote *records.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Error()
	}
	return fallback
}

package airtable

import (
	"fmt"
	"strings"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
)

// formulaFor translates a query predicate into the service's formula
// language. Case-insensitive equality wraps the field in LOWER(); the
// predicate value is already lowercased by records.EqFold.
func formulaFor(q records.Query) string {
	if q.IsZero() {
		return ""
	}
	if q.Fold {
		return fmt.Sprintf("LOWER({%s})='%s'", q.Field, escapeFormulaValue(q.Value))
	}
	return fmt.Sprintf("{%s}='%s'", q.Field, escapeFormulaValue(q.Value))
}

// escapeFormulaValue doubles embedded single quotes. All literal escaping
// goes through here; call sites never escape on their own.
func escapeFormulaValue(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

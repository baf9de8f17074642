// Package records defines the port for the hosted tabular record service.
// Collections are independent keyed field maps joined only by denormalized
// code fields; implementations enforce no referential integrity.
package records

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Collection names as provisioned in the backing base.
const (
	CollectionUsers         = "Users"
	CollectionHouseholds    = "Households"
	CollectionItems         = "Items"
	CollectionShoppingItems = "ShoppingItems"
)

type (
	// Fields is the field mapping of a record. Values are whatever the
	// backend's JSON decoder produced; use the typed accessors.
	Fields map[string]any

	// Record couples an opaque backend id with its fields.
	Record struct {
		ID     string
		Fields Fields
	}

	// Update names a record and the field patch to apply to it.
	Update struct {
		ID     string
		Fields Fields
	}

	// Options tunes a List call.
	Options struct {
		MaxRecords int
	}

	// Query is an equality predicate on a named field. Fold selects
	// case-insensitive comparison. The zero Query matches every record.
	// Translation to the backend's formula syntax, including literal
	// escaping, is the implementation's concern and lives in one place.
	Query struct {
		Field string
		Value string
		Fold  bool
	}
)

// Eq builds a case-sensitive equality predicate.
func Eq(field, value string) Query {
	return Query{Field: field, Value: value}
}

// EqFold builds a case-insensitive equality predicate.
func EqFold(field, value string) Query {
	return Query{Field: field, Value: strings.ToLower(value), Fold: true}
}

// IsZero reports whether q matches everything.
func (q Query) IsZero() bool {
	return q.Field == ""
}

// Matches evaluates q against a field mapping. Used by in-memory
// implementations; remote ones translate q server-side.
func (q Query) Matches(f Fields) bool {
	if q.IsZero() {
		return true
	}
	v := f.String(q.Field)
	if q.Fold {
		return strings.EqualFold(v, q.Value)
	}
	return v == q.Value
}

// Store is the record service contract consumed by the domain state store.
type Store interface {
	// List returns all records matching q, paginating until the service
	// reports no continuation.
	List(ctx context.Context, collection string, q Query, opts Options) ([]Record, error)
	Create(ctx context.Context, collection string, fields Fields) (Record, error)
	Update(ctx context.Context, collection, id string, fields Fields) (Record, error)
	Delete(ctx context.Context, collection, id string) (Record, error)
	// BatchUpdate applies every patch, chunking requests to respect the
	// service's batch size limit.
	BatchUpdate(ctx context.Context, collection string, updates []Update) ([]Record, error)
}

// String returns the field as a string, rendering scalars when needed.
func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the field truncated to an integer; 0 when absent or
// non-numeric.
func (f Fields) Int(key string) int64 {
	switch v := f[key].(type) {
	case float64:
		return int64(math.Trunc(v))
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Bool returns the field as a boolean; absent or non-boolean values are
// false.
func (f Fields) Bool(key string) bool {
	v, _ := f[key].(bool)
	return v
}

// RemoteError is a non-success response from the record service, carrying
// the human-readable message extracted from its error payload.
type RemoteError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Kind)
	}
	return e.Message
}

// Package docstore defines a store-neutral description of a read query over a
// document collection, the Store contract every backend implements, and the
// Executor that runs count and find for one page of results.
package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup by identifier matches nothing.
var ErrNotFound = errors.New("document not found")

// Op is a comparison operator in a filter clause.
type Op int

const (
	// Eq matches documents whose field equals Value.
	Eq Op = iota
	// In matches documents whose field equals any element of Value ([]int).
	In
	// Contains matches a case-insensitive literal substring of a string field.
	Contains
	// Gte and Lte are inclusive numeric bounds.
	Gte
	Lte
)

func (o Op) String() string {
	switch o {
	case Eq:
		return "eq"
	case In:
		return "in"
	case Contains:
		return "contains"
	case Gte:
		return "gte"
	case Lte:
		return "lte"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Clause is one predicate on a dotted document path. Clauses in a filter are
// ANDed together.
type Clause struct {
	Field string
	Op    Op
	Value any
}

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// SortField orders results by a dotted document path.
type SortField struct {
	Path string
	Dir  Direction
}

// Query is a complete read request against one collection.
type Query struct {
	Filter     []Clause
	Projection []string // dotted paths to return; empty returns the whole document
	Sort       []SortField
	Skip       int
	Limit      int // zero means no limit
}

// Document is one stored record as JSON, reduced to the projected paths.
// Backends never include their own identifiers.
type Document json.RawMessage

// MarshalJSON lets a Document be embedded as-is in a larger JSON value.
func (d Document) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	return d, nil
}

// Decode unmarshals the document into v.
func (d Document) Decode(v any) error {
	if err := json.Unmarshal(d, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// Equal, OneOf, ContainsFold, AtLeast and AtMost build clauses.
func Equal(field string, v int) Clause    { return Clause{Field: field, Op: Eq, Value: v} }
func OneOf(field string, vs []int) Clause { return Clause{Field: field, Op: In, Value: vs} }
func ContainsFold(field, s string) Clause { return Clause{Field: field, Op: Contains, Value: s} }
func AtLeast(field string, v int) Clause  { return Clause{Field: field, Op: Gte, Value: v} }
func AtMost(field string, v int) Clause   { return Clause{Field: field, Op: Lte, Value: v} }

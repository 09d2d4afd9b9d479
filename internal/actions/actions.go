// Package actions serves the effect-action reference table.
package actions

import (
	"net/url"

	"github.com/HerbHall/wakdex/internal/apperr"
	"github.com/HerbHall/wakdex/internal/catalog"
	"github.com/HerbHall/wakdex/internal/docstore"
	"github.com/HerbHall/wakdex/internal/envelope"
	"github.com/HerbHall/wakdex/internal/locale"
	"github.com/HerbHall/wakdex/internal/paging"
	"github.com/HerbHall/wakdex/internal/validate"
)

// Collection is the store collection and route segment.
const Collection = "actions"

const (
	pathID     = "definition.id"
	pathEffect = "definition.effect"
)

var whitelist = paging.NewWhitelist(
	paging.Field(pathID),
	paging.Field(pathEffect),
)

// Filter selects actions by identifier. When IDs is non-empty it wins and
// ID is ignored.
type Filter struct {
	ID  *int  `query:"id" validate:"omitempty,gt=0"`
	IDs []int `query:"ids" validate:"dive,gt=0"`
}

// Resource implements catalog.Resource for actions.
type Resource struct{}

var _ catalog.Resource[Filter, Action] = Resource{}

// NewModule returns the actions HTTP module.
func NewModule(exec *docstore.Executor, env *envelope.Builder, version string) *catalog.Module[Filter, Action] {
	return catalog.NewModule[Filter, Action](Resource{}, exec, env, version)
}

func (Resource) Name() string                 { return Collection }
func (Resource) Whitelist() *paging.Whitelist { return whitelist }

// ParseFilter reads id and ids. ids accepts repeated keys and comma lists.
func (Resource) ParseFilter(q url.Values) (Filter, error) {
	var v apperr.Violations
	f := Filter{
		ID:  validate.Int(q, "id", &v),
		IDs: validate.IntList(q, "ids", &v),
	}
	validate.Struct(f, &v)
	if err := v.Err(apperr.KindInvalidFilter); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func (Resource) Translate(f Filter, l locale.Locale, opts paging.Options) docstore.Query {
	var clauses []docstore.Clause
	switch {
	case len(f.IDs) > 0:
		clauses = append(clauses, docstore.OneOf(pathID, f.IDs))
	case f.ID != nil:
		clauses = append(clauses, docstore.Equal(pathID, *f.ID))
	}
	return catalog.PageQuery(whitelist, opts, l, clauses, projection(l))
}

func (Resource) Lookup(id int, l locale.Locale) docstore.Query {
	return catalog.LookupQuery(pathID, id, projection(l))
}

func projection(l locale.Locale) []string {
	return []string{pathID, pathEffect, locale.Field("description", l)}
}

// Action is the client representation of one action.
type Action struct {
	ID          int     `json:"id"`
	Effect      string  `json:"effect"`
	Description *string `json:"description"`
}

type record struct {
	Definition struct {
		ID     int    `json:"id"`
		Effect string `json:"effect"`
	} `json:"definition"`
	Description locale.Localized `json:"description"`
}

// Map converts a stored action for locale l. The effect label is stored in a
// single language and passed through as-is.
func (Resource) Map(doc docstore.Document, l locale.Locale) (Action, error) {
	var rec record
	if err := doc.Decode(&rec); err != nil {
		return Action{}, err
	}
	return Action{
		ID:          rec.Definition.ID,
		Effect:      rec.Definition.Effect,
		Description: rec.Description.Get(l),
	}, nil
}

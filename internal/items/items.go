// Package items serves the equipment catalog: filtering by item type, level
// range and localized title.
package items

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
const Collection = "items"

// Document paths.
const (
	pathID       = "definition.item.id"
	pathLevel    = "definition.item.level"
	pathItemType = "definition.item.baseParameters.itemTypeId"
)

var whitelist = paging.NewWhitelist(
	paging.Field(pathID),
	paging.Field(pathLevel),
	paging.Field(pathItemType),
	paging.LocalizedField("definition.item.title", "title"),
)

// Filter is the validated item filter. Nil and empty fields add no clause.
type Filter struct {
	ItemTypeID *int   `query:"itemTypeId" validate:"omitempty,gt=0"`
	Title      string `query:"title"`
	LevelMin   *int   `query:"levelMin" validate:"omitempty,min=0"`
	LevelMax   *int   `query:"levelMax" validate:"omitempty,min=0"`
}

// Resource implements catalog.Resource for items.
type Resource struct{}

var _ catalog.Resource[Filter, Item] = Resource{}

// NewModule returns the items HTTP module.
func NewModule(exec *docstore.Executor, env *envelope.Builder, version string) *catalog.Module[Filter, Item] {
	return catalog.NewModule[Filter, Item](Resource{}, exec, env, version)
}

func (Resource) Name() string                 { return Collection }
func (Resource) Whitelist() *paging.Whitelist { return whitelist }

// ParseFilter reads itemTypeId, title, levelMin and levelMax.
func (Resource) ParseFilter(q url.Values) (Filter, error) {
	var v apperr.Violations
	f := Filter{
		ItemTypeID: validate.Int(q, "itemTypeId", &v),
		Title:      q.Get("title"),
		LevelMin:   validate.Int(q, "levelMin", &v),
		LevelMax:   validate.Int(q, "levelMax", &v),
	}
	validate.Struct(f, &v)
	if f.LevelMin != nil && f.LevelMax != nil && *f.LevelMin >= *f.LevelMax {
		v.Add("levelMin must be less than levelMax")
	}
	if err := v.Err(apperr.KindInvalidFilter); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// Translate builds the page query. The title match is a case-insensitive
// literal substring of the title in the request locale.
func (Resource) Translate(f Filter, l locale.Locale, opts paging.Options) docstore.Query {
	var clauses []docstore.Clause
	if f.ItemTypeID != nil {
		clauses = append(clauses, docstore.Equal(pathItemType, *f.ItemTypeID))
	}
	if f.Title != "" {
		clauses = append(clauses, docstore.ContainsFold(locale.Field("title", l), f.Title))
	}
	if f.LevelMin != nil {
		clauses = append(clauses, docstore.AtLeast(pathLevel, *f.LevelMin))
	}
	if f.LevelMax != nil {
		clauses = append(clauses, docstore.AtMost(pathLevel, *f.LevelMax))
	}
	return catalog.PageQuery(whitelist, opts, l, clauses, projection(l))
}

func (Resource) Lookup(id int, l locale.Locale) docstore.Query {
	return catalog.LookupQuery(pathID, id, projection(l))
}

func projection(l locale.Locale) []string {
	return []string{
		pathID,
		pathLevel,
		pathItemType,
		"definition.item.baseParameters.itemSetId",
		"definition.item.graphicParameters.gfxId",
		"definition.item.graphicParameters.femaleGfxId",
		"definition.equipEffects",
		locale.Field("title", l),
		locale.Field("description", l),
	}
}

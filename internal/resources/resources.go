// Package resources serves harvestable resources (trees, crops, ores) and
// their growing conditions.
package resources

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
const Collection = "resources"

const (
	pathID   = "definition.id"
	pathType = "definition.resourceType"
)

var whitelist = paging.NewWhitelist(
	paging.Field(pathID),
	paging.Field(pathType),
	paging.LocalizedField("title", "title"),
)

// Filter selects resources by type.
type Filter struct {
	ResourceType *int `query:"resourceType" validate:"omitempty,gt=0"`
}

// Resource implements catalog.Resource for resources.
type Resource struct{}

var _ catalog.Resource[Filter, Harvestable] = Resource{}

// NewModule returns the resources HTTP module.
func NewModule(exec *docstore.Executor, env *envelope.Builder, version string) *catalog.Module[Filter, Harvestable] {
	return catalog.NewModule[Filter, Harvestable](Resource{}, exec, env, version)
}

func (Resource) Name() string                 { return Collection }
func (Resource) Whitelist() *paging.Whitelist { return whitelist }

func (Resource) ParseFilter(q url.Values) (Filter, error) {
	var v apperr.Violations
	f := Filter{ResourceType: validate.Int(q, "resourceType", &v)}
	validate.Struct(f, &v)
	if err := v.Err(apperr.KindInvalidFilter); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func (Resource) Translate(f Filter, l locale.Locale, opts paging.Options) docstore.Query {
	var clauses []docstore.Clause
	if f.ResourceType != nil {
		clauses = append(clauses, docstore.Equal(pathType, *f.ResourceType))
	}
	return catalog.PageQuery(whitelist, opts, l, clauses, projection(l))
}

func (Resource) Lookup(id int, l locale.Locale) docstore.Query {
	return catalog.LookupQuery(pathID, id, projection(l))
}

var definitionFields = []string{
	"id",
	"resourceType",
	"isBlocking",
	"idealRainRangeMin",
	"idealRainRangeMax",
	"idealTemperatureRangeMin",
	"idealTemperatureRangeMax",
	"iconGfxId",
	"lastEvolutionStep",
	"usableByHeroes",
	"idealRain",
}

func projection(l locale.Locale) []string {
	out := make([]string, 0, len(definitionFields)+1)
	for _, f := range definitionFields {
		out = append(out, "definition."+f)
	}
	return append(out, locale.Field("title", l))
}

// Definition is the full environmental block of a resource.
type Definition struct {
	ID                       int  `json:"id"`
	ResourceType             int  `json:"resourceType"`
	IsBlocking               bool `json:"isBlocking"`
	IdealRainRangeMin        int  `json:"idealRainRangeMin"`
	IdealRainRangeMax        int  `json:"idealRainRangeMax"`
	IdealTemperatureRangeMin int  `json:"idealTemperatureRangeMin"`
	IdealTemperatureRangeMax int  `json:"idealTemperatureRangeMax"`
	IconGfxID                int  `json:"iconGfxId"`
	LastEvolutionStep        int  `json:"lastEvolutionStep"`
	UsableByHeroes           bool `json:"usableByHeroes"`
	IdealRain                int  `json:"idealRain"`
}

// Harvestable is the client representation of one resource.
type Harvestable struct {
	Definition Definition `json:"definition"`
	Title      *string    `json:"title"`
}

type record struct {
	Definition Definition       `json:"definition"`
	Title      locale.Localized `json:"title"`
}

func (Resource) Map(doc docstore.Document, l locale.Locale) (Harvestable, error) {
	var rec record
	if err := doc.Decode(&rec); err != nil {
		return Harvestable{}, err
	}
	return Harvestable{Definition: rec.Definition, Title: rec.Title.Get(l)}, nil
}

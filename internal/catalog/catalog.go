// Package catalog is the read pipeline shared by every catalog resource:
//
//	locale → filter → page options → query → count ‖ find → map → envelope
//
// A resource supplies only what differs between collections (its filter
// grammar, sortable fields, projection and DTO) by implementing Resource.
package catalog

import (
	"net/url"

	"github.com/HerbHall/wakdex/internal/docstore"
	"github.com/HerbHall/wakdex/internal/locale"
	"github.com/HerbHall/wakdex/internal/paging"
)

// Resource describes one catalog collection. F is the validated filter type
// and D the DTO returned to clients.
type Resource[F, D any] interface {
	// Name is both the store collection and the route segment.
	Name() string

	// Whitelist lists the orderBy keys clients may request.
	Whitelist() *paging.Whitelist

	// ParseFilter validates the resource's filter keys in q. Unknown keys are
	// ignored. Every violation is reported in one InvalidFilter error.
	ParseFilter(q url.Values) (F, error)

	// Translate builds the store query for one page.
	Translate(f F, l locale.Locale, opts paging.Options) docstore.Query

	// Lookup builds the store query for a single record by identifier.
	Lookup(id int, l locale.Locale) docstore.Query

	// Map converts a projected document into the locale-resolved DTO.
	Map(doc docstore.Document, l locale.Locale) (D, error)
}

// PageQuery assembles the parts of a store query every resource shares: sort
// on the whitelisted path for the locale, skip and limit.
func PageQuery(w *paging.Whitelist, opts paging.Options, l locale.Locale, filter []docstore.Clause, projection []string) docstore.Query {
	q := docstore.Query{
		Filter:     filter,
		Projection: projection,
		Skip:       opts.Skip(),
		Limit:      opts.Take,
	}
	if opts.OrderBy == "" {
		return q
	}
	if path, ok := w.Path(opts.OrderBy, l); ok {
		dir := docstore.Asc
		if opts.Order == paging.Desc {
			dir = docstore.Desc
		}
		q.Sort = []docstore.SortField{{Path: path, Dir: dir}}
	}
	return q
}

// LookupQuery matches idField == id with the given projection.
func LookupQuery(idField string, id int, projection []string) docstore.Query {
	return docstore.Query{
		Filter:     []docstore.Clause{docstore.Equal(idField, id)},
		Projection: projection,
		Limit:      1,
	}
}

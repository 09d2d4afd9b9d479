// Package paging resolves pagination and sort parameters once per request and
// derives the metadata returned alongside every paginated response.
package paging

import (
	"math"
	"net/url"
	"strings"

	"github.com/HerbHall/wakdex/internal/apperr"
	"github.com/HerbHall/wakdex/internal/locale"
	"github.com/HerbHall/wakdex/internal/validate"
)

// Order is a sort direction as spelled on the wire.
type Order string

const (
	Asc  Order = "ASC"
	Desc Order = "DESC"
)

// Defaults and bounds.
const (
	DefaultPage = 1
	DefaultTake = 10
	MaxTake     = 100
	MaxPage     = math.MaxInt32
)

// Raw is the unvalidated pagination input, as read from the query string.
type Raw struct {
	Page    string
	Take    string
	Order   string
	OrderBy string
}

// RawFromQuery extracts the pagination keys from q. Any client-supplied
// "skip" is ignored; skip is always derived from page and take.
func RawFromQuery(q url.Values) Raw {
	return Raw{
		Page:    q.Get("page"),
		Take:    q.Get("take"),
		Order:   q.Get("order"),
		OrderBy: q.Get("orderBy"),
	}
}

// Options is the resolved, immutable pagination value.
type Options struct {
	Page    int
	Take    int
	Order   Order
	OrderBy string // whitelist key; empty means store-defined order
}

// Skip is the number of matching records before this page. It saturates
// at math.MaxInt instead of wrapping.
func (o Options) Skip() int {
	if o.Page <= 1 || o.Take <= 0 {
		return 0
	}
	if o.Page-1 > math.MaxInt/o.Take {
		return math.MaxInt
	}
	return (o.Page - 1) * o.Take
}

type pageInput struct {
	Page  int    `query:"page" validate:"min=1,max=2147483647"`
	Take  int    `query:"take" validate:"min=1,max=100"`
	Order string `query:"order" validate:"oneof=ASC DESC"`
}

// Build applies defaults to raw and validates the result against w. All
// violations are reported together as one InvalidPagination error.
func Build(raw Raw, w *Whitelist) (Options, error) {
	var v apperr.Violations
	q := url.Values{"page": {raw.Page}, "take": {raw.Take}}

	in := pageInput{Page: DefaultPage, Take: DefaultTake, Order: string(Asc)}
	if n := validate.Int(q, "page", &v); n != nil {
		in.Page = *n
	}
	if n := validate.Int(q, "take", &v); n != nil {
		in.Take = *n
	}
	if raw.Order != "" {
		in.Order = raw.Order
	}
	validate.Struct(in, &v)

	orderBy := raw.OrderBy
	if orderBy == "" && w != nil {
		orderBy = w.Default()
	}
	if orderBy != "" && (w == nil || !w.Has(orderBy)) {
		v.Add("orderBy must be one of %s", strings.Join(w.Keys(), ", "))
	}

	if err := v.Err(apperr.KindInvalidPagination); err != nil {
		return Options{}, err
	}
	return Options{Page: in.Page, Take: in.Take, Order: Order(in.Order), OrderBy: orderBy}, nil
}

// SortField is one orderBy key a client may request.
type SortField struct {
	Key  string
	path func(locale.Locale) string
}

// Field whitelists key, sorting on the store path of the same name.
func Field(key string) SortField {
	return SortField{Key: key, path: func(locale.Locale) string { return key }}
}

// LocalizedField whitelists key, sorting on the locale entry of the
// localized map at base (e.g. "title" → "title.en").
func LocalizedField(key, base string) SortField {
	return SortField{Key: key, path: func(l locale.Locale) string { return locale.Field(base, l) }}
}

// Whitelist is the fixed set of sortable fields of one resource.
type Whitelist struct {
	def    string
	keys   []string
	fields map[string]SortField
}

// NewWhitelist builds a whitelist whose default key is the first field.
func NewWhitelist(fields ...SortField) *Whitelist {
	w := &Whitelist{fields: make(map[string]SortField, len(fields))}
	for _, f := range fields {
		if _, dup := w.fields[f.Key]; dup {
			continue
		}
		w.fields[f.Key] = f
		w.keys = append(w.keys, f.Key)
	}
	if len(w.keys) > 0 {
		w.def = w.keys[0]
	}
	return w
}

// Default returns the key used when the client sends no orderBy.
func (w *Whitelist) Default() string { return w.def }

// Has reports whether key may be requested.
func (w *Whitelist) Has(key string) bool {
	_, ok := w.fields[key]
	return ok
}

// Keys returns the whitelisted keys in declaration order.
func (w *Whitelist) Keys() []string {
	if w == nil {
		return nil
	}
	out := make([]string, len(w.keys))
	copy(out, w.keys)
	return out
}

// Path resolves key to a store path for l.
func (w *Whitelist) Path(key string, l locale.Locale) (string, bool) {
	f, ok := w.fields[key]
	if !ok {
		return "", false
	}
	return f.path(l), true
}

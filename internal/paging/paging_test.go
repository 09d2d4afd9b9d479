package paging

import (
	"math"
	"net/url"
	"testing"

	"github.com/HerbHall/wakdex/internal/apperr"
	"github.com/HerbHall/wakdex/internal/locale"
)

func itemWhitelist() *Whitelist {
	return NewWhitelist(
		Field("definition.item.id"),
		Field("definition.item.level"),
		LocalizedField("definition.item.title", "title"),
	)
}

func TestBuildDefaults(t *testing.T) {
	opts, err := Build(Raw{}, itemWhitelist())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := Options{Page: 1, Take: 10, Order: Asc, OrderBy: "definition.item.id"}
	if opts != want {
		t.Errorf("Build() = %+v, want %+v", opts, want)
	}
	if opts.Skip() != 0 {
		t.Errorf("Skip() = %d, want 0", opts.Skip())
	}
}

func TestBuildExplicit(t *testing.T) {
	opts, err := Build(Raw{Page: "3", Take: "25", Order: "DESC", OrderBy: "definition.item.level"}, itemWhitelist())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if opts.Page != 3 || opts.Take != 25 || opts.Order != Desc || opts.OrderBy != "definition.item.level" {
		t.Errorf("Build() = %+v", opts)
	}
	if opts.Skip() != 50 {
		t.Errorf("Skip() = %d, want 50", opts.Skip())
	}
}

func TestSkipFormula(t *testing.T) {
	for page := 1; page <= 5; page++ {
		for _, take := range []int{1, 7, 10, 100} {
			o := Options{Page: page, Take: take}
			if got, want := o.Skip(), (page-1)*take; got != want {
				t.Errorf("Skip(page=%d, take=%d) = %d, want %d", page, take, got, want)
			}
		}
	}
}

func TestBuildAcceptsMaxPage(t *testing.T) {
	opts, err := Build(Raw{Page: "2147483647", Take: "100"}, itemWhitelist())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got, want := opts.Skip(), (MaxPage-1)*MaxTake; got != want {
		t.Errorf("Skip() = %d, want %d", got, want)
	}
}

func TestSkipSaturates(t *testing.T) {
	o := Options{Page: math.MaxInt, Take: 10}
	if got := o.Skip(); got != math.MaxInt {
		t.Errorf("Skip() = %d, want %d", got, math.MaxInt)
	}
}

func TestBuildRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		want []string
	}{
		{name: "take zero", raw: Raw{Take: "0"}, want: []string{"take must be greater than or equal to 1"}},
		{name: "take over max", raw: Raw{Take: "101"}, want: []string{"take must be less than or equal to 100"}},
		{name: "page zero", raw: Raw{Page: "0"}, want: []string{"page must be greater than or equal to 1"}},
		{name: "page negative", raw: Raw{Page: "-1"}, want: []string{"page must be greater than or equal to 1"}},
		{name: "page not a number", raw: Raw{Page: "two"}, want: []string{"page must be an integer"}},
		{name: "page beyond max", raw: Raw{Page: "2147483648"}, want: []string{"page must be less than or equal to 2147483647"}},
		{name: "page at int64 max", raw: Raw{Page: "9223372036854775807", Take: "10"}, want: []string{
			"page must be less than or equal to 2147483647",
		}},
		{name: "lowercase order", raw: Raw{Order: "asc"}, want: []string{"order must be one of ASC, DESC"}},
		{name: "unknown orderBy", raw: Raw{OrderBy: "definition.item.rarity"}, want: []string{
			"orderBy must be one of definition.item.id, definition.item.level, definition.item.title",
		}},
		{name: "several at once", raw: Raw{Page: "0", Take: "500"}, want: []string{
			"page must be greater than or equal to 1",
			"take must be less than or equal to 100",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.raw, itemWhitelist())
			e, ok := apperr.As(err)
			if !ok || e.Kind != apperr.KindInvalidPagination {
				t.Fatalf("Build() error = %v, want InvalidPagination", err)
			}
			if len(e.Messages) != len(tt.want) {
				t.Fatalf("Messages = %v, want %v", e.Messages, tt.want)
			}
			for i := range tt.want {
				if e.Messages[i] != tt.want[i] {
					t.Errorf("Messages[%d] = %q, want %q", i, e.Messages[i], tt.want[i])
				}
			}
		})
	}
}

func TestRawFromQueryIgnoresSkip(t *testing.T) {
	q, _ := url.ParseQuery("page=2&take=5&skip=999&order=DESC&orderBy=definition.item.id")
	raw := RawFromQuery(q)
	opts, err := Build(raw, itemWhitelist())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if opts.Skip() != 5 {
		t.Errorf("Skip() = %d, want 5 (client skip must be ignored)", opts.Skip())
	}
}

func TestWhitelistPath(t *testing.T) {
	w := itemWhitelist()

	if p, ok := w.Path("definition.item.level", locale.FR); !ok || p != "definition.item.level" {
		t.Errorf("Path(level) = %q, %v", p, ok)
	}
	if p, ok := w.Path("definition.item.title", locale.ES); !ok || p != "title.es" {
		t.Errorf("Path(title, es) = %q, %v; want title.es", p, ok)
	}
	if _, ok := w.Path("nope", locale.EN); ok {
		t.Error("Path(nope) ok = true, want false")
	}
	if w.Default() != "definition.item.id" {
		t.Errorf("Default() = %q", w.Default())
	}
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		itemCount int
		total     int
		want      Meta
	}{
		{
			name: "first of two pages",
			opts: Options{Page: 1, Take: 1}, itemCount: 1, total: 2,
			want: Meta{Page: 1, Take: 1, ItemCount: 1, TotalCount: 2, PageCount: 2, HasPreviousPage: false, HasNextPage: true},
		},
		{
			name: "last page",
			opts: Options{Page: 2, Take: 1}, itemCount: 1, total: 2,
			want: Meta{Page: 2, Take: 1, ItemCount: 1, TotalCount: 2, PageCount: 2, HasPreviousPage: true, HasNextPage: false},
		},
		{
			name: "take larger than total",
			opts: Options{Page: 1, Take: 10}, itemCount: 4, total: 4,
			want: Meta{Page: 1, Take: 10, ItemCount: 4, TotalCount: 4, PageCount: 1},
		},
		{
			name: "past the end",
			opts: Options{Page: 11, Take: 10}, itemCount: 0, total: 4,
			want: Meta{Page: 11, Take: 10, ItemCount: 0, TotalCount: 4, PageCount: 1, HasPreviousPage: true},
		},
		{
			name: "empty result",
			opts: Options{Page: 1, Take: 10}, itemCount: 0, total: 0,
			want: Meta{Page: 1, Take: 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewMeta(tt.opts, tt.itemCount, tt.total); got != tt.want {
				t.Errorf("NewMeta() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

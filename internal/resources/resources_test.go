package resources

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerbHall/wakdex/internal/apperr"
	"github.com/HerbHall/wakdex/internal/catalog"
	"github.com/HerbHall/wakdex/internal/docstore"
	"github.com/HerbHall/wakdex/internal/locale"
	"github.com/HerbHall/wakdex/internal/paging"
	"github.com/HerbHall/wakdex/internal/testutil"
)

func TestParseFilter(t *testing.T) {
	f, err := Resource{}.ParseFilter(url.Values{"resourceType": {"2"}})
	require.NoError(t, err)
	require.NotNil(t, f.ResourceType)
	assert.Equal(t, 2, *f.ResourceType)

	for _, bad := range []string{"0", "-1", "2.5", "tree"} {
		_, err := Resource{}.ParseFilter(url.Values{"resourceType": {bad}})
		assert.Equal(t, apperr.KindInvalidFilter, apperr.KindOf(err), "resourceType=%s", bad)
	}
}

func TestTranslate(t *testing.T) {
	rt := 7
	q := Resource{}.Translate(Filter{ResourceType: &rt}, locale.FR,
		paging.Options{Page: 3, Take: 2, Order: paging.Asc, OrderBy: "title"})

	assert.Equal(t, []docstore.Clause{docstore.Equal("definition.resourceType", 7)}, q.Filter)
	assert.Equal(t, []docstore.SortField{{Path: "title.fr", Dir: docstore.Asc}}, q.Sort)
	assert.Equal(t, 4, q.Skip)
	assert.Equal(t, 2, q.Limit)
	assert.Contains(t, q.Projection, "definition.idealRain")
	assert.Contains(t, q.Projection, "title.fr")
}

func TestMapKeepsDefinition(t *testing.T) {
	h, err := Resource{}.Map(docstore.Document(`{
		"definition": {"id": 37, "resourceType": 7, "idealTemperatureRangeMin": -25, "iconGfxId": -1, "lastEvolutionStep": 16},
		"title": {"en": "Primitive Iron"}
	}`), locale.EN)
	require.NoError(t, err)

	assert.Equal(t, Definition{ID: 37, ResourceType: 7, IdealTemperatureRangeMin: -25, IconGfxID: -1, LastEvolutionStep: 16}, h.Definition)
	require.NotNil(t, h.Title)
	assert.Equal(t, "Primitive Iron", *h.Title)
}

func newService(t *testing.T) *catalog.Service[Filter, Harvestable] {
	t.Helper()
	return catalog.NewService[Filter, Harvestable](Resource{}, docstore.NewExecutor(testutil.NewSeededStore(t)))
}

func TestFindByType(t *testing.T) {
	page, err := newService(t).Find(context.Background(), "en", url.Values{
		"resourceType": {"2"},
		"orderBy":      {"title"},
	})
	require.NoError(t, err)

	var got []string
	for _, h := range page.Data {
		got = append(got, *h.Title)
	}
	assert.Equal(t, []string{"Babbage Plant", "Barley", "Wheat"}, got)
	assert.Equal(t, 3, page.Total)
}

func TestFindPaged(t *testing.T) {
	page, err := newService(t).Find(context.Background(), "es", url.Values{"take": {"3"}, "page": {"3"}})
	require.NoError(t, err)

	require.Len(t, page.Data, 2)
	assert.Equal(t, 60, page.Data[0].Definition.ID)
	assert.Equal(t, 76, page.Data[1].Definition.ID)
	meta := paging.NewMeta(page.Opts, len(page.Data), page.Total)
	assert.Equal(t, paging.Meta{Page: 3, Take: 3, ItemCount: 2, TotalCount: 8, PageCount: 3, HasPreviousPage: true}, meta)
}

func TestFindOneNotFound(t *testing.T) {
	_, err := newService(t).FindOne(context.Background(), "en", "1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

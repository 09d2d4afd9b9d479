package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerbHall/wakdex/internal/docstore"
	"github.com/HerbHall/wakdex/internal/fixtures"
)

func seeded(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	set, err := fixtures.Default()
	require.NoError(t, err)
	require.NoError(t, set.Seed(context.Background(), s))
	return s
}

func ids(t *testing.T, docs []docstore.Document) []int {
	t.Helper()
	out := make([]int, 0, len(docs))
	for _, d := range docs {
		var v struct {
			Definition struct {
				ID   int `json:"id"`
				Item struct {
					ID int `json:"id"`
				} `json:"item"`
			} `json:"definition"`
		}
		require.NoError(t, json.Unmarshal(d, &v))
		if v.Definition.Item.ID != 0 {
			out = append(out, v.Definition.Item.ID)
		} else {
			out = append(out, v.Definition.ID)
		}
	}
	return out
}

func TestNewAppliesSchemaOnce(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Migrate(context.Background(), "documents", schema))

	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM _migrations WHERE component = 'documents'").Scan(&n))
	assert.Equal(t, 1, n)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestTxRollsBack(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	err := s.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM documents"); err != nil {
			return err
		}
		return sql.ErrTxDone
	})
	require.ErrorIs(t, err, sql.ErrTxDone)

	n, err := s.Count(ctx, "items", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestCountFilters(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		coll   string
		filter []docstore.Clause
		want   int
	}{
		{name: "all items", coll: "items", want: 4},
		{name: "item type", coll: "items", filter: []docstore.Clause{docstore.Equal("definition.item.baseParameters.itemTypeId", 120)}, want: 2},
		{name: "level range inclusive", coll: "items", filter: []docstore.Clause{
			docstore.AtLeast("definition.item.level", 7),
			docstore.AtMost("definition.item.level", 8),
		}, want: 2},
		{name: "title substring ignores case", coll: "items", filter: []docstore.Clause{docstore.ContainsFold("title.en", "gobBALL")}, want: 2},
		{name: "title is literal", coll: "items", filter: []docstore.Clause{docstore.ContainsFold("title.en", "Gob.*")}, want: 0},
		{name: "title folds non-ASCII", coll: "items", filter: []docstore.Clause{docstore.ContainsFold("title.es", "JALATÓ")}, want: 1},
		{name: "action ids", coll: "actions", filter: []docstore.Clause{docstore.OneOf("definition.id", []int{1, 20, 999})}, want: 2},
		{name: "empty id list", coll: "actions", filter: []docstore.Clause{docstore.OneOf("definition.id", nil)}, want: 0},
		{name: "resource type", coll: "resources", filter: []docstore.Clause{docstore.Equal("definition.resourceType", 2)}, want: 3},
		{name: "unknown collection", coll: "spells", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := s.Count(ctx, tt.coll, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestFindSortSkipLimit(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	docs, err := s.Find(ctx, "items", docstore.Query{
		Sort:  []docstore.SortField{{Path: "definition.item.level", Dir: docstore.Desc}},
		Skip:  1,
		Limit: 2,
	})
	require.NoError(t, err)
	// Levels: 2024=9, 2022=8, 2035=7, 2021=6.
	assert.Equal(t, []int{2022, 2035}, ids(t, docs))

	docs, err = s.Find(ctx, "items", docstore.Query{
		Sort: []docstore.SortField{{Path: "title.en", Dir: docstore.Asc}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2022, 2021, 2024, 2035}, ids(t, docs))
}

func TestFindPastTheEnd(t *testing.T) {
	s := seeded(t)
	docs, err := s.Find(context.Background(), "items", docstore.Query{Skip: 100, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestFindProjection(t *testing.T) {
	s := seeded(t)

	docs, err := s.Find(context.Background(), "actions", docstore.Query{
		Filter:     []docstore.Clause{docstore.Equal("definition.id", 20)},
		Projection: []string{"definition.id", "definition.effect", "description.en", "description.it"},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.JSONEq(t, `{
		"definition": {"id": 20, "effect": "Boost : Point de vie (PV)"},
		"description": {"en": "[#charac HP] [#1] HP"}
	}`, string(docs[0]))
}

func TestFindProjectsNestedObjects(t *testing.T) {
	s := seeded(t)

	docs, err := s.Find(context.Background(), "items", docstore.Query{
		Filter:     []docstore.Clause{docstore.Equal("definition.item.id", 2022)},
		Projection: []string{"definition.item.graphicParameters", "definition.equipEffects"},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	var got struct {
		Definition struct {
			Item struct {
				GraphicParameters map[string]int `json:"graphicParameters"`
			} `json:"item"`
			EquipEffects []json.RawMessage `json:"equipEffects"`
		} `json:"definition"`
	}
	require.NoError(t, json.Unmarshal(docs[0], &got))
	assert.Equal(t, map[string]int{"gfxId": 1032022, "femaleGfxId": 1032022}, got.Definition.Item.GraphicParameters)
	assert.Len(t, got.Definition.EquipEffects, 2)
}

func TestReplace(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	require.NoError(t, s.Replace(ctx, "actions", []docstore.Document{
		docstore.Document(`{"definition":{"id":7}}`),
	}))
	n, err := s.Count(ctx, "actions", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Other collections are untouched.
	n, err = s.Count(ctx, "items", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	err = s.Replace(ctx, "actions", []docstore.Document{docstore.Document(`{not json`)})
	assert.Error(t, err)
}

func TestUnsupportedClause(t *testing.T) {
	s := seeded(t)
	_, err := s.Count(context.Background(), "items", []docstore.Clause{{Field: "title.en", Op: docstore.Contains, Value: 3}})
	assert.Error(t, err)
}

func TestCasefold(t *testing.T) {
	v, err := casefold(nil, []driver.Value{"ÉLAN SS"})
	require.NoError(t, err)
	assert.Equal(t, "élan ss", v)

	v, err = casefold(nil, []driver.Value{nil})
	require.NoError(t, err)
	assert.Nil(t, v)
}

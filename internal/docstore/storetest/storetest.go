// Package storetest holds behaviour every docstore.Store backend must share.
package storetest

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/notes/internal/docstore"
)

// Run exercises store against the common Store semantics. owner must be
// unique per call so runs against a shared database do not collide.
func Run(t *testing.T, store docstore.Store, owner string) {
	t.Run("MergeReplacesTopLevelFields", func(t *testing.T) {
		testMergeReplacesTopLevelFields(t, store, owner)
	})
	t.Run("QueryReturnsEveryMatch", func(t *testing.T) {
		testQueryReturnsEveryMatch(t, store, owner)
	})
}

func testMergeReplacesTopLevelFields(t *testing.T, store docstore.Store, owner string) {
	ctx := context.Background()

	id, err := store.Add(ctx, "notes", docstore.Fields{
		"ownerId": owner + "-merge",
		"title":   "x",
		"meta":    map[string]any{"k1": "v1"},
		"count":   float64(2),
	})
	require.NoError(t, err)

	require.NoError(t, store.Merge(ctx, "notes", id, docstore.Fields{
		"title": nil,
		"meta":  map[string]any{"k2": "v2"},
	}))

	doc, err := store.Get(ctx, "notes", id)
	require.NoError(t, err)

	title, present := doc.Fields["title"]
	assert.True(t, present, "nil must be stored, not delete the field")
	assert.Nil(t, title)
	assert.Equal(t, map[string]any{"k2": "v2"}, doc.Fields["meta"])
	assert.Equal(t, float64(2), doc.Fields["count"])
	assert.Equal(t, owner+"-merge", doc.Fields["ownerId"])

	require.NoError(t, store.Merge(ctx, "notes", id, docstore.Fields{}))
	same, err := store.Get(ctx, "notes", id)
	require.NoError(t, err)
	assert.Equal(t, doc.Fields, same.Fields)
}

func testQueryReturnsEveryMatch(t *testing.T, store docstore.Store, owner string) {
	ctx := context.Background()
	const total = 1001

	for i := 0; i < total; i++ {
		_, err := store.Add(ctx, "notes", docstore.Fields{
			"ownerId": owner,
			"title":   "note " + strconv.Itoa(i),
		})
		require.NoError(t, err)
	}

	docs, err := store.Query(ctx, "notes", docstore.Equal("ownerId", owner))
	require.NoError(t, err)
	assert.Len(t, docs, total)
}

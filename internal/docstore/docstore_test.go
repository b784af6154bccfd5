package docstore_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travis-scholtens/sladdle/internal/database"
	"github.com/travis-scholtens/sladdle/internal/docstore"
)

// setupTestStore creates a temporary in-memory SQLite database for testing.
func setupTestStore(t *testing.T) (docstore.Store, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	return docstore.New(db), dbTeardown
}

func TestSetGetDelete(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	err := store.Set("channels/C1", map[string]any{"league": "apta", "division": "d19"})
	require.NoError(t, err)

	doc, err := store.Get("channels/C1")
	require.NoError(t, err)
	assert.Equal(t, "C1", doc.ID)
	assert.Equal(t, int64(1), doc.Version)
	assert.Equal(t, "apta", doc.Data()["league"])

	require.NoError(t, store.Delete("channels/C1"))

	_, err = store.Get("channels/C1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestSetReplacesWholeDocument(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	require.NoError(t, store.Set("channels/C1", map[string]any{"league": "apta", "team": "t1"}))
	require.NoError(t, store.Set("channels/C1", map[string]any{"league": "apta"}))

	doc, err := store.Get("channels/C1")
	require.NoError(t, err)
	assert.NotContains(t, doc.Data(), "team")
	assert.Equal(t, int64(2), doc.Version, "replacing a document should bump its version")
}

func TestUpdateMergesFields(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	require.NoError(t, store.Set("channels/C1", map[string]any{"league": "apta"}))
	require.NoError(t, store.Update("channels/C1", map[string]any{"team": "t1"}))

	doc, err := store.Get("channels/C1")
	require.NoError(t, err)
	assert.Equal(t, "apta", doc.Data()["league"])
	assert.Equal(t, "t1", doc.Data()["team"])

	t.Run("creates the document when absent", func(t *testing.T) {
		require.NoError(t, store.Update("channels/C2", map[string]any{"league": "apta"}))
		doc, err := store.Get("channels/C2")
		require.NoError(t, err)
		assert.Equal(t, "apta", doc.Data()["league"])
	})
}

func TestMutate(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	require.NoError(t, store.Set("channels/C1/lineups/2024-05-01", map[string]any{"count": float64(0)}))

	for i := 0; i < 3; i++ {
		_, err := store.Mutate("channels/C1/lineups/2024-05-01", func(current map[string]any) (map[string]any, error) {
			current["count"] = current["count"].(float64) + 1
			return current, nil
		})
		require.NoError(t, err)
	}

	doc, err := store.Get("channels/C1/lineups/2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, float64(3), doc.Data()["count"])
	assert.Equal(t, int64(4), doc.Version, "each mutation should bump the version")
}

func TestMutateAbortsOnError(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	require.NoError(t, store.Set("channels/C1", map[string]any{"league": "apta"}))

	sentinel := errors.New("nope")
	_, err := store.Mutate("channels/C1", func(current map[string]any) (map[string]any, error) {
		current["league"] = "clobbered"
		return nil, sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	doc, err := store.Get("channels/C1")
	require.NoError(t, err)
	assert.Equal(t, "apta", doc.Data()["league"], "an aborted mutation should not write")
	assert.Equal(t, int64(1), doc.Version)
}

func TestMutateCreatesWhenAbsent(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	doc, err := store.Mutate("channels/C9", func(current map[string]any) (map[string]any, error) {
		require.Nil(t, current)
		return map[string]any{"admins": []any{"U1"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Version)
}

func TestQuery(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	lineups := map[string]string{
		"2024-05-01": "2024-05-01",
		"2024-05-08": "2024-05-08",
		"2024-04-24": "2024-04-24",
	}
	for id, date := range lineups {
		require.NoError(t, store.Set("channels/C1/lineups/"+id, map[string]any{"play_on_date": date}))
	}
	// A lineup in another channel must never match.
	require.NoError(t, store.Set("channels/C2/lineups/2024-05-01", map[string]any{"play_on_date": "2024-05-01"}))

	t.Run("equality", func(t *testing.T) {
		docs, err := store.Query("channels/C1/lineups").Where("play_on_date", "==", "2024-05-01").Docs()
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "2024-05-01", docs[0].ID)
	})

	t.Run("range with order and limit", func(t *testing.T) {
		docs, err := store.Query("channels/C1/lineups").
			Where("play_on_date", ">=", "2024-05-01").
			OrderBy("play_on_date").
			Limit(1).
			Docs()
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "2024-05-01", docs[0].Data()["play_on_date"])
	})

	t.Run("no matches", func(t *testing.T) {
		docs, err := store.Query("channels/C1/lineups").Where("play_on_date", ">=", "2099-01-01").Docs()
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

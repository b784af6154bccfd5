package lineup_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travis-scholtens/sladdle/internal/channel"
	"github.com/travis-scholtens/sladdle/internal/database"
	"github.com/travis-scholtens/sladdle/internal/docstore"
	"github.com/travis-scholtens/sladdle/internal/lineup"
	"github.com/travis-scholtens/sladdle/internal/rankings"
)

// setupTestEngine creates an engine over a temporary in-memory database,
// with "now" pinned to 2024-04-20.
func setupTestEngine(t *testing.T) (*lineup.Engine, docstore.Store, channel.Store, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	docs := docstore.New(db)
	channels := channel.New(docs)
	ratings := rankings.New(docs)
	engine := lineup.New(docs, channels, ratings)
	engine.Now = func() time.Time {
		return time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)
	}
	return engine, docs, channels, dbTeardown
}

func TestCreate(t *testing.T) {
	engine, _, _, teardown := setupTestEngine(t)
	defer teardown()

	require.NoError(t, engine.Create("C1", "U1", "2024-05-01"))

	lu, err := engine.ByDate("C1", "2024-05-01", false)
	require.NoError(t, err)
	assert.True(t, lu.HasCourts())
	assert.False(t, lu.HasAvailability())
	assert.Equal(t, "2024-05-01", lu.PlayOnDate)
	assert.True(t, lu.Empty())
	assert.Len(t, lu.NotFull(), 6, "all 6 courts start empty")

	t.Run("second create is rejected", func(t *testing.T) {
		err := engine.Create("C1", "U1", "2024-05-01")
		assert.ErrorIs(t, err, lineup.ErrAlreadyExists)

		lu, err := engine.ByDate("C1", "2024-05-01", false)
		require.NoError(t, err)
		assert.Len(t, lu.NotFull(), 6, "the rejected create must not touch state")
	})

	t.Run("missing date", func(t *testing.T) {
		assert.ErrorIs(t, engine.Create("C1", "U1", ""), lineup.ErrMissingDate)
	})
}

func TestCreateRespectsWriteAccess(t *testing.T) {
	engine, _, channels, teardown := setupTestEngine(t)
	defer teardown()

	_, err := channels.AddAdmins("C1", []string{"<@U1>"})
	require.NoError(t, err)

	assert.ErrorIs(t, engine.Create("C1", "U9", "2024-05-01"), lineup.ErrPermissionDenied)
	require.NoError(t, engine.Create("C1", "U1", "2024-05-01"))
}

func TestCreatePreservesAvailability(t *testing.T) {
	engine, docs, _, teardown := setupTestEngine(t)
	defer teardown()

	require.NoError(t, docs.Set("channels/C1/lineups/2024-05-01", map[string]any{
		"play_on_date": "2024-05-01",
		"available":    map[string]any{"7": []any{"U1"}, "8": []any{}, "9": []any{}},
		"opponent":     "Hinsdale 2",
		"home":         true,
	}))

	require.NoError(t, engine.Create("C1", "U1", "2024-05-01"))

	lu, err := engine.ByDate("C1", "2024-05-01", false)
	require.NoError(t, err)
	assert.True(t, lu.HasCourts())
	assert.True(t, lu.HasAvailability())
	assert.Equal(t, []string{"U1"}, lu.Available[7])
	assert.Equal(t, "Hinsdale 2", lu.Opponent)
}

func TestDelete(t *testing.T) {
	engine, _, _, teardown := setupTestEngine(t)
	defer teardown()

	require.NoError(t, engine.Create("C1", "U1", "2024-05-01"))
	require.NoError(t, engine.Delete("C1", "U1", "2024-05-01"))

	_, err := engine.ByDate("C1", "2024-05-01", false)
	assert.ErrorIs(t, err, lineup.ErrNotFound)

	t.Run("deleting a missing lineup", func(t *testing.T) {
		err := engine.Delete("C1", "U1", "2024-05-01")
		assert.ErrorIs(t, err, lineup.ErrNotFound)
	})
}

func TestByDate(t *testing.T) {
	engine, docs, _, teardown := setupTestEngine(t)
	defer teardown()

	require.NoError(t, engine.Create("C1", "U1", "2024-05-01"))
	require.NoError(t, engine.Create("C1", "U1", "2024-04-25"))
	require.NoError(t, engine.Create("C1", "U1", "2024-04-19"))

	t.Run("explicit date", func(t *testing.T) {
		lu, err := engine.ByDate("C1", "2024-05-01", false)
		require.NoError(t, err)
		assert.Equal(t, "2024-05-01", lu.PlayOnDate)
	})

	t.Run("document key fallback", func(t *testing.T) {
		// A record created keyed by date but without the field must still
		// resolve through the same lookup.
		require.NoError(t, docs.Set("channels/C1/lineups/2024-06-01", map[string]any{
			"courts": map[string]any{},
		}))
		lu, err := engine.ByDate("C1", "2024-06-01", false)
		require.NoError(t, err)
		assert.Equal(t, "2024-06-01", lu.PlayOnDate)
	})

	t.Run("no date resolves the soonest upcoming match", func(t *testing.T) {
		lu, err := engine.ByDate("C1", "", false)
		require.NoError(t, err)
		assert.Equal(t, "2024-04-25", lu.PlayOnDate, "yesterday's match is out of the window")
	})

	t.Run("yesterday widening", func(t *testing.T) {
		lu, err := engine.ByDate("C1", "", true)
		require.NoError(t, err)
		assert.Equal(t, "2024-04-19", lu.PlayOnDate)
	})

	t.Run("unknown date", func(t *testing.T) {
		_, err := engine.ByDate("C1", "2030-01-01", false)
		assert.ErrorIs(t, err, lineup.ErrNotFound)
	})
}

func TestAssignCourtFillsEmptySlots(t *testing.T) {
	engine, _, _, teardown := setupTestEngine(t)
	defer teardown()

	require.NoError(t, engine.Create("C1", "U1", "2024-05-01"))

	res, err := engine.AssignCourt("C1", "U1", "2024-05-01", 3, []string{"Alice", "Bob"})
	require.NoError(t, err)
	assert.Equal(t, lineup.OutcomeUpdated, res.Outcome)
	assert.Equal(t, lineup.Slots{"Bob", "Alice"}, res.Occupants,
		"later-supplied names land in lower slot indices first")

	lu, err := engine.ByDate("C1", "2024-05-01", false)
	require.NoError(t, err)
	assert.False(t, lu.Empty())
	assert.NotContains(t, lu.NotFull(), lineup.Court(3))

	t.Run("single name into the remaining slot", func(t *testing.T) {
		res, err := engine.AssignCourt("C1", "U1", "2024-05-01", 4, []string{"Carol"})
		require.NoError(t, err)
		assert.Equal(t, lineup.Slots{"Carol", ""}, res.Occupants)

		res, err = engine.AssignCourt("C1", "U1", "2024-05-01", 4, []string{"Dave"})
		require.NoError(t, err)
		assert.Equal(t, lineup.Slots{"Carol", "Dave"}, res.Occupants)
	})
}

func TestAssignCourtOverwritesFullPair(t *testing.T) {
	engine, _, _, teardown := setupTestEngine(t)
	defer teardown()

	require.NoError(t, engine.Create("C1", "U1", "2024-05-01"))
	_, err := engine.AssignCourt("C1", "U1", "2024-05-01", 1, []string{"Alice", "Bob"})
	require.NoError(t, err)

	res, err := engine.AssignCourt("C1", "U1", "2024-05-01", 1, []string{"Carol", "Dave"})
	require.NoError(t, err)
	assert.Equal(t, lineup.OutcomeUpdated, res.Outcome)
	assert.Equal(t, lineup.Slots{"Carol", "Dave"}, res.Occupants, "a full pair is overwritten positionally")
}

func TestAssignCourtToggleOff(t *testing.T) {
	engine, _, _, teardown := setupTestEngine(t)
	defer teardown()

	require.NoError(t, engine.Create("C1", "U1", "2024-05-01"))
	_, err := engine.AssignCourt("C1", "U1", "2024-05-01", 3, []string{"Alice", "Bob"})
	require.NoError(t, err)
	// Court 3 is now {"Bob", "Alice"}.

	res, err := engine.AssignCourt("C1", "U1", "2024-05-01", 3, []string{"Alice"})
	require.NoError(t, err)
	assert.Equal(t, lineup.OutcomeUpdated, res.Outcome)
	assert.Equal(t, lineup.Slots{"Bob", ""}, res.Occupants,
		"toggle-off clears exactly the matching slot")

	lu, err := engine.ByDate("C1", "2024-05-01", false)
	require.NoError(t, err)
	assert.Contains(t, lu.NotFull(), lineup.Court(3))
}

func TestAssignCourtSoftRejection(t *testing.T) {
	engine, _, _, teardown := setupTestEngine(t)
	defer teardown()

	require.NoError(t, engine.Create("C1", "U1", "2024-05-01"))
	_, err := engine.AssignCourt("C1", "U1", "2024-05-01", 2, []string{"Alice", "Bob"})
	require.NoError(t, err)

	// A single non-matching name against a full court fits no merge rule.
	res, err := engine.AssignCourt("C1", "U1", "2024-05-01", 2, []string{"Carol"})
	require.NoError(t, err)
	assert.Equal(t, lineup.OutcomeUnchanged, res.Outcome)
	assert.Equal(t, lineup.Slots{"Bob", "Alice"}, res.Occupants, "slots are untouched")

	lu, err := engine.ByDate("C1", "2024-05-01", false)
	require.NoError(t, err)
	assert.Equal(t, lineup.Slots{"Bob", "Alice"}, lu.Courts[2], "nothing was persisted")
}

func TestAssignCourtRead(t *testing.T) {
	engine, _, channels, teardown := setupTestEngine(t)
	defer teardown()

	require.NoError(t, engine.Create("C1", "U1", "2024-05-01"))
	_, err := engine.AssignCourt("C1", "U1", "2024-05-01", 5, []string{"Alice"})
	require.NoError(t, err)

	// Lock the channel down; reads must still work.
	_, err = channels.AddAdmins("C1", []string{"<@U1>"})
	require.NoError(t, err)

	res, err := engine.AssignCourt("C1", "U9", "2024-05-01", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, lineup.OutcomeRead, res.Outcome)
	assert.Equal(t, lineup.Slots{"Alice", ""}, res.Occupants)

	t.Run("writes stay gated", func(t *testing.T) {
		_, err := engine.AssignCourt("C1", "U9", "2024-05-01", 5, []string{"Bob"})
		assert.ErrorIs(t, err, lineup.ErrPermissionDenied)
	})
}

func TestAssignCourtNoLineup(t *testing.T) {
	engine, _, _, teardown := setupTestEngine(t)
	defer teardown()

	_, err := engine.AssignCourt("C1", "U1", "", 1, []string{"Alice"})
	assert.ErrorIs(t, err, lineup.ErrNotFound)
}

func TestParseCourt(t *testing.T) {
	for _, token := range []string{"1", "6"} {
		_, err := lineup.ParseCourt(token)
		assert.NoError(t, err, token)
	}
	for _, token := range []string{"0", "7", "x", ""} {
		_, err := lineup.ParseCourt(token)
		assert.Error(t, err, token)
	}
}

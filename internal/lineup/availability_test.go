package lineup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travis-scholtens/sladdle/internal/channel"
	"github.com/travis-scholtens/sladdle/internal/docstore"
	"github.com/travis-scholtens/sladdle/internal/lineup"
	"github.com/travis-scholtens/sladdle/internal/rankings"
)

func seedOpponent(t *testing.T, docs docstore.Store, channels channel.Store) {
	t.Helper()
	require.NoError(t, channels.SetTeam("C1", channel.TeamDefinition{
		League:   "cpta",
		Division: "d5",
		Team:     "glen-ellyn-1",
	}))
	require.NoError(t, docs.Set("rankings/cpta/divisions/d5/teams/hinsdale-2", map[string]any{
		"name": "Hinsdale 2",
	}))
}

func TestCreateAvailability(t *testing.T) {
	engine, docs, channels, teardown := setupTestEngine(t)
	defer teardown()
	seedOpponent(t, docs, channels)

	opponent, err := engine.CreateAvailability("C1", "2024-05-01", "hinsdale-2", true)
	require.NoError(t, err)
	assert.Equal(t, "Hinsdale 2", opponent)

	lu, err := engine.ByDate("C1", "2024-05-01", false)
	require.NoError(t, err)
	assert.True(t, lu.HasAvailability())
	assert.False(t, lu.HasCourts())
	assert.True(t, lu.Home)
	assert.Equal(t, "Hinsdale 2", lu.Opponent)
	for _, h := range lineup.Hours {
		assert.Empty(t, lu.Available[h])
	}

	t.Run("second create is rejected", func(t *testing.T) {
		_, err := engine.CreateAvailability("C1", "2024-05-01", "hinsdale-2", true)
		assert.ErrorIs(t, err, lineup.ErrAlreadyExists)
	})

	t.Run("missing date", func(t *testing.T) {
		_, err := engine.CreateAvailability("C1", "", "hinsdale-2", true)
		assert.ErrorIs(t, err, lineup.ErrMissingDate)
	})

	t.Run("unconfigured channel", func(t *testing.T) {
		_, err := engine.CreateAvailability("C9", "2024-05-01", "hinsdale-2", true)
		assert.ErrorIs(t, err, channel.ErrNoTeam)
	})

	t.Run("unknown opponent", func(t *testing.T) {
		_, err := engine.CreateAvailability("C1", "2024-05-02", "nowhere-9", false)
		assert.ErrorIs(t, err, rankings.ErrNoRatings)
	})
}

func TestCreateAvailabilityPreservesCourts(t *testing.T) {
	engine, docs, channels, teardown := setupTestEngine(t)
	defer teardown()
	seedOpponent(t, docs, channels)

	require.NoError(t, engine.Create("C1", "U1", "2024-05-01"))
	_, err := engine.AssignCourt("C1", "U1", "2024-05-01", 1, []string{"Alice", "Bob"})
	require.NoError(t, err)

	_, err = engine.CreateAvailability("C1", "2024-05-01", "hinsdale-2", false)
	require.NoError(t, err)

	lu, err := engine.ByDate("C1", "2024-05-01", false)
	require.NoError(t, err)
	assert.True(t, lu.HasCourts())
	assert.True(t, lu.HasAvailability())
	assert.Equal(t, lineup.Slots{"Bob", "Alice"}, lu.Courts[1], "existing courts survive")
}

func TestMarkAvailability(t *testing.T) {
	engine, docs, channels, teardown := setupTestEngine(t)
	defer teardown()
	seedOpponent(t, docs, channels)

	_, err := engine.CreateAvailability("C1", "2024-05-01", "hinsdale-2", true)
	require.NoError(t, err)

	mark, err := engine.MarkAvailability("C1", "2024-05-01", "U1", []lineup.Hour{7, 9})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", mark.PlayOnDate)
	assert.Equal(t, "Hinsdale 2", mark.Opponent)
	assert.True(t, mark.Home)

	lu, err := engine.ByDate("C1", "2024-05-01", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"U1"}, lu.Available[7])
	assert.Empty(t, lu.Available[8])
	assert.Equal(t, []string{"U1"}, lu.Available[9])
	assert.Empty(t, lu.No)

	t.Run("re-marking replaces the hour set", func(t *testing.T) {
		_, err := engine.MarkAvailability("C1", "2024-05-01", "U1", []lineup.Hour{8})
		require.NoError(t, err)

		lu, err := engine.ByDate("C1", "2024-05-01", false)
		require.NoError(t, err)
		assert.Empty(t, lu.Available[7])
		assert.Equal(t, []string{"U1"}, lu.Available[8])
		assert.Empty(t, lu.Available[9])
	})

	t.Run("empty hours means unavailable", func(t *testing.T) {
		_, err := engine.MarkAvailability("C1", "2024-05-01", "U1", nil)
		require.NoError(t, err)

		lu, err := engine.ByDate("C1", "2024-05-01", false)
		require.NoError(t, err)
		for _, h := range lineup.Hours {
			assert.Empty(t, lu.Available[h])
		}
		assert.Equal(t, []string{"U1"}, lu.No)
	})

	t.Run("marking hours clears the no bucket", func(t *testing.T) {
		_, err := engine.MarkAvailability("C1", "2024-05-01", "U1", []lineup.Hour{7, 8, 9})
		require.NoError(t, err)

		lu, err := engine.ByDate("C1", "2024-05-01", false)
		require.NoError(t, err)
		assert.Empty(t, lu.No)
		for _, h := range lineup.Hours {
			assert.Equal(t, []string{"U1"}, lu.Available[h])
		}
	})
}

func TestMarkAvailabilityWithoutBuckets(t *testing.T) {
	engine, _, _, teardown := setupTestEngine(t)
	defer teardown()

	require.NoError(t, engine.Create("C1", "U1", "2024-05-01"))

	_, err := engine.MarkAvailability("C1", "2024-05-01", "U1", []lineup.Hour{7})
	assert.ErrorIs(t, err, lineup.ErrNoAvailability)
}

func TestMarkAvailabilityResolvesUpcoming(t *testing.T) {
	engine, docs, channels, teardown := setupTestEngine(t)
	defer teardown()
	seedOpponent(t, docs, channels)

	_, err := engine.CreateAvailability("C1", "2024-04-19", "hinsdale-2", false)
	require.NoError(t, err)
	_, err = engine.CreateAvailability("C1", "2024-04-25", "hinsdale-2", true)
	require.NoError(t, err)

	// Without a date, marking includes yesterday's match in the window so a
	// late response the morning after still lands somewhere sensible.
	mark, err := engine.MarkAvailability("C1", "", "U1", []lineup.Hour{8})
	require.NoError(t, err)
	assert.Equal(t, "2024-04-19", mark.PlayOnDate)
}

func TestParseHours(t *testing.T) {
	assert.Equal(t, []lineup.Hour{7, 8, 9}, lineup.ParseHours([]string{"789"}))
	assert.Equal(t, []lineup.Hour{7, 9}, lineup.ParseHours([]string{"7", "9"}))
	assert.Equal(t, []lineup.Hour{8}, lineup.ParseHours([]string{"88"}))
	assert.Empty(t, lineup.ParseHours(nil))
}

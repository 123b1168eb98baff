package recommend

import (
	"context"
	"github.com/IlyasAtabaev731/game-rental/internal/domain/models"
	"github.com/IlyasAtabaev731/game-rental/internal/storage"
	"github.com/IlyasAtabaev731/game-rental/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newRecommender(t *testing.T, seed int64, rented ...string) *Recommender {
	t.Helper()

	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.SaveUser(ctx, "alice", []byte("hash")))
	for _, g := range []models.Game{
		{Title: "Mario Kart 8 Deluxe", Genres: []string{"Racing"}},
		{Title: "Mario Kart Live", Genres: []string{"Racing"}},
		{Title: "Mario Party Superstars", Genres: []string{"Party"}},
		{Title: "Yo-kai Watch 4", Genres: []string{"RPG"}},
		{Title: "Fae Farm", Genres: []string{"Simulation", "RPG"}},
		{Title: "Pikmin 4", Genres: []string{"Strategy"}},
		{Title: "Yo-kai Watch Jam", Genres: []string{"RPG", "Sports"}},
	} {
		_, err := store.SaveGame(ctx, g)
		require.NoError(t, err)
	}
	for _, title := range rented {
		require.NoError(t, store.RentGame(ctx, "alice", title))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, store, Config{Seed: seed})
}

func TestRecommenderNoRentals(t *testing.T) {
	r := newRecommender(t, 1)
	ctx := context.Background()
	alice := &models.User{Username: "alice"}

	res, err := r.ByGenre(ctx, alice)
	require.NoError(t, err)
	assert.True(t, res.NoRentals)
	assert.Equal(t, "No games rented", res.String())

	res, err = r.ByTitle(ctx, alice)
	require.NoError(t, err)
	assert.True(t, res.NoRentals)
	assert.Equal(t, "No games rented", res.String())
}

func TestRecommenderReadsCurrentRentals(t *testing.T) {
	r := newRecommender(t, 1, "Pikmin 4")

	// The caller's copy is stale; the stored rentals decide.
	res, err := r.ByGenre(context.Background(), &models.User{Username: "alice"})
	require.NoError(t, err)
	assert.False(t, res.NoRentals)
	assert.Equal(t, "Strategy", res.Genre)
	assert.Empty(t, res.Titles)
}

func TestRecommenderByGenre(t *testing.T) {
	r := newRecommender(t, 5, "Yo-kai Watch 4")

	res, err := r.ByGenre(context.Background(), &models.User{Username: "alice"})
	require.NoError(t, err)

	assert.Equal(t, "RPG", res.Genre)
	assert.ElementsMatch(t, []string{"Fae Farm", "Yo-kai Watch Jam"}, res.Titles)
}

func TestRecommenderByTitle(t *testing.T) {
	r := newRecommender(t, 11, "Mario Kart 8 Deluxe")

	res, err := r.ByTitle(context.Background(), &models.User{Username: "alice"})
	require.NoError(t, err)

	assert.Equal(t, "Mario Kart 8 Deluxe", res.Reference)
	require.Len(t, res.Titles, 5)
	assert.Equal(t, "Mario Kart Live", res.Titles[0])
	assert.Equal(t, "Mario Party Superstars", res.Titles[1])
	assert.NotContains(t, res.Titles, res.Reference)
	assert.True(t, strings.HasPrefix(res.String(), "Mario Kart Live\nMario Party Superstars\n"))
}

func TestRecommenderByTitleNeverSuggestsRentals(t *testing.T) {
	rented := []string{"Mario Kart 8 Deluxe", "Yo-kai Watch 4", "Pikmin 4"}
	r := newRecommender(t, 3, rented...)

	for range 20 {
		res, err := r.ByTitle(context.Background(), &models.User{Username: "alice"})
		require.NoError(t, err)
		assert.Contains(t, rented, res.Reference)
		assert.LessOrEqual(t, len(res.Titles), 4)
		for _, title := range res.Titles {
			assert.NotContains(t, rented, title)
		}
	}
}

func TestRecommenderSameSeedSameResult(t *testing.T) {
	rented := []string{"Mario Kart 8 Deluxe", "Yo-kai Watch 4"}
	a := newRecommender(t, 42, rented...)
	b := newRecommender(t, 42, rented...)
	alice := &models.User{Username: "alice"}

	for range 5 {
		ra, err := a.ByGenre(context.Background(), alice)
		require.NoError(t, err)
		rb, err := b.ByGenre(context.Background(), alice)
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

func TestRecommenderUnknownUser(t *testing.T) {
	r := newRecommender(t, 1)

	_, err := r.ByTitle(context.Background(), &models.User{Username: "mallory"})
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

package catalog

import (
	"context"
	"github.com/IlyasAtabaev731/game-rental/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `meta_score,title,platform,date,user_score,link,esrb_rating,developers,genres
,Super Mario Bros. Wonder,Switch,"Oct 20, 2023",,/game/switch/super-mario-bros-wonder,E,['Nintendo'],['Action']
87.0,Pikmin 4,Switch,"Jul 21, 2023",8.9,/game/switch/pikmin-4,E10+,['Nintendo'],"['Strategy', 'Real-Time', 'General']"
,Fae Farm,Switch,"Sep 8, 2023",,/game/switch/fae-farm,E10+,['Phoenix Labs'],"['Simulation', 'Farm']"
`

func TestParseGenres(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{in: "['Action']", want: []string{"Action"}},
		{in: "['Action', 'Adventure']", want: []string{"Action", "Adventure"}},
		{in: `["Rock 'n' Roll", 'Music']`, want: []string{"Rock 'n' Roll", "Music"}},
		{in: `['It\'s']`, want: []string{"It's"}},
		{in: "[]", want: []string{}},
		{in: "", want: []string{}},
		{in: "Action", wantErr: true},
		{in: "['Action", wantErr: true},
		{in: "[Action]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGenres(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRead(t *testing.T) {
	games, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, games, 3)

	assert.Equal(t, "Pikmin 4", games[1].Title)
	assert.Equal(t, []string{"Strategy", "Real-Time", "General"}, games[1].Genres)
	assert.False(t, games[1].IsRented)
	assert.Equal(t, "87.0", games[1].Attributes["meta_score"])
	assert.Equal(t, "Jul 21, 2023", games[1].Attributes["date"])
	assert.NotContains(t, games[1].Attributes, "title")
	assert.NotContains(t, games[1].Attributes, "genres")
}

func TestReadMissingColumn(t *testing.T) {
	_, err := Read(strings.NewReader("title,platform\nPikmin 4,Switch\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadBadGenres(t *testing.T) {
	_, err := Read(strings.NewReader("title,genres\nPikmin 4,Strategy\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestLoadIsIdempotent(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	games, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	n, err := Load(ctx, logger, store, games)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, store.SaveUser(ctx, "alice", []byte("hash")))
	require.NoError(t, store.RentGame(ctx, "alice", "Fae Farm"))

	n, err = Load(ctx, logger, store, games)
	require.NoError(t, err)
	assert.Zero(t, n)

	game, err := store.GetGame(ctx, "Fae Farm")
	require.NoError(t, err)
	assert.True(t, game.IsRented, "reload must not reset rented state")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	n, err := LoadFile(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), memory.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

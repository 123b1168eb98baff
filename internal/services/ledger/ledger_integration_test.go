//go:build integration

package ledger

import (
	"github.com/IlyasAtabaev731/game-rental/internal/domain/models"
	"github.com/IlyasAtabaev731/game-rental/internal/storage/postgres"
	"github.com/IlyasAtabaev731/game-rental/internal/testinfra"
	"github.com/stretchr/testify/require"
	"testing"
)

func newPostgresLedger(t *testing.T) (*Ledger, *postgres.Storage) {
	t.Helper()

	store, err := postgres.New(testinfra.StartPostgres(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Stop() })

	return seedLedger(t, store), store
}

func TestPostgresRandomSequencesKeepStateConsistent(t *testing.T) {
	l, store := newPostgresLedger(t)
	runRandomSequence(t, l, store, 200)
}

func TestPostgresConcurrentRentersExactlyOneWins(t *testing.T) {
	l, store := newPostgresLedger(t)
	runConcurrentRenters(t, l, store)
}

// Two ledgers share one database, so only the row locks serialize them.
func TestPostgresConcurrentLedgersExactlyOneWins(t *testing.T) {
	l, store := newPostgresLedger(t)
	other := New(l.log, store)

	results := make(chan Result, 2)
	for lg, name := range map[*Ledger]string{l: "alice", other: "bob"} {
		go func() {
			res, err := lg.Rent(t.Context(), &models.User{Username: name}, "Pikmin 4")
			if err != nil {
				t.Error(err)
			}
			results <- res
		}()
	}

	statuses := []Status{(<-results).Status, (<-results).Status}
	require.ElementsMatch(t, []Status{StatusRented, StatusAlreadyRented}, statuses)
	assertConsistent(t, store)
}

// Package ledger owns the rented state of the catalog: a game's rented flag and its presence
// in exactly one user's rented list change together or not at all.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"github.com/IlyasAtabaev731/game-rental/internal/domain/models"
	"github.com/IlyasAtabaev731/game-rental/internal/lib/keylock"
	"github.com/IlyasAtabaev731/game-rental/internal/metrics"
	"github.com/IlyasAtabaev731/game-rental/internal/storage"
	"log/slog"
)

type Status int

const (
	StatusRented Status = iota + 1
	StatusAlreadyRented
	StatusNotFound
	StatusReturned
	StatusNotRented
	StatusUserNotFound
)

func (s Status) String() string {
	switch s {
	case StatusRented:
		return "rented"
	case StatusAlreadyRented:
		return "already_rented"
	case StatusNotFound:
		return "not_found"
	case StatusReturned:
		return "returned"
	case StatusNotRented:
		return "not_rented"
	case StatusUserNotFound:
		return "user_not_found"
	default:
		return "unknown"
	}
}

// Result is the outcome of a rent or return. Only StatusRented and StatusReturned mean state changed.
type Result struct {
	Status Status
	Title  string
}

func (r Result) OK() bool {
	return r.Status == StatusRented || r.Status == StatusReturned
}

func (r Result) String() string {
	switch r.Status {
	case StatusRented:
		return fmt.Sprintf("%s rented successfully", r.Title)
	case StatusAlreadyRented:
		return fmt.Sprintf("%s is already rented", r.Title)
	case StatusNotFound:
		return fmt.Sprintf("%s not found", r.Title)
	case StatusReturned:
		return fmt.Sprintf("%s returned successfully", r.Title)
	case StatusNotRented:
		return fmt.Sprintf("%s was not rented by you", r.Title)
	case StatusUserNotFound:
		return "user not found"
	default:
		return r.Title
	}
}

// Storage applies each transition atomically and reports refusals with the storage sentinels.
type Storage interface {
	RentGame(ctx context.Context, username, title string) error
	ReturnGame(ctx context.Context, username, title string) error
}

type Ledger struct {
	log     *slog.Logger
	storage Storage
	locks   *keylock.Locker
}

func New(log *slog.Logger, storage Storage) *Ledger {
	return &Ledger{
		log:     log,
		storage: storage,
		locks:   keylock.New(),
	}
}

// Rent marks title as rented by user. Titles match exactly and case-sensitively.
func (l *Ledger) Rent(ctx context.Context, user *models.User, title string) (Result, error) {
	const op = "ledger.Rent"

	log := l.log.With(slog.String("op", op), slog.String("username", user.Username), slog.String("title", title))

	unlock := l.lock(user.Username, title)
	defer unlock()

	err := l.storage.RentGame(ctx, user.Username, title)
	switch {
	case err == nil:
		log.Info("game rented")
		return l.record("rent", Result{Status: StatusRented, Title: title}), nil
	case errors.Is(err, storage.ErrGameNotFound):
		log.Debug("game not found")
		return l.record("rent", Result{Status: StatusNotFound, Title: title}), nil
	case errors.Is(err, storage.ErrGameAlreadyRented):
		log.Debug("game already rented")
		return l.record("rent", Result{Status: StatusAlreadyRented, Title: title}), nil
	case errors.Is(err, storage.ErrUserNotFound):
		log.Warn("user not found")
		return l.record("rent", Result{Status: StatusUserNotFound, Title: title}), nil
	default:
		log.Error("failed to rent game", slog.Any("error", err))
		metrics.RecordLedger("rent", "error")
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
}

// Return gives title back. A title the user does not hold is refused and nobody's state changes.
func (l *Ledger) Return(ctx context.Context, user *models.User, title string) (Result, error) {
	const op = "ledger.Return"

	log := l.log.With(slog.String("op", op), slog.String("username", user.Username), slog.String("title", title))

	unlock := l.lock(user.Username, title)
	defer unlock()

	err := l.storage.ReturnGame(ctx, user.Username, title)
	switch {
	case err == nil:
		log.Info("game returned")
		return l.record("return", Result{Status: StatusReturned, Title: title}), nil
	case errors.Is(err, storage.ErrGameNotRented):
		log.Debug("game not rented by user")
		return l.record("return", Result{Status: StatusNotRented, Title: title}), nil
	case errors.Is(err, storage.ErrUserNotFound):
		log.Warn("user not found")
		return l.record("return", Result{Status: StatusUserNotFound, Title: title}), nil
	default:
		log.Error("failed to return game", slog.Any("error", err))
		metrics.RecordLedger("return", "error")
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
}

// lock always takes the user key before the game key.
func (l *Ledger) lock(username, title string) func() {
	return l.locks.Lock("user:"+username, "game:"+title)
}

func (l *Ledger) record(operation string, res Result) Result {
	metrics.RecordLedger(operation, res.Status.String())
	return res
}

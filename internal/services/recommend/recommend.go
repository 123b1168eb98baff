// Package recommend suggests unrented titles to a user from their rental history.
//
// Two strategies are available: ByGenre draws a genre in proportion to how often it occurs
// among the user's rentals and samples titles of that genre; ByTitle picks one rented title
// and ranks the rest of the catalog by TF-IDF cosine similarity of the titles.
package recommend

import (
	"context"
	"fmt"
	"github.com/IlyasAtabaev731/game-rental/internal/domain/models"
	"github.com/IlyasAtabaev731/game-rental/internal/metrics"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	NoRentalsMessage = "No games rented"

	defaultLimit       = 5
	defaultMaxAttempts = 100
)

// Result is an ordered list of recommended titles. NoRentals is set instead of an error
// when the user has nothing rented to base a recommendation on.
type Result struct {
	Titles    []string `json:"titles"`
	NoRentals bool     `json:"no_rentals,omitempty"`
	// Genre is the drawn genre for ByGenre, Reference the chosen rented title for ByTitle.
	Genre     string `json:"genre,omitempty"`
	Reference string `json:"reference,omitempty"`
}

func (r Result) String() string {
	if r.NoRentals {
		return NoRentalsMessage
	}
	return strings.Join(r.Titles, "\n")
}

// Storage returns the user and the catalog as of the same moment.
type Storage interface {
	Snapshot(ctx context.Context, username string) (*models.User, []models.Game, error)
}

type Config struct {
	// Seed of the random source. Zero seeds from the clock.
	Seed        int64
	Limit       int
	MaxAttempts int
}

type Recommender struct {
	log         *slog.Logger
	storage     Storage
	limit       int
	maxAttempts int

	mu  sync.Mutex
	rng *rand.Rand
}

func New(log *slog.Logger, storage Storage, cfg Config) *Recommender {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}

	return &Recommender{
		log:         log,
		storage:     storage,
		limit:       cfg.Limit,
		maxAttempts: cfg.MaxAttempts,
		rng:         rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec // recommendations do not need crypto randomness
	}
}

// ByGenre re-reads user from storage and recommends titles sharing a genre drawn from their history.
func (r *Recommender) ByGenre(ctx context.Context, user *models.User) (Result, error) {
	const op = "recommend.ByGenre"

	current, games, err := r.storage.Snapshot(ctx, user.Username)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	res := byGenre(r.rng, current.RentedGames, games, r.limit, r.maxAttempts)
	r.mu.Unlock()

	r.report("genre", current.Username, res)
	return res, nil
}

// ByTitle re-reads user from storage and ranks unrented titles by similarity to one of their rentals.
func (r *Recommender) ByTitle(ctx context.Context, user *models.User) (Result, error) {
	const op = "recommend.ByTitle"

	current, games, err := r.storage.Snapshot(ctx, user.Username)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(current.RentedGames) == 0 {
		res := Result{NoRentals: true}
		r.report("title", current.Username, res)
		return res, nil
	}

	r.mu.Lock()
	reference := current.RentedGames[r.rng.Intn(len(current.RentedGames))]
	r.mu.Unlock()

	res := Result{
		Reference: reference,
		Titles:    rankBySimilarity(reference, candidates(current.RentedGames, games), r.limit),
	}

	r.report("title", current.Username, res)
	return res, nil
}

func (r *Recommender) report(strategy, username string, res Result) {
	outcome := "ok"
	switch {
	case res.NoRentals:
		outcome = "no_rentals"
	case len(res.Titles) == 0:
		outcome = "empty"
	}
	metrics.RecordRecommendation(strategy, outcome, len(res.Titles))

	r.log.Debug("recommendation served",
		slog.String("strategy", strategy),
		slog.String("username", username),
		slog.String("outcome", outcome),
		slog.String("genre", res.Genre),
		slog.String("reference", res.Reference),
		slog.Int("titles", len(res.Titles)),
	)
}

// candidates lists catalog titles the user does not hold, in catalog order.
func candidates(rented []string, games []models.Game) []string {
	owned := toSet(rented)
	out := make([]string, 0, len(games))
	for _, g := range games {
		if !owned[g.Title] {
			out = append(out, g.Title)
		}
	}
	return out
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

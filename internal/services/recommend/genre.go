package recommend

import (
	"github.com/IlyasAtabaev731/game-rental/internal/domain/models"
	"math/rand"
)

// genreWeight counts how often a genre occurs across the rented games.
// A game with several genres counts once for each of them.
type genreWeight struct {
	genre string
	count int
}

func byGenre(rng *rand.Rand, rented []string, games []models.Game, limit, maxAttempts int) Result {
	if len(rented) == 0 {
		return Result{NoRentals: true}
	}

	weights := genreWeights(rented, games)
	genre, ok := drawGenre(rng, weights)
	if !ok {
		return Result{Titles: []string{}}
	}

	owned := toSet(rented)
	var pool []string
	for _, g := range games {
		if g.HasGenre(genre) {
			pool = append(pool, g.Title)
		}
	}

	return Result{
		Genre:  genre,
		Titles: sampleTitles(rng, pool, owned, limit, maxAttempts),
	}
}

// genreWeights returns genre occurrence counts in first-seen order.
// Rented titles missing from the catalog are ignored.
func genreWeights(rented []string, games []models.Game) []genreWeight {
	byTitle := make(map[string]*models.Game, len(games))
	for i := range games {
		byTitle[games[i].Title] = &games[i]
	}

	var weights []genreWeight
	index := make(map[string]int)
	for _, title := range rented {
		game, ok := byTitle[title]
		if !ok {
			continue
		}
		for _, genre := range game.Genres {
			i, seen := index[genre]
			if !seen {
				i = len(weights)
				index[genre] = i
				weights = append(weights, genreWeight{genre: genre})
			}
			weights[i].count++
		}
	}
	return weights
}

// drawGenre picks one genre with probability count/total.
func drawGenre(rng *rand.Rand, weights []genreWeight) (string, bool) {
	var total int
	for _, w := range weights {
		total += w.count
	}
	if total == 0 {
		return "", false
	}

	n := rng.Intn(total)
	for _, w := range weights {
		if n < w.count {
			return w.genre, true
		}
		n -= w.count
	}
	return weights[len(weights)-1].genre, true
}

// sampleTitles draws uniformly from pool, rejecting owned and already picked titles, until limit
// titles are collected or maxAttempts draws are spent. Whatever is still missing is then filled
// from the remaining eligible titles without replacement, so small pools end with a short list.
func sampleTitles(rng *rand.Rand, pool []string, owned map[string]bool, limit, maxAttempts int) []string {
	picked := make([]string, 0, limit)
	if len(pool) == 0 {
		return picked
	}

	seen := make(map[string]bool, limit)
	for attempt := 0; attempt < maxAttempts && len(picked) < limit; attempt++ {
		title := pool[rng.Intn(len(pool))]
		if owned[title] || seen[title] {
			continue
		}
		seen[title] = true
		picked = append(picked, title)
	}
	if len(picked) == limit {
		return picked
	}

	var rest []string
	for _, title := range pool {
		if !owned[title] && !seen[title] {
			seen[title] = true
			rest = append(rest, title)
		}
	}
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })

	for _, title := range rest {
		if len(picked) == limit {
			break
		}
		picked = append(picked, title)
	}
	return picked
}

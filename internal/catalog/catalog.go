// Package catalog loads games from a CSV export into storage.
//
// The export must have a title and a genres column. Genres are written as a list literal,
// e.g. ['Action', 'Adventure']. All other columns are kept as game attributes.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"github.com/IlyasAtabaev731/game-rental/internal/domain/models"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	titleColumn  = "title"
	genresColumn = "genres"
)

var ErrMissingColumn = errors.New("missing required column")

type Store interface {
	SaveGame(ctx context.Context, game models.Game) (bool, error)
}

// Read parses the CSV in r. Every game starts out not rented.
func Read(r io.Reader) ([]models.Game, error) {
	const op = "catalog.Read"

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: header: %w", op, err)
	}
	titleIdx, genresIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case titleColumn:
			titleIdx = i
		case genresColumn:
			genresIdx = i
		}
	}
	if titleIdx < 0 {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrMissingColumn, titleColumn)
	}
	if genresIdx < 0 {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrMissingColumn, genresColumn)
	}

	var games []models.Game
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if titleIdx >= len(record) || genresIdx >= len(record) {
			return nil, fmt.Errorf("%s: line %d: short record", op, line)
		}

		genres, err := ParseGenres(record[genresIdx])
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", op, line, err)
		}

		attrs := make(map[string]string, len(record))
		for i, value := range record {
			if i == titleIdx || i == genresIdx || i >= len(header) {
				continue
			}
			attrs[header[i]] = value
		}

		games = append(games, models.Game{
			Title:      record[titleIdx],
			Genres:     genres,
			Attributes: attrs,
		})
	}

	return games, nil
}

// ParseGenres parses a list literal of quoted strings such as ['Action', "Rock 'n' Roll"].
// An empty cell is an empty list.
func ParseGenres(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}, nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("genres %q: not a list", s)
	}

	body := []rune(s[1 : len(s)-1])
	genres := []string{}
	for i := 0; i < len(body); {
		switch r := body[i]; {
		case r == ' ' || r == '\t' || r == ',':
			i++
		case r == '\'' || r == '"':
			value, next, err := readQuoted(body, i)
			if err != nil {
				return nil, fmt.Errorf("genres %q: %w", s, err)
			}
			genres = append(genres, value)
			i = next
		default:
			return nil, fmt.Errorf("genres %q: unexpected %q", s, r)
		}
	}

	return genres, nil
}

// readQuoted reads the string literal starting at body[start] and returns the index after its closing quote.
func readQuoted(body []rune, start int) (string, int, error) {
	quote := body[start]
	var b strings.Builder
	for i := start + 1; i < len(body); i++ {
		switch body[i] {
		case '\\':
			if i+1 < len(body) {
				i++
				b.WriteRune(body[i])
			}
		case quote:
			return b.String(), i + 1, nil
		default:
			b.WriteRune(body[i])
		}
	}
	return "", 0, errors.New("unterminated string")
}

// Load saves games, skipping titles that are already stored. It returns how many were inserted.
func Load(ctx context.Context, log *slog.Logger, store Store, games []models.Game) (int, error) {
	const op = "catalog.Load"

	inserted := 0
	for _, game := range games {
		ok, err := store.SaveGame(ctx, game)
		if err != nil {
			return inserted, fmt.Errorf("%s: %s: %w", op, game.Title, err)
		}
		if ok {
			inserted++
		}
	}

	log.Info("catalog loaded",
		slog.Int("games", len(games)),
		slog.Int("inserted", inserted),
		slog.Int("skipped", len(games)-inserted),
	)

	return inserted, nil
}

func LoadFile(ctx context.Context, log *slog.Logger, store Store, path string) (int, error) {
	const op = "catalog.LoadFile"

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			log.Error("Failed to close catalog file", "error", err)
		}
	}(f)

	games, err := Read(f)
	if err != nil {
		return 0, err
	}

	return Load(ctx, log, store, games)
}

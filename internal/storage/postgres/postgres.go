package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/IlyasAtabaev731/game-rental/internal/domain/models"
	"github.com/IlyasAtabaev731/game-rental/internal/storage"
	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

type Storage struct {
	db *sql.DB
}

func New(dbUrl string) (*Storage, error) {
	db, err := sql.Open("postgres", dbUrl)
	if err != nil {
		return nil, fmt.Errorf("database connection error %s", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect database error %s", err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Stop() error {
	return s.db.Close()
}

func (s *Storage) SaveUser(ctx context.Context, username string, passHash []byte) error {
	const op = "storage.postgres.SaveUser"

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, rented_games) VALUES($1, $2, '{}')",
		username, passHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetUser(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.postgres.GetUser"

	user, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, rented_games, created_at FROM users WHERE username = $1",
		username,
	))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// SaveGame inserts game unless a game with the same title exists. It reports whether a row was written.
func (s *Storage) SaveGame(ctx context.Context, game models.Game) (bool, error) {
	const op = "storage.postgres.SaveGame"

	attrs, err := json.Marshal(nonNilAttributes(game.Attributes))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	genres := game.Genres
	if genres == nil {
		genres = []string{}
	}

	// jsonb must be sent as text; lib/pq encodes []byte as bytea.
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO games (title, genres, is_rented, attributes) VALUES($1, $2, $3, $4)
		 ON CONFLICT (title) DO NOTHING`,
		game.Title, pq.Array(genres), game.IsRented, string(attrs),
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n == 1, nil
}

func (s *Storage) GetGame(ctx context.Context, title string) (*models.Game, error) {
	const op = "storage.postgres.GetGame"

	game, err := scanGame(s.db.QueryRowContext(ctx,
		"SELECT id, title, genres, is_rented, attributes FROM games WHERE title = $1",
		title,
	))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return game, nil
}

// Games returns the whole catalog in insertion order.
func (s *Storage) Games(ctx context.Context) ([]models.Game, error) {
	const op = "storage.postgres.Games"

	games, err := queryGames(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return games, nil
}

// RentGame marks title as rented and appends it to the user's list in one transaction.
// The user row is locked before the game row; ReturnGame takes the same order.
func (s *Storage) RentGame(ctx context.Context, username, title string) error {
	const op = "storage.postgres.RentGame"

	err := s.inTx(ctx, nil, func(tx *sql.Tx) error {
		if _, err := lockUser(ctx, tx, username); err != nil {
			return err
		}

		var isRented bool
		err := tx.QueryRowContext(ctx, "SELECT is_rented FROM games WHERE title = $1 FOR UPDATE", title).Scan(&isRented)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrGameNotFound
		}
		if err != nil {
			return err
		}
		if isRented {
			return storage.ErrGameAlreadyRented
		}

		if _, err := tx.ExecContext(ctx, "UPDATE games SET is_rented = TRUE WHERE title = $1", title); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE users SET rented_games = array_append(rented_games, $1) WHERE username = $2",
			title, username,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ReturnGame removes title from the user's list and clears the game's rented flag in one transaction.
func (s *Storage) ReturnGame(ctx context.Context, username, title string) error {
	const op = "storage.postgres.ReturnGame"

	err := s.inTx(ctx, nil, func(tx *sql.Tx) error {
		user, err := lockUser(ctx, tx, username)
		if err != nil {
			return err
		}
		if !user.HasRented(title) {
			return storage.ErrGameNotRented
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE users SET rented_games = array_remove(rented_games, $1) WHERE username = $2",
			title, username,
		)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, "UPDATE games SET is_rented = FALSE WHERE title = $1", title)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Snapshot reads the user and the catalog from a single repeatable-read transaction.
func (s *Storage) Snapshot(ctx context.Context, username string) (*models.User, []models.Game, error) {
	const op = "storage.postgres.Snapshot"

	var (
		user  *models.User
		games []models.Game
	)
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := s.inTx(ctx, opts, func(tx *sql.Tx) error {
		var err error
		user, err = scanUser(tx.QueryRowContext(ctx,
			"SELECT id, username, password_hash, rented_games, created_at FROM users WHERE username = $1",
			username,
		))
		if err != nil {
			return err
		}
		games, err = queryGames(ctx, tx)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, games, nil
}

func (s *Storage) inTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// lockUser row-locks the user for the rest of tx.
func lockUser(ctx context.Context, tx *sql.Tx, username string) (*models.User, error) {
	return scanUser(tx.QueryRowContext(ctx,
		"SELECT id, username, password_hash, rented_games, created_at FROM users WHERE username = $1 FOR UPDATE",
		username,
	))
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryGames(ctx context.Context, q queryer) ([]models.Game, error) {
	rows, err := q.QueryContext(ctx, "SELECT id, title, genres, is_rented, attributes FROM games ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *game)
	}

	return games, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, pq.Array(&user.RentedGames), &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.RentedGames == nil {
		user.RentedGames = []string{}
	}

	return &user, nil
}

func scanGame(row scanner) (*models.Game, error) {
	var (
		game  models.Game
		attrs []byte
	)
	err := row.Scan(&game.ID, &game.Title, pq.Array(&game.Genres), &game.IsRented, &attrs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &game.Attributes); err != nil {
			return nil, err
		}
	}

	return &game, nil
}

func nonNilAttributes(attrs map[string]string) map[string]string {
	if attrs == nil {
		return map[string]string{}
	}
	return attrs
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

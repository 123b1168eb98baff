// Package memory is an in-process catalog store. It backs the local environment and the tests.
package memory

import (
	"context"
	"fmt"
	"github.com/IlyasAtabaev731/game-rental/internal/domain/models"
	"github.com/IlyasAtabaev731/game-rental/internal/storage"
	"maps"
	"slices"
	"sync"
	"time"
)

type Storage struct {
	mu     sync.RWMutex
	users  map[string]*models.User
	games  map[string]*models.Game
	titles []string
	nextID int
}

func New() *Storage {
	return &Storage{
		users:  make(map[string]*models.User),
		games:  make(map[string]*models.Game),
		nextID: 1,
	}
}

func (s *Storage) SaveUser(_ context.Context, username string, passHash []byte) error {
	const op = "storage.memory.SaveUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserExists)
	}

	s.users[username] = &models.User{
		ID:           s.id(),
		Username:     username,
		PasswordHash: slices.Clone(passHash),
		RentedGames:  []string{},
		CreatedAt:    time.Now().UTC(),
	}

	return nil
}

func (s *Storage) GetUser(_ context.Context, username string) (*models.User, error) {
	const op = "storage.memory.GetUser"

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return cloneUser(user), nil
}

func (s *Storage) SaveGame(_ context.Context, game models.Game) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[game.Title]; ok {
		return false, nil
	}

	stored := cloneGame(&game)
	stored.ID = s.id()
	s.games[game.Title] = stored
	s.titles = append(s.titles, game.Title)

	return true, nil
}

func (s *Storage) GetGame(_ context.Context, title string) (*models.Game, error) {
	const op = "storage.memory.GetGame"

	s.mu.RLock()
	defer s.mu.RUnlock()

	game, ok := s.games[title]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrGameNotFound)
	}

	return cloneGame(game), nil
}

func (s *Storage) Games(_ context.Context) ([]models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.catalog(), nil
}

// RentGame applies both writes under one critical section, so readers never see half a rental.
func (s *Storage) RentGame(_ context.Context, username, title string) error {
	const op = "storage.memory.RentGame"

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	game, ok := s.games[title]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrGameNotFound)
	}
	if game.IsRented {
		return fmt.Errorf("%s: %w", op, storage.ErrGameAlreadyRented)
	}

	game.IsRented = true
	user.RentedGames = append(user.RentedGames, title)

	return nil
}

func (s *Storage) ReturnGame(_ context.Context, username, title string) error {
	const op = "storage.memory.ReturnGame"

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	if !user.HasRented(title) {
		return fmt.Errorf("%s: %w", op, storage.ErrGameNotRented)
	}

	user.RentedGames = slices.DeleteFunc(user.RentedGames, func(t string) bool { return t == title })
	if game, ok := s.games[title]; ok {
		game.IsRented = false
	}

	return nil
}

func (s *Storage) Snapshot(_ context.Context, username string) (*models.User, []models.Game, error) {
	const op = "storage.memory.Snapshot"

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return cloneUser(user), s.catalog(), nil
}

func (s *Storage) catalog() []models.Game {
	games := make([]models.Game, 0, len(s.titles))
	for _, title := range s.titles {
		games = append(games, *cloneGame(s.games[title]))
	}
	return games
}

func (s *Storage) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.PasswordHash = slices.Clone(u.PasswordHash)
	c.RentedGames = append([]string{}, u.RentedGames...)
	return &c
}

func cloneGame(g *models.Game) *models.Game {
	c := *g
	c.Genres = slices.Clone(g.Genres)
	c.Attributes = maps.Clone(g.Attributes)
	return &c
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"github.com/IlyasAtabaev731/game-rental/internal/domain/models"
	"github.com/IlyasAtabaev731/game-rental/internal/metrics"
	"github.com/IlyasAtabaev731/game-rental/internal/storage"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"log/slog"
)

var (
	ErrCredentialsRequired = errors.New("username and password are required")
	ErrCredentialsTooShort = errors.New("username and password must be at least 3 characters")
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
)

type Storage interface {
	SaveUser(ctx context.Context, username string, passHash []byte) error
	GetUser(ctx context.Context, username string) (*models.User, error)
}

type credentials struct {
	Username string `validate:"required,min=3"`
	Password string `validate:"required,min=3"`
}

type Auth struct {
	log      *slog.Logger
	storage  Storage
	validate *validator.Validate
}

func New(log *slog.Logger, storage Storage) *Auth {
	return &Auth{
		log:      log,
		storage:  storage,
		validate: validator.New(),
	}
}

// Register stores a new user with a bcrypt hash of password and no rentals.
func (a *Auth) Register(ctx context.Context, username, password string) error {
	const op = "auth.Register"

	log := a.log.With(slog.String("op", op), slog.String("username", username))

	if err := a.checkCredentials(credentials{Username: username, Password: password}); err != nil {
		log.Info("invalid registration", slog.String("reason", err.Error()))
		metrics.RecordAuth("register", "invalid")
		return err
	}

	// bcrypt salts every hash on its own.
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		metrics.RecordAuth("register", "error")
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.storage.SaveUser(ctx, username, passHash); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Info("user already exists")
			metrics.RecordAuth("register", "exists")
			return fmt.Errorf("%w: %s", ErrUserExists, username)
		}
		log.Error("failed to save user", slog.Any("error", err))
		metrics.RecordAuth("register", "error")
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered")
	metrics.RecordAuth("register", "ok")
	return nil
}

// Login returns the stored user when password matches its hash.
func (a *Auth) Login(ctx context.Context, username, password string) (*models.User, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op), slog.String("username", username))

	if a.validate.Var(username, "required") != nil || a.validate.Var(password, "required") != nil {
		metrics.RecordAuth("login", "invalid")
		return nil, ErrCredentialsRequired
	}

	user, err := a.storage.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("unknown user")
			metrics.RecordAuth("login", "denied")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to get user", slog.Any("error", err))
		metrics.RecordAuth("login", "error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		log.Info("wrong password")
		metrics.RecordAuth("login", "denied")
		return nil, ErrInvalidCredentials
	}

	log.Info("logged in")
	metrics.RecordAuth("login", "ok")
	return user, nil
}

// checkCredentials reports missing fields before short ones.
func (a *Auth) checkCredentials(c credentials) error {
	err := a.validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return ErrCredentialsRequired
		}
	}
	return ErrCredentialsTooShort
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/IlyasAtabaev731/game-rental/internal/config"
	"github.com/IlyasAtabaev731/game-rental/internal/domain/models"
	"github.com/IlyasAtabaev731/game-rental/internal/lib/jwt"
	"github.com/IlyasAtabaev731/game-rental/internal/services/auth"
	"github.com/IlyasAtabaev731/game-rental/internal/services/ledger"
	"github.com/IlyasAtabaev731/game-rental/internal/services/recommend"
	"github.com/IlyasAtabaev731/game-rental/internal/storage"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

type Auth interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*models.User, error)
}

type Ledger interface {
	Rent(ctx context.Context, user *models.User, title string) (ledger.Result, error)
	Return(ctx context.Context, user *models.User, title string) (ledger.Result, error)
}

type Recommender interface {
	ByGenre(ctx context.Context, user *models.User) (recommend.Result, error)
	ByTitle(ctx context.Context, user *models.User) (recommend.Result, error)
}

type Storage interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
	Games(ctx context.Context) ([]models.Game, error)
}

type Services struct {
	Auth        Auth
	Ledger      Ledger
	Recommender Recommender
	Storage     Storage
}

type APIServer struct {
	config   *config.Config
	logger   *slog.Logger
	server   *http.Server
	services Services
}

func New(config *config.Config, logger *slog.Logger, services Services) *APIServer {
	s := &APIServer{
		config: config,
		logger: logger,
		server: &http.Server{
			Addr: config.ApiHost + ":" + strconv.Itoa(config.ApiPort),
		},
		services: services,
	}
	s.configureRouter()

	return s
}

func (s *APIServer) Start() error {
	s.logger.Info("Starting server", slog.String("port", strconv.Itoa(s.config.ApiPort)))

	return s.server.ListenAndServe()
}

func (s *APIServer) MustStart() {
	err := s.Start()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic("Failed to start server: " + err.Error())
	}
}

func (s *APIServer) Stop(ctx context.Context) error {
	defer s.logger.Info("Server successfully stopped")
	return s.server.Shutdown(ctx)
}

func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *APIServer) configureRouter() {
	router := mux.NewRouter()
	router.Use(s.observe)
	router.HandleFunc("/api/register", s.registerHandler()).Methods("POST")
	router.HandleFunc("/api/auth", s.authHandler()).Methods("POST")
	router.HandleFunc("/api/games", s.authenticate(s.gamesHandler())).Methods("GET")
	router.HandleFunc("/api/rent", s.authenticate(s.rentHandler())).Methods("POST")
	router.HandleFunc("/api/return", s.authenticate(s.returnHandler())).Methods("POST")
	router.HandleFunc("/api/recommendations/genre", s.authenticate(s.recommendHandler("genre"))).Methods("GET")
	router.HandleFunc("/api/recommendations/title", s.authenticate(s.recommendHandler("title"))).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.server.Handler = router
}

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (s *APIServer) registerHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request format", http.StatusBadRequest)
			return
		}

		err := s.services.Auth.Register(r.Context(), req.Username, req.Password)
		switch {
		case err == nil:
			writeJSON(w, http.StatusCreated, MessageResponse{Message: "User registered: " + req.Username})
		case errors.Is(err, auth.ErrCredentialsRequired), errors.Is(err, auth.ErrCredentialsTooShort):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, auth.ErrUserExists):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			loggerFrom(r.Context(), s.logger).Error("Failed to register user", "error", err)
			http.Error(w, "Registration failed", http.StatusInternalServerError)
		}
	}
}

func (s *APIServer) authHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request format", http.StatusBadRequest)
			return
		}

		user, err := s.services.Auth.Login(r.Context(), req.Username, req.Password)
		switch {
		case err == nil:
		case errors.Is(err, auth.ErrCredentialsRequired):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, auth.ErrInvalidCredentials):
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		default:
			loggerFrom(r.Context(), s.logger).Error("Failed to login", "error", err)
			http.Error(w, "Login failed", http.StatusInternalServerError)
			return
		}

		token, err := jwt.NewToken(user.Username, s.config.JWT.Secret, s.config.JWT.TTL)
		if err != nil {
			loggerFrom(r.Context(), s.logger).Error("Failed to issue token", "error", err)
			http.Error(w, "Login failed", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, AuthResponse{Token: token})
	}
}

type ctxKey string

const userKey ctxKey = "user"

func (s *APIServer) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenHeader := r.Header.Get("Authorization")
		if tokenHeader == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(tokenHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid token format", http.StatusUnauthorized)
			return
		}

		username, err := jwt.ParseToken(parts[1], s.config.JWT.Secret)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		user, err := s.services.Storage.GetUser(r.Context(), username)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				http.Error(w, "Unknown user", http.StatusUnauthorized)
				return
			}
			loggerFrom(r.Context(), s.logger).Error("Failed to get user", "error", err)
			http.Error(w, "Failed to get user", http.StatusInternalServerError)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	}
}

func userFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

func (s *APIServer) gamesHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := s.services.Storage.Games(r.Context())
		if err != nil {
			loggerFrom(r.Context(), s.logger).Error("Failed to list games", "error", err)
			http.Error(w, "Failed to list games", http.StatusInternalServerError)
			return
		}
		if games == nil {
			games = []models.Game{}
		}

		writeJSON(w, http.StatusOK, games)
	}
}

type TitleRequest struct {
	Title string `json:"title"`
}

type LedgerResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *APIServer) rentHandler() func(http.ResponseWriter, *http.Request) {
	return s.ledgerHandler(s.services.Ledger.Rent)
}

func (s *APIServer) returnHandler() func(http.ResponseWriter, *http.Request) {
	return s.ledgerHandler(s.services.Ledger.Return)
}

func (s *APIServer) ledgerHandler(
	op func(ctx context.Context, user *models.User, title string) (ledger.Result, error),
) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TitleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
			http.Error(w, "Invalid request format", http.StatusBadRequest)
			return
		}

		res, err := op(r.Context(), userFrom(r.Context()), req.Title)
		if err != nil {
			loggerFrom(r.Context(), s.logger).Error("Ledger operation failed", "error", err)
			http.Error(w, "Ledger operation failed", http.StatusInternalServerError)
			return
		}

		writeJSON(w, ledgerStatusCode(res.Status), LedgerResponse{Status: res.Status.String(), Message: res.String()})
	}
}

func ledgerStatusCode(status ledger.Status) int {
	switch status {
	case ledger.StatusRented, ledger.StatusReturned:
		return http.StatusOK
	case ledger.StatusNotFound, ledger.StatusUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusConflict
	}
}

type RecommendationResponse struct {
	recommend.Result
	Message string `json:"message"`
}

func (s *APIServer) recommendHandler(strategy string) func(http.ResponseWriter, *http.Request) {
	recommendFn := s.services.Recommender.ByGenre
	if strategy == "title" {
		recommendFn = s.services.Recommender.ByTitle
	}

	return func(w http.ResponseWriter, r *http.Request) {
		res, err := recommendFn(r.Context(), userFrom(r.Context()))
		if err != nil {
			loggerFrom(r.Context(), s.logger).Error("Recommendation failed", "error", err, "strategy", strategy)
			http.Error(w, "Recommendation failed", http.StatusInternalServerError)
			return
		}
		if res.Titles == nil {
			res.Titles = []string{}
		}

		writeJSON(w, http.StatusOK, RecommendationResponse{Result: res, Message: res.String()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

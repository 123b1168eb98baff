package storage

import "errors"

var (
	ErrUserExists        = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrGameNotFound      = errors.New("game not found")
	ErrGameAlreadyRented = errors.New("game is already rented")
	ErrGameNotRented     = errors.New("game was not rented by user")
)

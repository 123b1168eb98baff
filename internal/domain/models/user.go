package models

import (
	"slices"
	"time"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	RentedGames  []string  `json:"rented_games"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasRented reports whether title is in the user's rented list. Titles match exactly.
func (u *User) HasRented(title string) bool {
	return slices.Contains(u.RentedGames, title)
}

package models

import "slices"

type Game struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Genres   []string `json:"genres"`
	IsRented bool     `json:"is_rented"`
	// Attributes holds the remaining catalog columns as they were loaded.
	Attributes map[string]string `json:"attributes,omitempty"`
}

func (g *Game) HasGenre(genre string) bool {
	return slices.Contains(g.Genres, genre)
}

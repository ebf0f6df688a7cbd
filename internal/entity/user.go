package entity

import "time"

type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserStats - aggregate of a user's completed games. Losses count only
// completed games won by someone else, so TotalGames = Wins + Losses + Draws.
type UserStats struct {
	TotalGames int64 `json:"total_games"`
	Wins       int64 `json:"wins"`
	Losses     int64 `json:"losses"`
	Draws      int64 `json:"draws"`
}

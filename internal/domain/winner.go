package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category is a winning pattern
type Category string

const (
	CategoryEarly5     Category = "EARLY_5"
	CategoryTopLine    Category = "TOP_LINE"
	CategoryMiddleLine Category = "MIDDLE_LINE"
	CategoryBottomLine Category = "BOTTOM_LINE"
	CategoryFullHouse  Category = "FULL_HOUSE"
)

// AllCategories lists every claimable category
var AllCategories = []Category{
	CategoryEarly5,
	CategoryTopLine,
	CategoryMiddleLine,
	CategoryBottomLine,
	CategoryFullHouse,
}

// IsValidCategory reports whether s names a known category
func IsValidCategory(s string) bool {
	switch Category(s) {
	case CategoryEarly5, CategoryTopLine, CategoryMiddleLine, CategoryBottomLine, CategoryFullHouse:
		return true
	}
	return false
}

// Winner records the single winner of one category in one game.
// At most one row exists per (GameID, Category); only PrizeClaimed mutates.
type Winner struct {
	ID           uuid.UUID `json:"id"`
	GameID       uuid.UUID `json:"game_id"`
	PlayerID     uuid.UUID `json:"player_id"`
	UserName     string    `json:"user_name"`
	Category     Category  `json:"category"`
	ClaimedAt    time.Time `json:"claimed_at"`
	PrizeClaimed bool      `json:"prize_claimed"`
	PrizeValue   int       `json:"prize_value,omitempty"`
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
)

// Game defines the interface for durable game data access required by the
// game engine. The administrative game CRUD service shares this interface.
type Game interface {
	CreateGame(ctx context.Context, game *domain.Game) error
	GetGame(ctx context.Context, id uuid.UUID) (*domain.Game, error)
	ListGames(ctx context.Context, status domain.GameStatus, limit int) ([]domain.Game, error)
	UpdateGameStatus(ctx context.Context, id uuid.UUID, status domain.GameStatus, at time.Time) error
	UpdateCalledNumbers(ctx context.Context, id uuid.UUID, numbers []int, current *int) error
	DeleteGame(ctx context.Context, id uuid.UUID) error

	// Player operations. CreatePlayer is idempotent on (game_id, user_id):
	// a second insert for the same pair returns the existing row.
	CreatePlayer(ctx context.Context, player *domain.Player) (*domain.Player, error)
	GetPlayer(ctx context.Context, gameID, userID uuid.UUID) (*domain.Player, error)
	GetPlayerByID(ctx context.Context, playerID uuid.UUID) (*domain.Player, error)
	ListPlayers(ctx context.Context, gameID uuid.UUID) ([]domain.Player, error)
	CountPlayers(ctx context.Context, gameID uuid.UUID) (int, error)

	// Winner operations. CreateWinner surfaces the (game_id, category)
	// uniqueness violation as domain.ErrCategoryAlreadyWon.
	CreateWinner(ctx context.Context, winner *domain.Winner) error
	ListWinners(ctx context.Context, gameID uuid.UUID) ([]domain.Winner, error)
}

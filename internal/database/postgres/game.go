package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/repository"
)

// GameRepository implements the game repository for PostgreSQL
type GameRepository struct {
	db *pgxpool.Pool
}

// NewGameRepository creates a new GameRepository
func NewGameRepository(db *pgxpool.Pool) repository.Game {
	return &GameRepository{db: db}
}

// CreateGame inserts a new game record
func (r *GameRepository) CreateGame(ctx context.Context, game *domain.Game) error {
	prizesJSON, err := json.Marshal(game.Prizes)
	if err != nil {
		return fmt.Errorf("failed to encode prizes: %w", err)
	}

	query := `
		INSERT INTO games (game_id, scheduled_time, status, created_by, prizes, called_numbers)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.Exec(ctx, query,
		game.ID, game.ScheduledTime, string(game.Status), game.CreatedBy, prizesJSON, toInt32s(game.CalledNumbers))
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

// GetGame retrieves a game by ID together with its player count
func (r *GameRepository) GetGame(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	query := `
		SELECT g.game_id, g.scheduled_time, g.started_at, g.ended_at, g.status,
		       g.created_by, g.prizes, g.called_numbers, g.current_number,
		       (SELECT COUNT(*) FROM players p WHERE p.game_id = g.game_id)
		FROM games g
		WHERE g.game_id = $1
	`
	game, err := scanGame(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// ListGames returns games filtered by status, newest scheduled first.
// An empty status returns every game.
func (r *GameRepository) ListGames(ctx context.Context, status domain.GameStatus, limit int) ([]domain.Game, error) {
	query := `
		SELECT g.game_id, g.scheduled_time, g.started_at, g.ended_at, g.status,
		       g.created_by, g.prizes, g.called_numbers, g.current_number,
		       (SELECT COUNT(*) FROM players p WHERE p.game_id = g.game_id)
		FROM games g
		WHERE ($1 = '' OR g.status = $1)
		ORDER BY g.scheduled_time DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, *game)
	}
	return games, rows.Err()
}

// UpdateGameStatus transitions a game and stamps started_at or ended_at
func (r *GameRepository) UpdateGameStatus(ctx context.Context, id uuid.UUID, status domain.GameStatus, at time.Time) error {
	query := `
		UPDATE games
		SET status = $2,
		    started_at = CASE WHEN $2 = 'ACTIVE' THEN $3 ELSE started_at END,
		    ended_at = CASE WHEN $2 IN ('COMPLETED', 'CANCELLED') THEN $3 ELSE ended_at END,
		    updated_at = NOW()
		WHERE game_id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, string(status), at)
	if err != nil {
		return fmt.Errorf("failed to update game status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

// UpdateCalledNumbers writes the full called sequence and current number
func (r *GameRepository) UpdateCalledNumbers(ctx context.Context, id uuid.UUID, numbers []int, current *int) error {
	query := `
		UPDATE games
		SET called_numbers = $2, current_number = $3, updated_at = NOW()
		WHERE game_id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, toInt32s(numbers), current)
	if err != nil {
		return fmt.Errorf("failed to update called numbers: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

// DeleteGame removes a game; children cascade
func (r *GameRepository) DeleteGame(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM games WHERE game_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

// CreatePlayer inserts a player. On a (game_id, user_id) collision the
// existing row is returned, which makes rejoin idempotent.
func (r *GameRepository) CreatePlayer(ctx context.Context, player *domain.Player) (*domain.Player, error) {
	ticketJSON, err := json.Marshal(player.Ticket)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket: %w", err)
	}

	query := `
		INSERT INTO players (player_id, game_id, user_id, user_name, ticket, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.Exec(ctx, query,
		player.ID, player.GameID, player.UserID, player.UserName, ticketJSON, player.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return r.GetPlayer(ctx, player.GameID, player.UserID)
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

// GetPlayer retrieves a player by (gameID, userID)
func (r *GameRepository) GetPlayer(ctx context.Context, gameID, userID uuid.UUID) (*domain.Player, error) {
	query := `
		SELECT player_id, game_id, user_id, user_name, ticket, joined_at
		FROM players
		WHERE game_id = $1 AND user_id = $2
	`
	player, err := scanPlayer(r.db.QueryRow(ctx, query, gameID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

// GetPlayerByID retrieves a player by primary key
func (r *GameRepository) GetPlayerByID(ctx context.Context, playerID uuid.UUID) (*domain.Player, error) {
	query := `
		SELECT player_id, game_id, user_id, user_name, ticket, joined_at
		FROM players
		WHERE player_id = $1
	`
	player, err := scanPlayer(r.db.QueryRow(ctx, query, playerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

// ListPlayers returns every player of a game in join order
func (r *GameRepository) ListPlayers(ctx context.Context, gameID uuid.UUID) ([]domain.Player, error) {
	query := `
		SELECT player_id, game_id, user_id, user_name, ticket, joined_at
		FROM players
		WHERE game_id = $1
		ORDER BY joined_at
	`
	rows, err := r.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, *player)
	}
	return players, rows.Err()
}

// CountPlayers counts the players of a game
func (r *GameRepository) CountPlayers(ctx context.Context, gameID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM players WHERE game_id = $1`, gameID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

// CreateWinner inserts a winner row. The (game_id, category) unique index is
// the authoritative single-winner tiebreak; a collision surfaces as
// domain.ErrCategoryAlreadyWon.
func (r *GameRepository) CreateWinner(ctx context.Context, winner *domain.Winner) error {
	query := `
		INSERT INTO winners (winner_id, game_id, player_id, category, claimed_at, prize_value)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		winner.ID, winner.GameID, winner.PlayerID, string(winner.Category), winner.ClaimedAt, winner.PrizeValue)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCategoryAlreadyWon
		}
		return fmt.Errorf("failed to create winner: %w", err)
	}
	return nil
}

// ListWinners returns every winner of a game with the player's display name
func (r *GameRepository) ListWinners(ctx context.Context, gameID uuid.UUID) ([]domain.Winner, error) {
	query := `
		SELECT w.winner_id, w.game_id, w.player_id, p.user_name, w.category,
		       w.claimed_at, w.prize_claimed, w.prize_value
		FROM winners w
		JOIN players p ON p.player_id = w.player_id
		WHERE w.game_id = $1
		ORDER BY w.claimed_at
	`
	rows, err := r.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}
	defer rows.Close()

	var winners []domain.Winner
	for rows.Next() {
		var w domain.Winner
		var category string
		if err := rows.Scan(&w.ID, &w.GameID, &w.PlayerID, &w.UserName, &category,
			&w.ClaimedAt, &w.PrizeClaimed, &w.PrizeValue); err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		w.Category = domain.Category(category)
		winners = append(winners, w)
	}
	return winners, rows.Err()
}

func scanGame(row pgx.Row) (*domain.Game, error) {
	var g domain.Game
	var status string
	var startedAt, endedAt pgtype.Timestamptz
	var prizesJSON []byte
	var called []int32

	err := row.Scan(&g.ID, &g.ScheduledTime, &startedAt, &endedAt, &status,
		&g.CreatedBy, &prizesJSON, &called, &g.CurrentNumber, &g.PlayerCount)
	if err != nil {
		return nil, err
	}

	g.Status = domain.GameStatus(status)
	if startedAt.Valid {
		g.StartedAt = &startedAt.Time
	}
	if endedAt.Valid {
		g.EndedAt = &endedAt.Time
	}
	g.CalledNumbers = toInts(called)
	if len(prizesJSON) > 0 {
		if err := json.Unmarshal(prizesJSON, &g.Prizes); err != nil {
			return nil, fmt.Errorf("failed to decode prizes: %w", err)
		}
	}
	return &g, nil
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	var ticketJSON []byte

	err := row.Scan(&p.ID, &p.GameID, &p.UserID, &p.UserName, &ticketJSON, &p.JoinedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(ticketJSON, &p.Ticket); err != nil {
		return nil, fmt.Errorf("failed to decode ticket: %w", err)
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == UniqueViolationCode
}

func toInt32s(nums []int) []int32 {
	out := make([]int32, len(nums))
	for i, n := range nums {
		out[i] = int32(n)
	}
	return out
}

func toInts(nums []int32) []int {
	out := make([]int, len(nums))
	for i, n := range nums {
		out[i] = int(n)
	}
	return out
}

// Package engine implements the authoritative game state machine. Every
// operation assumes concurrent peers on this and other instances: live game
// state lives in the hot store, the durable store is the system of record,
// and writes go hot-first so broadcasts always see the newest truth.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/hotstate"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/logger"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/metrics"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/protocol"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/repository"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/ticket"
)

// Service defines the interface for game engine operations
type Service interface {
	CreateGame(ctx context.Context, createdBy uuid.UUID, scheduledTime time.Time, prizes domain.PrizeMap) (*domain.Game, error)
	Join(ctx context.Context, gameID, userID uuid.UUID, userName string) (*JoinResult, error)
	Leave(ctx context.Context, gameID, userID uuid.UUID) error
	Start(ctx context.Context, gameID, userID uuid.UUID) error
	CallNumber(ctx context.Context, gameID, userID uuid.UUID, n int) error
	MarkNumber(ctx context.Context, gameID, userID, playerID uuid.UUID, n int) error
	ClaimWin(ctx context.Context, gameID, userID uuid.UUID, category domain.Category) (*domain.Winner, error)
	Cancel(ctx context.Context, gameID, userID uuid.UUID) error
	ListGames(ctx context.Context, status domain.GameStatus, limit int) ([]domain.Game, error)
	StateSync(ctx context.Context, gameID uuid.UUID, playerID *uuid.UUID) (*protocol.StateSyncPayload, error)
}

// HotState defines the live-state operations the engine needs
type HotState interface {
	GetGameState(ctx context.Context, gameID uuid.UUID) (*hotstate.GameState, error)
	SaveGameState(ctx context.Context, state *hotstate.GameState) error
	AddWonCategory(ctx context.Context, gameID uuid.UUID, category domain.Category) error
	SetStatus(ctx context.Context, gameID uuid.UUID, status domain.GameStatus) error
	IncrementPlayerCount(ctx context.Context, gameID uuid.UUID) (int, error)
	MarkNumber(ctx context.Context, gameID, playerID uuid.UUID, n int) error
	MarkedNumbers(ctx context.Context, gameID, playerID uuid.UUID) ([]int, error)
	AcquireWinnerLock(ctx context.Context, gameID uuid.UUID, category domain.Category) (bool, error)
	ReleaseWinnerLock(ctx context.Context, gameID uuid.UUID, category domain.Category) error
	CleanupGame(ctx context.Context, gameID uuid.UUID) error
}

// Broadcaster delivers an event to every member of the game's room
type Broadcaster interface {
	EmitRoom(ctx context.Context, gameID uuid.UUID, event string, payload interface{})
}

// PrizeEnqueuer hands a committed winner to the prize-distribution pipeline.
// The userID identifies the payout recipient.
type PrizeEnqueuer interface {
	EnqueueWin(ctx context.Context, userID uuid.UUID, winner *domain.Winner) (*domain.PrizeQueueItem, error)
}

// TicketGenerator produces one valid ticket per call
type TicketGenerator interface {
	Generate() domain.Ticket
}

// JoinResult is the outcome of a join. PlayerID and Ticket are nil when the
// caller is the organizer observing the game.
type JoinResult struct {
	GameID   uuid.UUID
	PlayerID *uuid.UUID
	Ticket   *domain.Ticket
	Observer bool
	Rejoined bool
	State    *protocol.StateSyncPayload
}

// gameMeta is the immutable slice of a game row worth caching in-process
type gameMeta struct {
	CreatedBy uuid.UUID
	Prizes    domain.PrizeMap
}

type service struct {
	repo        repository.Game
	hot         HotState
	broadcaster Broadcaster
	prizes      PrizeEnqueuer
	gen         TicketGenerator
	genMu       sync.Mutex
	metaCache   *lru.Cache[uuid.UUID, gameMeta]
}

// NewService creates a new game engine service
func NewService(repo repository.Game, hot HotState, broadcaster Broadcaster, prizes PrizeEnqueuer, gen TicketGenerator) Service {
	cache, _ := lru.New[uuid.UUID, gameMeta](GameMetaCacheSize)
	return &service{
		repo:        repo,
		hot:         hot,
		broadcaster: broadcaster,
		prizes:      prizes,
		gen:         gen,
		metaCache:   cache,
	}
}

// CreateGame registers a new game in LOBBY
func (s *service) CreateGame(ctx context.Context, createdBy uuid.UUID, scheduledTime time.Time, prizes domain.PrizeMap) (*domain.Game, error) {
	game := &domain.Game{
		ID:            uuid.New(),
		ScheduledTime: scheduledTime,
		Status:        domain.GameStatusLobby,
		CreatedBy:     createdBy,
		Prizes:        prizes,
	}
	if err := s.repo.CreateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	logger.FromContext(ctx).Info(LogMsgGameCreated, "game_id", game.ID, "created_by", createdBy)
	return game, nil
}

// Join enters a user into a game. The organizer joins as observer with no
// ticket; everyone else gets a Player row and a fresh ticket. Rejoining is
// idempotent: the same player comes back with the same ticket.
func (s *service) Join(ctx context.Context, gameID, userID uuid.UUID, userName string) (*JoinResult, error) {
	game, err := s.repo.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.CreatedBy == userID {
		state, err := s.StateSync(ctx, gameID, nil)
		if err != nil {
			return nil, err
		}
		return &JoinResult{GameID: gameID, Observer: true, State: state}, nil
	}

	player, err := s.repo.GetPlayer(ctx, gameID, userID)
	if err != nil && !errors.Is(err, domain.ErrPlayerNotFound) {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToLoadPlayer, err)
	}

	rejoined := player != nil
	if player == nil {
		if !game.IsJoinable() {
			return nil, domain.ErrGameAlreadyStarted
		}

		s.genMu.Lock()
		tkt := s.gen.Generate()
		s.genMu.Unlock()

		player, err = s.repo.CreatePlayer(ctx, &domain.Player{
			ID:       uuid.New(),
			GameID:   gameID,
			UserID:   userID,
			UserName: userName,
			Ticket:   tkt,
			JoinedAt: time.Now().UTC(),
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToCreatePlayer, err)
		}

		// Best effort: the hot counter is rebuilt from the durable store on
		// start, a missed increment here only skews the lobby count
		if _, err := s.hot.IncrementPlayerCount(ctx, gameID); err != nil {
			logger.FromContext(ctx).Warn(LogMsgHotIncrementFailed, "game_id", gameID, "error", err)
		}

		metrics.PlayersJoined.Inc()
		s.broadcaster.EmitRoom(ctx, gameID, protocol.EventPlayerJoined, protocol.PlayerJoinedPayload{
			PlayerID: player.ID,
			UserName: player.UserName,
		})
		logger.FromContext(ctx).Info(LogMsgPlayerJoined, "game_id", gameID, "player_id", player.ID)
	}

	state, err := s.StateSync(ctx, gameID, &player.ID)
	if err != nil {
		return nil, err
	}

	tkt := player.Ticket
	return &JoinResult{
		GameID:   gameID,
		PlayerID: &player.ID,
		Ticket:   &tkt,
		Rejoined: rejoined,
		State:    state,
	}, nil
}

// Leave validates the game exists. Room detachment is the transport's job
// and the Player row stays so the user can rejoin.
func (s *service) Leave(ctx context.Context, gameID, _ uuid.UUID) error {
	_, err := s.meta(ctx, gameID)
	return err
}

// Start moves a LOBBY game with at least one player to ACTIVE
func (s *service) Start(ctx context.Context, gameID, userID uuid.UUID) error {
	game, err := s.repo.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if game.CreatedBy != userID {
		return domain.ErrForbidden
	}
	if game.Status != domain.GameStatusLobby {
		return domain.ErrInvalidStatus
	}

	count, err := s.repo.CountPlayers(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to count players: %w", err)
	}
	if count == 0 {
		return domain.ErrNoPlayers
	}

	if err := s.hot.SaveGameState(ctx, &hotstate.GameState{
		GameID:      gameID,
		Status:      domain.GameStatusActive,
		PlayerCount: count,
	}); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToSaveHotState, err)
	}
	if err := s.repo.UpdateGameStatus(ctx, gameID, domain.GameStatusActive, time.Now().UTC()); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToPersistGame, err)
	}

	metrics.GamesStarted.Inc()
	s.broadcaster.EmitRoom(ctx, gameID, protocol.EventStarted, protocol.StartedPayload{GameID: gameID})
	logger.FromContext(ctx).Info(LogMsgGameStarted, "game_id", gameID, "players", count)
	return nil
}

// CallNumber draws the next number. Only the organizer may call; duplicates
// and out-of-range values are rejected without mutating state.
func (s *service) CallNumber(ctx context.Context, gameID, userID uuid.UUID, n int) error {
	meta, state, err := s.loadLive(ctx, gameID)
	if err != nil {
		return err
	}
	if meta.CreatedBy != userID {
		return domain.ErrForbidden
	}
	if state.Status != domain.GameStatusActive {
		return domain.ErrGameNotActive
	}
	if n < domain.MinCallableValue || n > domain.MaxCallableValue {
		return domain.ErrNumberOutOfRange
	}
	if len(state.CalledNumbers) >= domain.MaxCallableValue {
		return domain.ErrNumbersExhausted
	}
	for _, c := range state.CalledNumbers {
		if c == n {
			return domain.ErrNumberAlreadyCalled
		}
	}

	state.CalledNumbers = append(state.CalledNumbers, n)
	state.CurrentNumber = &n

	// Hot first so the broadcast below reflects committed live state, then
	// the durable store; a crash between the two leaves the last call
	// unpersisted, which the organizer resolves by re-calling
	if err := s.hot.SaveGameState(ctx, state); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToSaveHotState, err)
	}
	if err := s.repo.UpdateCalledNumbers(ctx, gameID, state.CalledNumbers, state.CurrentNumber); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToPersistGame, err)
	}

	metrics.NumbersCalled.Inc()
	s.broadcaster.EmitRoom(ctx, gameID, protocol.EventNumberCalled, protocol.NumberCalledPayload{Number: n})
	logger.FromContext(ctx).Debug(LogMsgNumberCalled, "game_id", gameID, "number", n)
	return nil
}

// MarkNumber records a player tapping a called number on their own ticket.
// Advisory state only; repeated marks are no-ops.
func (s *service) MarkNumber(ctx context.Context, gameID, userID, playerID uuid.UUID, n int) error {
	player, err := s.repo.GetPlayerByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, domain.ErrPlayerNotFound) {
			return domain.ErrInvalidPlayer
		}
		return fmt.Errorf("%s: %w", ErrContextFailedToLoadPlayer, err)
	}
	if player.GameID != gameID || player.UserID != userID {
		return domain.ErrInvalidPlayer
	}

	_, state, err := s.loadLive(ctx, gameID)
	if err != nil {
		return err
	}
	called := false
	for _, c := range state.CalledNumbers {
		if c == n {
			called = true
			break
		}
	}
	if !called {
		return domain.ErrNumberNotCalled
	}

	return s.hot.MarkNumber(ctx, gameID, playerID, n)
}

// ClaimWin validates a claim and commits its winner. Single winner per
// category is enforced in layers: a short-TTL hot lock rejects concurrent
// claimants fast, a re-read under the lock closes the read-modify-write
// race, and the durable unique index is the authoritative tiebreak.
func (s *service) ClaimWin(ctx context.Context, gameID, userID uuid.UUID, category domain.Category) (*domain.Winner, error) {
	log := logger.FromContext(ctx)

	meta, state, err := s.loadLive(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if state.Status != domain.GameStatusActive {
		return nil, domain.ErrGameNotActive
	}

	player, err := s.repo.GetPlayer(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}

	if state.HasWon(category) {
		metrics.ClaimsRejected.WithLabelValues(string(category), ReasonAlreadyWon).Inc()
		return nil, domain.ErrCategoryAlreadyWon
	}

	called := make(map[int]bool, len(state.CalledNumbers))
	for _, c := range state.CalledNumbers {
		called[c] = true
	}
	if !ticket.CheckWin(player.Ticket, called, category) {
		metrics.ClaimsRejected.WithLabelValues(string(category), ReasonInvalidClaim).Inc()
		return nil, domain.ErrInvalidClaim
	}

	acquired, err := s.hot.AcquireWinnerLock(ctx, gameID, category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToAcquireClaimLock, err)
	}
	if !acquired {
		metrics.ClaimsRejected.WithLabelValues(string(category), ReasonAlreadyClaimed).Inc()
		return nil, domain.ErrCategoryAlreadyClaimed
	}
	defer func() {
		if err := s.hot.ReleaseWinnerLock(ctx, gameID, category); err != nil {
			log.Warn(LogMsgLockReleaseFailed, "game_id", gameID, "category", category, "error", err)
		}
	}()

	// Re-read under the lock: another claimant may have committed between
	// our first read and the acquire
	state, err = s.hot.GetGameState(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToLoadGame, err)
	}
	if state == nil || state.Status != domain.GameStatusActive {
		return nil, domain.ErrGameNotActive
	}
	if state.HasWon(category) {
		metrics.ClaimsRejected.WithLabelValues(string(category), ReasonAlreadyWon).Inc()
		return nil, domain.ErrCategoryAlreadyWon
	}

	winner := &domain.Winner{
		ID:         uuid.New(),
		GameID:     gameID,
		PlayerID:   player.ID,
		UserName:   player.UserName,
		Category:   category,
		ClaimedAt:  time.Now().UTC(),
		PrizeValue: meta.Prizes[category],
	}
	if err := s.repo.CreateWinner(ctx, winner); err != nil {
		if errors.Is(err, domain.ErrCategoryAlreadyWon) {
			metrics.ClaimsRejected.WithLabelValues(string(category), ReasonAlreadyWon).Inc()
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToRecordWinner, err)
	}

	// Field-level write: a concurrent number call must not be overwritten by
	// a stale snapshot here. The winner row is already committed; on error
	// hot state converges on next rehydrate.
	if err := s.hot.AddWonCategory(ctx, gameID, category); err != nil {
		log.Error(ErrContextFailedToSaveHotState, "game_id", gameID, "error", err)
	}

	// At-least-once handoff: a failed enqueue is recovered via the manual
	// retry endpoint, the claim itself stands
	if _, err := s.prizes.EnqueueWin(ctx, userID, winner); err != nil {
		log.Error(LogMsgPrizeEnqueueFailed, "game_id", gameID, "player_id", player.ID, "category", category, "error", err)
	}

	metrics.ClaimsAccepted.WithLabelValues(string(category)).Inc()
	s.broadcaster.EmitRoom(ctx, gameID, protocol.EventWinner, protocol.WinnerPayload{
		PlayerID: player.ID,
		UserName: player.UserName,
		Category: category,
	})
	log.Info(LogMsgWinnerRecorded, "game_id", gameID, "player_id", player.ID, "category", category)

	if category == domain.CategoryFullHouse {
		s.completeGame(ctx, gameID)
	}
	return winner, nil
}

// completeGame transitions an ACTIVE game to COMPLETED after the full house
// is won: durable status flip, hot-to-durable sync of the call sequence,
// completion broadcast, then hot-state teardown.
func (s *service) completeGame(ctx context.Context, gameID uuid.UUID) {
	log := logger.FromContext(ctx)

	// Status-only flip; any snapshot held by the caller may already be stale
	// against concurrent number calls
	if err := s.hot.SetStatus(ctx, gameID, domain.GameStatusCompleted); err != nil {
		log.Error(ErrContextFailedToSaveHotState, "game_id", gameID, "error", err)
	}
	if err := s.repo.UpdateGameStatus(ctx, gameID, domain.GameStatusCompleted, time.Now().UTC()); err != nil {
		log.Error(ErrContextFailedToPersistGame, "game_id", gameID, "error", err)
	}

	// Sync the hot call sequence back before teardown so the durable store
	// never converges to a stale value. Read fresh: the sequence may have
	// advanced since the claim path last looked.
	if state, err := s.hot.GetGameState(ctx, gameID); err != nil || state == nil {
		log.Error(LogMsgHotSyncBackFailed, "game_id", gameID, "error", err)
	} else if err := s.repo.UpdateCalledNumbers(ctx, gameID, state.CalledNumbers, state.CurrentNumber); err != nil {
		log.Error(LogMsgHotSyncBackFailed, "game_id", gameID, "error", err)
	}

	s.metaCache.Remove(gameID)
	metrics.GamesCompleted.WithLabelValues(string(domain.GameStatusCompleted)).Inc()
	s.broadcaster.EmitRoom(ctx, gameID, protocol.EventCompleted, protocol.CompletedPayload{GameID: gameID})

	if err := s.hot.CleanupGame(ctx, gameID); err != nil {
		// The periodic sweep catches anything left behind
		log.Warn(LogMsgHotCleanupFailed, "game_id", gameID, "error", err)
	}
	log.Info(LogMsgGameCompleted, "game_id", gameID)
}

// Cancel aborts a LOBBY or ACTIVE game
func (s *service) Cancel(ctx context.Context, gameID, userID uuid.UUID) error {
	game, err := s.repo.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if game.CreatedBy != userID {
		return domain.ErrForbidden
	}
	if !game.CanTransition(domain.GameStatusCancelled) {
		return domain.ErrInvalidStatus
	}

	if err := s.repo.UpdateGameStatus(ctx, gameID, domain.GameStatusCancelled, time.Now().UTC()); err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToPersistGame, err)
	}

	s.metaCache.Remove(gameID)
	metrics.GamesCompleted.WithLabelValues(string(domain.GameStatusCancelled)).Inc()
	s.broadcaster.EmitRoom(ctx, gameID, protocol.EventCancelled, protocol.CancelledPayload{GameID: gameID})

	if err := s.hot.CleanupGame(ctx, gameID); err != nil {
		logger.FromContext(ctx).Warn(LogMsgHotCleanupFailed, "game_id", gameID, "error", err)
	}
	logger.FromContext(ctx).Info(LogMsgGameCancelled, "game_id", gameID)
	return nil
}

// ListGames returns games filtered by status, newest schedule first
func (s *service) ListGames(ctx context.Context, status domain.GameStatus, limit int) ([]domain.Game, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.repo.ListGames(ctx, status, limit)
}

// StateSync builds the full visible game snapshot for a (re)joining client.
// Marked numbers are included only when a playerID is given.
func (s *service) StateSync(ctx context.Context, gameID uuid.UUID, playerID *uuid.UUID) (*protocol.StateSyncPayload, error) {
	_, state, err := s.loadLive(ctx, gameID)
	if err != nil {
		return nil, err
	}

	players, err := s.repo.ListPlayers(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBuildStateSync, err)
	}
	winners, err := s.repo.ListWinners(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBuildStateSync, err)
	}

	payload := &protocol.StateSyncPayload{
		CalledNumbers: state.CalledNumbers,
		CurrentNumber: state.CurrentNumber,
		Players:       make([]protocol.PlayerInfo, 0, len(players)),
		Winners:       make([]protocol.WinnerInfo, 0, len(winners)),
	}
	for _, p := range players {
		payload.Players = append(payload.Players, protocol.PlayerInfo{PlayerID: p.ID, UserName: p.UserName})
	}
	for _, w := range winners {
		payload.Winners = append(payload.Winners, protocol.WinnerInfo{PlayerID: w.PlayerID, UserName: w.UserName, Category: w.Category})
	}

	if playerID != nil {
		marked, err := s.hot.MarkedNumbers(ctx, gameID, *playerID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextFailedToBuildStateSync, err)
		}
		payload.MarkedNumbers = marked
	}
	return payload, nil
}

// meta returns the cached immutable metadata of a game
func (s *service) meta(ctx context.Context, gameID uuid.UUID) (gameMeta, error) {
	if m, ok := s.metaCache.Get(gameID); ok {
		return m, nil
	}
	game, err := s.repo.GetGame(ctx, gameID)
	if err != nil {
		return gameMeta{}, err
	}
	m := gameMeta{CreatedBy: game.CreatedBy, Prizes: game.Prizes}
	s.metaCache.Add(gameID, m)
	return m, nil
}

// loadLive returns game metadata plus the live state, hot-first. A cache
// miss falls back to the durable store and rehydrates the hot snapshot for
// ACTIVE games so subsequent reads stay off the database.
func (s *service) loadLive(ctx context.Context, gameID uuid.UUID) (gameMeta, *hotstate.GameState, error) {
	meta, err := s.meta(ctx, gameID)
	if err != nil {
		return gameMeta{}, nil, err
	}

	state, err := s.hot.GetGameState(ctx, gameID)
	if err != nil {
		return gameMeta{}, nil, fmt.Errorf("%s: %w", ErrContextFailedToLoadGame, err)
	}
	if state != nil {
		return meta, state, nil
	}

	game, err := s.repo.GetGame(ctx, gameID)
	if err != nil {
		return gameMeta{}, nil, err
	}
	winners, err := s.repo.ListWinners(ctx, gameID)
	if err != nil {
		return gameMeta{}, nil, fmt.Errorf("%s: %w", ErrContextFailedToLoadGame, err)
	}

	state = &hotstate.GameState{
		GameID:        gameID,
		Status:        game.Status,
		CalledNumbers: game.CalledNumbers,
		CurrentNumber: game.CurrentNumber,
		PlayerCount:   game.PlayerCount,
	}
	for _, w := range winners {
		state.WonCategories = append(state.WonCategories, w.Category)
	}

	if game.Status == domain.GameStatusActive {
		if err := s.hot.SaveGameState(ctx, state); err != nil {
			logger.FromContext(ctx).Warn(ErrContextFailedToSaveHotState, "game_id", gameID, "error", err)
		} else {
			logger.FromContext(ctx).Debug(LogMsgHotRehydrated, "game_id", gameID)
		}
	}
	return meta, state, nil
}

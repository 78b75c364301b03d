// Package hotstate keeps the live, per-game state in Redis: called numbers,
// won categories, per-player marked numbers and the winner claim locks. It
// is authoritative while a game is ACTIVE and fully re-derivable from the
// durable store when missing.
package hotstate

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/logger"
)

// GameState is the hot snapshot of a running game
type GameState struct {
	GameID        uuid.UUID
	Status        domain.GameStatus
	CalledNumbers []int
	CurrentNumber *int
	WonCategories []domain.Category
	PlayerCount   int
}

// HasWon reports whether the category is already in the won set
func (s *GameState) HasWon(category domain.Category) bool {
	for _, c := range s.WonCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Store is the Redis-backed hot state client
type Store struct {
	rdb *redis.Client
}

// NewStore creates a Store over an established Redis client
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// NewClient dials Redis from a URL and verifies the connection
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgInvalidRedisURL, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgRedisUnreachable, err)
	}
	return client, nil
}

// GetGameState reads the hot snapshot; (nil, nil) means a cache miss
func (s *Store) GetGameState(ctx context.Context, gameID uuid.UUID) (*GameState, error) {
	pipe := s.rdb.Pipeline()
	hashCmd := pipe.HGetAll(ctx, gameStateKey(gameID))
	wonCmd := pipe.SMembers(ctx, wonSetKey(gameID))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read game state: %w", err)
	}

	fields := hashCmd.Val()
	if len(fields) == 0 {
		return nil, nil
	}

	state := &GameState{
		GameID:        gameID,
		Status:        domain.GameStatus(fields[fieldStatus]),
		CalledNumbers: decodeNumbers(fields[fieldCalledNumbers]),
		WonCategories: categoriesFromMembers(wonCmd.Val()),
	}
	if raw := fields[fieldCurrentNumber]; raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			state.CurrentNumber = &n
		}
	}
	if raw := fields[fieldPlayerCount]; raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			state.PlayerCount = n
		}
	}
	return state, nil
}

// SaveGameState writes the full snapshot and refreshes the key TTLs. Used
// when the caller owns every field: start and cold-read rehydration. Claim
// and completion paths use the field-level writers below so a concurrent
// call sequence advance is never overwritten.
func (s *Store) SaveGameState(ctx context.Context, state *GameState) error {
	current := ""
	if state.CurrentNumber != nil {
		current = strconv.Itoa(*state.CurrentNumber)
	}

	key := gameStateKey(state.GameID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		fieldStatus:        string(state.Status),
		fieldCalledNumbers: encodeNumbers(state.CalledNumbers),
		fieldCurrentNumber: current,
		fieldPlayerCount:   state.PlayerCount,
	})
	pipe.Expire(ctx, key, GameStateTTL)
	if len(state.WonCategories) > 0 {
		members := make([]interface{}, len(state.WonCategories))
		for i, c := range state.WonCategories {
			members[i] = string(c)
		}
		pipe.SAdd(ctx, wonSetKey(state.GameID), members...)
		pipe.Expire(ctx, wonSetKey(state.GameID), GameStateTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}
	return nil
}

// AddWonCategory records a committed winner. A single SADD, so concurrent
// claims of other categories and concurrent number calls are untouched.
func (s *Store) AddWonCategory(ctx context.Context, gameID uuid.UUID, category domain.Category) error {
	key := wonSetKey(gameID)
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, key, string(category))
	pipe.Expire(ctx, key, GameStateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record won category: %w", err)
	}
	return nil
}

// SetStatus flips only the status field of the hot snapshot
func (s *Store) SetStatus(ctx context.Context, gameID uuid.UUID, status domain.GameStatus) error {
	key := gameStateKey(gameID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, fieldStatus, string(status))
	pipe.Expire(ctx, key, GameStateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set game status: %w", err)
	}
	return nil
}

// IncrementPlayerCount bumps the live player counter and refreshes the TTL
func (s *Store) IncrementPlayerCount(ctx context.Context, gameID uuid.UUID) (int, error) {
	key := gameStateKey(gameID)
	pipe := s.rdb.TxPipeline()
	incr := pipe.HIncrBy(ctx, key, fieldPlayerCount, 1)
	pipe.Expire(ctx, key, GameStateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment player count: %w", err)
	}
	return int(incr.Val()), nil
}

// MarkNumber records a tapped number for a player. A set member add, so it
// is idempotent and safe under concurrent marks of different numbers.
func (s *Store) MarkNumber(ctx context.Context, gameID, playerID uuid.UUID, n int) error {
	key := playerMarksKey(gameID, playerID)
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, key, n)
	pipe.Expire(ctx, key, GameStateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark number: %w", err)
	}
	return nil
}

// MarkedNumbers returns the numbers a player has tapped so far, ascending
func (s *Store) MarkedNumbers(ctx context.Context, gameID, playerID uuid.UUID) ([]int, error) {
	members, err := s.rdb.SMembers(ctx, playerMarksKey(gameID, playerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read marked numbers: %w", err)
	}
	nums := make([]int, 0, len(members))
	for _, m := range members {
		if n, err := strconv.Atoi(m); err == nil {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)
	if len(nums) == 0 {
		return nil, nil
	}
	return nums, nil
}

// AcquireWinnerLock takes the short-TTL single-holder claim lock for a
// category. False means another claimant holds it.
func (s *Store) AcquireWinnerLock(ctx context.Context, gameID uuid.UUID, category domain.Category) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, winnerLockKey(gameID, category), lockHolderValue, WinnerLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire winner lock: %w", err)
	}
	return ok, nil
}

// ReleaseWinnerLock drops the claim lock; the TTL is the backstop if the
// holder crashes first
func (s *Store) ReleaseWinnerLock(ctx context.Context, gameID uuid.UUID, category domain.Category) error {
	if err := s.rdb.Del(ctx, winnerLockKey(gameID, category)).Err(); err != nil {
		return fmt.Errorf("failed to release winner lock: %w", err)
	}
	return nil
}

// CleanupGame deletes every hot key of a game in bounded batches
func (s *Store) CleanupGame(ctx context.Context, gameID uuid.UUID) error {
	pattern := gameKeyPrefix(gameID) + "*"
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, pattern, CleanupScanBatch).Result()
		if err != nil {
			return fmt.Errorf("failed to scan game keys: %w", err)
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete game keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// SweepFinished scans for hot state of games that already finished and
// removes it. Covers cleanups missed when an instance crashed between game
// completion and teardown.
func (s *Store) SweepFinished(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)
	swept := 0
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, "game:*:state", CleanupScanBatch).Result()
		if err != nil {
			return swept, fmt.Errorf("failed to scan state keys: %w", err)
		}
		for _, key := range keys {
			status, err := s.rdb.HGet(ctx, key, fieldStatus).Result()
			if err != nil {
				continue
			}
			if status != string(domain.GameStatusCompleted) && status != string(domain.GameStatusCancelled) {
				continue
			}
			gameID, ok := gameIDFromStateKey(key)
			if !ok {
				continue
			}
			if err := s.CleanupGame(ctx, gameID); err != nil {
				log.Warn(LogMsgSweepCleanupFailed, "game_id", gameID, "error", err)
				continue
			}
			swept++
		}
		cursor = next
		if cursor == 0 {
			return swept, nil
		}
	}
}

// IsVIP reports membership in the VIP cohort set. Callers treat errors as
// fail-open; this only gates listing visibility.
func (s *Store) IsVIP(ctx context.Context, userID uuid.UUID) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, vipSetKey, userID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check vip membership: %w", err)
	}
	return ok, nil
}

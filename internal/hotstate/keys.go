package hotstate

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
)

func gameKeyPrefix(gameID uuid.UUID) string {
	return "game:" + gameID.String() + ":"
}

func gameStateKey(gameID uuid.UUID) string {
	return gameKeyPrefix(gameID) + "state"
}

func wonSetKey(gameID uuid.UUID) string {
	return gameKeyPrefix(gameID) + "won"
}

func playerMarksKey(gameID, playerID uuid.UUID) string {
	return gameKeyPrefix(gameID) + "player:" + playerID.String() + ":marks"
}

func winnerLockKey(gameID uuid.UUID, category domain.Category) string {
	return "lock:winner:" + gameID.String() + ":" + string(category)
}

// gameIDFromStateKey recovers the game id from a "game:{id}:state" key
func gameIDFromStateKey(key string) (uuid.UUID, bool) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(key, "game:"), ":state")
	id, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func encodeNumbers(nums []int) string {
	if len(nums) == 0 {
		return ""
	}
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func decodeNumbers(raw string) []int {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		if n, err := strconv.Atoi(p); err == nil {
			nums = append(nums, n)
		}
	}
	return nums
}

// categoriesFromMembers converts won-set members, dropping unknown names
func categoriesFromMembers(members []string) []domain.Category {
	if len(members) == 0 {
		return nil
	}
	categories := make([]domain.Category, 0, len(members))
	for _, m := range members {
		if domain.IsValidCategory(m) {
			categories = append(categories, domain.Category(m))
		}
	}
	if len(categories) == 0 {
		return nil
	}
	return categories
}

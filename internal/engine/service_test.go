package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/hotstate"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/protocol"
)

// In-memory doubles. They mirror the uniqueness and locking semantics of the
// real stores so the concurrency properties can be exercised for real.

type fakeRepo struct {
	mu      sync.Mutex
	games   map[uuid.UUID]*domain.Game
	players map[uuid.UUID]*domain.Player
	winners map[string]*domain.Winner
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		games:   make(map[uuid.UUID]*domain.Game),
		players: make(map[uuid.UUID]*domain.Player),
		winners: make(map[string]*domain.Winner),
	}
}

func winnerKey(gameID uuid.UUID, category domain.Category) string {
	return gameID.String() + "|" + string(category)
}

func (r *fakeRepo) CreateGame(_ context.Context, game *domain.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *game
	r.games[game.ID] = &copied
	return nil
}

func (r *fakeRepo) GetGame(_ context.Context, id uuid.UUID) (*domain.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	game, ok := r.games[id]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	copied := *game
	count := 0
	for _, p := range r.players {
		if p.GameID == id {
			count++
		}
	}
	copied.PlayerCount = count
	return &copied, nil
}

func (r *fakeRepo) ListGames(_ context.Context, status domain.GameStatus, limit int) ([]domain.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Game
	for _, g := range r.games {
		if g.Status == status && len(out) < limit {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateGameStatus(_ context.Context, id uuid.UUID, status domain.GameStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	game, ok := r.games[id]
	if !ok {
		return domain.ErrGameNotFound
	}
	game.Status = status
	switch status {
	case domain.GameStatusActive:
		game.StartedAt = &at
	case domain.GameStatusCompleted, domain.GameStatusCancelled:
		game.EndedAt = &at
	}
	return nil
}

func (r *fakeRepo) UpdateCalledNumbers(_ context.Context, id uuid.UUID, numbers []int, current *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	game, ok := r.games[id]
	if !ok {
		return domain.ErrGameNotFound
	}
	game.CalledNumbers = append([]int(nil), numbers...)
	game.CurrentNumber = current
	return nil
}

func (r *fakeRepo) DeleteGame(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, id)
	return nil
}

func (r *fakeRepo) CreatePlayer(_ context.Context, player *domain.Player) (*domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.GameID == player.GameID && p.UserID == player.UserID {
			copied := *p
			return &copied, nil
		}
	}
	copied := *player
	copied.JoinedAt = time.Now().UTC()
	r.players[player.ID] = &copied
	result := copied
	return &result, nil
}

func (r *fakeRepo) GetPlayer(_ context.Context, gameID, userID uuid.UUID) (*domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.GameID == gameID && p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, domain.ErrPlayerNotFound
}

func (r *fakeRepo) GetPlayerByID(_ context.Context, playerID uuid.UUID) (*domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeRepo) ListPlayers(_ context.Context, gameID uuid.UUID) ([]domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Player
	for _, p := range r.players {
		if p.GameID == gameID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeRepo) CountPlayers(_ context.Context, gameID uuid.UUID) (int, error) {
	players, _ := r.ListPlayers(context.Background(), gameID)
	return len(players), nil
}

func (r *fakeRepo) CreateWinner(_ context.Context, winner *domain.Winner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := winnerKey(winner.GameID, winner.Category)
	if _, exists := r.winners[key]; exists {
		return domain.ErrCategoryAlreadyWon
	}
	copied := *winner
	r.winners[key] = &copied
	return nil
}

func (r *fakeRepo) ListWinners(_ context.Context, gameID uuid.UUID) ([]domain.Winner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Winner
	for _, w := range r.winners {
		if w.GameID == gameID {
			out = append(out, *w)
		}
	}
	return out, nil
}

type fakeHot struct {
	mu      sync.Mutex
	states  map[uuid.UUID]*hotstate.GameState
	marked  map[string][]int
	locks   map[string]bool
	cleaned []uuid.UUID

	// afterGetState, when set, runs after each GetGameState returns, outside
	// the store mutex. Lets tests interleave writes against a read snapshot.
	afterGetState func()
}

func newFakeHot() *fakeHot {
	return &fakeHot{
		states: make(map[uuid.UUID]*hotstate.GameState),
		marked: make(map[string][]int),
		locks:  make(map[string]bool),
	}
}

func copyState(s *hotstate.GameState) *hotstate.GameState {
	copied := *s
	copied.CalledNumbers = append([]int(nil), s.CalledNumbers...)
	copied.WonCategories = append([]domain.Category(nil), s.WonCategories...)
	return &copied
}

func (h *fakeHot) GetGameState(_ context.Context, gameID uuid.UUID) (*hotstate.GameState, error) {
	h.mu.Lock()
	s, ok := h.states[gameID]
	var out *hotstate.GameState
	if ok {
		out = copyState(s)
	}
	h.mu.Unlock()
	if h.afterGetState != nil {
		h.afterGetState()
	}
	return out, nil
}

func (h *fakeHot) SaveGameState(_ context.Context, state *hotstate.GameState) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states[state.GameID] = copyState(state)
	return nil
}

func (h *fakeHot) AddWonCategory(_ context.Context, gameID uuid.UUID, category domain.Category) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.states[gameID]
	if !ok {
		s = &hotstate.GameState{GameID: gameID}
		h.states[gameID] = s
	}
	if !s.HasWon(category) {
		s.WonCategories = append(s.WonCategories, category)
	}
	return nil
}

func (h *fakeHot) SetStatus(_ context.Context, gameID uuid.UUID, status domain.GameStatus) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.states[gameID]
	if !ok {
		s = &hotstate.GameState{GameID: gameID}
		h.states[gameID] = s
	}
	s.Status = status
	return nil
}

func (h *fakeHot) IncrementPlayerCount(_ context.Context, gameID uuid.UUID) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.states[gameID]
	if !ok {
		s = &hotstate.GameState{GameID: gameID}
		h.states[gameID] = s
	}
	s.PlayerCount++
	return s.PlayerCount, nil
}

func (h *fakeHot) MarkNumber(_ context.Context, gameID, playerID uuid.UUID, n int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := gameID.String() + "|" + playerID.String()
	for _, m := range h.marked[key] {
		if m == n {
			return nil
		}
	}
	h.marked[key] = append(h.marked[key], n)
	return nil
}

func (h *fakeHot) MarkedNumbers(_ context.Context, gameID, playerID uuid.UUID) ([]int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int(nil), h.marked[gameID.String()+"|"+playerID.String()]...), nil
}

func (h *fakeHot) AcquireWinnerLock(_ context.Context, gameID uuid.UUID, category domain.Category) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := winnerKey(gameID, category)
	if h.locks[key] {
		return false, nil
	}
	h.locks[key] = true
	return true, nil
}

func (h *fakeHot) ReleaseWinnerLock(_ context.Context, gameID uuid.UUID, category domain.Category) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.locks, winnerKey(gameID, category))
	return nil
}

func (h *fakeHot) CleanupGame(_ context.Context, gameID uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.states, gameID)
	h.cleaned = append(h.cleaned, gameID)
	return nil
}

type emitted struct {
	gameID  uuid.UUID
	event   string
	payload interface{}
}

type captureBroadcaster struct {
	mu     sync.Mutex
	events []emitted
}

func (b *captureBroadcaster) EmitRoom(_ context.Context, gameID uuid.UUID, event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, emitted{gameID: gameID, event: event, payload: payload})
}

func (b *captureBroadcaster) byEvent(event string) []emitted {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []emitted
	for _, e := range b.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

type fakePrizes struct {
	mu    sync.Mutex
	items []*domain.PrizeQueueItem
}

func (p *fakePrizes) EnqueueWin(_ context.Context, userID uuid.UUID, winner *domain.Winner) (*domain.PrizeQueueItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	item := &domain.PrizeQueueItem{
		ID:         uuid.New(),
		UserID:     userID,
		GameID:     winner.GameID,
		Category:   winner.Category,
		PrizeValue: winner.PrizeValue,
		Status:     domain.PrizeStatusPending,
	}
	p.items = append(p.items, item)
	return item, nil
}

// fixedGenerator hands out one known ticket so tests control which numbers
// can be claimed
type fixedGenerator struct{ ticket domain.Ticket }

func (g fixedGenerator) Generate() domain.Ticket { return g.ticket }

func testTicket() domain.Ticket {
	var t domain.Ticket
	for col := 0; col < 5; col++ {
		t[0][col] = 10*col + 1 // 1, 11, 21, 31, 41
		t[1][col] = 10*col + 2 // 2, 12, 22, 32, 42
		t[2][col] = 10*col + 3 // 3, 13, 23, 33, 43
	}
	return t
}

type testEnv struct {
	svc   Service
	repo  *fakeRepo
	hot   *fakeHot
	bus   *captureBroadcaster
	prize *fakePrizes
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := newFakeRepo()
	hot := newFakeHot()
	bus := &captureBroadcaster{}
	prize := &fakePrizes{}
	return &testEnv{
		svc:   NewService(repo, hot, bus, prize, fixedGenerator{ticket: testTicket()}),
		repo:  repo,
		hot:   hot,
		bus:   bus,
		prize: prize,
	}
}

func (e *testEnv) createGame(t *testing.T, createdBy uuid.UUID) *domain.Game {
	t.Helper()
	game, err := e.svc.CreateGame(context.Background(), createdBy, time.Now().UTC(), domain.PrizeMap{
		domain.CategoryEarly5:    100,
		domain.CategoryFullHouse: 500,
	})
	require.NoError(t, err)
	return game
}

// startGame seeds one organizer-created ACTIVE game with one joined player
func (e *testEnv) startGame(t *testing.T) (game *domain.Game, organizer, player uuid.UUID, playerID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	organizer = uuid.New()
	player = uuid.New()
	game = e.createGame(t, organizer)

	res, err := e.svc.Join(ctx, game.ID, player, "p1")
	require.NoError(t, err)
	require.NotNil(t, res.PlayerID)
	playerID = *res.PlayerID

	require.NoError(t, e.svc.Start(ctx, game.ID, organizer))
	return game, organizer, player, playerID
}

func (e *testEnv) call(t *testing.T, gameID, organizer uuid.UUID, numbers ...int) {
	t.Helper()
	for _, n := range numbers {
		require.NoError(t, e.svc.CallNumber(context.Background(), gameID, organizer, n))
	}
}

func TestJoin_NewPlayerGetsTicket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game := env.createGame(t, uuid.New())

	res, err := env.svc.Join(ctx, game.ID, uuid.New(), "alice")
	require.NoError(t, err)

	assert.False(t, res.Observer)
	require.NotNil(t, res.PlayerID)
	require.NotNil(t, res.Ticket)
	assert.Equal(t, testTicket(), *res.Ticket)
	assert.Len(t, env.bus.byEvent(protocol.EventPlayerJoined), 1)
}

func TestJoin_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game := env.createGame(t, uuid.New())
	userID := uuid.New()

	first, err := env.svc.Join(ctx, game.ID, userID, "alice")
	require.NoError(t, err)
	second, err := env.svc.Join(ctx, game.ID, userID, "alice")
	require.NoError(t, err)

	assert.Equal(t, *first.PlayerID, *second.PlayerID)
	assert.Equal(t, *first.Ticket, *second.Ticket)
	assert.True(t, second.Rejoined)
	// Only the first join announces the player
	assert.Len(t, env.bus.byEvent(protocol.EventPlayerJoined), 1)
}

func TestJoin_OrganizerObserves(t *testing.T) {
	env := newTestEnv(t)
	organizer := uuid.New()
	game := env.createGame(t, organizer)

	res, err := env.svc.Join(context.Background(), game.ID, organizer, "host")
	require.NoError(t, err)

	assert.True(t, res.Observer)
	assert.Nil(t, res.PlayerID)
	assert.Nil(t, res.Ticket)
	assert.Empty(t, env.bus.byEvent(protocol.EventPlayerJoined))
}

func TestJoin_RejectedAfterStart(t *testing.T) {
	env := newTestEnv(t)
	game, _, _, _ := env.startGame(t)

	_, err := env.svc.Join(context.Background(), game.ID, uuid.New(), "late")
	assert.ErrorIs(t, err, domain.ErrGameAlreadyStarted)
}

func TestJoin_GameNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Join(context.Background(), uuid.New(), uuid.New(), "x")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestStart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	organizer := uuid.New()
	game := env.createGame(t, organizer)

	t.Run("rejects non creator", func(t *testing.T) {
		err := env.svc.Start(ctx, game.ID, uuid.New())
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("rejects empty lobby", func(t *testing.T) {
		err := env.svc.Start(ctx, game.ID, organizer)
		assert.ErrorIs(t, err, domain.ErrNoPlayers)
	})

	t.Run("activates with players", func(t *testing.T) {
		_, err := env.svc.Join(ctx, game.ID, uuid.New(), "alice")
		require.NoError(t, err)
		require.NoError(t, env.svc.Start(ctx, game.ID, organizer))

		stored, err := env.repo.GetGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.GameStatusActive, stored.Status)
		assert.NotNil(t, stored.StartedAt)

		state, err := env.hot.GetGameState(ctx, game.ID)
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Equal(t, domain.GameStatusActive, state.Status)
		assert.Len(t, env.bus.byEvent(protocol.EventStarted), 1)
	})

	t.Run("rejects second start", func(t *testing.T) {
		err := env.svc.Start(ctx, game.ID, organizer)
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})
}

func TestCallNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game, organizer, _, _ := env.startGame(t)

	t.Run("appends and broadcasts", func(t *testing.T) {
		require.NoError(t, env.svc.CallNumber(ctx, game.ID, organizer, 37))

		state, err := env.hot.GetGameState(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{37}, state.CalledNumbers)
		require.NotNil(t, state.CurrentNumber)
		assert.Equal(t, 37, *state.CurrentNumber)

		stored, err := env.repo.GetGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{37}, stored.CalledNumbers)
		assert.Len(t, env.bus.byEvent(protocol.EventNumberCalled), 1)
	})

	t.Run("rejects duplicate", func(t *testing.T) {
		err := env.svc.CallNumber(ctx, game.ID, organizer, 37)
		assert.ErrorIs(t, err, domain.ErrNumberAlreadyCalled)

		state, _ := env.hot.GetGameState(ctx, game.ID)
		assert.Equal(t, []int{37}, state.CalledNumbers)
	})

	t.Run("rejects out of range", func(t *testing.T) {
		assert.ErrorIs(t, env.svc.CallNumber(ctx, game.ID, organizer, 0), domain.ErrNumberOutOfRange)
		assert.ErrorIs(t, env.svc.CallNumber(ctx, game.ID, organizer, 91), domain.ErrNumberOutOfRange)
	})

	t.Run("rejects non creator", func(t *testing.T) {
		err := env.svc.CallNumber(ctx, game.ID, uuid.New(), 42)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestCallNumber_Exhausted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game, organizer, _, _ := env.startGame(t)

	for n := 1; n <= 90; n++ {
		require.NoError(t, env.svc.CallNumber(ctx, game.ID, organizer, n))
	}
	// Every number drawn, nothing left to call
	err := env.svc.CallNumber(ctx, game.ID, organizer, 45)
	assert.ErrorIs(t, err, domain.ErrNumbersExhausted)
}

func TestCallNumber_NotActive(t *testing.T) {
	env := newTestEnv(t)
	organizer := uuid.New()
	game := env.createGame(t, organizer)

	err := env.svc.CallNumber(context.Background(), game.ID, organizer, 5)
	assert.ErrorIs(t, err, domain.ErrGameNotActive)
}

func TestMarkNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game, organizer, userID, playerID := env.startGame(t)
	env.call(t, game.ID, organizer, 1, 11)

	t.Run("rejects uncalled number", func(t *testing.T) {
		err := env.svc.MarkNumber(ctx, game.ID, userID, playerID, 21)
		assert.ErrorIs(t, err, domain.ErrNumberNotCalled)
	})

	t.Run("rejects foreign player", func(t *testing.T) {
		err := env.svc.MarkNumber(ctx, game.ID, uuid.New(), playerID, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidPlayer)
	})

	t.Run("is idempotent", func(t *testing.T) {
		require.NoError(t, env.svc.MarkNumber(ctx, game.ID, userID, playerID, 1))
		require.NoError(t, env.svc.MarkNumber(ctx, game.ID, userID, playerID, 1))

		marked, err := env.hot.MarkedNumbers(ctx, game.ID, playerID)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, marked)
	})
}

func TestMarkNumber_ConcurrentMarksAllRetained(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game, organizer, userID, playerID := env.startGame(t)
	numbers := []int{1, 11, 21, 31, 41}
	env.call(t, game.ID, organizer, numbers...)

	// A fast double tap must not drop either mark
	var wg sync.WaitGroup
	for _, n := range numbers {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			require.NoError(t, env.svc.MarkNumber(ctx, game.ID, userID, playerID, n))
		}(n)
	}
	wg.Wait()

	marked, err := env.hot.MarkedNumbers(ctx, game.ID, playerID)
	require.NoError(t, err)
	assert.ElementsMatch(t, numbers, marked)
}

func TestClaimWin_Early5(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game, organizer, userID, playerID := env.startGame(t)
	env.call(t, game.ID, organizer, 1, 11, 21, 31, 41)

	winner, err := env.svc.ClaimWin(ctx, game.ID, userID, domain.CategoryEarly5)
	require.NoError(t, err)

	assert.Equal(t, playerID, winner.PlayerID)
	assert.Equal(t, 100, winner.PrizeValue)

	winners, err := env.repo.ListWinners(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, winners, 1)

	require.Len(t, env.prize.items, 1)
	assert.Equal(t, domain.CategoryEarly5, env.prize.items[0].Category)
	assert.Equal(t, 100, env.prize.items[0].PrizeValue)

	state, err := env.hot.GetGameState(ctx, game.ID)
	require.NoError(t, err)
	assert.True(t, state.HasWon(domain.CategoryEarly5))
	assert.Len(t, env.bus.byEvent(protocol.EventWinner), 1)
}

func TestClaimWin_InvalidClaim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game, organizer, userID, _ := env.startGame(t)
	env.call(t, game.ID, organizer, 1, 11) // only two of the ticket called

	_, err := env.svc.ClaimWin(ctx, game.ID, userID, domain.CategoryEarly5)
	assert.ErrorIs(t, err, domain.ErrInvalidClaim)
	assert.Empty(t, env.prize.items)
}

func TestClaimWin_AlreadyWon(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game, organizer, userID, _ := env.startGame(t)
	env.call(t, game.ID, organizer, 1, 11, 21, 31, 41)

	_, err := env.svc.ClaimWin(ctx, game.ID, userID, domain.CategoryEarly5)
	require.NoError(t, err)

	_, err = env.svc.ClaimWin(ctx, game.ID, userID, domain.CategoryEarly5)
	assert.ErrorIs(t, err, domain.ErrCategoryAlreadyWon)
}

func TestClaimWin_LockHeld(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game, organizer, userID, _ := env.startGame(t)
	env.call(t, game.ID, organizer, 1, 11, 21, 31, 41)

	acquired, err := env.hot.AcquireWinnerLock(ctx, game.ID, domain.CategoryEarly5)
	require.NoError(t, err)
	require.True(t, acquired)

	_, err = env.svc.ClaimWin(ctx, game.ID, userID, domain.CategoryEarly5)
	assert.ErrorIs(t, err, domain.ErrCategoryAlreadyClaimed)
}

func TestClaimWin_NotActive(t *testing.T) {
	env := newTestEnv(t)
	game := env.createGame(t, uuid.New())
	userID := uuid.New()
	_, err := env.svc.Join(context.Background(), game.ID, userID, "p1")
	require.NoError(t, err)

	_, err = env.svc.ClaimWin(context.Background(), game.ID, userID, domain.CategoryEarly5)
	assert.ErrorIs(t, err, domain.ErrGameNotActive)
}

func TestClaimWin_FullHouseCompletesGame(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game, organizer, userID, _ := env.startGame(t)
	// Call every number on the ticket
	numbers := testTicket().Numbers()
	env.call(t, game.ID, organizer, numbers...)

	_, err := env.svc.ClaimWin(ctx, game.ID, userID, domain.CategoryFullHouse)
	require.NoError(t, err)

	stored, err := env.repo.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GameStatusCompleted, stored.Status)
	assert.NotNil(t, stored.EndedAt)
	assert.Len(t, stored.CalledNumbers, len(numbers))

	assert.Len(t, env.bus.byEvent(protocol.EventCompleted), 1)
	assert.Contains(t, env.hot.cleaned, game.ID)

	// Terminal game rejects further calls
	err = env.svc.CallNumber(ctx, game.ID, organizer, 90)
	assert.ErrorIs(t, err, domain.ErrGameNotActive)
}

func TestClaimWin_PreservesConcurrentCall(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game, organizer, userID, _ := env.startGame(t)
	env.call(t, game.ID, organizer, 1, 11, 21, 31, 41)

	// Interleave a number call between the claim's locked re-read and its
	// hot-state write; the committed call must survive the claim
	reads := 0
	env.hot.afterGetState = func() {
		reads++
		if reads == 2 {
			hook := env.hot.afterGetState
			env.hot.afterGetState = nil
			require.NoError(t, env.svc.CallNumber(ctx, game.ID, organizer, 42))
			env.hot.afterGetState = hook
		}
	}

	_, err := env.svc.ClaimWin(ctx, game.ID, userID, domain.CategoryEarly5)
	require.NoError(t, err)
	env.hot.afterGetState = nil

	state, err := env.hot.GetGameState(ctx, game.ID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Contains(t, state.CalledNumbers, 42)
	assert.True(t, state.HasWon(domain.CategoryEarly5))

	stored, err := env.repo.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.CalledNumbers, 42)
}

func TestClaimWin_ConcurrentClaimantsSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	organizer := uuid.New()
	game := env.createGame(t, organizer)

	const claimants = 8
	users := make([]uuid.UUID, claimants)
	for i := range users {
		users[i] = uuid.New()
		_, err := env.svc.Join(ctx, game.ID, users[i], "p")
		require.NoError(t, err)
	}
	require.NoError(t, env.svc.Start(ctx, game.ID, organizer))
	// Everyone shares the fixed ticket, so all claims are structurally valid
	env.call(t, game.ID, organizer, 1, 11, 21, 31, 41)

	var wg sync.WaitGroup
	results := make([]error, claimants)
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = env.svc.ClaimWin(ctx, game.ID, users[i], domain.CategoryEarly5)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrCategoryAlreadyWon), errors.Is(err, domain.ErrCategoryAlreadyClaimed):
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)

	winners, err := env.repo.ListWinners(ctx, game.ID)
	require.NoError(t, err)
	assert.Len(t, winners, 1)
	assert.Len(t, env.prize.items, 1)
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game, organizer, _, _ := env.startGame(t)

	t.Run("rejects non creator", func(t *testing.T) {
		assert.ErrorIs(t, env.svc.Cancel(ctx, game.ID, uuid.New()), domain.ErrForbidden)
	})

	t.Run("cancels active game", func(t *testing.T) {
		require.NoError(t, env.svc.Cancel(ctx, game.ID, organizer))

		stored, err := env.repo.GetGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.GameStatusCancelled, stored.Status)
		assert.Len(t, env.bus.byEvent(protocol.EventCancelled), 1)
		assert.Contains(t, env.hot.cleaned, game.ID)
	})

	t.Run("rejects double cancel", func(t *testing.T) {
		assert.ErrorIs(t, env.svc.Cancel(ctx, game.ID, organizer), domain.ErrInvalidStatus)
	})
}

func TestStateSync_Rejoin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game, organizer, userID, playerID := env.startGame(t)
	env.call(t, game.ID, organizer, 1, 11, 21)
	require.NoError(t, env.svc.MarkNumber(ctx, game.ID, userID, playerID, 1))
	require.NoError(t, env.svc.MarkNumber(ctx, game.ID, userID, playerID, 11))

	res, err := env.svc.Join(ctx, game.ID, userID, "p1")
	require.NoError(t, err)

	assert.True(t, res.Rejoined)
	assert.Equal(t, []int{1, 11, 21}, res.State.CalledNumbers)
	assert.ElementsMatch(t, []int{1, 11}, res.State.MarkedNumbers)
	require.Len(t, res.State.Players, 1)
}

func TestLoadLive_RehydratesFromDurable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	game, organizer, _, _ := env.startGame(t)
	env.call(t, game.ID, organizer, 5, 37)

	// Simulate hot-state loss (TTL expiry or restart)
	env.hot.mu.Lock()
	delete(env.hot.states, game.ID)
	env.hot.mu.Unlock()

	state, err := env.svc.StateSync(ctx, game.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 37}, state.CalledNumbers)

	// Rehydrated: the hot snapshot is back
	hotState, err := env.hot.GetGameState(ctx, game.ID)
	require.NoError(t, err)
	require.NotNil(t, hotState)
	assert.Equal(t, []int{5, 37}, hotState.CalledNumbers)
}

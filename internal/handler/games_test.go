package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/engine"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/protocol"
)

// MockEngineService mocks engine.Service
type MockEngineService struct {
	mock.Mock
}

func (m *MockEngineService) CreateGame(ctx context.Context, createdBy uuid.UUID, scheduledTime time.Time, prizes domain.PrizeMap) (*domain.Game, error) {
	args := m.Called(ctx, createdBy, scheduledTime, prizes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Game), args.Error(1)
}

func (m *MockEngineService) Join(ctx context.Context, gameID, userID uuid.UUID, userName string) (*engine.JoinResult, error) {
	args := m.Called(ctx, gameID, userID, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.JoinResult), args.Error(1)
}

func (m *MockEngineService) Leave(ctx context.Context, gameID, userID uuid.UUID) error {
	return m.Called(ctx, gameID, userID).Error(0)
}

func (m *MockEngineService) Start(ctx context.Context, gameID, userID uuid.UUID) error {
	return m.Called(ctx, gameID, userID).Error(0)
}

func (m *MockEngineService) CallNumber(ctx context.Context, gameID, userID uuid.UUID, n int) error {
	return m.Called(ctx, gameID, userID, n).Error(0)
}

func (m *MockEngineService) MarkNumber(ctx context.Context, gameID, userID, playerID uuid.UUID, n int) error {
	return m.Called(ctx, gameID, userID, playerID, n).Error(0)
}

func (m *MockEngineService) ClaimWin(ctx context.Context, gameID, userID uuid.UUID, category domain.Category) (*domain.Winner, error) {
	args := m.Called(ctx, gameID, userID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Winner), args.Error(1)
}

func (m *MockEngineService) Cancel(ctx context.Context, gameID, userID uuid.UUID) error {
	return m.Called(ctx, gameID, userID).Error(0)
}

func (m *MockEngineService) ListGames(ctx context.Context, status domain.GameStatus, limit int) ([]domain.Game, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Game), args.Error(1)
}

func (m *MockEngineService) StateSync(ctx context.Context, gameID uuid.UUID, playerID *uuid.UUID) (*protocol.StateSyncPayload, error) {
	args := m.Called(ctx, gameID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*protocol.StateSyncPayload), args.Error(1)
}

// MockVIPChecker mocks the VIP membership lookup
type MockVIPChecker struct {
	mock.Mock
}

func (m *MockVIPChecker) IsVIP(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func TestHandleCreateGame(t *testing.T) {
	creator := uuid.New()

	tests := []struct {
		name           string
		reqBody        interface{}
		setupMocks     func(*MockEngineService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Success",
			reqBody: CreateGameRequest{
				CreatedBy: creator.String(),
				Prizes:    map[string]int{"EARLY_5": 100, "FULL_HOUSE": 500},
			},
			setupMocks: func(me *MockEngineService) {
				me.On("CreateGame", mock.Anything, creator, mock.Anything, domain.PrizeMap{
					domain.CategoryEarly5:    100,
					domain.CategoryFullHouse: 500,
				}).Return(&domain.Game{ID: uuid.New(), Status: domain.GameStatusLobby, CreatedBy: creator}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"status":"LOBBY"`,
		},
		{
			name:           "Invalid JSON",
			reqBody:        "not json",
			setupMocks:     func(me *MockEngineService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequest,
		},
		{
			name: "Missing Prizes",
			reqBody: CreateGameRequest{
				CreatedBy: creator.String(),
			},
			setupMocks:     func(me *MockEngineService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequestSummary,
		},
		{
			name: "Unknown Category",
			reqBody: CreateGameRequest{
				CreatedBy: creator.String(),
				Prizes:    map[string]int{"CORNERS": 100},
			},
			setupMocks:     func(me *MockEngineService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid win category",
		},
		{
			name: "Non-positive Prize Value",
			reqBody: CreateGameRequest{
				CreatedBy: creator.String(),
				Prizes:    map[string]int{"EARLY_5": 0},
			},
			setupMocks:     func(me *MockEngineService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid win category",
		},
		{
			name: "Service Error",
			reqBody: CreateGameRequest{
				CreatedBy: creator.String(),
				Prizes:    map[string]int{"EARLY_5": 100},
			},
			setupMocks: func(me *MockEngineService) {
				me.On("CreateGame", mock.Anything, creator, mock.Anything, mock.Anything).
					Return(nil, assert.AnError)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   ErrMsgGenericServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockEngine := &MockEngineService{}
			tt.setupMocks(mockEngine)

			var body bytes.Buffer
			if s, ok := tt.reqBody.(string); ok {
				body.WriteString(s)
			} else {
				_ = json.NewEncoder(&body).Encode(tt.reqBody)
			}

			req := httptest.NewRequest("POST", "/api/v1/games", &body)
			w := httptest.NewRecorder()

			h := NewGameHandler(mockEngine, &MockVIPChecker{})
			h.HandleCreateGame(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockEngine.AssertExpectations(t)
		})
	}
}

func TestHandleListGames(t *testing.T) {
	userID := uuid.New()
	games := []domain.Game{
		{ID: uuid.New(), Status: domain.GameStatusLobby},
		{ID: uuid.New(), Status: domain.GameStatusLobby},
	}

	tests := []struct {
		name           string
		url            string
		setupMocks     func(*MockEngineService, *MockVIPChecker)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "VIP Lists Lobby Games",
			url:  "/api/v1/games?userId=" + userID.String(),
			setupMocks: func(me *MockEngineService, mv *MockVIPChecker) {
				mv.On("IsVIP", mock.Anything, userID).Return(true, nil)
				me.On("ListGames", mock.Anything, domain.GameStatusLobby, engine.DefaultListLimit).Return(games, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"LOBBY"`,
		},
		{
			name: "Non-VIP Forbidden",
			url:  "/api/v1/games?userId=" + userID.String(),
			setupMocks: func(me *MockEngineService, mv *MockVIPChecker) {
				mv.On("IsVIP", mock.Anything, userID).Return(false, nil)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   ErrMsgVIPOnly,
		},
		{
			name: "Membership Check Fails Open",
			url:  "/api/v1/games?userId=" + userID.String() + "&status=ACTIVE&limit=10",
			setupMocks: func(me *MockEngineService, mv *MockVIPChecker) {
				mv.On("IsVIP", mock.Anything, userID).Return(false, assert.AnError)
				me.On("ListGames", mock.Anything, domain.GameStatusActive, 10).Return([]domain.Game{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing UserID",
			url:            "/api/v1/games",
			setupMocks:     func(me *MockEngineService, mv *MockVIPChecker) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Completed Status Rejected",
			url:  "/api/v1/games?userId=" + userID.String() + "&status=COMPLETED",
			setupMocks: func(me *MockEngineService, mv *MockVIPChecker) {
				mv.On("IsVIP", mock.Anything, userID).Return(true, nil)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidStatus,
		},
		{
			name: "Bad Limit",
			url:  "/api/v1/games?userId=" + userID.String() + "&limit=zero",
			setupMocks: func(me *MockEngineService, mv *MockVIPChecker) {
				mv.On("IsVIP", mock.Anything, userID).Return(true, nil)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockEngine := &MockEngineService{}
			mockVIP := &MockVIPChecker{}
			tt.setupMocks(mockEngine, mockVIP)

			req := httptest.NewRequest("GET", tt.url, nil)
			w := httptest.NewRecorder()

			h := NewGameHandler(mockEngine, mockVIP)
			h.HandleListGames(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			mockEngine.AssertExpectations(t)
			mockVIP.AssertExpectations(t)
		})
	}
}

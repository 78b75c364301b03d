package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/engine"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/logger"
)

// VIPChecker reports VIP cohort membership for the gated games listing
type VIPChecker interface {
	IsVIP(ctx context.Context, userID uuid.UUID) (bool, error)
}

type GameHandler struct {
	service engine.Service
	vip     VIPChecker
}

func NewGameHandler(service engine.Service, vip VIPChecker) *GameHandler {
	return &GameHandler{
		service: service,
		vip:     vip,
	}
}

type CreateGameRequest struct {
	CreatedBy     string         `json:"created_by" validate:"required,uuid4"`
	ScheduledTime time.Time      `json:"scheduled_time"`
	Prizes        map[string]int `json:"prizes" validate:"required,min=1"`
}

func (h *GameHandler) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Create game"); err != nil {
		return
	}

	createdBy, err := uuid.Parse(req.CreatedBy)
	if err != nil {
		http.Error(w, ErrMsgInvalidUserID, http.StatusBadRequest)
		return
	}

	prizes := make(domain.PrizeMap, len(req.Prizes))
	for category, value := range req.Prizes {
		if !domain.IsValidCategory(category) || value <= 0 {
			respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:  ErrMsgInvalidRequestSummary,
				Fields: map[string]string{"prizes": "Invalid win category or non-positive prize value"},
			})
			return
		}
		prizes[domain.Category(category)] = value
	}

	scheduled := req.ScheduledTime
	if scheduled.IsZero() {
		scheduled = time.Now().UTC()
	}

	game, err := h.service.CreateGame(r.Context(), createdBy, scheduled, prizes)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to create game", "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusCreated, game)
}

// HandleListGames serves the lobby screen. The listing is limited to the VIP
// cohort; membership checks fail open so a degraded hot store never blanks
// the lobby.
func (h *GameHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	userIDStr, ok := GetQueryParam(r, w, "userId")
	if !ok {
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		http.Error(w, ErrMsgInvalidUserID, http.StatusBadRequest)
		return
	}

	isVIP, err := h.vip.IsVIP(r.Context(), userID)
	if err != nil {
		log.Warn("VIP membership check failed, allowing request", "user_id", userID, "error", err)
		isVIP = true
	}
	if !isVIP {
		respondError(w, http.StatusForbidden, ErrMsgVIPOnly)
		return
	}

	status := domain.GameStatus(GetOptionalQueryParam(r, "status", string(domain.GameStatusLobby)))
	switch status {
	case domain.GameStatusLobby, domain.GameStatusActive:
	default:
		http.Error(w, ErrMsgInvalidStatus, http.StatusBadRequest)
		return
	}

	limit, err := strconv.Atoi(GetOptionalQueryParam(r, "limit", strconv.Itoa(engine.DefaultListLimit)))
	if err != nil || limit <= 0 {
		http.Error(w, ErrMsgInvalidLimit, http.StatusBadRequest)
		return
	}

	games, err := h.service.ListGames(r.Context(), status, limit)
	if err != nil {
		log.Error("Failed to list games", "status", status, "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, DataResponse{Data: games})
}

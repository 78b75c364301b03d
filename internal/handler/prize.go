package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/logger"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/prize"
)

type PrizeHandler struct {
	service prize.Service
}

func NewPrizeHandler(service prize.Service) *PrizeHandler {
	return &PrizeHandler{service: service}
}

type RetryPrizeRequest struct {
	ItemID string `json:"item_id" validate:"required,uuid4"`
}

// HandleRetryPrize re-arms a dead-lettered payout after an operator fixed
// the underlying cause
func (h *PrizeHandler) HandleRetryPrize(w http.ResponseWriter, r *http.Request) {
	var req RetryPrizeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Retry prize"); err != nil {
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		http.Error(w, ErrMsgInvalidItemID, http.StatusBadRequest)
		return
	}

	if err := h.service.Retry(r.Context(), itemID); err != nil {
		logger.FromContext(r.Context()).Error("Failed to retry prize item", "item_id", itemID, "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgPrizeRetryScheduled})
}

// HandleListPrizeQueue lists queue items by status, primarily for operators
// inspecting the dead letter backlog
func (h *PrizeHandler) HandleListPrizeQueue(w http.ResponseWriter, r *http.Request) {
	statusStr, ok := GetQueryParam(r, w, "status")
	if !ok {
		return
	}
	status := domain.PrizeStatus(statusStr)
	switch status {
	case domain.PrizeStatusPending, domain.PrizeStatusProcessing,
		domain.PrizeStatusCompleted, domain.PrizeStatusFailed, domain.PrizeStatusDeadLetter:
	default:
		http.Error(w, ErrMsgInvalidStatus, http.StatusBadRequest)
		return
	}

	limit, err := strconv.Atoi(GetOptionalQueryParam(r, "limit", "50"))
	if err != nil || limit <= 0 {
		http.Error(w, ErrMsgInvalidLimit, http.StatusBadRequest)
		return
	}

	items, err := h.service.ListByStatus(r.Context(), status, limit)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list prize queue", "status", status, "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, DataResponse{Data: items})
}

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/broadcast"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/logger"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/metrics"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/protocol"
)

// dispatch routes one inbound envelope to its typed handler. Every failure
// path ends in a single error event to the offending session.
func (h *Handler) dispatch(ctx context.Context, session *broadcast.Session, envelope protocol.Envelope) {
	// Runs on the session's read loop; a panicking handler must cost one
	// error event, not the process
	defer func() {
		if rec := recover(); rec != nil {
			metrics.EventHandlerErrors.WithLabelValues(envelope.Event).Inc()
			logger.FromContext(ctx).Error(LogMsgEventHandlerPanicked,
				"session_id", session.ID, "event", envelope.Event, "panic", rec)
			h.sendError(session, fmt.Errorf("handler panic: %v", rec))
		}
	}()

	var err error
	switch envelope.Event {
	case protocol.EventJoin:
		err = h.handleJoin(ctx, session, envelope.Data)
	case protocol.EventLeave:
		err = h.handleLeave(ctx, session, envelope.Data)
	case protocol.EventStart:
		err = h.handleStart(ctx, session, envelope.Data)
	case protocol.EventCallNumber:
		err = h.handleCallNumber(ctx, session, envelope.Data)
	case protocol.EventMarkNumber:
		err = h.handleMarkNumber(ctx, session, envelope.Data)
	case protocol.EventClaimWin:
		err = h.handleClaimWin(ctx, session, envelope.Data)
	case protocol.EventCancel:
		err = h.handleCancel(ctx, session, envelope.Data)
	default:
		err = domain.ErrInvalidInput
	}

	if err != nil {
		metrics.EventHandlerErrors.WithLabelValues(envelope.Event).Inc()
		logger.FromContext(ctx).Warn(LogMsgEventHandlerFailed,
			"session_id", session.ID, "event", envelope.Event, "error", err)
		h.sendError(session, err)
	}
}

// decode unmarshals and schema-validates an inbound payload
func (h *Handler) decode(data json.RawMessage, dst interface{}) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return domain.ErrInvalidInput
	}
	if err := h.validate.Struct(dst); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}

// sendError emits one typed error event to the offending session only.
// Unmapped errors surface as HANDLER_ERROR with a generic message so
// infrastructure details never leak.
func (h *Handler) sendError(session *broadcast.Session, err error) {
	code := domain.ErrorCode(err)
	message := err.Error()
	if code == domain.CodeHandlerError {
		message = MsgInternalError
	}
	h.hub.SendTo(session.ID, protocol.EventError, protocol.ErrorPayload{Code: code, Message: message})
}

func (h *Handler) handleJoin(ctx context.Context, session *broadcast.Session, data json.RawMessage) error {
	var req protocol.JoinRequest
	if err := h.decode(data, &req); err != nil {
		return err
	}
	gameID := uuid.MustParse(req.GameID)

	result, err := h.engine.Join(ctx, gameID, session.UserID, req.UserName)
	if err != nil {
		return err
	}

	h.hub.JoinRoom(session.ID, protocol.RoomName(gameID))
	h.hub.SendTo(session.ID, protocol.EventJoined, protocol.JoinedPayload{
		GameID:   gameID,
		PlayerID: result.PlayerID,
		Ticket:   result.Ticket,
	})
	h.hub.SendTo(session.ID, protocol.EventStateSync, result.State)
	return nil
}

func (h *Handler) handleLeave(ctx context.Context, session *broadcast.Session, data json.RawMessage) error {
	var req protocol.LeaveRequest
	if err := h.decode(data, &req); err != nil {
		return err
	}
	gameID := uuid.MustParse(req.GameID)

	if err := h.engine.Leave(ctx, gameID, session.UserID); err != nil {
		return err
	}
	h.hub.LeaveRoom(session.ID, protocol.RoomName(gameID))
	return nil
}

func (h *Handler) handleStart(ctx context.Context, session *broadcast.Session, data json.RawMessage) error {
	var req protocol.StartRequest
	if err := h.decode(data, &req); err != nil {
		return err
	}
	return h.engine.Start(ctx, uuid.MustParse(req.GameID), session.UserID)
}

// handleCallNumber acks the organizer directly; the room hears the number
// through the engine's broadcast
func (h *Handler) handleCallNumber(ctx context.Context, session *broadcast.Session, data json.RawMessage) error {
	var req protocol.CallNumberRequest
	if err := h.decode(data, &req); err != nil {
		return err
	}

	err := h.engine.CallNumber(ctx, uuid.MustParse(req.GameID), session.UserID, req.Number)
	if err != nil {
		// Rejected calls are part of the normal organizer flow; the ack
		// carries the code rather than a separate error event
		h.hub.SendTo(session.ID, protocol.EventCallAck, protocol.AckResponse{
			Success: false,
			Error:   domain.ErrorCode(err),
		})
		return nil
	}
	h.hub.SendTo(session.ID, protocol.EventCallAck, protocol.AckResponse{Success: true})
	return nil
}

func (h *Handler) handleMarkNumber(ctx context.Context, session *broadcast.Session, data json.RawMessage) error {
	var req protocol.MarkNumberRequest
	if err := h.decode(data, &req); err != nil {
		return err
	}
	return h.engine.MarkNumber(ctx,
		uuid.MustParse(req.GameID), session.UserID, uuid.MustParse(req.PlayerID), req.Number)
}

func (h *Handler) handleClaimWin(ctx context.Context, session *broadcast.Session, data json.RawMessage) error {
	var req protocol.ClaimWinRequest
	if err := h.decode(data, &req); err != nil {
		return err
	}
	category := domain.Category(req.Category)

	winner, err := h.engine.ClaimWin(ctx, uuid.MustParse(req.GameID), session.UserID, category)
	if err != nil {
		// Claim rejections ack the claimant; everything else is a plain error
		if errors.Is(err, domain.ErrInvalidClaim) ||
			errors.Is(err, domain.ErrCategoryAlreadyWon) ||
			errors.Is(err, domain.ErrCategoryAlreadyClaimed) {
			h.hub.SendTo(session.ID, protocol.EventWinClaimed, protocol.WinClaimedPayload{
				Category: category,
				Success:  false,
				Message:  err.Error(),
			})
		}
		return err
	}

	h.hub.SendTo(session.ID, protocol.EventWinClaimed, protocol.WinClaimedPayload{
		Category: winner.Category,
		Success:  true,
		Message:  MsgClaimAccepted,
	})
	return nil
}

// handleCancel aborts the game. The room hears game:cancelled through the
// engine's broadcast; sessions keep their membership so the event reaches them.
func (h *Handler) handleCancel(ctx context.Context, session *broadcast.Session, data json.RawMessage) error {
	var req protocol.CancelRequest
	if err := h.decode(data, &req); err != nil {
		return err
	}
	return h.engine.Cancel(ctx, uuid.MustParse(req.GameID), session.UserID)
}

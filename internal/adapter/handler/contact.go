package handler

import (
	stdErrors "errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	contactDTO "github.com/johnquangdev/call-assistant/internal/adapter/dto/contact"
	"github.com/johnquangdev/call-assistant/internal/adapter/presenter"
	"github.com/johnquangdev/call-assistant/internal/usecase/conversation"
	usecaseErrors "github.com/johnquangdev/call-assistant/internal/usecase/errors"
	"github.com/johnquangdev/call-assistant/pkg/phone"
)

// ContactHandler serves contact profiles, conversation context and briefings
type ContactHandler struct {
	svc    *conversation.Service
	logger *zap.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(svc *conversation.Service, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{svc: svc, logger: logger}
}

// ListContacts handles GET /api/contacts
func (h *ContactHandler) ListContacts(c echo.Context) error {
	return HandleSuccess(h.logger, c, presenter.ToListContactsResponse(h.svc.ListContacts()))
}

// History handles GET /api/contacts/:phone/history
func (h *ContactHandler) History(c echo.Context) error {
	key, err := phoneKey(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	history, err := h.svc.History(key)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, key.String()))
	}
	return HandleSuccess(h.logger, c, map[string]interface{}{
		"phone_number": key,
		"history":      history,
		"total":        len(history),
	})
}

// Context handles GET /api/contacts/:phone/context
func (h *ContactHandler) Context(c echo.Context) error {
	key, err := phoneKey(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	ctx, err := h.svc.Context(key)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, key.String()))
	}
	return HandleSuccess(h.logger, c, ctx)
}

// Insights handles GET /api/contacts/:phone/insights
func (h *ContactHandler) Insights(c echo.Context) error {
	key, err := phoneKey(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	insights, err := h.svc.Insights(key)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, key.String()))
	}
	return HandleSuccess(h.logger, c, insights)
}

// Briefing handles GET /api/contacts/:phone/briefing and POST /api/contacts/:phone/prepare
func (h *ContactHandler) Briefing(c echo.Context) error {
	key, err := phoneKey(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	briefing, err := h.svc.Brief(key)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, key.String()))
	}

	h.logger.Info("briefing generated",
		zap.String("phone_number", key.String()),
		zap.Int("suggestions", len(briefing.Suggestions)),
		zap.Int("pending_action_items", len(briefing.PendingActionItems)),
	)
	return HandleSuccess(h.logger, c, briefing)
}

// UpdateActionItem handles PATCH /api/contacts/:phone/action-items/:id
func (h *ContactHandler) UpdateActionItem(c echo.Context) error {
	var req contactDTO.UpdateActionItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}
	key := phone.Normalize(req.Phone)

	item, err := h.svc.SetActionItemCompleted(key, req.ID, *req.Completed)
	if err != nil {
		ref := req.ID
		if stdErrors.Is(err, usecaseErrors.ErrContactNotFound) {
			ref = key.String()
		}
		return HandleError(h.logger, c, toAppError(err, ref))
	}
	return HandleSuccess(h.logger, c, item)
}

func phoneKey(c echo.Context) (phone.Key, error) {
	var req contactDTO.PhoneParam
	if err := bindAndValidate(c, &req); err != nil {
		return "", err
	}
	return phone.Normalize(req.Phone), nil
}

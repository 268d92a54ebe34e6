package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-assistant/internal/adapter/dto/voice"
	"github.com/johnquangdev/call-assistant/internal/infrastructure/metrics"
	"github.com/johnquangdev/call-assistant/internal/usecase/callback"
)

// VoiceHandler receives provider callbacks. Every route is behind the
// webhook signature middleware.
type VoiceHandler struct {
	callbacks callback.Service
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewVoiceHandler creates a new callback handler
func NewVoiceHandler(callbacks callback.Service, m *metrics.Metrics, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{callbacks: callbacks, metrics: m, logger: logger}
}

// Status handles POST /api/voice/status
func (h *VoiceHandler) Status(c echo.Context) error {
	var req voice.StatusCallbackRequest
	if err := bindAndValidate(c, &req); err != nil {
		h.metrics.RecordCallback(callback.CallbackStatus, metrics.OutcomeInvalid)
		return HandleError(h.logger, c, err)
	}

	h.callbacks.HandleStatus(c.Request().Context(), req.ToEvent())
	return c.NoContent(http.StatusNoContent)
}

// Recording handles POST /api/voice/recording
func (h *VoiceHandler) Recording(c echo.Context) error {
	var req voice.RecordingCallbackRequest
	if err := bindAndValidate(c, &req); err != nil {
		h.metrics.RecordCallback(callback.CallbackRecording, metrics.OutcomeInvalid)
		return HandleError(h.logger, c, err)
	}

	h.callbacks.HandleRecording(c.Request().Context(), req.ToEvent())
	return c.NoContent(http.StatusNoContent)
}

// Transcription handles POST /api/voice/transcription.
// Analytics failures leave the transcription unprocessed and still answer 204.
func (h *VoiceHandler) Transcription(c echo.Context) error {
	var req voice.TranscriptionCallbackRequest
	if err := bindAndValidate(c, &req); err != nil {
		h.metrics.RecordCallback(callback.CallbackTranscription, metrics.OutcomeInvalid)
		return HandleError(h.logger, c, err)
	}

	h.callbacks.HandleTranscription(c.Request().Context(), req.ToEvent())
	return c.NoContent(http.StatusNoContent)
}

// Validate handles POST /api/voice/validate for checking webhook wiring
func (h *VoiceHandler) Validate(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

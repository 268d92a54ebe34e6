package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-assistant/errors"
	recordsDTO "github.com/johnquangdev/call-assistant/internal/adapter/dto/records"
	"github.com/johnquangdev/call-assistant/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/call-assistant/internal/usecase/errors"
	"github.com/johnquangdev/call-assistant/internal/usecase/records"
)

// RecordsHandler serves recordings, transcriptions and their exports
type RecordsHandler struct {
	svc    *records.Service
	logger *zap.Logger
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(svc *records.Service, logger *zap.Logger) *RecordsHandler {
	return &RecordsHandler{svc: svc, logger: logger}
}

// ListRecordings handles GET /api/recordings
func (h *RecordsHandler) ListRecordings(c echo.Context) error {
	recs := h.svc.ListRecordings()
	return HandleSuccess(h.logger, c, recordsDTO.ListRecordingsResponse{
		Recordings: recs,
		Total:      len(recs),
	})
}

// GetRecording handles GET /api/recordings/:sid
func (h *RecordsHandler) GetRecording(c echo.Context) error {
	var req recordsDTO.SidParam
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	rec, err := h.svc.GetRecording(req.Sid)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, req.Sid))
	}
	return HandleSuccess(h.logger, c, rec)
}

// DownloadRecording handles GET /api/recordings/:sid/download by redirecting to the media
func (h *RecordsHandler) DownloadRecording(c echo.Context) error {
	var req recordsDTO.SidParam
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	url, err := h.svc.RecordingMediaURL(req.Sid)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, req.Sid))
	}
	return c.Redirect(http.StatusFound, url)
}

// ListTranscriptions handles GET /api/transcriptions
func (h *RecordsHandler) ListTranscriptions(c echo.Context) error {
	items := h.svc.ListTranscriptions()
	return HandleSuccess(h.logger, c, recordsDTO.ListTranscriptionsResponse{
		Transcriptions: items,
		Total:          len(items),
	})
}

// GetTranscription handles GET /api/transcriptions/:sid
func (h *RecordsHandler) GetTranscription(c echo.Context) error {
	var req recordsDTO.SidParam
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	t, err := h.svc.GetTranscription(req.Sid)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, req.Sid))
	}
	return HandleSuccess(h.logger, c, t)
}

// SearchTranscriptions handles GET /api/transcriptions/search
func (h *RecordsHandler) SearchTranscriptions(c echo.Context) error {
	var req recordsDTO.SearchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	results := h.svc.Search(records.SearchQuery{
		Text:      req.Query,
		Topic:     req.Topic,
		Sentiment: entities.Sentiment(req.Sentiment),
		Limit:     req.Limit,
	})
	return HandleSuccess(h.logger, c, recordsDTO.ListTranscriptionsResponse{
		Transcriptions: results,
		Total:          len(results),
	})
}

// ExportTranscription handles GET /api/transcriptions/:sid/export?format=
func (h *RecordsHandler) ExportTranscription(c echo.Context) error {
	var req recordsDTO.ExportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	doc, err := h.svc.Export(req.Sid, req.Format)
	if err != nil {
		return HandleError(h.logger, c, exportError(err, req.Sid, req.Format))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+doc.Filename(req.Sid)+`"`)
	return c.Blob(http.StatusOK, doc.ContentType, doc.Body)
}

// ArchiveTranscription handles POST /api/transcriptions/:sid/export/archive?format=
func (h *RecordsHandler) ArchiveTranscription(c echo.Context) error {
	var req recordsDTO.ExportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}
	req.Format = c.QueryParam("format")

	archived, err := h.svc.Archive(c.Request().Context(), req.Sid, req.Format)
	if err != nil {
		appErr := exportError(err, req.Sid, req.Format)
		if appErr.Code == errors.ErrorCode_INTERNAL {
			appErr = errors.ErrExportArchiveFailed(req.Format, err)
		}
		return HandleError(h.logger, c, appErr)
	}

	h.logger.Info("export archived",
		zap.String("transcription_sid", req.Sid),
		zap.String("key", archived.Key),
	)
	return HandleSuccess(h.logger, c, archived)
}

// ListArchives handles GET /api/transcriptions/:sid/archives
func (h *RecordsHandler) ListArchives(c echo.Context) error {
	var req recordsDTO.SidParam
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	exports, err := h.svc.ListArchives(c.Request().Context(), req.Sid)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, req.Sid))
	}
	return HandleSuccess(h.logger, c, recordsDTO.ListArchivesResponse{Sid: req.Sid, Exports: exports})
}

// exportError attributes a format failure to the format and anything else to the transcription
func exportError(err error, sid, format string) errors.AppError {
	ref := sid
	if stdErrors.Is(err, usecaseErrors.ErrUnsupportedFormat) {
		ref = format
	}
	var appErr errors.AppError
	stdErrors.As(toAppError(err, ref), &appErr)
	return appErr
}

package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-assistant/errors"
	usecaseErrors "github.com/johnquangdev/call-assistant/internal/usecase/errors"
	pkgvalidator "github.com/johnquangdev/call-assistant/pkg/validator"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID reads the request id set by the RequestID middleware or the client
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// bindAndValidate binds path, query and body into req and validates it
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.ErrInvalidPayload().WithDetail("bind", err.Error())
	}
	if err := c.Validate(req); err != nil {
		appErr := errors.ErrInvalidArgument(err.Error())
		for field, rule := range pkgvalidator.Fields(err) {
			appErr = appErr.WithDetail(field, rule)
		}
		return appErr
	}
	return nil
}

// toAppError maps usecase sentinels onto the API error taxonomy.
// ref names the resource the request addressed.
func toAppError(err error, ref string) error {
	var appErr errors.AppError
	switch {
	case stdErrors.As(err, &appErr):
		return appErr
	case stdErrors.Is(err, usecaseErrors.ErrRecordingNotFound):
		return errors.ErrRecordingNotFound(ref)
	case stdErrors.Is(err, usecaseErrors.ErrMediaUnavailable):
		return errors.ErrNotFound("recording media").WithDetail("recording_sid", ref)
	case stdErrors.Is(err, usecaseErrors.ErrTranscriptionNotFound):
		return errors.ErrTranscriptionNotFound(ref)
	case stdErrors.Is(err, usecaseErrors.ErrContactNotFound):
		return errors.ErrContactNotFound(ref)
	case stdErrors.Is(err, usecaseErrors.ErrActionItemNotFound):
		return errors.ErrActionItemNotFound(ref)
	case stdErrors.Is(err, usecaseErrors.ErrUnsupportedFormat):
		return errors.ErrUnsupportedExportFormat(ref)
	case stdErrors.Is(err, usecaseErrors.ErrArchiveDisabled):
		return errors.ErrExportArchiveDisabled()
	case stdErrors.Is(err, usecaseErrors.ErrInvalidInput):
		return errors.ErrInvalidArgument(err.Error())
	case stdErrors.Is(err, usecaseErrors.ErrNotFound):
		return errors.ErrNotFound(ref)
	default:
		return errors.ErrInternal(err)
	}
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Debug("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			log := logger.Warn
			if appErr.HTTPCode >= http.StatusInternalServerError {
				log = logger.Error
			}
			log("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Stringer("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
			Details: appErr.Details,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    err.Error(),
	}

	return c.JSON(http.StatusInternalServerError, body)
}

// NewHTTPErrorHandler renders errors returned by middleware and unmatched
// routes with the same envelope as handlers.
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var httpErr *echo.HTTPError
		if stdErrors.As(err, &httpErr) {
			code := errors.ErrorCode_INTERNAL
			switch httpErr.Code {
			case http.StatusNotFound, http.StatusMethodNotAllowed:
				code = errors.ErrorCode_NOT_FOUND
			case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
				code = errors.ErrorCode_INVALID_PAYLOAD
			case http.StatusForbidden, http.StatusUnauthorized:
				code = errors.ErrorCode_PERMISSION_DENIED
			case http.StatusTooManyRequests:
				code = errors.ErrorCode_TOO_MANY_REQUESTS
			}
			message := http.StatusText(httpErr.Code)
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
			err = errors.AppError{
				Raw:      httpErr.Internal,
				HTTPCode: httpErr.Code,
				Code:     code,
				Message:  message,
			}
		}

		if c.Request().Method == http.MethodHead {
			var appErr errors.AppError
			status := http.StatusInternalServerError
			if stdErrors.As(err, &appErr) {
				status = appErr.HTTPCode
			}
			_ = c.NoContent(status)
			return
		}

		if herr := HandleError(logger, c, err); herr != nil {
			logger.Error("failed to write error response", zap.Error(herr))
		}
	}
}

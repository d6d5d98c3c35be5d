package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/doorbell/errors"
	usecaseErrors "github.com/johnquangdev/doorbell/internal/usecase/errors"
)

// GuestKeyHeader carries the guest secret for callers without a token
const GuestKeyHeader = "X-Guest-Key"

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

// getRequestID tries to read X-Request-ID from the request or the response
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	return handleStatus(logger, c, http.StatusOK, data)
}

// HandleCreated writes a standardized 201 response
func HandleCreated(logger *zap.Logger, c echo.Context, data interface{}) error {
	return handleStatus(logger, c, http.StatusCreated, data)
}

func handleStatus(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		)
	}

	return c.JSON(status, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			level := logger.Warn
			if appErr.HTTPCode >= http.StatusInternalServerError {
				level = logger.Error
			}
			level("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
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

// toAppError maps use-case sentinels to API errors. ref names the resource
// the request was about (call id or host reference).
func toAppError(err error, ref string) errors.AppError {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stdErrors.Is(err, usecaseErrors.ErrInvalidInput):
		appErr = errors.ErrInvalidArgument("Invalid request")
	case stdErrors.Is(err, usecaseErrors.ErrUnauthorized):
		appErr = errors.ErrUnauthenticated()
	case stdErrors.Is(err, usecaseErrors.ErrForbidden):
		appErr = errors.ErrForbidden("Not a party of this contact request")
	case stdErrors.Is(err, usecaseErrors.ErrAlreadyAnswered):
		appErr = errors.ErrAlreadyAnswered(ref)
	case stdErrors.Is(err, usecaseErrors.ErrHostNotFound):
		appErr = errors.ErrHostNotFound(ref)
	case stdErrors.Is(err, usecaseErrors.ErrNotFound):
		appErr = errors.ErrContactNotFound(ref)
	case stdErrors.Is(err, usecaseErrors.ErrArchiveTooRecent):
		appErr = errors.ErrArchiveTooRecent(ref)
	case stdErrors.Is(err, usecaseErrors.ErrMalformedSignal):
		appErr = errors.ErrMalformedSignal(err.Error())
	case stdErrors.Is(err, usecaseErrors.ErrHubClosed):
		return errors.ErrRealtimeUnavailable(err)
	default:
		return errors.ErrInternal(err)
	}
	appErr.Raw = err
	return appErr
}

// validationError wraps a bind or validation failure
func validationError(err error) errors.AppError {
	appErr := errors.ErrInvalidArgument("Validation failed")
	appErr.Raw = err
	return appErr
}

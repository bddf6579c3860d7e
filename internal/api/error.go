package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	ErrorResponse struct {
		Message string `json:"error"`
	}

	// Validator adapts validator/v10 to echo. Validation failures become 400 responses.
	Validator struct {
		validate *validator.Validate
	}
)

var (
	InternalServerError = ErrorResponse{"Internal server error"} //nolint:gochecknoglobals // this is a constant response for internal server error
	BadRequestError     = ErrorResponse{"Bad request"}           //nolint:gochecknoglobals // this is a constant response for bad request
	CardNotFoundError   = ErrorResponse{"Card not found"}        //nolint:gochecknoglobals // this is a constant response for unknown cards
)

func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := make(map[string]string, len(validationErrs))
			for _, fe := range validationErrs {
				fields[fe.Field()] = fe.Tag()
			}
			return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
				"error":  "Validation failed",
				"fields": fields,
			}).SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, BadRequestError.Message).SetInternal(err)
	}
	return nil
}

func HTTPErrorHandler(log *slog.Logger) func(err error, c echo.Context) {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var echoError *echo.HTTPError
		if !errors.As(err, &echoError) {
			log.ErrorContext(c.Request().Context(), "failed to process request", "error", err)
			writeError(c, log, http.StatusInternalServerError, InternalServerError)
			return
		}

		if echoError.Code >= http.StatusInternalServerError {
			log.ErrorContext(c.Request().Context(), "failed to process request", "error", err)
		} else {
			log.DebugContext(c.Request().Context(), "request rejected", "error", err)
		}

		if message, ok := echoError.Message.(string); ok {
			if message == "" || echoError.Code == http.StatusInternalServerError {
				message = InternalServerError.Message
			}
			writeError(c, log, echoError.Code, ErrorResponse{Message: message})
			return
		}

		bytes, mErr := json.Marshal(echoError.Message)
		if mErr != nil {
			log.ErrorContext(c.Request().Context(), "failed to marshal error message", "error", mErr)
			writeError(c, log, echoError.Code, InternalServerError)
			return
		}
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if wErr := c.String(echoError.Code, string(bytes)); wErr != nil {
			log.ErrorContext(c.Request().Context(), "failed to write error response", "error", wErr)
		}
	}
}

func writeError(c echo.Context, log *slog.Logger, code int, resp ErrorResponse) {
	if err := c.JSON(code, resp); err != nil {
		log.ErrorContext(c.Request().Context(), "failed to write error response", "error", err)
	}
}

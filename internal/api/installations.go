package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/context"
)

type (
	InstallationsHandler struct {
		jwtProcessor     *JWTProcessor
		cookiesProcessor *CookiesProcessor

		log *slog.Logger
	}

	installationResponse struct {
		InstallationID string `json:"installation_id"`
		AccessToken    string `json:"access_token,omitempty"`
	}
)

func NewInstallationsHandler(jwtProcessor *JWTProcessor, cookiesProcessor *CookiesProcessor, log *slog.Logger) *InstallationsHandler {
	return &InstallationsHandler{
		jwtProcessor:     jwtProcessor,
		cookiesProcessor: cookiesProcessor,

		log: log,
	}
}

// Create registers a new installation. Its learning data starts empty.
func (h *InstallationsHandler) Create(c echo.Context) error {
	installationID := uuid.NewString()

	token, err := h.jwtProcessor.ToAccessToken(installationID)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to create access token", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	c.SetCookie(h.cookiesProcessor.NewAccessTokenCookie(token))
	h.log.InfoContext(c.Request().Context(), "installation created", "installation_id", installationID)

	return c.JSON(http.StatusCreated, installationResponse{
		InstallationID: installationID,
		AccessToken:    token,
	})
}

func (h *InstallationsHandler) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, installationResponse{
		InstallationID: context.MustInstallationIDFromContext(c.Request().Context()),
	})
}

func (h *InstallationsHandler) LogOut(c echo.Context) error {
	c.SetCookie(h.cookiesProcessor.ExpireAccessTokenCookie())
	return c.NoContent(http.StatusNoContent)
}

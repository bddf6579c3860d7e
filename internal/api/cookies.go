package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/tagalog-flashcards/internal/config"
)

const (
	accessCookieName = "access"

	bearerPrefix = "Bearer "
)

type CookiesProcessor struct {
	path            string
	domain          string
	accessExpiresIn time.Duration
	secure          bool
}

func NewCookiesProcessor(conf config.Cookie, secure bool) *CookiesProcessor {
	return &CookiesProcessor{
		path:            conf.Path,
		domain:          conf.Domain,
		accessExpiresIn: conf.AccessExpiresIn,
		secure:          secure,
	}
}

func (p *CookiesProcessor) NewAccessTokenCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     accessCookieName,
		Path:     p.path,
		Domain:   p.domain,
		Value:    token,
		Expires:  time.Now().Add(p.accessExpiresIn),
		Secure:   p.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// GetAccessToken reads the token from the access cookie, falling back to the
// Authorization bearer header used by non-browser clients.
func (p *CookiesProcessor) GetAccessToken(c echo.Context) (string, bool) {
	if cookie, err := c.Cookie(accessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, bearerPrefix); ok && token != "" {
		return token, true
	}
	return "", false
}

func (p *CookiesProcessor) ExpireAccessTokenCookie() *http.Cookie {
	return &http.Cookie{
		Name:    accessCookieName,
		Path:    p.path,
		Domain:  p.domain,
		Expires: time.Now(),
		MaxAge:  -1,
	}
}

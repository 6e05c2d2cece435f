package middleware

import (
	"github.com/labstack/echo/v4"

	"plaque-payments/internal/credential"
)

const (
	CredentialKey = "credential"
	SessionKey    = "session_key"
)

// Auth builds a credential source from the bearer header and stashes it
// on the request context. Requests without a usable token still pass
// through with an empty source; endpoints that need auth check for one.
func Auth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cred, err := credential.FromBearer(c.Request().Header.Get("Authorization"))
			if err != nil {
				cred = credential.None()
			}
			c.Set(CredentialKey, cred)

			sessionKey := c.Request().Header.Get("X-Session-Id")
			if sessionKey == "" {
				sessionKey = "default"
			}
			c.Set(SessionKey, sessionKey)

			return next(c)
		}
	}
}

// Credential pulls the request's credential source, empty if absent.
func Credential(c echo.Context) credential.Source {
	if cred, ok := c.Get(CredentialKey).(credential.Source); ok {
		return cred
	}
	return credential.None()
}

// Session pulls the request's checkout-session key.
func Session(c echo.Context) string {
	if key, ok := c.Get(SessionKey).(string); ok {
		return key
	}
	return "default"
}

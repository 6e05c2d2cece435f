package credential

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var nowFunc = time.Now

// ErrUnauthenticated means no usable session credential is available.
// Callers surface it as a login prompt, never as a gateway failure.
var ErrUnauthenticated = errors.New("no valid session credential")

// Source hands out the bearer token for the current session, if any.
// Injecting it keeps the engine testable without a real session store.
type Source interface {
	Token() (string, bool)
}

type staticSource string

func (s staticSource) Token() (string, bool) {
	return string(s), s != ""
}

// Static wraps a fixed token, e.g. a service token for periodic polling.
func Static(token string) Source {
	return staticSource(token)
}

// None is a Source with no credential.
func None() Source {
	return staticSource("")
}

// FromBearer builds a Source from an Authorization header value. The token
// is not signature-checked here (the store verifies it); only structure and
// expiry are validated so an obviously dead session fails fast.
func FromBearer(header string) (Source, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	if raw == "" {
		return nil, ErrUnauthenticated
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: malformed token", ErrUnauthenticated)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: bad exp claim", ErrUnauthenticated)
	}
	if exp != nil && exp.Before(nowFunc()) {
		return nil, fmt.Errorf("%w: token expired", ErrUnauthenticated)
	}

	return Static(raw), nil
}

package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/vardast/ops-dashboard/pkg/util/errorutil"
)

const sessionKey = "auth_session"

// DefaultSession is used for every caller when no app password is set.
const DefaultSession = "default"

// Authenticator resolves a bearer token into a session id.
type Authenticator interface {
	Enabled() bool
	Authenticate(ctx context.Context, token string) (string, error)
}

// SessionMiddleware gates the dashboard API behind the app password.
type SessionMiddleware struct {
	authenticator Authenticator
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(authenticator Authenticator) *SessionMiddleware {
	return &SessionMiddleware{authenticator: authenticator}
}

// Handle enforces authentication for protected routes.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	if !m.authenticator.Enabled() {
		c.Locals(sessionKey, DefaultSession)
		return c.Next()
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	sessionID, err := m.authenticator.Authenticate(c.UserContext(), parts[1])
	if err != nil {
		return err
	}
	c.Locals(sessionKey, sessionID)
	return c.Next()
}

// SessionFromContext retrieves the authenticated session id.
func SessionFromContext(c *fiber.Ctx) (string, bool) {
	sessionID, ok := c.Locals(sessionKey).(string)
	return sessionID, ok && sessionID != ""
}

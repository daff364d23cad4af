package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tasks/internal/services"
)

const (
	userIDCtxKey    = "user_id"
	sessionIDCtxKey = "session_id"
)

// HandleAuthMiddleware accepts a bearer token or, for browser clients, the
// access token cookie. The token's session must still be active.
func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	accessToken, ok := accessTokenFromRequest(c)
	if !ok {
		h.logger.Error().Msg("access token required")
		c.Header("WWW-Authenticate", "Bearer")
		abort(c, newUnauthorizedError(msgNotAuthenticated))
		return
	}

	claims, err := h.auth.ParseJWTToken(accessToken)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to parse token")
		c.Header("WWW-Authenticate", "Bearer")
		abort(c, newUnauthorizedError(msgInvalidCredentials))
		return
	}

	session, err := h.sessions.GetActiveSession(c, claims.Subject)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) || errors.Is(err, services.ErrSessionExpired) {
			h.logger.Warn().
				Err(err).
				Str("session_id", claims.Subject).
				Msg("inactive session")
			c.Header("WWW-Authenticate", "Bearer")
			abort(c, newUnauthorizedError(msgInvalidCredentials))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to fetch session")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.Set(userIDCtxKey, session.UserID)
	c.Set(sessionIDCtxKey, session.ID)
	c.Next()
}

func accessTokenFromRequest(c *gin.Context) (string, bool) {
	const authHeader = "Authorization"
	if header := c.GetHeader(authHeader); header != "" {
		const bearerPrefix = "bearer"
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, bearerPrefix) || token == "" {
			return "", false
		}
		return token, true
	}

	token, err := c.Cookie(accessTokenCookie)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// userIDFromContext returns the id set by HandleAuthMiddleware, aborting
// with 401 if it is missing.
func (h *handlerImpl) userIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := getStringFromContext(c, userIDCtxKey)
	if !ok || userID == "" {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError(msgNotAuthenticated))
		return "", false
	}
	return userID, true
}

package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/session"
)

const (
	// SessionCookie carries the signed session token in browsers.
	SessionCookie = "order_session"
	// TokenHeader carries it for clients that cannot keep cookies.
	TokenHeader = "token"

	sessionKey = "session"
)

// Session resolves the visitor's session from the cookie or token header,
// starting a new one when the token is missing, invalid or refers to an
// evicted session. The token is reissued on every request so active
// visitors never expire.
func Session(store *session.Store, signer *helpers.TokenSigner, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := lookupSession(c, store, signer, log)
		if s == nil {
			s = store.Create()
			log.LogAttrs(c.Request.Context(), slog.LevelDebug, "session started",
				slog.String("action", "session_start"),
				slog.String("session_id", s.ID),
				slog.String("request_id", RequestID(c)),
			)
		}

		token, err := signer.GenerateToken(s.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, token, int(store.TTL().Seconds()), "/", "", c.Request.TLS != nil, true)
		c.Header("X-Session-Token", token)

		c.Set(sessionKey, s)
		c.Next()
	}
}

func lookupSession(c *gin.Context, store *session.Store, signer *helpers.TokenSigner, log *slog.Logger) *session.Session {
	clientToken := c.Request.Header.Get(TokenHeader)
	if clientToken == "" {
		clientToken, _ = c.Cookie(SessionCookie)
	}
	if clientToken == "" {
		return nil
	}
	claims, err := signer.ValidateToken(clientToken)
	if err != nil {
		if errors.Is(err, helpers.ErrInvalidToken) {
			log.LogAttrs(c.Request.Context(), slog.LevelDebug, "session token rejected",
				slog.String("action", "session_lookup"),
				slog.String("request_id", RequestID(c)),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
	s, ok := store.Get(claims.SessionID)
	if !ok {
		return nil
	}
	return s
}

// CurrentSession returns the session attached by Session.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}

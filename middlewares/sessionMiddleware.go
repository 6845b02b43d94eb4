package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weddingcard/card_admin/config"
	"github.com/weddingcard/card_admin/session"
	"github.com/weddingcard/card_admin/utils"
)

const LoginPath = "/login"

// SessionLookup finds the admin session behind a gateway token.
type SessionLookup interface {
	Get(ctx context.Context, token string) (*session.Session, error)
}

// SessionLookupFunc adapts a function to SessionLookup.
type SessionLookupFunc func(ctx context.Context, token string) (*session.Session, error)

func (f SessionLookupFunc) Get(ctx context.Context, token string) (*session.Session, error) {
	return f(ctx, token)
}

// TokenFromRequest reads the gateway token from "Authorization: Bearer" or
// the "token" header.
func TokenFromRequest(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return strings.TrimSpace(r.Header.Get("token"))
}

func Unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "login": LoginPath})
}

// SessionMiddleware rejects requests without a live session and puts the
// session's email, role and upstream token into the request context.
func SessionMiddleware(sessions SessionLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c.Request)
		if token == "" {
			Unauthorized(c)
			return
		}
		sess, err := sessions.Get(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrSessionNotFound) {
				config.LogError(config.GetLogger(), "Middleware", "SessionMiddleware", "lookup", nil, err)
			}
			Unauthorized(c)
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetSessionIdInContext(ctx, sess.ID)
		ctx = utils.SetEmailInContext(ctx, sess.Email)
		ctx = utils.SetRoleInContext(ctx, sess.Role)
		ctx = utils.SetUpstreamTokenInContext(ctx, sess.UpstreamToken)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

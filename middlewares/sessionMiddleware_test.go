package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/session"
	"github.com/weddingcard/card_admin/utils"
)

type fakeSessions map[string]*session.Session

func (f fakeSessions) Get(ctx context.Context, token string) (*session.Session, error) {
	sess, ok := f[token]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return sess, nil
}

func newRouter(sessions SessionLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionMiddleware(sessions), AuthMiddleware())
	r.GET("/whoami", func(c *gin.Context) {
		email, _ := utils.GetEmailFromContext(c.Request.Context())
		upstream, _ := utils.GetUpstreamTokenFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"email": email, "upstream": upstream})
	})
	return r
}

func TestSessionMiddleware(t *testing.T) {
	sessions := fakeSessions{
		"admin-token": {ID: "a", Email: "admin@example.com", Role: models.RoleAdmin, UpstreamToken: "up-1"},
		"user-token":  {ID: "u", Email: "user@example.com", Role: "USER", UpstreamToken: "up-2"},
	}
	r := newRouter(sessions)

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"bearer token", "Authorization", "Bearer admin-token", http.StatusOK},
		{"token header", "token", "admin-token", http.StatusOK},
		{"missing token", "", "", http.StatusUnauthorized},
		{"unknown token", "token", "expired", http.StatusUnauthorized},
		{"non admin session", "token", "user-token", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			switch tt.wantStatus {
			case http.StatusOK:
				if body["email"] != "admin@example.com" || body["upstream"] != "up-1" {
					t.Fatalf("session not placed in context: %v", body)
				}
			case http.StatusUnauthorized:
				if body["error"] != "unauthorized" || body["login"] != LoginPath {
					t.Fatalf("unexpected 401 body: %v", body)
				}
			}
		})
	}
}

package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/weddingcard/card_admin/config"
	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/utils"
)

func (s *server) loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request")
			return
		}

		token, sess, err := s.sessions.Login(c.Request.Context(), s.backend, input)
		if err != nil {
			s.fail(c, err)
			return
		}

		s.logger.WithFields(logrus.Fields{
			"field":      "login",
			"email":      sess.Email,
			"expires_at": sess.ExpiresAt,
		}).Info("[session.login]")
		c.JSON(http.StatusOK, gin.H{
			"token":     token,
			"email":     sess.Email,
			"role":      sess.Role,
			"expiresAt": sess.ExpiresAt,
		})
	}
}

func (s *server) logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token, _ := utils.GetTokenFromContext(ctx)
		s.discardHandoff(ctx, sessionID(c))
		if err := s.sessions.Destroy(ctx, token); err != nil {
			config.LogError(s.logger, "Server", "logoutHandler", "destroy session", nil, err)
			s.fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *server) meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		email, _ := utils.GetEmailFromContext(ctx)
		role, _ := utils.GetRoleFromContext(ctx)
		c.JSON(http.StatusOK, gin.H{"email": email, "role": role})
	}
}

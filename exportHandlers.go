package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weddingcard/card_admin/config"
	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/reports"
)

func setExportHeaders(c *gin.Context, name string) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("20060102"))
	c.Header("Content-Type", reports.XLSXContentType)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)
}

func (s *server) exportOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := s.client(c).ListOrders(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		setExportHeaders(c, "orders")
		if err := reports.ExportOrders(c.Writer, orders); err != nil {
			config.LogError(s.logger, "Server", "exportOrdersHandler", "write xlsx", len(orders), err)
			_ = c.Error(err)
		}
	}
}

func (s *server) exportUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.client(c).ListUsers(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		users = models.FilterUsers(users, c.Query("q"))
		setExportHeaders(c, "users")
		if err := reports.ExportUsers(c.Writer, users); err != nil {
			config.LogError(s.logger, "Server", "exportUsersHandler", "write xlsx", len(users), err)
			_ = c.Error(err)
		}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/weddingcard/card_admin/backend"
	"github.com/weddingcard/card_admin/config"
	"github.com/weddingcard/card_admin/editorhandoff"
	"github.com/weddingcard/card_admin/middlewares"
	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/session"
	"github.com/weddingcard/card_admin/templateform"
	"github.com/weddingcard/card_admin/utils"
)

const defaultPort = "8080"

// RateLimiter is a fixed-window limiter per client IP kept in redis.
type RateLimiter struct {
	client func() *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(client func() *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	client := rl.client()
	if client == nil {
		c.Next()
		return
	}
	key := "ratelimit:" + c.ClientIP()

	count, err := client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if count == 1 {
		if err := client.Expire(c.Request.Context(), key, rl.window).Err(); err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
	}

	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}

// rateLimiterFromEnv returns nil unless RATE_LIMIT_ENABLED=true.
//
// Env:
// - RATE_LIMIT_ENABLED=true
// - RATE_LIMIT_WINDOW_SECONDS=60
// - RATE_LIMIT_MAX_REQUESTS=600
func rateLimiterFromEnv() *RateLimiter {
	if !config.BoolFromEnv("RATE_LIMIT_ENABLED") {
		return nil
	}
	limit := int64(600)
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}
	windowSec := config.IntFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)
	if windowSec <= 0 {
		windowSec = 60
	}
	return NewRateLimiter(config.GetRedisDB, limit, time.Duration(windowSec)*time.Second)
}

func corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	// In production the allowlist must be explicit; elsewhere all origins are allowed.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if config.IsProduction() {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization", "x-correlation-id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	if !corsConfig.AllowAllOrigins {
		corsConfig.AllowCredentials = true
	}
	return corsConfig
}

func correlationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Writer.Header().Set("x-correlation-id", cid)
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	}
}

// readinessGate answers 503 until redis and the preview store are attached.
func readinessGate(ready func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if !ready() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service starting"})
			return
		}
		c.Next()
	}
}

// customErrorLogger logs only requests that recorded errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{
				"field":          "http",
				"path":           c.FullPath(),
				"status":         c.Writer.Status(),
				"correlation_id": cid,
			}).Error(c.Errors.String())
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func newRouter(s *server, limiter *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(correlationMiddleware())
	r.Use(readinessGate(s.isReady))
	r.Use(cors.New(corsConfig()))
	if limiter != nil {
		r.Use(limiter.RateLimitMiddleware)
	}
	r.Use(customErrorLogger(s.logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api")
	api.POST("/login", s.loginHandler())
	// Staged previews are addressed by unguessable keys so <img> tags can load them.
	api.GET("/previews/*key", s.previewHandler())

	admin := api.Group("", middlewares.SessionMiddleware(middlewares.SessionLookupFunc(s.getSession)), middlewares.AuthMiddleware())
	admin.POST("/logout", s.logoutHandler())
	admin.GET("/me", s.meHandler())

	admin.GET("/taxonomy", s.taxonomyHandler())
	admin.GET("/taxonomy/tree", s.taxonomyTreeHandler())
	admin.GET("/taxonomy/resolve", s.resolveHandler())
	admin.POST("/parent-categories", s.createParentCategoryHandler())
	admin.PUT("/parent-categories/:id", s.updateParentCategoryHandler())
	admin.DELETE("/parent-categories/:id", s.deleteParentCategoryHandler())
	admin.POST("/categories", s.createCategoryHandler())
	admin.PUT("/categories/:id", s.updateCategoryHandler())
	admin.DELETE("/categories/:id", s.deleteCategoryHandler())
	admin.POST("/subcategories", s.createSubcategoryHandler())
	admin.PUT("/subcategories/:id", s.updateSubcategoryHandler())
	admin.DELETE("/subcategories/:id", s.deleteSubcategoryHandler())
	admin.POST("/types", s.createTypeHandler())
	admin.PUT("/types/:id", s.updateTypeHandler())
	admin.DELETE("/types/:id", s.deleteTypeHandler())

	admin.GET("/templates", s.listTemplatesHandler())
	admin.GET("/templates/:id", s.getTemplateHandler())
	admin.DELETE("/templates/:id", s.deleteTemplateHandler())

	form := admin.Group("/template-form")
	form.GET("", s.formHandler())
	form.POST("/new", s.newFormHandler())
	form.POST("/load/:id", s.loadFormHandler())
	form.PATCH("", s.updateFieldsHandler())
	form.POST("/tags", s.addTagHandler())
	form.DELETE("/tags/:tag", s.removeTagHandler())
	form.POST("/colors", s.addColorHandler())
	form.PUT("/colors/:index", s.updateColorHandler())
	form.DELETE("/colors/:index", s.removeColorHandler())
	form.POST("/colors/:index/images", s.uploadImageHandler())
	form.DELETE("/colors/:index/images/:image", s.removeImageHandler())
	form.POST("/colors/:index/edit", s.beginEditHandler())
	form.POST("/submit", s.submitFormHandler())

	editor := admin.Group("/editor")
	editor.POST("/enter", s.enterEditorHandler())
	editor.POST("/save", s.saveEditorHandler())
	editor.POST("/return", s.returnToFormHandler())
	editor.POST("/cancel", s.cancelEditHandler())

	admin.GET("/products", s.listProductsHandler())
	admin.GET("/products/:id", s.getProductHandler())
	admin.POST("/products", s.saveProductHandler())
	admin.PUT("/products/:id", s.saveProductHandler())
	admin.DELETE("/products/:id", s.deleteProductHandler())
	admin.GET("/blogs", s.listBlogsHandler())
	admin.POST("/blogs", s.saveBlogHandler())
	admin.PUT("/blogs/:id", s.saveBlogHandler())
	admin.DELETE("/blogs/:id", s.deleteBlogHandler())
	admin.GET("/inquiries", s.listInquiriesHandler())
	admin.DELETE("/inquiries/:id", s.deleteInquiryHandler())
	admin.GET("/users", s.listUsersHandler())
	admin.GET("/orders", s.listOrdersHandler())
	admin.PUT("/orders/:id/status", s.updateOrderStatusHandler())
	admin.GET("/config", s.getConfigHandler())
	admin.POST("/config/types", s.addConfigTypeHandler())
	admin.DELETE("/config/types/:index", s.removeConfigTypeHandler())
	admin.GET("/exports/orders.xlsx", s.exportOrdersHandler())
	admin.GET("/exports/users.xlsx", s.exportUsersHandler())
	admin.GET("/activity", s.activityHandler())

	r.NoRoute(customNotFoundHandler)
	return r
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	app := newServer(backend.NewClient(config.BackendBaseURL(), config.BackendTimeout()), logger)

	// Listen first; requests get 503 until dependencies are attached.
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: newRouter(app, rateLimiterFromEnv()),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectRedisWithRetry()

	previews, err := templateform.NewPreviewStore(sigCtx)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "previews"}).Fatal(err.Error())
	}

	activity := models.NewActivityRecorder(nil)
	if config.ActivityLogEnabled() {
		config.ConnectDatabaseWithRetry()
		if !config.BoolFromEnv("SKIP_MIGRATIONS") {
			models.MigrateTable()
		} else {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
		}
		activity = models.NewActivityRecorder(config.GetDB())
	}

	rdb := config.GetRedisDB()
	app.attach(
		session.NewManager(rdb, config.SessionTTL()),
		editorhandoff.NewRedisStore(rdb, config.GetRedisLock(), config.SessionTTL()),
		previews,
		activity,
	)
	log.Printf("admin gateway listening on :%s (backend %s)", port, config.BackendBaseURL())

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if db := config.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/weddingcard/card_admin/backend"
	"github.com/weddingcard/card_admin/config"
	"github.com/weddingcard/card_admin/editorhandoff"
	"github.com/weddingcard/card_admin/middlewares"
	"github.com/weddingcard/card_admin/models"
	"github.com/weddingcard/card_admin/session"
	"github.com/weddingcard/card_admin/taxonomy"
	"github.com/weddingcard/card_admin/templateform"
	"github.com/weddingcard/card_admin/utils"
)

// server holds the gateway's collaborators. Everything except backend and
// logger is attached once redis and storage are reachable.
type server struct {
	backend *backend.Client
	logger  *logrus.Logger

	sessions *session.Manager
	handoff  editorhandoff.Store
	previews templateform.PreviewStore
	activity models.ActivityRecorder

	ready atomic.Bool
}

func newServer(client *backend.Client, logger *logrus.Logger) *server {
	return &server{backend: client, logger: logger}
}

func (s *server) attach(sessions *session.Manager, handoff editorhandoff.Store, previews templateform.PreviewStore, activity models.ActivityRecorder) {
	s.sessions = sessions
	s.handoff = handoff
	s.previews = previews
	if activity == nil {
		activity = models.NopActivityRecorder{}
	}
	s.activity = activity
	s.ready.Store(true)
}

func (s *server) isReady() bool {
	return s.ready.Load()
}

func (s *server) getSession(ctx context.Context, token string) (*session.Session, error) {
	return s.sessions.Get(ctx, token)
}

// client is the backend client acting as the signed-in admin.
func (s *server) client(c *gin.Context) *backend.Client {
	token, _ := utils.GetUpstreamTokenFromContext(c.Request.Context())
	return s.backend.WithToken(token)
}

func sessionID(c *gin.Context) string {
	id, _ := utils.GetSessionIdFromContext(c.Request.Context())
	return id
}

// confirmed reads the explicit delete confirmation (?confirm=true).
func confirmed(c *gin.Context) bool {
	ok, _ := strconv.ParseBool(c.Query("confirm"))
	return ok
}

func (s *server) record(c *gin.Context, input models.NewActivity) {
	// the mutation already succeeded upstream; a failed log entry is only logged
	_ = s.activity.Record(c.Request.Context(), input)
}

// endSession drops the admin session and its form state after the backend
// rejected the upstream token.
func (s *server) endSession(c *gin.Context) {
	ctx := c.Request.Context()
	id := sessionID(c)
	if id == "" {
		return
	}
	if err := s.sessions.DestroyByID(ctx, id); err != nil {
		config.LogError(s.logger, "Server", "endSession", "destroy session", id, err)
	}
	s.discardHandoff(ctx, id)
}

func (s *server) discardHandoff(ctx context.Context, id string) {
	st, err := s.handoff.Get(ctx, id)
	if err == nil && st.FormData != nil {
		st.FormData.Reset(ctx, s.previews)
	}
	if err := s.handoff.Delete(ctx, id); err != nil {
		config.LogError(s.logger, "Server", "discardHandoff", "delete handoff", id, err)
	}
}

// fail maps an error to its HTTP reply.
func (s *server) fail(c *gin.Context, err error) {
	var (
		apiErr       *backend.APIError
		resolveErr   *taxonomy.ResolutionError
		ambiguousErr *taxonomy.AmbiguousNameError
		formErr      *templateform.ValidationError
		fieldErrs    validator.ValidationErrors
	)

	switch {
	case errors.As(err, &formErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": formErr.Fields})
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
	case errors.As(err, &resolveErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": resolveErr.Error(), "level": resolveErr.Level.String()})
	case errors.As(err, &ambiguousErr):
		candidates := make([]string, len(ambiguousErr.Candidates))
		for i, p := range ambiguousErr.Candidates {
			candidates[i] = p.String()
		}
		c.JSON(http.StatusConflict, gin.H{"error": ambiguousErr.Error(), "candidates": candidates})
	case errors.Is(err, taxonomy.ErrNotConfirmed):
		c.JSON(http.StatusPreconditionRequired, gin.H{"error": err.Error()})
	case errors.Is(err, editorhandoff.ErrStaleToken),
		errors.Is(err, editorhandoff.ErrWrongPhase),
		errors.Is(err, editorhandoff.ErrSessionBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, editorhandoff.ErrNoDesign),
		errors.Is(err, editorhandoff.ErrNoFormLoaded),
		errors.Is(err, templateform.ErrInvalidImage),
		errors.Is(err, templateform.ErrIndexOutOfRange),
		errors.Is(err, models.ErrInvalidOrderStatus),
		errors.Is(err, models.ErrInvalidProductPrice),
		errors.Is(err, models.ErrEmptyConfigType),
		errors.Is(err, models.ErrConfigTypeOutOfRange),
		errors.Is(err, utils.ErrInvalidDataURI):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrNotAdmin):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusUnauthorized {
			s.endSession(c)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apiErr.Message, "login": middlewares.LoginPath})
			return
		}
		status := apiErr.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": apiErr.Message})
	default:
		_ = c.Error(err)
		message := "internal error"
		if !config.IsProduction() {
			message = err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func pathIndex(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 0 {
		badRequest(c, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

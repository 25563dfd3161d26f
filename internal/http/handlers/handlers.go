package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/greenroute/backend/internal/apperr"
	"github.com/greenroute/backend/internal/chat"
	"github.com/greenroute/backend/internal/db"
	"github.com/greenroute/backend/internal/events"
	"github.com/greenroute/backend/internal/knowledge"
	"github.com/greenroute/backend/internal/models"
	"github.com/greenroute/backend/internal/service"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type EventLister interface {
	List(ctx context.Context, q db.EventQuery) ([]models.LifecycleEvent, error)
}

type Handler struct {
	Store       *db.MemStore
	Ranker      *service.Ranker
	Assignments *service.AssignmentService
	Lifecycle   *service.LifecycleService
	Sites       *service.SiteService
	Knowledge   *knowledge.Base
	ChatService *chat.Service
	Hub         *events.Hub
	Archive     EventLister
	Checks      map[string]Pinger
	Validator   *validator.Validate
	Logger      zerolog.Logger
	Now         func() time.Time
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} ErrorResponse
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	deps := gin.H{}
	for name, p := range h.Checks {
		if err := p.Ping(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "DEPENDENCY_UNAVAILABLE", name+" unavailable", err.Error())
			return
		}
		deps[name] = "ok"
	}
	resp := gin.H{"status": "ok", "dependencies": deps}
	if h.Hub != nil {
		resp["ws_clients"] = h.Hub.ClientCount()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return false
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, string(apperr.CodeValidation), "Validation failed", err.Error())
		return false
	}
	return true
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// writeAppError maps core errors onto the error envelope.
func (h *Handler) writeAppError(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			writeError(c, http.StatusGatewayTimeout, "TIMEOUT", "Request timed out", nil)
			return
		}
		h.Logger.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled error")
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error", nil)
		return
	}
	writeError(c, statusFor(ae.Code), string(ae.Code), ae.Message, ae.Details)
}

func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeInvalidTransition, apperr.CodeConflictingAssignment:
		return http.StatusConflict
	case apperr.CodeInvalidAmount:
		return http.StatusUnprocessableEntity
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeAdvisoryUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

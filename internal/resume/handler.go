package resume

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/shared/server/middleware"
	"portfolio-backend/internal/shared/server/respond"
	"portfolio-backend/internal/shared/telemetry"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts the resume endpoints. Every error body here is the
// flat {"error": message} shape.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resume", h.listAll)
	rg.GET("/resume/:category", h.listCategory)
	rg.POST("/resume", h.mutate)
	rg.POST("/resume/unlock", h.unlock)
}

type unlockRequest struct {
	Password string `json:"password"`
}

func (h *Handler) listAll(c *gin.Context) {
	all, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		telemetry.Error("resume.list.failed", map[string]any{"error": err.Error()})
		respond.ErrorMessage(c, http.StatusInternalServerError, "Failed to load resume")
		return
	}
	respond.OK(c, all)
}

func (h *Handler) listCategory(c *gin.Context) {
	cat, err := ParseCategory(c.Param("category"))
	if err != nil {
		respond.ErrorMessage(c, http.StatusNotFound, "Unknown category")
		return
	}
	entries, err := h.Svc.List(c.Request.Context(), cat)
	if err != nil {
		telemetry.Error("resume.list.failed", map[string]any{"category": cat, "error": err.Error()})
		respond.ErrorMessage(c, http.StatusInternalServerError, "Failed to load resume")
		return
	}
	respond.OK(c, entries)
}

func (h *Handler) unlock(c *gin.Context) {
	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ErrorMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.Svc.Unlock(req.Password); err != nil {
		respond.ErrorMessage(c, http.StatusUnauthorized, "Invalid password")
		return
	}
	respond.OK(c, gin.H{"unlocked": true})
}

func (h *Handler) mutate(c *gin.Context) {
	var req MutateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ErrorMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	c.Set(middleware.ResumeActionKey, string(req.Action))

	err := h.Svc.Mutate(c.Request.Context(), req)
	switch {
	case err == nil:
		respond.OK(c, gin.H{"success": true})
	case errors.Is(err, ErrUnauthorized):
		respond.ErrorMessage(c, http.StatusUnauthorized, "Invalid password")
	case errors.Is(err, ErrUnknownAction):
		respond.ErrorMessage(c, http.StatusBadRequest, "Invalid action")
	case errors.Is(err, ErrInvalidInput):
		respond.ErrorMessage(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.ErrorMessage(c, http.StatusNotFound, "Item not found")
	default:
		telemetry.Error("resume.mutate.failed", map[string]any{
			"action": req.Action,
			"id":     req.ID,
			"error":  err.Error(),
		})
		respond.ErrorMessage(c, http.StatusInternalServerError, "Failed to apply resume change")
	}
}

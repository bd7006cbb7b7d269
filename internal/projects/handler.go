package projects

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/shared/server/respond"
	"portfolio-backend/internal/shared/validation"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/projects", h.listPublished)
	rg.GET("/projects/:slug", h.getBySlug)
}

// RegisterAdmin mounts the management routes on an already guarded group.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("/projects", h.listAll)
	rg.POST("/projects", h.create)
	rg.DELETE("/projects/:id", h.delete)
}

func (h *Handler) listPublished(c *gin.Context) {
	list, err := h.Svc.ListPublished(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list projects", nil)
		return
	}
	respond.OK(c, gin.H{"projects": list})
}

func (h *Handler) listAll(c *gin.Context) {
	list, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list projects", nil)
		return
	}
	respond.OK(c, gin.H{"projects": list})
}

func (h *Handler) getBySlug(c *gin.Context) {
	p, related, err := h.Svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "project not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load project", nil)
		return
	}
	respond.OK(c, gin.H{"project": p, "related": related})
}

func (h *Handler) create(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid project", validation.Fields(err))
		case errors.Is(err, ErrSlugTaken):
			respond.Error(c, http.StatusConflict, "conflict", "slug already in use", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create project", nil)
		}
		return
	}
	respond.Created(c, p)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "project not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete project", nil)
		return
	}
	respond.NoContent(c)
}

// Sitemap serves sitemap.xml.
func (h *Handler) Sitemap(c *gin.Context) {
	body, err := h.Svc.Sitemap(c.Request.Context(), time.Now())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build sitemap", nil)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

package blog

import (
	"errors"
	"net/http"

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
	rg.GET("/blog", h.list)
	rg.GET("/blog/:slug", h.get)
}

func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.POST("/blog", h.create)
	rg.PUT("/blog/:id", h.update)
	rg.DELETE("/blog/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	posts, err := h.Svc.ListPublished(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list posts", nil)
		return
	}
	respond.OK(c, gin.H{"posts": posts})
}

func (h *Handler) get(c *gin.Context) {
	post, err := h.Svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err, "failed to load post")
		return
	}
	respond.OK(c, post)
}

func (h *Handler) create(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	post, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err, "failed to create post")
		return
	}
	respond.Created(c, post)
}

func (h *Handler) update(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	post, err := h.Svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err, "failed to update post")
		return
	}
	respond.OK(c, post)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete post")
		return
	}
	respond.NoContent(c)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "post not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid post", validation.Fields(err))
	case errors.Is(err, ErrSlugTaken):
		respond.Error(c, http.StatusConflict, "conflict", "slug already in use", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

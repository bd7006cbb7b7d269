package uploads

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/shared/server/middleware"
	"portfolio-backend/internal/shared/server/respond"
	"portfolio-backend/internal/shared/util"
)

const (
	DefaultMaxBytes   = 50 << 20
	multipartOverhead = 1 << 20
)

// allowedTypes maps accepted extensions to the content types they may carry.
var allowedTypes = map[string][]string{
	"jpg":  {"image/jpeg"},
	"jpeg": {"image/jpeg"},
	"png":  {"image/png"},
	"webp": {"image/webp"},
	"mp4":  {"video/mp4"},
	"webm": {"video/webm"},
}

type Handler struct {
	Registry *Registry
	MaxBytes int64
}

func NewHandler(registry *Registry, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Handler{Registry: registry, MaxBytes: maxBytes}
}

// RegisterRoutes attaches the uploader session routes to an admin group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/uploads/sessions")
	g.POST("", h.createSession)
	g.GET("/:id", h.getSession)
	g.DELETE("/:id", h.closeSession)
	g.POST("/:id/files", h.submitFiles)
	g.POST("/:id/tasks/:taskId/retry", h.retryTask)
	g.DELETE("/:id/tasks/:taskId", h.removeTask)
}

type createSessionRequest struct {
	ProjectID string `json:"projectId"`
	MaxFiles  int    `json:"maxFiles"`
}

type rejectedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (h *Handler) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	s := h.Registry.Create(req.ProjectID, req.MaxFiles)
	c.Set(middleware.UploadSessionIDKey, s.ID)
	respond.Created(c, gin.H{
		"sessionId": s.ID,
		"projectId": s.ProjectID,
		"maxFiles":  s.Coordinator.MaxFiles(),
	})
}

func (h *Handler) getSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	respond.OK(c, gin.H{"sessionId": s.ID, "tasks": s.Coordinator.Tasks()})
}

func (h *Handler) closeSession(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.UploadSessionIDKey, id)
	if err := h.Registry.Close(id); err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "upload session not found", nil)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) submitFiles(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	limit := h.MaxBytes*int64(s.Coordinator.MaxFiles()) + multipartOverhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid multipart body", nil)
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "files is required", nil)
		return
	}

	files := make([]File, 0, len(headers))
	rejected := []rejectedFile{}
	for _, fh := range headers {
		f, reason := h.readFile(fh)
		if reason != "" {
			rejected = append(rejected, rejectedFile{Name: fh.Filename, Reason: reason})
			continue
		}
		files = append(files, f)
	}

	wait := true
	if raw := c.Query("wait"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			wait = parsed
		}
	}

	batch := s.Coordinator.Submit(c.Request.Context(), files)
	if !wait {
		respond.JSON(c, http.StatusAccepted, gin.H{
			"tasks":    batchTasks(s.Coordinator, batch),
			"rejected": rejected,
		})
		return
	}

	urls := batch.Wait()
	respond.OK(c, gin.H{
		"urls":     urls,
		"tasks":    batchTasks(s.Coordinator, batch),
		"rejected": rejected,
	})
}

func (h *Handler) retryTask(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	task, err := s.Coordinator.Retry(c.Request.Context(), c.Param("taskId"))
	switch {
	case errors.Is(err, ErrTaskNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "upload task not found", nil)
	case errors.Is(err, ErrNotRetryable):
		respond.Error(c, http.StatusConflict, "conflict", "only failed uploads can be retried", nil)
	case err != nil:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "retry failed", nil)
	default:
		respond.OK(c, gin.H{"task": task})
	}
}

func (h *Handler) removeTask(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Coordinator.Remove(c.Param("taskId")); err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "upload task not found", nil)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) session(c *gin.Context) (*Session, bool) {
	id := c.Param("id")
	c.Set(middleware.UploadSessionIDKey, id)
	s, err := h.Registry.Get(id)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "upload session not found", nil)
		return nil, false
	}
	return s, true
}

// readFile loads one multipart part and applies the size cap and the
// extension/content allow-list. A non-empty reason means the file is rejected.
func (h *Handler) readFile(fh *multipart.FileHeader) (File, string) {
	name, err := util.SanitizeFileName(fh.Filename)
	if err != nil {
		return File{}, "invalid file name"
	}
	ext := util.Extension(name)
	accepted, ok := allowedTypes[ext]
	if !ok {
		return File{}, "file type not allowed"
	}
	if fh.Size > h.MaxBytes {
		return File{}, "file too large"
	}

	src, err := fh.Open()
	if err != nil {
		return File{}, "unreadable file"
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.MaxBytes+1))
	if err != nil {
		return File{}, "unreadable file"
	}
	if int64(len(data)) > h.MaxBytes {
		return File{}, "file too large"
	}

	detected := mimetype.Detect(data)
	contentType := ""
	for _, want := range accepted {
		if detected.Is(want) {
			contentType = want
			break
		}
	}
	if contentType == "" {
		return File{}, "content does not match " + ext
	}

	return File{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: contentType,
		Data:        data,
	}, ""
}

func batchTasks(c *Coordinator, b *Batch) []Task {
	ids := b.IDs()
	out := make([]Task, 0, len(ids))
	for _, id := range ids {
		if t, ok := c.Task(id); ok {
			out = append(out, t)
		}
	}
	return out
}

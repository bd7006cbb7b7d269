package projects

import (
	"errors"
	"strings"
	"time"

	"portfolio-backend/internal/shared/util"
)

var (
	ErrNotFound     = errors.New("project not found")
	ErrSlugTaken    = errors.New("slug already in use")
	ErrInvalidInput = errors.New("invalid input")
)

type MediaKind string

const (
	MediaThumb MediaKind = "thumb"
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

type Media struct {
	ProjectID  string    `json:"projectId"`
	URL        string    `json:"url"`
	Kind       MediaKind `json:"kind"`
	OrderIndex int       `json:"orderIndex"`
}

type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
	TechTags    []string  `json:"techTags"`
	GithubURL   string    `json:"githubUrl,omitempty"`
	DemoURL     string    `json:"demoUrl,omitempty"`
	Featured    bool      `json:"featured"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Media       []Media   `json:"media"`
}

// Thumbnail returns the first thumb or image URL.
func (p Project) Thumbnail() string {
	for _, m := range p.Media {
		if m.Kind == MediaThumb || m.Kind == MediaImage {
			return m.URL
		}
	}
	return ""
}

// Input is the admin create payload. MediaURLs are the settled URLs of an
// upload batch, in slot order.
type Input struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Slug        string   `json:"slug" validate:"required,max=100,slug"`
	Summary     string   `json:"summary" validate:"max=200"`
	Description string   `json:"description"`
	TechTags    []string `json:"techTags" validate:"dive,required,max=50"`
	GithubURL   string   `json:"githubUrl" validate:"omitempty,url"`
	DemoURL     string   `json:"demoUrl" validate:"omitempty,url"`
	Featured    bool     `json:"featured"`
	Published   bool     `json:"published"`
	MediaURLs   []string `json:"mediaUrls" validate:"dive,required,url"`
}

var videoExtensions = map[string]bool{"mp4": true, "webm": true, "mov": true}

// MediaKindFor classifies the URL at position index of a batch.
func MediaKindFor(url string, index int) MediaKind {
	path := url
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if videoExtensions[util.Extension(path)] {
		return MediaVideo
	}
	if index == 0 {
		return MediaThumb
	}
	return MediaImage
}

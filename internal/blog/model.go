package blog

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("post not found")
	ErrSlugTaken    = errors.New("slug already in use")
	ErrInvalidInput = errors.New("invalid input")
)

const wordsPerMinute = 200

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Featured  bool      `json:"featured"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// ReadingTime is derived from Content, in minutes.
	ReadingTime int `json:"readingTime"`
}

func (p Post) withReadingTime() Post {
	p.ReadingTime = ReadingTime(p.Content)
	return p
}

// ReadingTime estimates minutes to read text, never less than one.
func ReadingTime(text string) int {
	words := len(strings.Fields(text))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

type Input struct {
	Title     string   `json:"title" validate:"required,max=200"`
	Slug      string   `json:"slug" validate:"required,max=200,slug"`
	Excerpt   string   `json:"excerpt" validate:"max=500"`
	Content   string   `json:"content" validate:"required"`
	Tags      []string `json:"tags" validate:"dive,required,max=50"`
	Featured  bool     `json:"featured"`
	Published bool     `json:"published"`
}

package resume

import (
	"fmt"
	"strings"
	"time"
)

// Category is the closed set of resume sections.
type Category string

const (
	CategoryExperience Category = "experience"
	CategoryEducation  Category = "education"
	CategorySkills     Category = "skills"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryExperience, CategoryEducation, CategorySkills}

// ParseCategory validates a raw category name.
func ParseCategory(raw string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(raw))); c {
	case CategoryExperience, CategoryEducation, CategorySkills:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, raw)
	}
}

// ordered reports whether the category lists newest start date first.
func (c Category) ordered() bool {
	return c == CategoryExperience || c == CategoryEducation
}

const dateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// ParseDate accepts YYYY-MM-DD, YYYY-MM or an RFC 3339 timestamp.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{dateLayout, "2006-01", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}, nil
		}
	}
	return Date{}, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, raw)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if raw == "" || raw == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Entry is one stored resume row. Fields that only some categories use are
// left empty by the others.
type Entry struct {
	ID           string    `json:"id"`
	Category     Category  `json:"category"`
	Title        string    `json:"title"`
	Organization string    `json:"organization,omitempty"`
	Location     string    `json:"location,omitempty"`
	Description  string    `json:"description,omitempty"`
	StartDate    *Date     `json:"start_date,omitempty"`
	EndDate      *Date     `json:"end_date"`
	Current      bool      `json:"current"`
	Technologies []string  `json:"technologies"`
	Highlights   []string  `json:"highlights"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EffectiveEnd is the end date consumers should use: nil while current,
// whatever is stored.
func (e Entry) EffectiveEnd() *Date {
	if e.Current {
		return nil
	}
	return e.EndDate
}

func (e Entry) normalized() Entry {
	e.EndDate = e.EffectiveEnd()
	if e.Technologies == nil {
		e.Technologies = []string{}
	}
	if e.Highlights == nil {
		e.Highlights = []string{}
	}
	return e
}

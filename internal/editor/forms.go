package editor

import (
	"fmt"
	"strings"

	"portfolio-backend/internal/resume"
)

// ListEditor edits a list of short strings such as technologies or skills.
type ListEditor struct {
	items []string
}

func NewListEditor(initial ...string) *ListEditor {
	l := &ListEditor{}
	for _, v := range initial {
		l.Add(v)
	}
	return l
}

// Add appends the trimmed value. Blank values are ignored.
func (l *ListEditor) Add(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	l.items = append(l.items, value)
	return true
}

// RemoveAt drops the element at index i. Duplicates elsewhere are kept.
func (l *ListEditor) RemoveAt(i int) error {
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("index %d out of range [0,%d)", i, len(l.items))
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return nil
}

func (l *ListEditor) Items() []string {
	return append([]string{}, l.items...)
}

func (l *ListEditor) Len() int {
	return len(l.items)
}

// ExperienceForm holds raw form values for an experience entry.
type ExperienceForm struct {
	Title        string
	Organization string
	Location     string
	Description  string
	StartDate    string
	EndDate      string
	Current      bool
	Technologies ListEditor
	Highlights   ListEditor
}

// Item converts the form. A checked Current wins over any end date left in
// the form.
func (f *ExperienceForm) Item() resume.Experience {
	end := f.EndDate
	if f.Current {
		end = ""
	}
	return resume.Experience{
		Title:        f.Title,
		Organization: f.Organization,
		Location:     f.Location,
		Description:  f.Description,
		StartDate:    f.StartDate,
		EndDate:      end,
		Current:      f.Current,
		Technologies: f.Technologies.Items(),
		Highlights:   f.Highlights.Items(),
	}
}

type EducationForm struct {
	Title        string
	Organization string
	Location     string
	Description  string
	StartDate    string
	EndDate      string
}

func (f *EducationForm) Item() resume.Education {
	return resume.Education{
		Title:        f.Title,
		Organization: f.Organization,
		Location:     f.Location,
		Description:  f.Description,
		StartDate:    f.StartDate,
		EndDate:      f.EndDate,
	}
}

type SkillsForm struct {
	Title  string
	Skills ListEditor
}

func (f *SkillsForm) Item() resume.Skills {
	return resume.Skills{Title: f.Title, Highlights: f.Skills.Items()}
}

// ExperienceFormFrom loads a stored entry back into a form for editing.
func ExperienceFormFrom(e resume.Entry) *ExperienceForm {
	f := &ExperienceForm{
		Title:        e.Title,
		Organization: e.Organization,
		Location:     e.Location,
		Description:  e.Description,
		Current:      e.Current,
		Technologies: *NewListEditor(e.Technologies...),
		Highlights:   *NewListEditor(e.Highlights...),
	}
	if e.StartDate != nil {
		f.StartDate = e.StartDate.String()
	}
	if end := e.EffectiveEnd(); end != nil {
		f.EndDate = end.String()
	}
	return f
}

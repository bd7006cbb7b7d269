package resume

import (
	"encoding/json"
	"fmt"
	"strings"

	"portfolio-backend/internal/shared/validation"
)

// Item is the input shape for one category. The variants are closed: only
// Experience, Education and Skills implement it.
type Item interface {
	Category() Category
	Entry() (Entry, error)
	isItem()
}

// Experience is a job. Current forces the end date to null on save.
type Experience struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Organization string   `json:"organization" validate:"required,max=200"`
	Location     string   `json:"location,omitempty" validate:"max=200"`
	Description  string   `json:"description,omitempty"`
	StartDate    string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string   `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Current      bool     `json:"current"`
	Technologies []string `json:"technologies,omitempty"`
	Highlights   []string `json:"highlights,omitempty"`
}

// Education is a degree or certificate; both dates are required.
type Education struct {
	Title        string `json:"title" validate:"required,max=200"`
	Organization string `json:"organization" validate:"required,max=200"`
	Location     string `json:"location,omitempty" validate:"max=200"`
	Description  string `json:"description,omitempty"`
	StartDate    string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// Skills is a titled group of skill names, stored as highlights.
type Skills struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Highlights []string `json:"highlights" validate:"required,min=1,dive,required"`
}

func (Experience) Category() Category { return CategoryExperience }
func (Education) Category() Category  { return CategoryEducation }
func (Skills) Category() Category     { return CategorySkills }

func (Experience) isItem() {}
func (Education) isItem()  {}
func (Skills) isItem()     {}

func (x Experience) Entry() (Entry, error) {
	if x.Current {
		// a stale end date left in the form is dropped, never validated
		x.EndDate = ""
	}
	if err := validation.Struct(x); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	start, err := ParseDate(x.StartDate)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		Category:     CategoryExperience,
		Title:        strings.TrimSpace(x.Title),
		Organization: strings.TrimSpace(x.Organization),
		Location:     strings.TrimSpace(x.Location),
		Description:  x.Description,
		StartDate:    &start,
		Current:      x.Current,
		Technologies: cleanList(x.Technologies),
		Highlights:   cleanList(x.Highlights),
	}
	if x.EndDate != "" {
		end, err := ParseDate(x.EndDate)
		if err != nil {
			return Entry{}, err
		}
		e.EndDate = &end
	}
	return e, nil
}

func (x Education) Entry() (Entry, error) {
	if err := validation.Struct(x); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	start, err := ParseDate(x.StartDate)
	if err != nil {
		return Entry{}, err
	}
	end, err := ParseDate(x.EndDate)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Category:     CategoryEducation,
		Title:        strings.TrimSpace(x.Title),
		Organization: strings.TrimSpace(x.Organization),
		Location:     strings.TrimSpace(x.Location),
		Description:  x.Description,
		StartDate:    &start,
		EndDate:      &end,
	}, nil
}

func (x Skills) Entry() (Entry, error) {
	if err := validation.Struct(x); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return Entry{
		Category:   CategorySkills,
		Title:      strings.TrimSpace(x.Title),
		Highlights: cleanList(x.Highlights),
	}, nil
}

// DecodeItem reads the category tag from raw and decodes the matching variant.
func DecodeItem(raw json.RawMessage) (Item, error) {
	var head struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("%w: malformed data", ErrInvalidInput)
	}
	cat, err := ParseCategory(head.Category)
	if err != nil {
		return nil, err
	}

	var item Item
	switch cat {
	case CategoryExperience:
		var x Experience
		err = json.Unmarshal(raw, &x)
		item = x
	case CategoryEducation:
		var x Education
		err = json.Unmarshal(raw, &x)
		item = x
	case CategorySkills:
		var x Skills
		err = json.Unmarshal(raw, &x)
		item = x
	}
	if err != nil {
		return nil, fmt.Errorf("%w: malformed %s data", ErrInvalidInput, cat)
	}
	return item, nil
}

// EncodeItem marshals an item with its category tag.
func EncodeItem(item Item) (json.RawMessage, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	tag, _ := json.Marshal(item.Category())
	fields["category"] = tag
	return json.Marshal(fields)
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package editor

import (
	"reflect"
	"testing"

	"portfolio-backend/internal/resume"
)

func TestListEditorRemovesByIndex(t *testing.T) {
	l := NewListEditor("a", "a", "b")
	if err := l.RemoveAt(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := l.Items(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("expected [a b], got %v", got)
	}
	if err := l.RemoveAt(5); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestListEditorIgnoresBlank(t *testing.T) {
	l := NewListEditor()
	if l.Add("   ") {
		t.Fatalf("expected blank value to be ignored")
	}
	l.Add("  Go ")
	if got := l.Items(); !reflect.DeepEqual(got, []string{"Go"}) {
		t.Fatalf("unexpected items %v", got)
	}
}

func TestExperienceFormCurrentDropsEndDate(t *testing.T) {
	f := &ExperienceForm{
		Title:        "Engineer",
		Organization: "Acme",
		StartDate:    "2020-01-01",
		EndDate:      "2021-01-01",
		Current:      true,
	}
	if item := f.Item(); item.EndDate != "" {
		t.Fatalf("expected empty end date, got %q", item.EndDate)
	}

	f.Current = false
	if item := f.Item(); item.EndDate != "2021-01-01" {
		t.Fatalf("expected end date kept, got %q", item.EndDate)
	}
}

func TestExperienceFormFromEntry(t *testing.T) {
	start, _ := resume.ParseDate("2020-05-01")
	end, _ := resume.ParseDate("2021-05-01")
	f := ExperienceFormFrom(resume.Entry{
		Title:        "Engineer",
		StartDate:    &start,
		EndDate:      &end,
		Current:      true,
		Technologies: []string{"Go"},
	})
	if f.StartDate != "2020-05-01" || f.EndDate != "" {
		t.Fatalf("unexpected dates %q %q", f.StartDate, f.EndDate)
	}
	if f.Technologies.Len() != 1 {
		t.Fatalf("expected technologies loaded")
	}
}

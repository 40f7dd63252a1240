package domain

import (
	"errors"
	"testing"
)

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"grifinoria": Gryffindor,
		"SONSERINA":  Slytherin,
		" corvinal ": Ravenclaw,
		"Lufa-Lufa":  Hufflepuff,
		"Grifinória": Gryffindor,
	}
	for in, want := range cases {
		got, err := ParseCategory(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s, got %s", in, want, got)
		}
	}

	if _, err := ParseCategory("hogsmeade"); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestCategoryDisplay(t *testing.T) {
	if got := Hufflepuff.DisplayName(); got != "Lufa-Lufa" {
		t.Fatalf("unexpected display name %q", got)
	}
	if from, to := Slytherin.Colors(); from != "green-600" || to != "emerald-400" {
		t.Fatalf("unexpected colours %s %s", from, to)
	}
	if got := Category("unknown").DisplayName(); got != Gryffindor.DisplayName() {
		t.Fatalf("unknown category should fall back to the default house, got %q", got)
	}
}

func TestTaskValidate(t *testing.T) {
	if err := (Task{ID: 1, Text: "ok", Category: Ravenclaw}).Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}
	if err := (Task{ID: 1, Text: " ", Category: Ravenclaw}).Validate(); !errors.Is(err, ErrBlankText) {
		t.Fatalf("expected ErrBlankText, got %v", err)
	}
	if err := (Task{ID: 1, Text: "ok"}).Validate(); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestParseView(t *testing.T) {
	for in, want := range map[string]View{"": ViewAll, "all": ViewAll, "pending": ViewPending, "completed": ViewCompleted} {
		got, err := ParseView(in)
		if err != nil || got != want {
			t.Fatalf("parse view %q: %v %v", in, got, err)
		}
	}
	if _, err := ParseView("archived"); err == nil {
		t.Fatalf("expected error for unknown view")
	}
}

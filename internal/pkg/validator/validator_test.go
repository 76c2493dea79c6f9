package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "status", Message: "invalid"},
		{Field: "reference_date", Message: "required"},
	}
	got := errs.Error()
	want := "status: invalid; reference_date: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "status", Message: "invalid"},
		{Field: "reference_date", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"status": "invalid", "reference_date": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestAtoi(t *testing.T) {
	cases := []struct {
		input    string
		fallback int
		want     int
	}{
		{"", 20, 20},
		{"5", 20, 5},
		{" 7 ", 20, 7},
		{"0", 1, 1},
		{"-3", 1, 1},
		{"abc", 10, 10},
	}
	for _, c := range cases {
		got := Atoi(c.input, c.fallback)
		if got != c.want {
			t.Errorf("Atoi(%q, %d) = %d, want %d", c.input, c.fallback, got, c.want)
		}
	}
}

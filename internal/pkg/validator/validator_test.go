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

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // v7
		"123e4567-e89b-42d3-a456-426614174000", // v4
		"123E4567-E89B-42D3-A456-426614174000", // uppercase
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"123e4567-e89b-02d3-a456-426614174000", // version 0
		"",
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
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

func TestIsValidClockTime(t *testing.T) {
	valid := []string{"00:00", "09:05", "12:00", "23:59"}
	invalid := []string{"24:00", "9:05", "12:60", "12-00", "2:30 pm", ""}
	for _, s := range valid {
		if !IsValidClockTime(s) {
			t.Errorf("IsValidClockTime(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidClockTime(s) {
			t.Errorf("IsValidClockTime(%q) = true, want false", s)
		}
	}
}

func TestIsValidTimezone(t *testing.T) {
	if !IsValidTimezone("America/Chicago") {
		t.Errorf("IsValidTimezone(America/Chicago) = false, want true")
	}
	if !IsValidTimezone("UTC") {
		t.Errorf("IsValidTimezone(UTC) = false, want true")
	}
	if IsValidTimezone("Nowhere/Special") {
		t.Errorf("IsValidTimezone(Nowhere/Special) = true, want false")
	}
	if IsValidTimezone("") {
		t.Errorf("IsValidTimezone(\"\") = true, want false")
	}
}

func TestIsValidDateRange(t *testing.T) {
	if !IsValidDateRange("2024-01-01", "2024-01-14") {
		t.Errorf("expected ordered range to be valid")
	}
	if !IsValidDateRange("2024-01-01", "2024-01-01") {
		t.Errorf("expected single-day range to be valid")
	}
	if IsValidDateRange("2024-01-15", "2024-01-01") {
		t.Errorf("expected reversed range to be invalid")
	}
	if IsValidDateRange("2024-01-01", "soon") {
		t.Errorf("expected malformed end to be invalid")
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Message: "invalid"},
		{Field: "date", Message: "required"},
	}
	got := errs.Error()
	want := "email: invalid; date: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Message: "invalid"},
		{Field: "date", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"email": "invalid", "date": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestValidationErrors_OrNil(t *testing.T) {
	var errs ValidationErrors
	if errs.OrNil() != nil {
		t.Errorf("OrNil() on empty errors should be nil")
	}
	errs.Add("date", "date is required")
	if errs.OrNil() == nil {
		t.Errorf("OrNil() with errors should not be nil")
	}
}

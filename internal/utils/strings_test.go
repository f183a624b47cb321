package utils

import "testing"

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Jane.Doe@Example.COM "); got != "jane.doe@example.com" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"+1 (555) 123-4567": "+15551234567",
		"555.123.4567":     "5551234567",
		"1+2":              "12",
	}
	for in, want := range tests {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.co", true},
		{" USER@Example.com ", true},
		{"", false},
		{"no-at-sign.com", false},
		{"a@b@c.com", false},
		{"@example.com", false},
		{"a@localhost", false},
		{"a b@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Fatalf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidPhone(t *testing.T) {
	if !IsValidPhone("+1 555 123 4567") {
		t.Fatal("expected valid")
	}
	if IsValidPhone("+12345") {
		t.Fatal("expected too short")
	}
}

package utils

import "testing"

func TestDateInRange(t *testing.T) {
	cases := []struct {
		date, from, to string
		want           bool
	}{
		{"2025-01-10", "", "", true},
		{"", "", "", true},
		{"", "2025-01-01", "", false},
		{"2025-01-10", "2025-01-01", "2025-01-31", true},
		{"2025-01-31", "2025-01-01", "2025-01-31", true},
		{"2025-02-01", "2025-01-01", "2025-01-31", false},
		{"2024-12-31", "2025-01-01", "", false},
	}
	for _, c := range cases {
		if got := DateInRange(c.date, c.from, c.to); got != c.want {
			t.Fatalf("DateInRange(%q,%q,%q) = %v, want %v", c.date, c.from, c.to, got, c.want)
		}
	}
}

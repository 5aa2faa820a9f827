package cmd

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Go Testing Guide", "go-testing-guide"},
		{"  spaced  ", "spaced"},
		{"under_score", "under-score"},
		{"symbols!@#", "symbols"},
		{"生成AI 活用", "ai"},
		{"日本語のみ", "article"},
		{"", "article"},
	}

	for _, tt := range tests {
		if got := slugify(tt.input); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

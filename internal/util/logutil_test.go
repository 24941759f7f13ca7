package util

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "hello world",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "hello",
			limit:  10,
			expect: "hello",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "hello world",
			limit:  5,
			expect: "hello...",
		},
		{
			name:   "trims surrounding whitespace",
			input:  "  spaced  ",
			limit:  5,
			expect: "space...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestHTMLToText(t *testing.T) {
	t.Parallel()

	in := "<div><h2>Supply Chain Manager</h2><p>Own <b>procurement</b> and logistics.</p><ul><li>ERP</li><li>S&amp;OP</li></ul></div>"
	got := HTMLToText(in)
	want := "Supply Chain Manager\nOwn procurement and logistics.\nERP\nS&OP"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	plain := HTMLToText("  already plain  ")
	if plain != "already plain" {
		t.Fatalf("expected plain text passthrough, got %q", plain)
	}
}

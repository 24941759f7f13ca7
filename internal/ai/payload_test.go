package ai

import (
	"math"
	"testing"
)

func TestExtractPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "bare json",
			input:  `{"score": 80}`,
			expect: `{"score": 80}`,
		},
		{
			name:   "json fence",
			input:  "```json\n{\"score\": 80}\n```",
			expect: `{"score": 80}`,
		},
		{
			name:   "anonymous fence",
			input:  "```\n{\"score\": 80}\n```",
			expect: `{"score": 80}`,
		},
		{
			name:   "prose around object",
			input:  "Here is the analysis you asked for:\n{\"score\": 80}\nLet me know if you need more.",
			expect: `{"score": 80}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractPayload(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	data, err := DecodePayload("```json\n{\"score\": \"72\", \"missing_keywords\": [\"erp\", 5]}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := CoerceInt(data["score"], 0); got != 72 {
		t.Fatalf("expected score 72, got %d", got)
	}

	keywords := CoerceStringSlice(data["missing_keywords"])
	if len(keywords) != 2 || keywords[0] != "erp" || keywords[1] != "5" {
		t.Fatalf("unexpected keywords: %v", keywords)
	}
}

func TestDecodePayloadMalformed(t *testing.T) {
	if _, err := DecodePayload("the model refused to answer"); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestCoerceFloat(t *testing.T) {
	if got := CoerceFloat("0.9"); got != 0.9 {
		t.Fatalf("expected 0.9, got %v", got)
	}
	if got := CoerceFloat(nil); !math.IsNaN(got) {
		t.Fatalf("expected NaN for nil, got %v", got)
	}
	if got := CoerceInt("not a number", 7); got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}
}

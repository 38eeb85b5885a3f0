package refdoc

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("empty = %d", got)
	}
	if got := EstimateTokens("trẻ biết đếm"); got != 6 {
		t.Errorf("three words = %d, want 6", got)
	}
}

func TestExcerpt(t *testing.T) {
	text := "một hai ba\n\nbốn năm sáu\n\nbảy tám chín"

	tests := []struct {
		name   string
		budget int
		want   string
	}{
		{"unlimited", 0, text},
		{"fits", 100, text},
		{"two paragraphs", 12, "một hai ba\n\nbốn năm sáu"},
		{"one paragraph", 7, "một hai ba"},
		{"cut first paragraph", 4, "một hai"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt(text, tt.budget); got != tt.want {
				t.Errorf("Excerpt(budget=%d) = %q, want %q", tt.budget, got, tt.want)
			}
		})
	}
}

func TestExcerpt_KeepsLineBreaksWhenCutting(t *testing.T) {
	para := "a b\nc d\ne f"
	got := Excerpt(para, 6)
	if got != "a b\nc" {
		t.Errorf("got %q", got)
	}
	if EstimateTokens(got) > 6 {
		t.Errorf("excerpt over budget: %d", EstimateTokens(got))
	}
	if !strings.HasPrefix(para, strings.SplitN(got, "\n", 2)[0]) {
		t.Errorf("excerpt is not a prefix: %q", got)
	}
}

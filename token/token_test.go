package token

import (
	"strings"
	"testing"
)

func newTestCounter(t *testing.T) *Counter {
	t.Helper()
	c, err := NewCounter("cl100k_base")
	if err != nil {
		t.Skipf("encoding unavailable: %v", err)
	}
	return c
}

func TestCountGrowsWithText(t *testing.T) {
	c := newTestCounter(t)
	short := c.Count("hello")
	long := c.Count(strings.Repeat("hello world ", 50))
	if short <= 0 {
		t.Errorf("expected positive count, got %d", short)
	}
	if long <= short {
		t.Errorf("longer text should count more tokens: %d vs %d", long, short)
	}
}

func TestTruncate(t *testing.T) {
	c := newTestCounter(t)
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 20)

	truncated := c.Truncate(text, 10)
	if got := c.Count(truncated); got > 10 {
		t.Errorf("truncated text counts %d tokens, budget was 10", got)
	}
	if truncated == text {
		t.Error("expected truncation")
	}

	if got := c.Truncate("short", 100); got != "short" {
		t.Errorf("text within budget must be returned unchanged, got %q", got)
	}
	if got := c.Truncate(text, 0); got != "" {
		t.Errorf("zero budget must return empty, got %q", got)
	}
}

func TestNewCounterResolvesModelNames(t *testing.T) {
	if _, err := NewCounter("gpt-4o-mini"); err != nil {
		t.Errorf("model name should resolve: %v", err)
	}
	if _, err := NewCounter("definitely-not-a-model"); err == nil {
		t.Error("expected error for unknown name")
	}
}

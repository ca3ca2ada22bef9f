package utils

import (
	"errors"
	"net/http"
	"testing"
	"unicode/utf8"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{name: "shorter than limit", input: "abc", max: 5, expected: "abc"},
		{name: "exact limit", input: "abcde", max: 5, expected: "abcde"},
		{name: "hard cut", input: "abcdef", max: 3, expected: "abc"},
		{name: "multibyte", input: "• 消防處", max: 3, expected: "• 消"},
		{name: "zero", input: "abc", max: 0, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateRunes(tt.input, tt.max)
			if got != tt.expected {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
			}

			if !utf8.ValidString(got) {
				t.Errorf("TruncateRunes produced invalid UTF-8: %q", got)
			}
		})
	}
}

func TestStripTags(t *testing.T) {
	got := StripTags("<p>Hello <b>AI</b>\n  world</p>")
	if got != "Hello AI world" {
		t.Errorf("StripTags() = %q", got)
	}

	got = StripTags("Fish &amp; chips&nbsp;&lt;3")
	if got != "Fish & chips <3" {
		t.Errorf("StripTags() should decode entities, got %q", got)
	}

	got = StripTags(`<img src="a.jpg" alt="x > y"/>Caption<!-- hidden --><br>next`)
	if got != "Caption next" {
		t.Errorf("StripTags() should drop attributes and comments, got %q", got)
	}
}

func TestStatusError(t *testing.T) {
	var err error = &StatusError{Op: "LinkedIn API error", StatusCode: 403, Body: `{"message":"denied"}`}

	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Error("StatusError should wrap ErrUnexpectedStatusCode")
	}

	if err.Error() != `LinkedIn API error: 403 - {"message":"denied"}` {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestBuildHeaders(t *testing.T) {
	h := NewHTTPHelper("")
	headers := h.BuildHeaders(map[string]string{"Accept": "application/rss+xml"})

	if headers.Get("User-Agent") != DefaultUserAgent {
		t.Errorf("expected default user agent, got %s", headers.Get("User-Agent"))
	}

	if headers.Get("Accept") != "application/rss+xml" {
		t.Errorf("custom header should override default, got %s", headers.Get("Accept"))
	}
}

func TestIsSuccess(t *testing.T) {
	if !IsSuccess(http.StatusCreated, http.StatusOK, http.StatusCreated) {
		t.Error("201 should be accepted")
	}

	if IsSuccess(http.StatusAccepted, http.StatusOK, http.StatusCreated) {
		t.Error("202 should not be accepted")
	}
}

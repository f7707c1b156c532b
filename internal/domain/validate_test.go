package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateNew(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		url     string
		wantErr error
	}{
		{"valid https", "Go blog", "https://go.dev/blog/", nil},
		{"valid http", "local docs", "http://localhost:8080/docs", nil},
		{"trims whitespace", "  padded  ", "  https://example.com  ", nil},
		{"empty title", "", "https://example.com", ErrEmptyTitle},
		{"whitespace title", "   ", "https://example.com", ErrEmptyTitle},
		{"empty url", "title", "", ErrEmptyURL},
		{"whitespace url", "title", "   ", ErrEmptyURL},
		{"missing scheme", "title", "example.com", ErrInvalidURL},
		{"bad scheme", "title", "ftp://example.com", ErrInvalidURL},
		{"javascript scheme", "title", "javascript:alert(1)", ErrInvalidURL},
		{"scheme without host", "title", "https://", ErrInvalidURL},
		{"title too long", strings.Repeat("x", MaxTitleLength+1), "https://example.com", ErrTitleTooLong},
		{"url too long", "title", "https://example.com/" + strings.Repeat("x", MaxURLLength), ErrURLTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNew(tt.title, tt.url)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateNew(%q, %q) = %v, want %v", tt.title, tt.url, err, tt.wantErr)
			}
		})
	}
}

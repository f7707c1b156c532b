package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	// MaxTitleLength caps user-supplied titles.
	MaxTitleLength = 512
	// MaxURLLength caps user-supplied target URLs.
	MaxURLLength = 2048
)

var (
	ErrEmptyTitle   = errors.New("title is required")
	ErrTitleTooLong = fmt.Errorf("title exceeds %d characters", MaxTitleLength)
	ErrEmptyURL     = errors.New("target url is required")
	ErrURLTooLong   = fmt.Errorf("target url exceeds %d characters", MaxURLLength)
	ErrInvalidURL   = errors.New("target url must be a valid http or https URL")
)

// ValidateNew checks user input for a creation intent. Malformed input is
// rejected here and never forwarded to storage.
func ValidateNew(title, targetURL string) error {
	title = strings.TrimSpace(title)
	targetURL = strings.TrimSpace(targetURL)

	if title == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if targetURL == "" {
		return ErrEmptyURL
	}
	if len(targetURL) > MaxURLLength {
		return ErrURLTooLong
	}

	u, err := url.Parse(targetURL)
	if err != nil {
		return ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}

	return nil
}

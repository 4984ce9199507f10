// Package sanitize holds the pure input checks: room-code shape,
// display names and chat text. Nothing here touches room state, so all
// functions are safe from any goroutine.
package sanitize

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dkeye/Huddle/internal/domain"
)

// strict strips every tag and attribute; bluemonday policies are
// concurrency-safe once built.
var strict = bluemonday.StrictPolicy()

// ValidRoomCode reports whether code has the fixed length and character
// class of a room code. Case normalization is the caller's job.
func ValidRoomCode(code string) bool {
	if len(code) != domain.RoomCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// stripMarkup removes all markup and resolves entities back to plain
// text, so "&amp;" survives as "&" but "<b>x</b>" becomes "x".
func stripMarkup(raw string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(raw)))
}

// DisplayName sanitizes a self-reported name and enforces 1..maxLen runes.
func DisplayName(raw string, maxLen int) (string, error) {
	name := stripMarkup(raw)
	if name == "" {
		return "", domain.ErrInvalidName
	}
	if utf8.RuneCountInString(name) > maxLen {
		return "", domain.ErrInvalidName
	}
	return name, nil
}

// ChatText sanitizes a chat line and enforces 1..maxLen runes.
func ChatText(raw string, maxLen int) (string, error) {
	text := stripMarkup(raw)
	if text == "" {
		return "", domain.ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > maxLen {
		return "", domain.ErrMessageTooLong
	}
	return text, nil
}

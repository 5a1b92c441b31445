package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field limits matching the post_dislikes schema.
const (
	MaxPostURNLen = 128 // post_dislikes.post_urn VARCHAR(128)
	MaxCountValue = 1 << 30
)

// ActivityURNPrefix is the primary identifier scheme for feed posts.
const ActivityURNPrefix = "urn:li:activity:"

// urnRe matches LinkedIn-style URNs: colon-separated segments of word
// characters, with the trailing activity ID allowed to be alphanumeric.
var urnRe = regexp.MustCompile(`^urn:li:[A-Za-z]+:[A-Za-z0-9_-]+$`)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidatePostURN checks that a post URN is well-formed and within DB limits.
// Returns the normalized URN and an empty string, or "" and an error message.
func ValidatePostURN(urn string) (string, string) {
	urn = strings.TrimSpace(urn)
	if urn == "" {
		return "", "post_urn is required"
	}
	if len(urn) > MaxPostURNLen {
		return "", "post_urn must be at most 128 characters"
	}
	if !urnRe.MatchString(urn) {
		return "", "post_urn must be a urn:li:* identifier"
	}
	return urn, ""
}

// ValidateCount checks that a dislike count is a sane non-negative integer.
func ValidateCount(count int) string {
	if count < 0 {
		return "dislike_count must not be negative"
	}
	if count > MaxCountValue {
		return "dislike_count is out of range"
	}
	return ""
}

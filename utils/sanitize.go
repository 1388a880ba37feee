package utils

import "github.com/microcosm-cc/bluemonday"

var (
	sanitizer = bluemonday.UGCPolicy()
	stripper  = bluemonday.StrictPolicy()
)

// Sanitize cleans user-generated HTML content to prevent XSS. Note this
// also strips HTML comments, so deed metadata markers must be attached
// after sanitizing the display text.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// SanitizeText strips all markup. Used for plain-text fields like titles
// and display names.
func SanitizeText(input string) string {
	return stripper.Sanitize(input)
}

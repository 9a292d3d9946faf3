package util

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText remove qualquer marcação HTML de textos livres.
func SanitizeText(value string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(value)))
}

// SanitizeOptional aplica SanitizeText em ponteiros, preservando nil.
func SanitizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	clean := SanitizeText(*value)
	return &clean
}

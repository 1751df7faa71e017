// Package utils provides utility functions and helpers for common operations
// used throughout the application: string manipulation, error checking,
// data sanitization and slice operations.
package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
)

// TruncateString truncates a string to at most maxLen runes, adding an ellipsis
// when it had to cut. Used to keep log lines and stored previews bounded.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 3 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

// NormalizeWords trims, lowercases and de-duplicates a word list, dropping blanks.
// The order of first occurrence is kept.
func NormalizeWords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	result := make([]string, 0, len(words))
	for _, w := range words {
		normalized := strings.ToLower(strings.TrimSpace(w))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}

// MaskToken hides all but the last four characters of a credential.
//
// For example: "EAABsbCS1234" becomes "********1234"
func MaskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

// SanitizeKeys redacts potentially sensitive fields from a map.
// It recursively traverses nested maps and slices so raw webhook payloads
// can be logged safely.
func SanitizeKeys(data map[string]interface{}) map[string]interface{} {
	sensitiveKeys := map[string]bool{
		constants.ColumnAccessToken: true,
		"token":                     true,
		"secret":                    true,
		"app_secret":                true,
		"password":                  true,
		"email":                     true,
	}

	result := make(map[string]interface{}, len(data))

	for k, v := range data {
		if sensitiveKeys[strings.ToLower(k)] {
			result[k] = constants.LogRedactedValue
			continue
		}

		switch nested := v.(type) {
		case map[string]interface{}:
			result[k] = SanitizeKeys(nested)
		case []interface{}:
			sanitized := make([]interface{}, len(nested))
			for i, item := range nested {
				if m, ok := item.(map[string]interface{}); ok {
					sanitized[i] = SanitizeKeys(m)
				} else {
					sanitized[i] = item
				}
			}
			result[k] = sanitized
		default:
			result[k] = v
		}
	}

	return result
}

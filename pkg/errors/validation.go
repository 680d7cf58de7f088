package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateHourRange checks a visible hour range. Both hours must lie in
// [0,23] and end must not precede start.
func ValidateHourRange(start, end int) error {
	if start < 0 || start > 23 {
		return Configuration("start hour %d outside [0,23]", start)
	}
	if end < 0 || end > 23 {
		return Configuration("end hour %d outside [0,23]", end)
	}
	if end < start {
		return Configuration("end hour %d before start hour %d", end, start)
	}
	return nil
}

// ValidateDimension rejects zero, negative, NaN, and infinite sizes.
func ValidateDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return Configuration("%s must be positive, got %v", name, v)
	}
	return nil
}

// ValidateNonNegative rejects negative, NaN, and infinite values. Zero is
// allowed (gaps and margins may be zero).
func ValidateNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Configuration("%s must not be negative, got %v", name, v)
	}
	return nil
}

// ValidatePath validates an output or input file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// IsURL reports whether s looks like an http(s) URL rather than a file path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

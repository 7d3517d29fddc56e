package utils

import "strings"

func Ptr[T any](v T) *T {
	return &v
}

func Val[T any](p *T) T {
	if p != nil {
		return *p
	}
	var zero T
	return zero
}

// FirstNonEmpty returns the first argument that is not the empty string.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ParseBoolEnv reads a boolean environment value. "1", "true" and "yes" are
// true in any case; everything else is false.
func ParseBoolEnv(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

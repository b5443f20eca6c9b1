// Package formatting parses and prints byte sizes used by request limits and
// attachment logging.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
)

const unit = 1024

var suffixes = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders n with the largest base-1024 suffix that keeps the
// value at or above one. Negative precision is treated as zero.
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)

	value := float64(n)
	i := 0
	for value >= unit && i < len(suffixes)-1 {
		value /= unit
		i++
	}
	if i == 0 {
		return strconv.FormatInt(n, 10) + " B"
	}
	return strconv.FormatFloat(value, 'f', precision, 64) + " " + suffixes[i]
}

// ParseBytes reads sizes such as "1MB", "64 kb" or "2048". A bare number
// is a byte count.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	number, suffix := s, ""
	if split >= 0 {
		number, suffix = s[:split], strings.ToUpper(strings.TrimSpace(s[split:]))
	}
	if number == "" {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}

	if suffix == "" {
		return int64(value), nil
	}
	for i, sfx := range suffixes {
		if sfx == suffix {
			for range i {
				value *= unit
			}
			return int64(value), nil
		}
	}
	return 0, fmt.Errorf("unknown byte size unit %q", suffix)
}

package feed

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

const (
	minIDLength = 8
	maxIDLength = 16
)

// GenerateID derives a short, stable identifier from an article's title and link.
// The hash folds UTF-16 code units (hash*31 + unit, wrapped to int32) and the
// absolute value is rendered in base 36, padded to 8 and capped at 16 characters.
func GenerateID(title, link string) string {
	var hash int32
	for _, unit := range utf16.Encode([]rune(title + link)) {
		hash = hash*31 + int32(unit)
	}

	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}

	id := strconv.FormatInt(abs, 36)
	if len(id) > maxIDLength {
		id = id[:maxIDLength]
	}
	if len(id) < minIDLength {
		id = strings.Repeat("0", minIDLength-len(id)) + id
	}
	return id
}

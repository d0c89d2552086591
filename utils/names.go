// utils/names.go
package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

// CleanText trims and NFC-normalises user text so that length limits count
// what the user sees, not how the client happened to encode it.
func CleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// RuneLen counts characters, not bytes.
func RuneLen(s string) int { return utf8.RuneCountInString(s) }

// Slugify builds the URL slug stored next to room and tournament names.
func Slugify(name string) string {
	s := slug.Make(name)
	if s == "" {
		return "untitled"
	}
	return s
}

// NormalizeTag transliterates a guild tag to ASCII, upper-cases it and keeps
// only letters and digits ("Röck" -> "ROCK").
func NormalizeTag(tag string) string {
	ascii := strings.ToUpper(unidecode.Unidecode(CleanText(tag)))
	var b strings.Builder
	for _, r := range ascii {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRuns   = regexp.MustCompile(`-+`)

	// đ/Đ and a few others are base letters, not letter+mark, so NFD leaves them alone
	letterFolds = strings.NewReplacer("đ", "d", "Đ", "D", "ø", "o", "Ø", "O", "ł", "l", "Ł", "L", "ß", "ss")
)

// GenerateSlug turns a product name into a URL slug.
// "Bàn phím Cơ Đen!" → "ban-phim-co-den"
func GenerateSlug(input string) string {
	// Step 1: Strip accents
	ascii := RemoveDiacritics(input)

	// Step 2: Lowercase, spaces to hyphens
	hyphenated := strings.ReplaceAll(strings.ToLower(ascii), " ", "-")

	// Step 3: Keep only a-z, 0-9, hyphens
	cleaned := nonSlugChars.ReplaceAllString(hyphenated, "")

	// Step 4: Collapse and trim hyphens
	return strings.Trim(hyphenRuns.ReplaceAllString(cleaned, "-"), "-")
}

// RemoveDiacritics folds accented letters to their ASCII base
func RemoveDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, input)
	if err != nil {
		return letterFolds.Replace(input)
	}
	return letterFolds.Replace(out)
}

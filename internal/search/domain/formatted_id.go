package domain

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fallbackCode is used when a category yields no letters at all.
const fallbackCode = "XX"

// categoryCodes maps normalized category names to their two letter code.
var categoryCodes = map[string]string{
	"ao dai":     "AD",
	"ao cuoi":    "AC",
	"vay cuoi":   "VC",
	"dam":        "DM",
	"dam da hoi": "DH",
	"vest":       "VE",
	"ao ba ba":   "BB",
	"ao tu than": "TT",
	"non la":     "NL",
	"khan":       "KH",
	"giay":       "GI",
	"trang suc":  "TS",
	"phu kien":   "PK",
}

var vietnameseD = strings.NewReplacer("Đ", "D", "đ", "d")

// StripDiacritics maps Đ/đ to D/d and removes combining marks, so "Phụ Kiện"
// becomes "Phu Kien". Case is preserved.
func StripDiacritics(s string) string {
	s = vietnameseD.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize returns the diacritic-free, lower-cased, whitespace-collapsed form of s
// used for substring matching.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(StripDiacritics(s))), " ")
}

// CategoryCode returns the two letter code for category. Known categories use a
// fixed table. Any other category takes the first letter of each word, padded
// from the first word when there is only one word, and "XX" when nothing is left.
func CategoryCode(category string) string {
	normalized := Normalize(category)
	if code, ok := categoryCodes[normalized]; ok {
		return code
	}

	words := strings.Fields(strings.ToUpper(StripDiacritics(category)))
	var code []rune
	for _, word := range words {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				code = append(code, r)
				break
			}
		}
	}

	if len(code) < 2 && len(words) > 0 {
		var rest []rune
		for _, r := range words[0] {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				rest = append(rest, r)
			}
		}
		if len(rest) > 1 {
			code = append(code, rest[1])
		}
	}

	switch len(code) {
	case 0:
		return fallbackCode
	case 1:
		return string(code) + fallbackCode[:1]
	default:
		return string(code[:2])
	}
}

// FormattedID returns the human-facing identifier for an item, e.g. "AD-000007".
// It depends only on the category and the per-category counter, so it is the
// same at write time and during a full rebuild.
func FormattedID(category string, counter int64) string {
	return fmt.Sprintf("%s-%06d", CategoryCode(category), counter)
}

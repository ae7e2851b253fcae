package grading

import "strings"

// currencyRunes are the currency symbols stripped before comparison, so
// "$0.83" and "0.83" grade the same.
const currencyRunes = "$€£¥"

// Normalize canonicalizes free-text answers for fill_in comparison: strips
// currency symbols and thousands separators wherever they occur, trims and
// collapses whitespace and folds case unless the question is case
// sensitive. Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string, caseSensitive bool) string {
	s := text
	for _, r := range currencyRunes {
		s = strings.ReplaceAll(s, string(r), "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Join(strings.Fields(s), " ")
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

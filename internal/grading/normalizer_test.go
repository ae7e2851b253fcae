package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		caseSensitive bool
		expected      string
	}{
		{"lowercases by default", "RAID 10", false, "raid 10"},
		{"preserves case when sensitive", "RaId 10", true, "RaId 10"},
		{"trims surrounding whitespace", "  answer  ", false, "answer"},
		{"collapses interior whitespace", "work  breakdown   structure", false, "work breakdown structure"},
		{"collapses tabs and newlines", "work\tbreakdown\nstructure", false, "work breakdown structure"},
		{"strips dollar sign", "$500", false, "500"},
		{"strips euro sign", "€1000", false, "1000"},
		{"strips trailing currency symbol", "500$", false, "500"},
		{"strips repeated currency symbols", "$ $5", false, "5"},
		{"strips mixed currency symbols", "$  €5", false, "5"},
		{"removes thousands separators", "1,000,000", false, "1000000"},
		{"currency and separators together", "$1,250", false, "1250"},
		{"keeps decimal point", "$0.83", false, "0.83"},
		{"empty input", "", false, ""},
		{"whitespace only", "   ", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input, tt.caseSensitive))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"$1,000.50", "  Mixed  CASE  ", "€ 42", "$ $5", "$  €5", "plain"}
	for _, input := range inputs {
		once := Normalize(input, false)
		assert.Equal(t, once, Normalize(once, false), "normalizing %q twice changed the result", input)
	}
}

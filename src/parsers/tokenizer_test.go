package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLine(t *testing.T) {
	testCases := []struct {
		name     string
		line     string
		expected []string
	}{
		{
			name:     "plain fields",
			line:     "AAPL,10,150.00",
			expected: []string{"AAPL", "10", "150.00"},
		},
		{
			name:     "quoted field with comma",
			line:     `"AAPL","APPLE INC","$1,500.00"`,
			expected: []string{"AAPL", "APPLE INC", "$1,500.00"},
		},
		{
			name:     "quotes dropped and whitespace trimmed",
			line:     ` "MSFT" ,  5 , " MICROSOFT CORP " `,
			expected: []string{"MSFT", "5", "MICROSOFT CORP"},
		},
		{
			name:     "empty line yields one empty field",
			line:     "",
			expected: []string{""},
		},
		{
			name:     "trailing comma yields trailing empty field",
			line:     "AAPL,10,",
			expected: []string{"AAPL", "10", ""},
		},
		{
			name:     "unterminated quote swallows the rest of the line",
			line:     `"AAPL,10,150`,
			expected: []string{"AAPL,10,150"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SplitLine(tc.line))
		})
	}
}

func TestSplitLines(t *testing.T) {
	lines := SplitLines("a,b\r\nc,d\ne,f\r\n")
	assert.Equal(t, []string{"a,b", "c,d", "e,f", ""}, lines)
}

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeUserInput(t *testing.T) {
	assert.Equal(t, "alice", SanitizeUserInput("alice"))
	assert.Equal(t, "alice", SanitizeUserInput("<script>evil()</script>alice"))
	assert.Equal(t, "bob", SanitizeUserInput("  <b>bob</b>  "))
}

func TestSanitizeForFormulaInjection(t *testing.T) {
	assert.Equal(t, "'=SUM(A1:A2)", SanitizeForFormulaInjection("=SUM(A1:A2)"))
	assert.Equal(t, "'+1234", SanitizeForFormulaInjection("+1234"))
	assert.Equal(t, "'@cmd", SanitizeForFormulaInjection("@cmd"))
	assert.Equal(t, "APPLE INC", SanitizeForFormulaInjection("APPLE INC"))
	assert.Equal(t, "", SanitizeForFormulaInjection(""))
}

func TestStripUnprintable(t *testing.T) {
	assert.Equal(t, "hello\tworld", StripUnprintable("hello\tworld"))
	assert.Equal(t, "clean", StripUnprintable("cl\x00ea\x07n"))
}

package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAutoAccountType(t *testing.T) {
	assert.Equal(t, AccountTypeOther, AutoAccountType("JazzCash"))
	assert.Equal(t, AccountTypeOther, AutoAccountType("easypaisa"))
	assert.Equal(t, AccountTypeOther, AutoAccountType("SadaPay"))
	assert.Equal(t, AccountTypeBank, AutoAccountType("Meezan Bank"))
}

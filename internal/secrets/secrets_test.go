package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountNaming(t *testing.T) {
	assert.Equal(t, "outreach:smtp:me@smtp.gmail.com", account(AccountSMTP, "me@smtp.gmail.com"))
	assert.Equal(t, "outreach:imap:me@imap.gmail.com", account(AccountIMAP, " me@imap.gmail.com "))
	assert.Equal(t, "outreach:drafter", account(AccountDrafter, ""))
}

func TestSetRejectsEmptyValue(t *testing.T) {
	assert.Error(t, Set(AccountSMTP, "me@host", "   "))
}

package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "outreach"

const (
	AccountSMTP    = "smtp"
	AccountIMAP    = "imap"
	AccountDrafter = "drafter"
)

// Get fetches a secret for one of the Account* names, scoped by the account
// identity (e.g. username@host) so distinct mailboxes don't collide.
func Get(kind, identity string) (string, error) {
	acct := account(kind, identity)
	pw, err := keyring.Get(KeyringService, acct)
	if err != nil {
		return "", fmt.Errorf("secret %s not found in keychain: %w", acct, err)
	}
	if strings.TrimSpace(pw) == "" {
		return "", fmt.Errorf("secret %s is empty", acct)
	}
	return pw, nil
}

func Set(kind, identity, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, account(kind, identity), value)
}

func Delete(kind, identity string) error {
	return keyring.Delete(KeyringService, account(kind, identity))
}

func account(kind, identity string) string {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "outreach:" + kind
	}
	return fmt.Sprintf("outreach:%s:%s", kind, identity)
}

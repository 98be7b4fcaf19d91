package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailsPlain(t *testing.T) {
	got := Emails("Interested? Write to hiring@acme-corp.com with your rate.")
	assert.Equal(t, []string{"hiring@acme-corp.com"}, got)
}

func TestEmailsEmptyInput(t *testing.T) {
	assert.Empty(t, Emails(""))
	assert.Empty(t, Emails("no contact information in this post at all"))
}

func TestEmailsBracketObfuscation(t *testing.T) {
	got := Emails("Contact: jane.doe [at] example [dot] com")
	assert.Equal(t, []string{"jane.doe@example.com"}, got)
}

func TestEmailsParenObfuscation(t *testing.T) {
	got := Emails("Ping me: jane (at) example (dot) com")
	assert.Equal(t, []string{"jane@example.com"}, got)
}

func TestEmailsBareWordObfuscation(t *testing.T) {
	got := Emails("resumes to jane at example dot com please")
	assert.Equal(t, []string{"jane@example.com"}, got)
}

func TestEmailsMixedObfuscation(t *testing.T) {
	got := Emails("reach recruiting [at] bigco [.] io today")
	assert.Equal(t, []string{"recruiting@bigco.io"}, got)
}

func TestEmailsSpacedAddress(t *testing.T) {
	got := Emails("send cv to john @ corp . net")
	assert.Equal(t, []string{"john@corp.net"}, got)
}

func TestEmailsContextHitComesFirst(t *testing.T) {
	got := Emails("You can also ping bob@corp.com anytime. Apply to hr@corp.com today.")

	assert.Equal(t, "hr@corp.com", got[0])
	assert.Contains(t, got, "bob@corp.com")
	assert.Len(t, got, 2)
}

func TestEmailsDedup(t *testing.T) {
	got := Emails("Email: hr@corp.com. Again, that is hr@corp.com.")
	assert.Equal(t, []string{"hr@corp.com"}, got)
}

func TestEmailsHTMLEntities(t *testing.T) {
	got := Emails("email:&nbsp;jane@example.com&nbsp;for details")
	assert.Equal(t, []string{"jane@example.com"}, got)
}

func TestEmailsAcrossNewlines(t *testing.T) {
	got := Emails("Send your resume\nto: careers@startup.dev")
	assert.Equal(t, []string{"careers@startup.dev"}, got)
}

func TestEmailsRejectsInvalidShapes(t *testing.T) {
	assert.Empty(t, Emails("see us at example.com or call 555-0100"))
	assert.Empty(t, Emails("bad address foo@bar.c"))
}

func TestNormalizeCandidate(t *testing.T) {
	assert.Equal(t, "jane@example.com", normalizeCandidate("jane [at] example [dot] com"))
	assert.Equal(t, "jane@example.com", normalizeCandidate("email: jane@example.com"))
	assert.Equal(t, "jane@example.com", normalizeCandidate("jane at example dot com"))
}

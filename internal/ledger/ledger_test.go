package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach-engine/internal/domain"
)

func TestOpenPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	l := Open(path)
	require.True(t, l.Persistent())
	l.MarkResponded("post-1")
	l.RecordDomainContact("corp.com", "2026-08-31", "hr@corp.com", "post-1")
	require.NoError(t, l.Close())

	l2 := Open(path)
	defer l2.Close()
	require.True(t, l2.Persistent())
	assert.True(t, l2.HasResponded("post-1"))
	assert.False(t, l2.HasResponded("post-2"))
	assert.True(t, l2.WasDomainContactedToday("corp.com", "2026-08-31"))
	assert.Equal(t, 1, l2.RespondedCount())
}

func TestOpenCorruptFileDegradesToMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	require.NoError(t, os.WriteFile(path, []byte("this is not a database"), 0o644))

	l := Open(path)
	defer l.Close()

	// Degraded, but fully usable for the run.
	assert.False(t, l.Persistent())
	l.MarkResponded("post-1")
	assert.True(t, l.HasResponded("post-1"))
}

func TestDomainContactDateLogic(t *testing.T) {
	l := NewMemory()

	assert.False(t, l.WasDomainContactedToday("corp.com", "2026-08-31"))

	l.RecordDomainContact("corp.com", "2026-08-31", "hr@corp.com", "p1")
	assert.True(t, l.WasDomainContactedToday("corp.com", "2026-08-31"))

	// Next calendar day the domain is fair game again.
	assert.False(t, l.WasDomainContactedToday("corp.com", "2026-09-01"))

	// A later contact overwrites the entry.
	l.RecordDomainContact("corp.com", "2026-09-01", "jobs@corp.com", "p2")
	assert.True(t, l.WasDomainContactedToday("corp.com", "2026-09-01"))
	assert.False(t, l.WasDomainContactedToday("corp.com", "2026-08-31"))
}

func TestMarkRespondedIdempotent(t *testing.T) {
	l := NewMemory()
	l.MarkResponded("p1")
	l.MarkResponded("p1")
	assert.Equal(t, 1, l.RespondedCount())
}

func TestPostClaims(t *testing.T) {
	l := NewMemory()

	assert.True(t, l.ClaimPost("p1"))
	assert.False(t, l.ClaimPost("p1"), "second claim must lose")

	l.ReleasePost("p1")
	assert.True(t, l.ClaimPost("p1"), "released claim is takeable again")

	l.MarkResponded("p1")
	assert.False(t, l.ClaimPost("p1"), "responded post is never claimable")
}

func TestDomainClaims(t *testing.T) {
	l := NewMemory()

	assert.True(t, l.ClaimDomain("corp.com", "2026-08-31"))
	assert.False(t, l.ClaimDomain("corp.com", "2026-08-31"))

	// Recording the contact drops the claim but the date now blocks.
	l.RecordDomainContact("corp.com", "2026-08-31", "hr@corp.com", "p1")
	assert.False(t, l.ClaimDomain("corp.com", "2026-08-31"))
	assert.True(t, l.ClaimDomain("corp.com", "2026-09-01"))
}

func TestDecisionJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	l := Open(path)
	defer l.Close()
	require.True(t, l.Persistent())

	l.RecordDecision(domain.Decision{
		PostID: "p1",
		Reason: domain.ReasonNoContactFound,
	}, "imap")
	l.RecordDecision(domain.Decision{
		PostID:  "p2",
		Accept:  true,
		Contact: domain.Contact{Emails: []string{"hr@corp.com"}},
	}, "pages")

	rows, err := l.ListDecisions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest first.
	assert.Equal(t, "p2", rows[0].PostID)
	assert.True(t, rows[0].Accepted)
	assert.Equal(t, "hr@corp.com", rows[0].Email)
	assert.Equal(t, "p1", rows[1].PostID)
	assert.Equal(t, string(domain.ReasonNoContactFound), rows[1].Reason)
}

func TestMemoryLedgerJournalIsNoop(t *testing.T) {
	l := NewMemory()
	l.RecordDecision(domain.Decision{PostID: "p1"}, "imap")

	rows, err := l.ListDecisions(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// Package ledger is the persistent record of prior outreach: which posts have
// been acted on, and which contact domains were emailed on which calendar day.
// It is what makes the pipeline idempotent across runs and across workers.
package ledger

import (
	"database/sql"
	"log"
	"sync"
	"time"
)

// DomainContact is the most recent outreach for one email domain. One row per
// domain, overwritten on each new contact.
type DomainContact struct {
	Date   string // calendar date, 2006-01-02
	Email  string
	PostID string
}

// Ledger keeps the authoritative state in memory and mirrors every mutation
// to sqlite before returning. If the store cannot be opened it degrades to
// memory-only: dedup holds for the run, not across restarts.
type Ledger struct {
	db *sql.DB // nil when memory-only

	mu           sync.Mutex
	responded    map[string]struct{}
	domains      map[string]DomainContact
	postClaims   map[string]struct{}
	domainClaims map[string]struct{}
}

func newMemory() *Ledger {
	return &Ledger{
		responded:    make(map[string]struct{}),
		domains:      make(map[string]DomainContact),
		postClaims:   make(map[string]struct{}),
		domainClaims: make(map[string]struct{}),
	}
}

// NewMemory returns an unpersisted ledger. Used by tests and by Open as the
// degraded fallback.
func NewMemory() *Ledger { return newMemory() }

// Open loads the ledger at path. A missing or unreadable store never blocks
// the pipeline: it only forfeits history for this run.
func Open(path string) *Ledger {
	l := newMemory()

	db, err := openDB(path)
	if err != nil {
		log.Printf("[ledger] open %s: %v (starting with empty history)", path, err)
		return l
	}
	if err := migrate(db); err != nil {
		log.Printf("[ledger] migrate %s: %v (starting with empty history)", path, err)
		_ = db.Close()
		return l
	}
	l.db = db

	if err := l.load(); err != nil {
		log.Printf("[ledger] load %s: %v (starting with empty history)", path, err)
	}
	return l
}

func (l *Ledger) load() error {
	rows, err := l.db.Query(`SELECT post_id FROM responded_posts;`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		l.responded[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	drows, err := l.db.Query(`SELECT domain, last_date, email, post_id FROM domain_contacts;`)
	if err != nil {
		return err
	}
	defer drows.Close()
	for drows.Next() {
		var dom string
		var dc DomainContact
		if err := drows.Scan(&dom, &dc.Date, &dc.Email, &dc.PostID); err != nil {
			return err
		}
		l.domains[dom] = dc
	}
	return drows.Err()
}

func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Persistent returns false when the ledger is running memory-only.
func (l *Ledger) Persistent() bool { return l != nil && l.db != nil }

func (l *Ledger) HasResponded(postID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.responded[postID]
	return ok
}

// MarkResponded records the post as acted on. Idempotent. The write is
// flushed before returning; a failed write is logged and the in-memory mark
// stays effective for the rest of the run.
func (l *Ledger) MarkResponded(postID string) {
	l.mu.Lock()
	l.responded[postID] = struct{}{}
	delete(l.postClaims, postID)
	l.mu.Unlock()

	if l.db == nil {
		return
	}
	_, err := l.db.Exec(`
INSERT OR IGNORE INTO responded_posts(post_id, responded_at)
VALUES(?,?);`,
		postID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		log.Printf("[ledger] persist responded %s: %v (kept in memory only)", postID, err)
	}
}

// WasDomainContactedToday reports whether domain's last contact happened on
// the given calendar date.
func (l *Ledger) WasDomainContactedToday(dom, date string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	dc, ok := l.domains[dom]
	return ok && dc.Date == date
}

// RecordDomainContact overwrites the domain's entry with this contact.
func (l *Ledger) RecordDomainContact(dom, date, email, postID string) {
	l.mu.Lock()
	l.domains[dom] = DomainContact{Date: date, Email: email, PostID: postID}
	delete(l.domainClaims, dom)
	l.mu.Unlock()

	if l.db == nil {
		return
	}
	_, err := l.db.Exec(`
INSERT INTO domain_contacts(domain, last_date, email, post_id)
VALUES(?,?,?,?)
ON CONFLICT(domain) DO UPDATE SET
  last_date = excluded.last_date,
  email = excluded.email,
  post_id = excluded.post_id;
`, dom, date, email, postID)
	if err != nil {
		log.Printf("[ledger] persist domain contact %s: %v (kept in memory only)", dom, err)
	}
}

// ClaimPost reserves a post id for one in-flight send. Returns false if the
// post was already responded to or another worker holds the claim. Release
// with ReleasePost on failure or MarkResponded on success.
func (l *Ledger) ClaimPost(postID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.responded[postID]; ok {
		return false
	}
	if _, ok := l.postClaims[postID]; ok {
		return false
	}
	l.postClaims[postID] = struct{}{}
	return true
}

func (l *Ledger) ReleasePost(postID string) {
	l.mu.Lock()
	delete(l.postClaims, postID)
	l.mu.Unlock()
}

// ClaimDomain reserves a domain for one in-flight send on the given date.
// Returns false if the domain was already contacted that day or is claimed.
func (l *Ledger) ClaimDomain(dom, date string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if dc, ok := l.domains[dom]; ok && dc.Date == date {
		return false
	}
	if _, ok := l.domainClaims[dom]; ok {
		return false
	}
	l.domainClaims[dom] = struct{}{}
	return true
}

func (l *Ledger) ReleaseDomain(dom string) {
	l.mu.Lock()
	delete(l.domainClaims, dom)
	l.mu.Unlock()
}

// RespondedCount is used by the status endpoint.
func (l *Ledger) RespondedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.responded)
}

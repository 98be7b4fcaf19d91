package ledger

import (
	"context"
	"log"
	"time"

	"outreach-engine/internal/domain"
)

// DecisionRow is one journaled pipeline decision, accepted or not. The
// journal is observational only; dedup guarantees come from responded_posts
// and domain_contacts.
type DecisionRow struct {
	ID        int64  `json:"id"`
	PostID    string `json:"post_id"`
	Source    string `json:"source"`
	Accepted  bool   `json:"accepted"`
	Reason    string `json:"reason"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
}

// RecordDecision journals d. Best-effort: failures are logged and swallowed.
func (l *Ledger) RecordDecision(d domain.Decision, source string) {
	if l.db == nil {
		return
	}
	accepted := 0
	if d.Accept {
		accepted = 1
	}
	_, err := l.db.Exec(`
INSERT INTO decisions(post_id, source, accepted, reason, email, created_at)
VALUES(?,?,?,?,?,?);`,
		d.PostID, source, accepted, string(d.Reason), d.Contact.Primary(),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		log.Printf("[ledger] journal decision %s: %v", d.PostID, err)
	}
}

// ListDecisions returns the most recent decisions, newest first.
func (l *Ledger) ListDecisions(ctx context.Context, limit int) ([]DecisionRow, error) {
	if l.db == nil {
		return []DecisionRow{}, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := l.db.QueryContext(ctx, `
SELECT id, post_id, source, accepted, reason, email, created_at
FROM decisions
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DecisionRow
	for rows.Next() {
		var r DecisionRow
		var accepted int
		if err := rows.Scan(&r.ID, &r.PostID, &r.Source, &accepted, &r.Reason, &r.Email, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Accepted = accepted != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

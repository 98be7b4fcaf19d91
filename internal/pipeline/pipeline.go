// Package pipeline orchestrates one pass per post: extract contacts, classify
// eligibility, consult the ledger, and (on accept) hand off to the drafter and
// mailer. Rejections are ordinary data carried in the Decision, never errors.
package pipeline

import (
	"time"

	"outreach-engine/internal/classify"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/extract"
	"outreach-engine/internal/ledger"
)

const dateLayout = "2006-01-02"

type Pipeline struct {
	Ledger     *ledger.Ledger
	Classifier *classify.Classifier

	// Now is swappable so tests can move the calendar date.
	Now func() time.Time
}

func New(l *ledger.Ledger, c *classify.Classifier) *Pipeline {
	return &Pipeline{Ledger: l, Classifier: c, Now: time.Now}
}

func (p *Pipeline) Today() string {
	return p.Now().Format(dateLayout)
}

// Evaluate runs the reject checks in precedence order and returns the
// decision for one post. It mutates nothing; accepted posts are only
// committed after the mailer reports success.
func (p *Pipeline) Evaluate(post domain.RawPost) domain.Decision {
	d := domain.Decision{PostID: domain.StableID(post)}

	if p.Ledger.HasResponded(d.PostID) {
		d.Reason = domain.ReasonAlreadyResponded
		return d
	}

	d.Contact = domain.Contact{Emails: extract.Emails(post.CombinedText())}
	if d.Contact.Empty() {
		d.Reason = domain.ReasonNoContactFound
		return d
	}

	d.Classification = p.Classifier.Classify(post.CombinedText())
	switch {
	case d.Classification.CandidatePost:
		d.Reason = domain.ReasonCandidatePost
		return d
	case d.Classification.Geography == domain.GeoNonUS:
		d.Reason = domain.ReasonNonUSLocation
		return d
	case d.Classification.Geography == domain.GeoUnknown && !p.Classifier.Policy().ProcessUnknownGeography:
		d.Reason = domain.ReasonNonUSLocation
		return d
	case d.Classification.EmploymentType == domain.EmploymentExcluded:
		d.Reason = domain.ReasonEmploymentExcluded
		return d
	}

	if p.Ledger.WasDomainContactedToday(d.Contact.PrimaryDomain(), p.Today()) {
		d.Reason = domain.ReasonDomainThrottled
		return d
	}

	d.Accept = true
	return d
}

// Commit records the outreach in the ledger. Call only after the mailer
// reported success; both writes flush before returning.
func (p *Pipeline) Commit(d domain.Decision) {
	p.Ledger.MarkResponded(d.PostID)
	p.Ledger.RecordDomainContact(d.Contact.PrimaryDomain(), p.Today(), d.Contact.Primary(), d.PostID)
}

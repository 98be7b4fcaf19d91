package domain

import "strings"

type Geography string

const (
	GeoUS      Geography = "US"
	GeoNonUS   Geography = "NON_US"
	GeoUnknown Geography = "UNKNOWN"
)

type EmploymentType string

const (
	EmploymentContract EmploymentType = "CONTRACT_ELIGIBLE"
	EmploymentExcluded EmploymentType = "EXCLUDED"
)

// Classification is the two-axis eligibility result for one post.
type Classification struct {
	Geography      Geography
	EmploymentType EmploymentType

	// CandidatePost marks job-seeker announcements; those are always
	// rejected and the other two axes are not evaluated.
	CandidatePost bool

	// MatchedTerm is the phrase that decided the outcome, for logging.
	MatchedTerm string
}

// Contact holds the normalized email addresses pulled from one post,
// first-found first. The first entry is the primary contact.
type Contact struct {
	Emails []string
}

func (c Contact) Empty() bool { return len(c.Emails) == 0 }

func (c Contact) Primary() string {
	if len(c.Emails) == 0 {
		return ""
	}
	return c.Emails[0]
}

// PrimaryDomain is the part after @ of the primary address.
func (c Contact) PrimaryDomain() string {
	addr := c.Primary()
	if i := strings.LastIndex(addr, "@"); i >= 0 {
		return addr[i+1:]
	}
	return ""
}

type Reason string

const (
	ReasonNone               Reason = ""
	ReasonAlreadyResponded   Reason = "ALREADY_RESPONDED"
	ReasonNoContactFound     Reason = "NO_CONTACT_FOUND"
	ReasonCandidatePost      Reason = "CANDIDATE_POST"
	ReasonNonUSLocation      Reason = "NON_US_LOCATION"
	ReasonEmploymentExcluded Reason = "EMPLOYMENT_EXCLUDED"
	ReasonDomainThrottled    Reason = "DOMAIN_THROTTLED"
)

// Decision is the ephemeral outcome of one pipeline pass over one post.
// Rejects travel as data, never as errors.
type Decision struct {
	PostID         string
	Accept         bool
	Reason         Reason
	Contact        Contact
	Classification Classification
}

// Package classify decides whether a post describes an opportunity worth
// contacting: a hiring post (not a job seeker), US-based or at least not
// provably elsewhere, and open to contract engagement.
package classify

import (
	"regexp"
	"strings"

	"outreach-engine/internal/domain"
)

var reZIP = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)

// Policy holds the two optimistic defaults the pipeline inherits when a post
// states nothing either way. Both are business choices, kept overridable.
type Policy struct {
	// AssumeContractWhenUnstated treats a post with no employment-type
	// signal as contract-eligible instead of excluded.
	AssumeContractWhenUnstated bool

	// ProcessUnknownGeography lets posts with no location signal through
	// as eligible-but-unconfirmed instead of rejecting them.
	ProcessUnknownGeography bool
}

func DefaultPolicy() Policy {
	return Policy{
		AssumeContractWhenUnstated: true,
		ProcessUnknownGeography:    true,
	}
}

type Classifier struct {
	policy Policy

	// config-supplied additions to the built-in phrase sets
	extraNonUS     []string
	extraExclusion []string
}

func New(policy Policy, extraNonUS, extraExclusion []string) *Classifier {
	return &Classifier{
		policy:         policy,
		extraNonUS:     lowerTrim(extraNonUS),
		extraExclusion: lowerTrim(extraExclusion),
	}
}

func (c *Classifier) Policy() Policy { return c.policy }

// Classify runs the three checks in precedence order over text. Candidate
// posts short-circuit: geography and employment type are not evaluated.
func (c *Classifier) Classify(text string) domain.Classification {
	blob := strings.ToLower(text)

	if term := matchAny(blob, candidateTerms); term != "" {
		return domain.Classification{
			Geography:      domain.GeoUnknown,
			EmploymentType: domain.EmploymentExcluded,
			CandidatePost:  true,
			MatchedTerm:    term,
		}
	}

	cl := domain.Classification{
		Geography:      domain.GeoUnknown,
		EmploymentType: domain.EmploymentContract,
	}

	// Non-US terms take absolute precedence: one hit rejects the post no
	// matter how many US signals sit next to it.
	if term := matchAny(blob, nonUSTerms); term != "" {
		cl.Geography = domain.GeoNonUS
		cl.MatchedTerm = term
		return cl
	}
	if term := matchAny(blob, c.extraNonUS); term != "" {
		cl.Geography = domain.GeoNonUS
		cl.MatchedTerm = term
		return cl
	}

	if term := matchAny(blob, usTerms); term != "" {
		cl.Geography = domain.GeoUS
		cl.MatchedTerm = term
	} else if reZIP.MatchString(blob) {
		cl.Geography = domain.GeoUS
		cl.MatchedTerm = "zip code"
	}

	if term := matchAny(blob, exclusionTerms); term != "" {
		cl.EmploymentType = domain.EmploymentExcluded
		cl.MatchedTerm = term
		return cl
	}
	if term := matchAny(blob, c.extraExclusion); term != "" {
		cl.EmploymentType = domain.EmploymentExcluded
		cl.MatchedTerm = term
		return cl
	}

	if matchAny(blob, contractTerms) == "" && !c.policy.AssumeContractWhenUnstated {
		cl.EmploymentType = domain.EmploymentExcluded
	}

	return cl
}

func matchAny(blob string, terms []string) string {
	for _, t := range terms {
		if t == "" {
			continue
		}
		if containsTerm(blob, t) {
			return strings.TrimSpace(t)
		}
	}
	return ""
}

// containsTerm is a substring match that refuses hits buried inside a longer
// word, so "india" cannot fire on "indiana" or "cali" on "california".
func containsTerm(blob, t string) bool {
	for i := 0; ; {
		j := strings.Index(blob[i:], t)
		if j < 0 {
			return false
		}
		j += i
		if boundaryOK(blob, j, len(t)) {
			return true
		}
		i = j + 1
	}
}

func boundaryOK(s string, start, n int) bool {
	if start > 0 && isWordByte(s[start]) && isWordByte(s[start-1]) {
		return false
	}
	end := start + n
	if end < len(s) && isWordByte(s[end-1]) && isWordByte(s[end]) {
		return false
	}
	return true
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func lowerTrim(xs []string) []string {
	var out []string
	for _, x := range xs {
		x = strings.ToLower(strings.TrimSpace(x))
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}

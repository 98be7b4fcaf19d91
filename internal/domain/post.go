package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
)

// RawPost is one scraped social-media item as delivered by a post source.
// Immutable for the duration of a single pipeline pass.
type RawPost struct {
	ID            string // source-provided identifier, may be empty
	Author        string
	Content       string
	Supplementary string // expanded description panel etc., may duplicate Content
	Source        string // imap/pages/...
}

// CombinedText is the text the extractor and classifier operate on.
func (p RawPost) CombinedText() string {
	if p.Supplementary == "" {
		return p.Content
	}
	return p.Content + " " + p.Supplementary
}

var rePostURL = regexp.MustCompile(`https?://[^\s<>"']*/posts/[^\s<>"']+`)

// StableID derives the identifier used for duplicate suppression.
// Preference order: source-provided id, a canonical post URL embedded in the
// content, else a fingerprint of author + leading content. The fingerprint is
// not collision-proof; a collision costs one missed suppression, nothing more.
func StableID(p RawPost) string {
	if id := strings.TrimSpace(p.ID); id != "" {
		return id
	}
	if u := rePostURL.FindString(p.Content); u != "" {
		return strings.TrimRight(u, ".,);:]\"'")
	}
	head := p.Content
	if len(head) > 100 {
		head = head[:100]
	}
	return hashString(p.Author + head)
}

func hashString(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

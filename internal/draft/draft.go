// Package draft turns an accepted post into outreach prose via an external
// language model. The pipeline only sees the Drafter port; a failure here
// leaves the post unresponded and retryable.
package draft

import (
	"context"
	"strings"

	"outreach-engine/internal/domain"
)

// Identity is the sender's contact block, injected into the prompt. Consumed
// by the drafter only, never by the pipeline core.
type Identity struct {
	Name  string
	Phone string
	Email string
}

type Request struct {
	Author         string
	Content        string
	Supplementary  string
	EmploymentType domain.EmploymentType
	Identity       Identity
	Resume         string // optional resume text, may be empty
}

type Message struct {
	Subject string
	Body    string
}

type Drafter interface {
	Draft(ctx context.Context, req Request) (Message, error)
}

// ParseMessage splits model output of the form "Subject: ...\n\n<body>" into
// its parts. Output without a subject line gets fallbackSubject and the whole
// text as body.
func ParseMessage(raw, fallbackSubject string) Message {
	lines := strings.Split(strings.TrimSpace(raw), "\n")

	for i, line := range lines {
		if strings.HasPrefix(line, "Subject:") {
			return Message{
				Subject: strings.TrimSpace(strings.TrimPrefix(line, "Subject:")),
				Body:    strings.TrimSpace(strings.Join(lines[i+1:], "\n")),
			}
		}
	}
	return Message{
		Subject: fallbackSubject,
		Body:    strings.TrimSpace(raw),
	}
}

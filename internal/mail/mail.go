// Package mail is the outbound transport. Send failure must stay
// distinguishable from success: the pipeline only commits history after a
// clean send.
package mail

import "context"

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

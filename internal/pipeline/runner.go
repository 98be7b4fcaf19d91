package pipeline

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/draft"
	"outreach-engine/internal/events"
	"outreach-engine/internal/mail"
	"outreach-engine/internal/source"
)

// ErrCycleRunning is returned by RunCycle when another cycle holds the slot.
var ErrCycleRunning = errors.New("cycle already running")

type Status struct {
	Running      bool   `json:"running"`
	LastRunAt    string `json:"last_run_at"`
	LastOkAt     string `json:"last_ok_at"`
	LastError    string `json:"last_error"`
	LastSent     int    `json:"last_sent"`
	LastRejected int    `json:"last_rejected"`
	TotalSent    int    `json:"total_sent"`
}

// Runner drives full cycles: fetch posts from every source, run each post
// through the pipeline, draft and send for accepted ones, commit after a
// clean send.
type Runner struct {
	Pipe    *Pipeline
	Drafter draft.Drafter
	Mailer  mail.Mailer
	Sources []source.Source
	Hub     *events.Hub
	Limiter *DomainLimiter

	Identity draft.Identity
	Resume   string

	// AutoSend false means accepted posts are drafted and surfaced as
	// draft_ready events but never sent or committed.
	AutoSend bool

	DraftTimeout time.Duration
	SendTimeout  time.Duration
	Workers      int

	mu     sync.Mutex
	status Status
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Runner) setStatus(f func(*Status)) {
	r.mu.Lock()
	f(&r.status)
	r.mu.Unlock()
}

// begin claims the single cycle slot. Check-and-set under the lock so two
// callers can never both start.
func (r *Runner) begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.Running {
		return false
	}
	r.status.Running = true
	r.status.LastRunAt = time.Now().Format(time.RFC3339)
	return true
}

// StartCycle kicks a detached cycle if none is in flight. Used by the manual
// trigger endpoint.
func (r *Runner) StartCycle() bool {
	if !r.begin() {
		return false
	}
	go func() {
		_, _ = r.run(context.Background())
	}()
	return true
}

// RunCycle fetches from all sources in parallel, then fans posts out to a
// bounded worker pool. Source failures are logged and skipped; a cycle never
// aborts because one source is down. Returns ErrCycleRunning if a cycle is
// already in flight.
func (r *Runner) RunCycle(ctx context.Context) (int, error) {
	if !r.begin() {
		return 0, ErrCycleRunning
	}
	return r.run(ctx)
}

// run does the cycle work. The caller must have claimed the slot via begin.
func (r *Runner) run(ctx context.Context) (sent int, err error) {
	defer func() {
		r.setStatus(func(s *Status) {
			s.Running = false
			if err != nil {
				s.LastError = err.Error()
			} else {
				s.LastError = ""
				s.LastOkAt = time.Now().Format(time.RFC3339)
			}
		})
	}()

	var g errgroup.Group
	results := make(chan source.Result, len(r.Sources))

	for _, src := range r.Sources {
		src := src
		g.Go(func() error {
			log.Printf("[%s] fetching...", src.Name())
			res, ferr := src.Fetch(ctx)
			if ferr != nil {
				log.Printf("[%s] fetch error: %v", src.Name(), ferr)
				return nil
			}
			results <- res
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	rejected := 0
	var mu sync.Mutex
	completed := make(map[string]bool)

	for res := range results {
		log.Printf("[poll] source=%s posts=%d", res.Source, len(res.Posts))

		var pg errgroup.Group
		workers := r.Workers
		if workers <= 0 {
			workers = 1
		}
		pg.SetLimit(workers)

		for _, post := range res.Posts {
			post := post
			pg.Go(func() error {
				d, perr := r.ProcessPost(ctx, post)
				mu.Lock()
				if perr == nil {
					// Committed, rejected, or surfaced as a draft: the
					// source may consume the input. A collaborator
					// failure keeps it out of completed so the post
					// comes back on a later pass.
					completed[d.PostID] = true
				}
				if perr == nil && d.Accept && r.AutoSend {
					sent++
				} else if !d.Accept {
					rejected++
				}
				mu.Unlock()
				return nil
			})
		}
		_ = pg.Wait()

		if res.Finalize != nil {
			if ferr := res.Finalize(ctx, completed); ferr != nil {
				log.Printf("[%s] finalize: %v", res.Source, ferr)
			}
		}
	}

	r.setStatus(func(s *Status) {
		s.LastSent = sent
		s.LastRejected = rejected
		s.TotalSent += sent
	})
	if r.Hub != nil {
		r.Hub.Publish(events.New(events.TypeCycleDone, map[string]int{
			"sent": sent, "rejected": rejected,
		}))
	}

	return sent, ctx.Err()
}

// ProcessPost runs one post end to end. The returned error is non-nil only
// for external collaborator failures (draft/send); the post then stays
// unresponded and eligible for a later pass.
func (r *Runner) ProcessPost(ctx context.Context, post domain.RawPost) (domain.Decision, error) {
	d := r.Pipe.Evaluate(post)
	if !d.Accept {
		r.reject(post, d)
		return d, nil
	}

	// Claim post id and domain so concurrent workers can't double-send.
	// Claims are dropped on any failure below; only Commit makes them
	// permanent.
	if !r.Pipe.Ledger.ClaimPost(d.PostID) {
		d.Accept = false
		d.Reason = domain.ReasonAlreadyResponded
		r.reject(post, d)
		return d, nil
	}
	dom := d.Contact.PrimaryDomain()
	if !r.Pipe.Ledger.ClaimDomain(dom, r.Pipe.Today()) {
		r.Pipe.Ledger.ReleasePost(d.PostID)
		d.Accept = false
		d.Reason = domain.ReasonDomainThrottled
		r.reject(post, d)
		return d, nil
	}

	release := func() {
		r.Pipe.Ledger.ReleasePost(d.PostID)
		r.Pipe.Ledger.ReleaseDomain(dom)
	}

	if r.Hub != nil {
		r.Hub.Publish(events.New(events.TypePostAccepted, map[string]string{
			"post_id": d.PostID, "to": d.Contact.Primary(),
		}))
	}

	msg, err := r.draft(ctx, post, d)
	if err != nil {
		release()
		log.Printf("[pipeline] draft failed post=%s: %v (will retry on a later pass)", d.PostID, err)
		return d, err
	}

	if !r.AutoSend {
		release()
		log.Printf("[pipeline] auto-send off, draft ready post=%s to=%s subject=%q",
			d.PostID, d.Contact.Primary(), msg.Subject)
		if r.Hub != nil {
			r.Hub.Publish(events.New(events.TypeDraftReady, map[string]string{
				"post_id": d.PostID, "to": d.Contact.Primary(), "subject": msg.Subject,
			}))
		}
		return d, nil
	}

	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx, dom); err != nil {
			release()
			return d, err
		}
	}

	if err := r.send(ctx, d.Contact.Primary(), msg); err != nil {
		release()
		log.Printf("[pipeline] send failed post=%s to=%s: %v (will retry on a later pass)",
			d.PostID, d.Contact.Primary(), err)
		return d, err
	}

	r.Pipe.Commit(d)
	r.Pipe.Ledger.RecordDecision(d, post.Source)
	log.Printf("[pipeline] sent post=%s to=%s geo=%s", d.PostID, d.Contact.Primary(), d.Classification.Geography)
	if r.Hub != nil {
		r.Hub.Publish(events.New(events.TypeMailSent, map[string]string{
			"post_id": d.PostID, "to": d.Contact.Primary(),
		}))
	}
	return d, nil
}

func (r *Runner) reject(post domain.RawPost, d domain.Decision) {
	r.Pipe.Ledger.RecordDecision(d, post.Source)
	if d.Reason != domain.ReasonAlreadyResponded {
		log.Printf("[pipeline] skipped post=%s reason=%s term=%q",
			d.PostID, d.Reason, d.Classification.MatchedTerm)
	}
	if r.Hub != nil {
		r.Hub.Publish(events.New(events.TypePostRejected, map[string]string{
			"post_id": d.PostID, "reason": string(d.Reason),
		}))
	}
}

func (r *Runner) draft(ctx context.Context, post domain.RawPost, d domain.Decision) (draft.Message, error) {
	timeout := r.DraftTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return r.Drafter.Draft(dctx, draft.Request{
		Author:         post.Author,
		Content:        post.Content,
		Supplementary:  post.Supplementary,
		EmploymentType: d.Classification.EmploymentType,
		Identity:       r.Identity,
		Resume:         r.Resume,
	})
}

func (r *Runner) send(ctx context.Context, to string, msg draft.Message) error {
	timeout := r.SendTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return r.Mailer.Send(sctx, to, msg.Subject, msg.Body)
}

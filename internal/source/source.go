// Package source defines where raw posts come from. The pipeline consumes
// whatever a Source yields; how the posts were located is the source's
// problem.
package source

import (
	"context"

	"outreach-engine/internal/domain"
)

type Result struct {
	Source string
	Posts  []domain.RawPost

	// Finalize, when set, runs after the pipeline has taken a full pass
	// over Posts. completed holds the stable id (domain.StableID) of every
	// post whose pass finished: sent and committed, rejected, or surfaced
	// as a draft. A post missing from completed failed on an external
	// collaborator; the source must keep its input so the post is yielded
	// again on a later pass (e.g. leave the mailbox message unseen).
	Finalize func(ctx context.Context, completed map[string]bool) error
}

type Source interface {
	Name() string
	Fetch(ctx context.Context) (Result, error)
}

package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiterFirstSendIsImmediate(t *testing.T) {
	dl := NewDomainLimiter(2, 1)

	start := time.Now()
	require.NoError(t, dl.Wait(context.Background(), "corp.com"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	// A different domain has its own budget.
	start = time.Now()
	require.NoError(t, dl.Wait(context.Background(), "other.com"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestDomainLimiterSecondSendWaits(t *testing.T) {
	dl := NewDomainLimiter(2, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, dl.Wait(ctx, "corp.com"))

	// At 2/min the next token is ~30s away; the context gives up first.
	err := dl.Wait(ctx, "corp.com")
	assert.Error(t, err)
}

func TestDomainLimiterEmptyDomain(t *testing.T) {
	dl := NewDomainLimiter(0, 0)
	assert.NoError(t, dl.Wait(context.Background(), ""))
}

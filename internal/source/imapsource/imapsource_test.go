package imapsource

import (
	"context"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	s := New(Config{Addr: "imap.example.com:993", Username: "u", Password: "p"})
	assert.Equal(t, "INBOX", s.cfg.Mailbox)
	assert.Equal(t, 200, s.cfg.MaxMessages)
}

func TestFetchRequiresCredentials(t *testing.T) {
	_, err := New(Config{Addr: "imap.example.com:993"}).Fetch(context.Background())
	assert.Error(t, err)

	_, err = New(Config{Username: "u", Password: "p"}).Fetch(context.Background())
	assert.Error(t, err)
}

func TestWatchCancelClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	closed := make(chan struct{})
	watchCancel(ctx, done, func() { close(closed) })

	cancel()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("connection not closed after cancel")
	}
	close(done)
}

func TestWatchCancelExitsWhenFetchEnds(t *testing.T) {
	before := runtime.NumGoroutine()

	var calls atomic.Int32
	done := make(chan struct{})
	watchCancel(context.Background(), done, func() { calls.Add(1) })

	// Normal end of a fetch: the watcher must exit without touching the
	// connection, even though the context stays alive.
	close(done)
	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestContainsAnyCI(t *testing.T) {
	assert.True(t, containsAnyCI("Job Alert: Go engineer", []string{"job alert"}))
	assert.False(t, containsAnyCI("Weekly newsletter", []string{"job alert"}))
	assert.False(t, containsAnyCI("anything", nil))
	assert.False(t, containsAnyCI("anything", []string{""}))
}

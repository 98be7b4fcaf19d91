// Package imapsource yields posts that arrive as email: digest messages and
// forwarded posts landing in a dedicated mailbox. Messages are fetched with
// BODY.PEEK and only marked \Seen after their pipeline pass completed, so a
// failed send comes back on the next cycle.
package imapsource

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/source"
)

type Config struct {
	Addr     string // host:port
	Username string
	Password string
	Mailbox  string

	// SubjectAny, when non-empty, keeps only messages whose subject
	// contains one of these (case-insensitive).
	SubjectAny []string

	MaxMessages int
}

type Source struct {
	cfg Config
}

func New(cfg Config) *Source {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = 200
	}
	return &Source{cfg: cfg}
}

func (s *Source) Name() string { return "imap" }

// watchCancel closes the connection if ctx is cancelled while it is alive.
// The watcher exits as soon as done closes, so long-lived contexts (the
// process signal context) don't pin one goroutine per fetch.
func watchCancel(ctx context.Context, done <-chan struct{}, closeConn func()) {
	go func() {
		select {
		case <-ctx.Done():
			closeConn()
		case <-done:
		}
	}()
}

func (s *Source) Fetch(ctx context.Context) (source.Result, error) {
	res := source.Result{Source: s.Name()}

	if s.cfg.Addr == "" || s.cfg.Username == "" {
		return res, errors.New("imap addr/username is required")
	}
	if s.cfg.Password == "" {
		return res, errors.New("imap password is required (app password with 2FA)")
	}

	host := s.cfg.Addr
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	} else {
		s.cfg.Addr += ":993"
	}

	c, err := imapclient.DialTLS(s.cfg.Addr, &imapclient.Options{
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: host,
		},
	})
	if err != nil {
		return res, fmt.Errorf("imap dial tls: %w", err)
	}

	done := make(chan struct{})
	watchCancel(ctx, done, func() { _ = c.Close() })
	shutdown := func() {
		logoutAndClose(c)
		close(done)
	}

	if err := c.Login(s.cfg.Username, s.cfg.Password).Wait(); err != nil {
		_ = c.Close()
		close(done)
		return res, fmt.Errorf("imap login: %w", err)
	}

	if _, err := c.Select(s.cfg.Mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		shutdown()
		return res, fmt.Errorf("imap select %q: %w", s.cfg.Mailbox, err)
	}

	posts, skipped, uidByPost, err := s.fetchUnseen(ctx, c)
	if err != nil {
		shutdown()
		return res, err
	}
	if len(posts) == 0 {
		defer shutdown()
		return res, markSeen(c, skipped)
	}

	res.Posts = posts
	res.Finalize = func(_ context.Context, completed map[string]bool) error {
		defer shutdown()
		uids := skipped
		for id, uid := range uidByPost {
			if completed[id] {
				uids = append(uids, uid)
			}
		}
		return markSeen(c, uids)
	}
	return res, nil
}

// fetchUnseen returns the yielded posts, the UIDs of messages filtered out
// at the source (always safe to mark seen), and the UID behind each yielded
// post keyed by its stable id.
func (s *Source) fetchUnseen(ctx context.Context, c *imapclient.Client) ([]domain.RawPost, []imap.UID, map[string]imap.UID, error) {
	// Messages older than a month are stale opportunities, skip outright.
	cutoff := time.Now().AddDate(0, -1, 0)

	searchData, err := c.UIDSearch(&imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   cutoff,
	}, nil).Wait()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("imap uid search unseen: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil, nil, nil
	}

	// Newest first
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if len(uids) > s.cfg.MaxMessages {
		uids = uids[:s.cfg.MaxMessages]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:          true,
		Envelope:     true,
		InternalDate: true,
		BodySection:  []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	var posts []domain.RawPost
	var skipped []imap.UID
	uidByPost := make(map[string]imap.UID)

	for {
		select {
		case <-ctx.Done():
			return nil, nil, nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		var from, subject string
		if buf.Envelope != nil {
			subject = buf.Envelope.Subject
			from = joinAddrs(buf.Envelope.From)
		}

		var raw []byte
		if b := buf.FindBodySection(bodyAll); b != nil {
			raw = append([]byte(nil), b...)
		}

		msg := parseMessage(raw, from, subject)

		if len(s.cfg.SubjectAny) > 0 && !containsAnyCI(msg.Subject, s.cfg.SubjectAny) {
			skipped = append(skipped, buf.UID)
			continue
		}
		if strings.TrimSpace(msg.Text) == "" {
			skipped = append(skipped, buf.UID)
			continue
		}

		post := domain.RawPost{
			ID:            msg.MessageID,
			Author:        msg.From,
			Content:       msg.Text,
			Supplementary: msg.Subject,
			Source:        s.Name(),
		}
		posts = append(posts, post)
		uidByPost[domain.StableID(post)] = buf.UID
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, nil, nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return posts, skipped, uidByPost, nil
}

func markSeen(c *imapclient.Client, uids []imap.UID) error {
	if len(uids) == 0 {
		return nil
	}
	cmd := c.Store(imap.UIDSetNum(uids...), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("imap store add seen: %w", err)
	}
	return nil
}

func logoutAndClose(c *imapclient.Client) {
	if err := c.Logout().Wait(); err != nil {
		log.Printf("[imap] logout: %v", err)
	}
	_ = c.Close()
}

func joinAddrs(addrs []imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for i := range addrs {
		a := &addrs[i]
		addr := strings.TrimSpace(a.Addr())
		if addr == "" {
			addr = strings.TrimSpace(a.Name)
		}
		if addr != "" {
			parts = append(parts, addr)
		}
	}
	return strings.Join(parts, ", ")
}

func containsAnyCI(s string, subs []string) bool {
	low := strings.ToLower(s)
	for _, sub := range subs {
		if sub == "" {
			continue
		}
		if strings.Contains(low, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

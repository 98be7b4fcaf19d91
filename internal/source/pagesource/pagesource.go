// Package pagesource reads saved feed pages (static HTML exports dropped in
// a directory) and yields the posts found in them. No live navigation: the
// files are whatever the operator saved.
package pagesource

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/source"
)

type Config struct {
	Dir string
}

type Source struct {
	cfg Config
}

func New(cfg Config) *Source { return &Source{cfg: cfg} }

func (s *Source) Name() string { return "pages" }

// Post container candidates, most specific first. Covers the LinkedIn feed
// export shapes plus a generic article fallback.
var postSelectors = []string{
	".feed-shared-update-v2",
	"div[data-urn]",
	"div[data-id]",
	"li.reusable-search__result-container",
	"article",
}

var authorSelectors = []string{
	".update-components-actor__name",
	".feed-shared-actor__name",
	".update-components-actor__meta a",
	"[data-author]",
}

var contentSelectors = []string{
	".feed-shared-update-v2__description-wrapper",
	".update-components-text",
	".feed-shared-text",
	"p",
}

var supplementarySelectors = []string{
	".feed-shared-update-v2__description",
	".feed-shared-inline-show-more-text",
}

func (s *Source) Fetch(ctx context.Context) (source.Result, error) {
	res := source.Result{Source: s.Name()}

	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		return res, fmt.Errorf("pages read dir %s: %w", s.cfg.Dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm") {
			files = append(files, filepath.Join(s.cfg.Dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return res, nil
	}

	idsByFile := make(map[string][]string, len(files))
	for _, path := range files {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		posts, err := parseFile(path)
		if err != nil {
			log.Printf("[pages] %s: %v", path, err)
			continue
		}
		ids := make([]string, 0, len(posts))
		for i := range posts {
			posts[i].Source = s.Name()
			ids = append(ids, domain.StableID(posts[i]))
		}
		idsByFile[path] = ids
		res.Posts = append(res.Posts, posts...)
	}

	// Park a file once every post in it has completed, so the next cycle
	// doesn't re-read it. A file holding a post that failed on draft/send
	// stays put and gets re-read; the ledger dedups the rest of its posts.
	res.Finalize = func(_ context.Context, completed map[string]bool) error {
		done := filepath.Join(s.cfg.Dir, "processed")
		if err := os.MkdirAll(done, 0o755); err != nil {
			return err
		}
		for _, path := range files {
			ids, ok := idsByFile[path]
			if !ok {
				continue // unparseable, leave for the operator
			}
			if !allCompleted(ids, completed) {
				continue
			}
			if err := os.Rename(path, filepath.Join(done, filepath.Base(path))); err != nil {
				log.Printf("[pages] move %s: %v", path, err)
			}
		}
		return nil
	}

	return res, nil
}

func allCompleted(ids []string, completed map[string]bool) bool {
	for _, id := range ids {
		if !completed[id] {
			return false
		}
	}
	return true
}

func parseFile(path string) ([]domain.RawPost, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var containers *goquery.Selection
	for _, sel := range postSelectors {
		if found := doc.Find(sel); found.Length() > 0 {
			containers = found
			break
		}
	}
	if containers == nil {
		return nil, nil
	}

	var posts []domain.RawPost
	containers.Each(func(_ int, c *goquery.Selection) {
		p := domain.RawPost{
			ID:      firstAttr(c, "data-id", "data-urn"),
			Author:  firstText(c, authorSelectors),
			Content: firstText(c, contentSelectors),
		}
		if supp := firstText(c, supplementarySelectors); supp != "" && supp != p.Content {
			p.Supplementary = supp
		}
		if p.Content == "" {
			return
		}
		posts = append(posts, p)
	})
	return posts, nil
}

func firstAttr(s *goquery.Selection, names ...string) string {
	for _, n := range names {
		if v, ok := s.Attr(n); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstText(s *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if t := cleanText(s.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// Package feed fetches the strike announcement feed (RSS/Atom) and returns
// its entries as plain text.
package feed

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	logx "scioperibot/pkg/logx"
)

const (
	defaultTimeout     = 20 * time.Second
	defaultMaxBodySize = 5 << 20
	defaultUserAgent   = "scioperibot/1.0 (+RSS)"
)

// Entry is one feed item.
type Entry struct {
	Title     string
	Link      string
	GUID      string
	Published time.Time
}

// Source returns the current entries of a feed.
type Source interface {
	Fetch(ctx context.Context) ([]Entry, error)
}

// StatusError reports a non-200 feed response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch feed %s: unexpected status %d", e.URL, e.StatusCode)
}

type Config struct {
	URL         string
	Timeout     time.Duration
	UserAgent   string
	MaxBodySize int64
}

// HTTPSource fetches a feed over HTTP and parses it with gofeed.
type HTTPSource struct {
	cfg    Config
	client *http.Client
	parser *gofeed.Parser
	strip  *bluemonday.Policy
	log    logx.Logger
}

func NewHTTPSource(cfg Config, log logx.Logger) *HTTPSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &HTTPSource{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		parser: gofeed.NewParser(),
		strip:  bluemonday.StrictPolicy(),
		log:    log.With(logx.String("comp", "feed")),
	}
}

// Fetch downloads and parses the feed. Any status other than 200 is an error.
func (s *HTTPSource) Fetch(ctx context.Context) ([]Entry, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", s.cfg.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{URL: s.cfg.URL, StatusCode: resp.StatusCode}
	}

	parsed, err := s.parser.Parse(io.LimitReader(resp.Body, s.cfg.MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.cfg.URL, err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it == nil {
			continue
		}
		e := Entry{
			Title: s.plain(it.Title),
			Link:  strings.TrimSpace(it.Link),
			GUID:  strings.TrimSpace(it.GUID),
		}
		if it.PublishedParsed != nil {
			e.Published = *it.PublishedParsed
		}
		entries = append(entries, e)
	}
	s.log.Debug("feed fetched",
		logx.String("url", s.cfg.URL),
		logx.Int("entries", len(entries)),
		logx.Duration("took", time.Since(start)),
	)
	return entries, nil
}

// plain strips markup some publishers leave in titles.
func (s *HTTPSource) plain(title string) string {
	return strings.TrimSpace(html.UnescapeString(s.strip.Sanitize(title)))
}

// Titles returns the entry titles in feed order.
func Titles(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Title)
	}
	return out
}

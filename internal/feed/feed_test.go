package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	logx "scioperibot/pkg/logx"
)

const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Scioperi</title>
<link>https://example.test/</link>
<description>test</description>
<item>
<title>Data inizio: 05/05/2025 - Settore: Trasporto - Rilevanza: Alta - Regione: Lazio - Provincia: Roma</title>
<link>https://example.test/1</link>
<guid>1</guid>
<pubDate>Mon, 28 Apr 2025 10:00:00 +0200</pubDate>
</item>
<item>
<title><![CDATA[<b>Data inizio:</b> 06/05/2025 - Settore: Sanità &amp; Servizi - Regione: Lombardia]]></title>
<guid>2</guid>
</item>
</channel>
</rss>`

func TestFetchParsesEntries(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing user agent")
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rss))
	}))
	defer srv.Close()

	src := NewHTTPSource(Config{URL: srv.URL}, logx.Nop())
	entries, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "Data inizio: 05/05/2025 - Settore: Trasporto - Rilevanza: Alta - Regione: Lazio - Provincia: Roma" {
		t.Fatalf("title 0 = %q", entries[0].Title)
	}
	if entries[0].Link != "https://example.test/1" || entries[0].Published.IsZero() {
		t.Fatalf("entry 0 metadata: %+v", entries[0])
	}
	if entries[1].Title != "Data inizio: 06/05/2025 - Settore: Sanità & Servizi - Regione: Lombardia" {
		t.Fatalf("markup not stripped: %q", entries[1].Title)
	}
	titles := Titles(entries)
	if len(titles) != 2 || titles[1] != entries[1].Title {
		t.Fatalf("Titles() = %v", titles)
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(Config{URL: srv.URL}, logx.Nop()).Fetch(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", se.StatusCode)
	}
}

func TestFetchInvalidBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not a feed"))
	}))
	defer srv.Close()

	if _, err := NewHTTPSource(Config{URL: srv.URL}, logx.Nop()).Fetch(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

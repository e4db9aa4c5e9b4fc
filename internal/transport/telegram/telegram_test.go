package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"scioperibot/internal/transport"
	logx "scioperibot/pkg/logx"
)

const testToken = "123456:TEST"

// fakeBotAPI answers getMe and sendMessage like the Bot API.
type fakeBotAPI struct {
	mu   sync.Mutex
	sent []map[string]any
	fail bool
	// failAfter > 0 rejects every sendMessage once that many succeeded.
	failAfter int
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/bot" + testToken + "/getMe":
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Scioperi","username":"scioperi_bot"}}`)
	case "/bot" + testToken + "/sendMessage":
		body, _ := io.ReadAll(r.Body)
		var params map[string]any
		_ = json.Unmarshal(body, &params)
		f.mu.Lock()
		fail := f.fail || (f.failAfter > 0 && len(f.sent) >= f.failAfter)
		if !fail {
			f.sent = append(f.sent, params)
		}
		n := len(f.sent)
		f.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":`+itoa(100+n)+`,"date":1714000000,"chat":{"id":-1001,"type":"channel"},"text":"ok"}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func newTestAdapter(t *testing.T, api *fakeBotAPI) *Adapter {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	a, err := New(Config{Token: testToken, APIURL: srv.URL}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestSendText(t *testing.T) {
	api := &fakeBotAPI{}
	a := newTestAdapter(t, api)

	ref, err := a.SendText(context.Background(), transport.ChatTarget{Recipient: "-1001"}, "<b>hi</b>", &transport.SendOptions{ParseMode: "HTML"})
	if err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if ref.MessageID != 101 || ref.Recipient != "-1001" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(api.sent))
	}
	if api.sent[0]["parse_mode"] != "HTML" || api.sent[0]["text"] != "<b>hi</b>" {
		t.Fatalf("unexpected params: %+v", api.sent[0])
	}
}

func TestSendTextError(t *testing.T) {
	api := &fakeBotAPI{fail: true}
	a := newTestAdapter(t, api)
	if _, err := a.SendText(context.Background(), transport.ChatTarget{Recipient: "@missing"}, "x", nil); err == nil {
		t.Fatal("expected send error")
	}
}

func TestSendTextPartialChunksCountAsDelivered(t *testing.T) {
	api := &fakeBotAPI{failAfter: 1}
	a := newTestAdapter(t, api)

	long := strings.Repeat("riga di testo per lo sciopero\n", 300)
	if n := len(splitTelegramText(long, telegramTextLimit, "")); n < 2 {
		t.Fatalf("expected a multi-chunk message, got %d chunk(s)", n)
	}
	ref, err := a.SendText(context.Background(), transport.ChatTarget{Recipient: "-1001"}, long, nil)
	if err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if ref.MessageID != 101 {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.sent) != 1 {
		t.Fatalf("expected 1 delivered chunk, got %d", len(api.sent))
	}
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(Config{}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestSplitTelegramText(t *testing.T) {
	t.Parallel()
	if got := splitTelegramText("short", 10, ""); len(got) != 1 || got[0] != "short" {
		t.Fatalf("short text split: %q", got)
	}

	long := strings.Repeat("line of text\n", 10)
	chunks := splitTelegramText(long, 40, "")
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len([]rune(c)) > 40 {
			t.Fatalf("chunk too long: %d", len([]rune(c)))
		}
		if strings.HasSuffix(c, "\n") {
			t.Fatalf("chunk keeps trailing newline: %q", c)
		}
	}

	html := strings.Repeat("a", 15) + "<b>bold</b>"
	chunks = splitTelegramText(html, 17, "HTML")
	if chunks[0] != strings.Repeat("a", 15) {
		t.Fatalf("split inside tag: %q", chunks)
	}
}

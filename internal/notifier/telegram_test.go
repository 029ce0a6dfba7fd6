package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTelegram struct {
	mu      sync.Mutex
	sent    []string
	polls   int
	failing bool
}

func (f *fakeTelegram) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if f.failing {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("upstream down"))
				return
			}
			var payload map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			f.sent = append(f.sent, payload["text"])
			_, _ = w.Write([]byte(`{"ok":true}`))
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			f.polls++
			if f.polls == 1 {
				_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /ready alice "}}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
		default:
			http.NotFound(w, r)
		}
	})
}

func (f *fakeTelegram) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestNotifier(t *testing.T, f *fakeTelegram) *TelegramNotifier {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("token", "42", "")
	n.APIURL = srv.URL
	return n
}

func TestTelegramNotifier_Send(t *testing.T) {
	f := &fakeTelegram{}
	n := newTestNotifier(t, f)

	require.NoError(t, n.Send(context.Background(), "week 1"))

	sent := f.messages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "week 1")
}

func TestTelegramNotifier_SendReportsStatus(t *testing.T) {
	f := &fakeTelegram{failing: true}
	n := newTestNotifier(t, f)

	err := n.Send(context.Background(), "week 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestTelegramNotifier_RetryStopsOnCancel(t *testing.T) {
	f := &fakeTelegram{failing: true}
	n := newTestNotifier(t, f)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.SendWithRetry(ctx, "week 1", 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTelegramNotifier_PollingDispatchesCommands(t *testing.T) {
	f := &fakeTelegram{}
	n := newTestNotifier(t, f)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	commands := make(chan string, 1)
	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, func(cmd string) string {
			commands <- cmd
			return "alice is ready"
		})
		close(done)
	}()

	select {
	case cmd := <-commands:
		assert.Equal(t, "/ready alice", cmd)
	case <-time.After(5 * time.Second):
		t.Fatal("command not dispatched")
	}

	assert.Eventually(t, func() bool { return len(f.messages()) == 1 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	<-done
	assert.Contains(t, f.messages()[0], "alice is ready")
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, NewLogNotifier().SendWithRetry(context.Background(), "hello", 3))
}

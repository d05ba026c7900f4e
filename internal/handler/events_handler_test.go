package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWatcher struct {
	ch      chan store.Change
	stopped chan struct{}
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{ch: make(chan store.Change, 4), stopped: make(chan struct{})}
}

func (f *fakeWatcher) Watch() (<-chan store.Change, func()) {
	return f.ch, func() { close(f.stopped) }
}

// readLine returns the next non-empty line from the stream.
func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if line = strings.TrimRight(line, "\n"); line != "" {
			return line
		}
	}
}

func TestEventsHandler_Stream(t *testing.T) {
	watcher := newFakeWatcher()
	h := NewEventsHandler(watcher, zerolog.Nop())
	h.heartbeat = 20 * time.Millisecond

	srv := httptest.NewServer(http.HandlerFunc(h.Stream))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	assert.Equal(t, ": connected", readLine(t, r))

	watcher.ch <- store.Change{Scope: store.ScopeProducts}

	// Heartbeats may interleave with the event.
	var event, data string
	for event == "" {
		line := readLine(t, r)
		if strings.HasPrefix(line, "event: ") {
			event = line
			data = readLine(t, r)
		}
	}
	assert.Equal(t, "event: change", event)
	assert.Equal(t, `data: {"scope":"products"}`, data)

	cancel()
	select {
	case <-watcher.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher was not released after the client left")
	}
}

func TestEventsHandler_EndsWhenWatcherCloses(t *testing.T) {
	watcher := newFakeWatcher()
	close(watcher.ch)

	w := httptest.NewRecorder()
	NewEventsHandler(watcher, zerolog.Nop()).Stream(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ": connected\n\n", w.Body.String())
	<-watcher.stopped
}

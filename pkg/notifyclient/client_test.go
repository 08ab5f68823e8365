package notifyclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordingCursor struct {
	mu    sync.Mutex
	saved []time.Time
}

func (r *recordingCursor) Load() (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) == 0 {
		return time.Unix(100, 0), nil
	}
	return r.saved[len(r.saved)-1], nil
}

func (r *recordingCursor) Save(at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, at)
	return nil
}

func (r *recordingCursor) latest() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) == 0 {
		return time.Time{}, false
	}
	return r.saved[len(r.saved)-1], true
}

func sseHandler(t *testing.T, frames []string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, frame := range frames {
			fmt.Fprintf(w, "data: %s\n\n", frame)
			flusher.Flush()
		}
	}
}

func TestStreamDeliversNotificationsAndSavesCursor(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	frames := []string{
		`{"type":"connected","timestamp":1}`,
		`{"type":"heartbeat","timestamp":2}`,
		fmt.Sprintf(`{"type":"notification","notification":{"id":7,"user_id":1,"title":"hi","message":"m","type":"info","created_at":%q},"timestamp":3}`, createdAt.Format(time.RFC3339)),
		`{"type":"disconnected","timestamp":4}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/notifications/stream", sseHandler(t, frames))
	mux.HandleFunc("/notifications/unread", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true,"data":{"unread_count":3},"message":"unread count"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	var (
		received = make(chan Notification, 4)
		counts   = make(chan int64, 4)
	)
	cursor := &recordingCursor{}

	manager, err := New(Config{
		BaseURL:             server.URL,
		Token:               func() string { return "token" },
		Cursor:              cursor,
		ReconnectDelay:      10 * time.Millisecond,
		Logger:              zerolog.New(io.Discard),
		OnNotification: func(n Notification) {
			select {
			case received <- n:
			default:
			}
		},
		OnUnreadCountChange: func(c int64) {
			select {
			case counts <- c:
			default:
			}
		},
	})
	require.NoError(t, err)

	manager.Connect()
	defer manager.Disconnect()

	select {
	case notification := <-received:
		require.EqualValues(t, 7, notification.ID)
		require.Equal(t, "hi", notification.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}

	select {
	case count := <-counts:
		require.EqualValues(t, 3, count)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for unread count refresh")
	}

	saved, ok := cursor.latest()
	require.True(t, ok)
	require.True(t, saved.Equal(createdAt))
}

func TestStreamSendsCursorAsLastCheck(t *testing.T) {
	t.Parallel()

	lastCheck := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/notifications/stream", func(w http.ResponseWriter, r *http.Request) {
		select {
		case lastCheck <- r.URL.Query().Get("last_check"):
		default:
		}
		sseHandler(t, []string{`{"type":"connected","timestamp":1}`})(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	manager, err := New(Config{
		BaseURL:        server.URL,
		Token:          func() string { return "token" },
		Cursor:         &recordingCursor{},
		ReconnectDelay: 10 * time.Millisecond,
		Logger:         zerolog.New(io.Discard),
	})
	require.NoError(t, err)

	manager.Connect()
	defer manager.Disconnect()

	select {
	case got := <-lastCheck:
		require.Equal(t, "100", got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream request")
	}
}

func TestReconnectStopsWhenLoggedOut(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/notifications/stream", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		sseHandler(t, []string{`{"type":"disconnected","timestamp":1}`})(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	var loggedIn atomic.Bool
	loggedIn.Store(true)

	manager, err := New(Config{
		BaseURL:        server.URL,
		Token:          func() string { return "token" },
		Authenticated:  loggedIn.Load,
		ReconnectDelay: 10 * time.Millisecond,
		Logger:         zerolog.New(io.Discard),
	})
	require.NoError(t, err)

	manager.Connect()

	require.Eventually(t, func() bool { return requests.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)

	loggedIn.Store(false)
	require.Eventually(t, func() bool {
		before := requests.Load()
		time.Sleep(50 * time.Millisecond)
		return requests.Load() == before
	}, 2*time.Second, 10*time.Millisecond)
	require.False(t, manager.Status().Connected)
}

func TestConnectIsIdempotent(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	mux := http.NewServeMux()
	blocker := make(chan struct{})
	mux.HandleFunc("/notifications/stream", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		flusher := w.(http.Flusher)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "data: {\"type\":\"connected\",\"timestamp\":1}\n\n")
		flusher.Flush()
		select {
		case <-blocker:
		case <-r.Context().Done():
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	defer close(blocker)

	manager, err := New(Config{
		BaseURL:        server.URL,
		Token:          func() string { return "token" },
		ReconnectDelay: 10 * time.Millisecond,
		Logger:         zerolog.New(io.Discard),
	})
	require.NoError(t, err)

	manager.Connect()
	manager.Connect()
	manager.Connect()
	defer manager.Disconnect()

	require.Eventually(t, func() bool { return manager.Status().Connected }, 2*time.Second, 10*time.Millisecond)
	require.EqualValues(t, 1, requests.Load())
}

func TestMarkAsReadPostsAndRefreshesCount(t *testing.T) {
	t.Parallel()

	bodies := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/notifications/mark-read", func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		bodies <- string(payload)
		io.WriteString(w, `{"success":true,"message":"notification updated"}`)
	})
	mux.HandleFunc("/notifications/unread", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":{"unread_count":0},"message":"unread count"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	counts := make(chan int64, 1)
	manager, err := New(Config{
		BaseURL:             server.URL,
		Token:               func() string { return "token" },
		Logger:              zerolog.New(io.Discard),
		OnUnreadCountChange: func(c int64) { counts <- c },
	})
	require.NoError(t, err)

	require.NoError(t, manager.MarkAsRead(context.Background(), 42))
	require.Equal(t, `{"notification_id":42}`, <-bodies)
	require.EqualValues(t, 0, <-counts)
}

func TestClearAllResetsCountAndRefetches(t *testing.T) {
	t.Parallel()

	var refetched atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/notifications/clear", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		io.WriteString(w, `{"success":true,"message":"notifications cleared"}`)
	})
	mux.HandleFunc("/notifications/unread", func(w http.ResponseWriter, r *http.Request) {
		refetched.Store(true)
		io.WriteString(w, `{"success":true,"data":{"unread_count":0},"message":"unread count"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	counts := make(chan int64, 4)
	manager, err := New(Config{
		BaseURL:             server.URL,
		Token:               func() string { return "token" },
		Logger:              zerolog.New(io.Discard),
		OnUnreadCountChange: func(c int64) { counts <- c },
	})
	require.NoError(t, err)

	require.NoError(t, manager.ClearAll(context.Background()))
	// Optimistic zero first, then the authoritative refetch.
	require.EqualValues(t, 0, <-counts)
	require.True(t, refetched.Load())
	require.EqualValues(t, 0, <-counts)
	require.EqualValues(t, 0, manager.Status().UnreadCount)
}

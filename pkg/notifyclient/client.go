// Package notifyclient implements the client side of the notification
// stream: it holds an SSE connection to the API, dispatches incoming
// frames to callbacks, persists a delivery cursor and reconnects with a
// fixed delay whenever the connection drops while the user stays
// authenticated.
package notifyclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Notification is the payload carried in notification frames.
type Notification struct {
	ID        uint              `json:"id"`
	UserID    uint              `json:"user_id"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Type      string            `json:"type"`
	IsRead    bool              `json:"is_read"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type streamFrame struct {
	Type         string        `json:"type"`
	Notification *Notification `json:"notification,omitempty"`
	Message      string        `json:"message,omitempty"`
	Timestamp    int64         `json:"timestamp"`
}

// CursorStore persists the last-delivered position across reconnects and
// process restarts so a fresh stream resumes where the previous one stopped.
type CursorStore interface {
	Load() (time.Time, error)
	Save(time.Time) error
}

// memoryCursor is the fallback store when the caller does not provide one.
type memoryCursor struct {
	mu sync.Mutex
	at time.Time
}

func (m *memoryCursor) Load() (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.at, nil
}

func (m *memoryCursor) Save(at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.at = at
	return nil
}

// Config wires a Manager to its API and host application.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.funagig.example/api/v1".
	BaseURL string
	// HTTPClient is used for the stream and store calls. Defaults to a
	// client without timeout; the stream is long-lived so callers must not
	// pass a client with a global timeout.
	HTTPClient *http.Client
	// Authenticated reports whether the user is still logged in. Reconnects
	// are skipped while it returns false.
	Authenticated func() bool
	// Token returns the bearer token for API calls.
	Token func() string
	// Cursor persists the delivery position. Optional.
	Cursor CursorStore
	// ReconnectDelay is the pause before re-dialing a dropped stream.
	ReconnectDelay time.Duration
	Logger         zerolog.Logger

	// OnNotification is invoked for every notification frame.
	OnNotification func(Notification)
	// OnUnreadCountChange is invoked whenever the authoritative unread
	// count is refetched.
	OnUnreadCountChange func(int64)
	// OnConnectionChange is invoked when the stream connects or drops.
	OnConnectionChange func(connected bool)
}

// Status is a snapshot of the manager's state.
type Status struct {
	Connected   bool
	UnreadCount int64
	// Received counts notifications delivered over the current session.
	Received int
}

// Manager maintains the notification stream for one user session.
type Manager struct {
	cfg    Config
	logger zerolog.Logger

	mu          sync.Mutex
	cancel      context.CancelFunc
	connected   bool
	running     bool
	unreadCount int64
	received    int

	errLogMu   sync.Mutex
	lastErrLog time.Time
}

const errorLogThrottle = 30 * time.Second

// New constructs a Manager. It does not connect; call Connect.
func New(cfg Config) (*Manager, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("notifyclient: base url required")
	}
	if cfg.Token == nil {
		return nil, errors.New("notifyclient: token source required")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Authenticated == nil {
		cfg.Authenticated = func() bool { return true }
	}
	if cfg.Cursor == nil {
		cfg.Cursor = &memoryCursor{}
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Manager{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "notifyclient").Logger(),
	}, nil
}

// Connect starts the stream loop. Calling it while a loop is already
// running is a no-op.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.running = true
	m.mu.Unlock()

	go m.run(ctx)
}

// Disconnect tears the stream down and stops reconnecting.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.running = false
}

// Status reports the current connection state and counters.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		Connected:   m.connected,
		UnreadCount: m.unreadCount,
		Received:    m.received,
	}
}

func (m *Manager) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if !m.cfg.Authenticated() {
			// Logged out: stop for good, a new session calls Connect again.
			m.Disconnect()
			return
		}

		if err := m.stream(ctx); err != nil && ctx.Err() == nil {
			m.throttledError(err, "notification stream dropped")
		}
		m.setConnected(false)

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.cfg.ReconnectDelay):
		}
	}
}

func (m *Manager) stream(ctx context.Context) error {
	cursor, err := m.cfg.Cursor.Load()
	if err != nil {
		m.logger.Warn().Err(err).Msg("cursor load failed, starting from now")
		cursor = time.Now()
	}

	url := fmt.Sprintf("%s/notifications/stream", m.cfg.BaseURL)
	if !cursor.IsZero() {
		url = fmt.Sprintf("%s?last_check=%d", url, cursor.Unix())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+m.cfg.Token())

	resp, err := m.cfg.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream request failed with status %d", resp.StatusCode)
	}

	m.setConnected(true)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if !bytes.HasPrefix(line, []byte("data: ")) {
			continue
		}

		var frame streamFrame
		if err := json.Unmarshal(bytes.TrimPrefix(line, []byte("data: ")), &frame); err != nil {
			m.throttledError(err, "invalid stream frame")
			continue
		}

		switch frame.Type {
		case "connected", "heartbeat":
			// Liveness only.
		case "notification":
			if frame.Notification == nil {
				continue
			}
			m.deliver(*frame.Notification)
		case "disconnected":
			// Server-side lifetime reached; reconnect immediately.
			return nil
		case "error":
			m.throttledError(errors.New(frame.Message), "stream reported an error")
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

func (m *Manager) deliver(notification Notification) {
	if err := m.cfg.Cursor.Save(notification.CreatedAt); err != nil {
		m.logger.Warn().Err(err).Msg("cursor save failed")
	}

	m.mu.Lock()
	m.received++
	m.mu.Unlock()

	if m.cfg.OnNotification != nil {
		m.cfg.OnNotification(notification)
	}
	m.refreshUnreadCount(context.Background())
}

// MarkAsRead flips one notification to read and refetches the
// authoritative unread count.
func (m *Manager) MarkAsRead(ctx context.Context, notificationID uint) error {
	payload := fmt.Sprintf(`{"notification_id":%d}`, notificationID)
	if err := m.post(ctx, "/notifications/mark-read", payload); err != nil {
		return err
	}
	m.refreshUnreadCount(ctx)
	return nil
}

// ClearAll removes every notification for the user. The count is zeroed
// optimistically, then the authoritative value is refetched.
func (m *Manager) ClearAll(ctx context.Context) error {
	if err := m.post(ctx, "/notifications/clear", ""); err != nil {
		return err
	}

	m.mu.Lock()
	m.unreadCount = 0
	m.mu.Unlock()
	if m.cfg.OnUnreadCountChange != nil {
		m.cfg.OnUnreadCountChange(0)
	}
	m.refreshUnreadCount(ctx)
	return nil
}

func (m *Manager) post(ctx context.Context, path, payload string) error {
	var body io.Reader
	if payload != "" {
		body = strings.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.Token())
	if payload != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.cfg.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request to %s failed with status %d", path, resp.StatusCode)
	}
	return nil
}

func (m *Manager) refreshUnreadCount(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.cfg.BaseURL+"/notifications/unread", nil)
	if err != nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.Token())

	resp, err := m.cfg.HTTPClient.Do(req)
	if err != nil {
		m.throttledError(err, "unread count refresh failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return
	}

	var envelope struct {
		Data struct {
			UnreadCount json.Number `json:"unread_count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return
	}
	count, err := strconv.ParseInt(envelope.Data.UnreadCount.String(), 10, 64)
	if err != nil {
		return
	}

	m.mu.Lock()
	m.unreadCount = count
	m.mu.Unlock()
	if m.cfg.OnUnreadCountChange != nil {
		m.cfg.OnUnreadCountChange(count)
	}
}

func (m *Manager) setConnected(connected bool) {
	m.mu.Lock()
	changed := m.connected != connected
	m.connected = connected
	m.mu.Unlock()

	if changed && m.cfg.OnConnectionChange != nil {
		m.cfg.OnConnectionChange(connected)
	}
}

// throttledError logs at most one error per throttle window so a dead
// server does not flood the log at reconnect cadence.
func (m *Manager) throttledError(err error, msg string) {
	m.errLogMu.Lock()
	defer m.errLogMu.Unlock()
	if time.Since(m.lastErrLog) < errorLogThrottle {
		return
	}
	m.lastErrLog = time.Now()
	m.logger.Error().Err(err).Msg(msg)
}

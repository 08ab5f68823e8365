package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/funagig/funagig-api/internal/dto"
	"github.com/funagig/funagig-api/internal/observability"
	"github.com/funagig/funagig-api/internal/service"
	"github.com/funagig/funagig-api/internal/utils"
)

// StreamConfig carries the cadence of the notification stream.
type StreamConfig struct {
	PollInterval time.Duration
	Heartbeat    time.Duration
	Lifetime     time.Duration
	RetryDelay   time.Duration
}

func (cfg StreamConfig) withDefaults() StreamConfig {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = 5 * time.Second
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = 5 * time.Minute
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	return cfg
}

// NotificationHandler serves the notification store endpoints and the SSE
// stream that delivers freshly composed notifications in real time.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
	stream  StreamConfig
}

// NewNotificationHandler constructs a handler instance.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger, stream StreamConfig) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("component", "notification_handler").Logger(),
		stream:  stream.withDefaults(),
	}
}

// Register binds the notification routes. The stream is reachable under two
// paths because deployed clients were built against both.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/unread", h.unreadCount)
	router.Post("/mark-read", h.markRead)
	router.Post("/clear", h.clearAll)
	router.Get("/stream", h.streamNotifications)
	router.Get("/real-time", h.streamNotifications)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	page, err := parseQueryInt(c, "page", 1)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	limit, err := parseQueryInt(c, "limit", 20)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	notifications, total, err := h.service.List(requestContext(c), userID, page, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("notification listing failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list notifications")
	}

	return utils.SendSuccess(c, "notifications", fiber.Map{
		"notifications": notifications,
		"pagination":    utils.NewPagination(page, limit, total),
	})
}

func (h *NotificationHandler) unreadCount(c *fiber.Ctx) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	count, err := h.service.UnreadCount(requestContext(c), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("unread count failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to count notifications")
	}

	return utils.SendSuccess(c, "unread count", fiber.Map{"unread_count": count})
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.MarkReadRequest
	if err := c.BodyParser(&payload); err != nil || payload.NotificationID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "notification_id required")
	}

	notification, err := h.service.MarkRead(requestContext(c), payload.NotificationID, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		h.logger.Error().Err(err).Msg("mark read failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update notification")
	}

	return utils.SendSuccess(c, "notification updated", notification)
}

func (h *NotificationHandler) clearAll(c *fiber.Ctx) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	if err := h.service.ClearAll(requestContext(c), userID); err != nil {
		h.logger.Error().Err(err).Msg("clear notifications failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to clear notifications")
	}

	return utils.SendSuccess(c, "notifications cleared", nil)
}

// streamNotifications holds a bounded SSE connection open and emits every
// notification created for the caller after the cursor. Two delivery paths
// feed the stream: a store poll that catches anything written by any node,
// and a broker subscription that pushes locally dispatched rows without
// waiting for the next poll. A per-connection id set keeps the two paths
// from emitting the same notification twice.
func (h *NotificationHandler) streamNotifications(c *fiber.Ctx) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	cursor := time.Now()
	if raw := c.Query("last_check"); raw != "" {
		unix, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid last_check")
		}
		cursor = time.Unix(unix, 0)
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx, cancel := context.WithCancel(requestContext(c))

	pushes, cleanup := h.service.Subscribe(userID)
	cfg := h.stream
	logger := h.logger.With().Uint("user_id", userID).Logger()
	svc := h.service

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		opened := time.Now()
		defer func() {
			cleanup()
			cancel()
			observability.SSEStreamDuration().Observe(time.Since(opened).Seconds())
		}()

		if _, err := fmt.Fprintf(w, "retry: %d\n", cfg.RetryDelay.Milliseconds()); err != nil {
			return
		}
		if err := writeFrame(w, streamFrame{Type: "connected"}); err != nil {
			return
		}

		seen := make(map[uint]struct{})
		emit := func(notification dto.NotificationResponse) error {
			if _, dup := seen[notification.ID]; dup {
				return nil
			}
			seen[notification.ID] = struct{}{}
			return writeFrame(w, streamFrame{Type: "notification", Notification: &notification})
		}

		poll := time.NewTicker(cfg.PollInterval)
		defer poll.Stop()
		heartbeat := time.NewTicker(cfg.Heartbeat)
		defer heartbeat.Stop()
		lifetime := time.NewTimer(cfg.Lifetime)
		defer lifetime.Stop()

		for {
			select {
			case <-poll.C:
				fresh, err := svc.ListSince(ctx, userID, cursor)
				if err != nil {
					logger.Warn().Err(err).Msg("stream poll failed")
					_ = writeFrame(w, streamFrame{Type: "error", Message: "failed to load notifications"})
					return
				}
				// The cursor advances only from poll batches. A pushed row
				// must not move it: another node can commit a sibling row
				// with an equal created_at that the strictly-greater poll
				// query would then never return.
				for _, notification := range fresh {
					if notification.CreatedAt.After(cursor) {
						cursor = notification.CreatedAt
					}
					if err := emit(notification); err != nil {
						return
					}
				}
			case notification, open := <-pushes:
				if !open {
					return
				}
				if err := emit(notification); err != nil {
					return
				}
			case <-heartbeat.C:
				if err := writeFrame(w, streamFrame{Type: "heartbeat"}); err != nil {
					return
				}
			case <-lifetime.C:
				// Bounded connections: tell the client to reconnect rather
				// than pinning a worker forever.
				_ = writeFrame(w, streamFrame{Type: "disconnected", Message: "stream lifetime reached"})
				return
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}

type streamFrame struct {
	Type         string                    `json:"type"`
	Notification *dto.NotificationResponse `json:"notification,omitempty"`
	Message      string                    `json:"message,omitempty"`
	Timestamp    int64                     `json:"timestamp"`
}

func writeFrame(w *bufio.Writer, frame streamFrame) error {
	frame.Timestamp = time.Now().Unix()
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

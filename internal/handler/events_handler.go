package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	mid "github.com/sahilkr01/drcuberstore/internal/middleware"
	"github.com/sahilkr01/drcuberstore/internal/model"
	"github.com/sahilkr01/drcuberstore/internal/notify"
	"github.com/sahilkr01/drcuberstore/pkg/logger"
	"github.com/sahilkr01/drcuberstore/prometheus"
	"go.uber.org/zap"
)

// Exposure says how much of a storage change a stream may see
type Exposure int

const (
	// Hidden changes are not sent
	Hidden Exposure = iota
	// KeyOnly changes are sent without their value so the client refetches through an authorized route
	KeyOnly
	// WithValue changes are sent in full
	WithValue
)

// PublicExposure is what anonymous visitors may see. Keys not listed are hidden.
var PublicExposure = map[string]Exposure{
	model.ProductsKey: WithValue,
	model.OrdersKey:   KeyOnly,
}

// AdminExposure is what the logged in admin may see. The session and the credential
// are never streamed.
var AdminExposure = map[string]Exposure{
	model.ProductsKey: WithValue,
	model.OrdersKey:   WithValue,
}

// StreamEvent is one storage change as sent to a browser
type StreamEvent struct {
	Key      string  `json:"key"`
	NewValue *string `json:"newValue,omitempty"`
	Removed  bool    `json:"removed,omitempty"`
	Origin   string  `json:"origin"`
}

// EventsHandler streams storage change events to browsers as Server-Sent Events.
// Each connection subscribes like a tab of its own, so it sees every write that
// Exposure lets through. With Sessions set, the stream belongs to the admin session
// the request was authorized for and ends when that session does.
type EventsHandler struct {
	Notifier  notify.Notifier
	Exposure  map[string]Exposure
	Sessions  mid.SessionSource
	KeepAlive time.Duration
}

func (h *EventsHandler) sessionEnded(c echo.Context, sessionID string) bool {
	if h.Sessions == nil {
		return false
	}
	current, ok := h.Sessions.Current(c.Request().Context())
	return !ok || current.ID != sessionID
}

func (h *EventsHandler) view(ev notify.Event) (StreamEvent, bool) {
	switch h.Exposure[ev.Key] {
	case WithValue:
		return StreamEvent{Key: ev.Key, NewValue: ev.NewValue, Removed: ev.Removed(), Origin: ev.Origin}, true
	case KeyOnly:
		return StreamEvent{Key: ev.Key, Removed: ev.Removed(), Origin: ev.Origin}, true
	default:
		return StreamEvent{}, false
	}
}

// Stream serves the event stream until the client goes away
func (h *EventsHandler) Stream(c echo.Context) error {
	log := logger.FromEcho(c)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "streaming unsupported"})
	}

	var sessionID string
	if h.Sessions != nil {
		session, ok := c.Get("session").(model.Session)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not logged in"})
		}
		sessionID = session.ID
	}

	id := uuid.New().String()
	events, cancel := h.Notifier.Subscribe(id)
	defer cancel()

	prometheus.EventStreamSubscribersGauge.Inc()
	defer prometheus.EventStreamSubscribersGauge.Dec()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	fmt.Fprintf(res, "retry: 3000\n\n")
	flusher.Flush()

	keepAlive := h.KeepAlive
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	log.Debug("Event stream opened", zap.String("subscriber", id))
	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug("Event stream closed", zap.String("subscriber", id))
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": keepalive\n\n"); err != nil {
				return nil
			}
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if h.sessionEnded(c, sessionID) {
				log.Debug("Admin session ended, closing event stream", zap.String("subscriber", id))
				return nil
			}
			out, visible := h.view(ev)
			if !visible {
				continue
			}
			data, err := json.Marshal(out)
			if err != nil {
				log.Error("Failed to encode storage event", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(res, "event: storage\ndata: %s\n\n", data); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

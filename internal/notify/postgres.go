package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sahilkr01/drcuberstore/internal/kvstore"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minReconnectDelay = time.Second
	maxReconnectDelay = 30 * time.Second
)

// wireMessage is the NOTIFY payload. Values are not carried because payloads are
// limited to 8000 bytes; receivers read the current value from the shared store.
type wireMessage struct {
	Key      string `json:"key"`
	Origin   string `json:"origin"`
	Instance string `json:"instance"`
	Removed  bool   `json:"removed"`
}

// PostgresBridge is a Notifier that extends a local Hub to every service instance
// listening on the same PostgreSQL channel.
type PostgresBridge struct {
	hub      *Hub
	db       *gorm.DB
	store    kvstore.Store
	dsn      string
	channel  string
	instance string
	log      *zap.Logger
}

// NewPostgresBridge creates a bridge. An empty instance id is replaced by a random one.
func NewPostgresBridge(hub *Hub, db *gorm.DB, store kvstore.Store, dsn, channel, instance string, log *zap.Logger) *PostgresBridge {
	if instance == "" {
		instance = uuid.New().String()
	}
	return &PostgresBridge{
		hub:      hub,
		db:       db,
		store:    store,
		dsn:      dsn,
		channel:  channel,
		instance: instance,
		log:      log.With(zap.String("instance", instance), zap.String("channel", channel)),
	}
}

// Instance returns the id this bridge stamps on outgoing notifications
func (b *PostgresBridge) Instance() string {
	return b.instance
}

// Publish delivers ev to local tabs and notifies the other instances
func (b *PostgresBridge) Publish(ctx context.Context, ev Event) error {
	if err := b.hub.Publish(ctx, ev); err != nil {
		return err
	}

	payload, err := json.Marshal(wireMessage{
		Key:      ev.Key,
		Origin:   ev.Origin,
		Instance: b.instance,
		Removed:  ev.Removed(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	if err := b.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", b.channel, string(payload)).Error; err != nil {
		return fmt.Errorf("failed to notify %s: %w", b.channel, err)
	}
	return nil
}

// Subscribe registers a local tab
func (b *PostgresBridge) Subscribe(tabID string) (<-chan Event, func()) {
	return b.hub.Subscribe(tabID)
}

// Run listens for notifications until ctx is done, reconnecting with backoff
func (b *PostgresBridge) Run(ctx context.Context) error {
	delay := minReconnectDelay
	for {
		err := b.listen(ctx, func() { delay = minReconnectDelay })
		if ctx.Err() != nil {
			return ctx.Err()
		}

		b.log.Warn("Notification listener disconnected",
			zap.Error(err),
			zap.Duration("retry_in", delay))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, maxReconnectDelay)
	}
}

func (b *PostgresBridge) listen(ctx context.Context, connected func()) error {
	conn, err := pgx.Connect(ctx, b.dsn)
	if err != nil {
		return fmt.Errorf("failed to connect listener: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{b.channel}.Sanitize()); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", b.channel, err)
	}
	connected()
	b.log.Info("Listening for storage notifications")

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		if err := b.handlePayload(ctx, n.Payload); err != nil {
			b.log.Warn("Dropped storage notification",
				zap.String("payload", n.Payload),
				zap.Error(err))
		}
	}
}

// handlePayload republishes a notification from another instance to local tabs
func (b *PostgresBridge) handlePayload(ctx context.Context, payload string) error {
	var msg wireMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return fmt.Errorf("invalid notification payload: %w", err)
	}
	if msg.Key == "" {
		return errors.New("notification without key")
	}
	if msg.Instance == b.instance {
		return nil
	}

	ev := Deleted(msg.Key, msg.Origin)
	if !msg.Removed {
		value, ok, err := b.store.Get(ctx, msg.Key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", msg.Key, err)
		}
		if ok {
			ev = Changed(msg.Key, value, msg.Origin)
		}
	}
	return b.hub.Publish(ctx, ev)
}

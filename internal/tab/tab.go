// Package tab models one independent view of the shared store: it writes through the
// store, tells the other tabs, and dispatches the changes they make to its watchers.
package tab

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sahilkr01/drcuberstore/internal/kvstore"
	"github.com/sahilkr01/drcuberstore/internal/notify"
	"github.com/sahilkr01/drcuberstore/pkg/logger"
	"github.com/sahilkr01/drcuberstore/prometheus"
	"go.uber.org/zap"
)

// Tab is one view of the persistent store
type Tab struct {
	id       string
	store    kvstore.Store
	notifier notify.Notifier
	bus      *Bus
	log      *zap.Logger

	mu       sync.RWMutex
	watchers map[string]map[uint64]func(notify.Event)
	nextID   uint64

	cancel    func()
	done      chan struct{}
	closeOnce sync.Once
}

// New opens a tab on store and subscribes it to notifier
func New(store kvstore.Store, notifier notify.Notifier, log *zap.Logger) *Tab {
	id := uuid.New().String()
	events, cancel := notifier.Subscribe(id)

	t := &Tab{
		id:       id,
		store:    store,
		notifier: notifier,
		bus:      NewBus(),
		log:      log.With(zap.String("tab_id", id)),
		watchers: make(map[string]map[uint64]func(notify.Event)),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go t.dispatch(events)
	return t
}

// ID returns the tab id used as event origin
func (t *Tab) ID() string {
	return t.id
}

// Bus returns the same-tab event bus
func (t *Tab) Bus() *Bus {
	return t.bus
}

// Get reads key from the store
func (t *Tab) Get(ctx context.Context, key string) (string, bool, error) {
	return t.store.Get(ctx, key)
}

// Set writes value under key and tells the other tabs
func (t *Tab) Set(ctx context.Context, key, value string) error {
	if err := t.store.Set(ctx, key, value); err != nil {
		return err
	}
	t.broadcast(ctx, notify.Changed(key, value, t.id))
	return nil
}

// Remove deletes key and tells the other tabs
func (t *Tab) Remove(ctx context.Context, key string) error {
	if err := t.store.Remove(ctx, key); err != nil {
		return err
	}
	t.broadcast(ctx, notify.Deleted(key, t.id))
	return nil
}

// broadcast runs after a durable write, so a failure here is only logged
func (t *Tab) broadcast(ctx context.Context, ev notify.Event) {
	if err := t.notifier.Publish(ctx, ev); err != nil {
		logger.Scoped(ctx, t.log).Warn("Failed to notify other tabs",
			zap.String("key", ev.Key),
			zap.Error(err))
	}
}

// Watch registers fn for changes of key made by other tabs. It returns an unregister function.
func (t *Tab) Watch(key string, fn func(notify.Event)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	if t.watchers[key] == nil {
		t.watchers[key] = make(map[uint64]func(notify.Event))
	}
	t.watchers[key][id] = fn

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.watchers[key], id)
	}
}

func (t *Tab) dispatch(events <-chan notify.Event) {
	defer close(t.done)
	for ev := range events {
		t.mu.RLock()
		fns := make([]func(notify.Event), 0, len(t.watchers[ev.Key]))
		for _, fn := range t.watchers[ev.Key] {
			fns = append(fns, fn)
		}
		t.mu.RUnlock()

		for _, fn := range fns {
			fn(ev)
		}
		prometheus.RecordCrossTabEvent(ev.Key)
	}
}

// Close unsubscribes the tab and waits for the dispatch goroutine to finish.
// It must not be called from a watcher.
func (t *Tab) Close() {
	t.closeOnce.Do(func() {
		t.cancel()
		<-t.done
	})
}

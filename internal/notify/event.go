// Package notify delivers storage change events between tabs.
package notify

import "context"

// Event reports that Key was written by the tab Origin. NewValue is nil when the key was removed.
type Event struct {
	Key      string  `json:"key"`
	NewValue *string `json:"newValue"`
	Origin   string  `json:"origin"`
}

// Removed reports whether the event is a removal
func (e Event) Removed() bool {
	return e.NewValue == nil
}

// Notifier broadcasts events to every subscribed tab except the one that wrote the change
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(tabID string) (<-chan Event, func())
}

// Changed builds the event for a write of value
func Changed(key, value, origin string) Event {
	return Event{Key: key, NewValue: &value, Origin: origin}
}

// Deleted builds the event for a removal
func Deleted(key, origin string) Event {
	return Event{Key: key, Origin: origin}
}

package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubSkipsOrigin(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	a, cancelA := hub.Subscribe("tab-a")
	defer cancelA()
	b, cancelB := hub.Subscribe("tab-b")
	defer cancelB()

	require.NoError(t, hub.Publish(context.Background(), Changed("drcuber-products", "[]", "tab-a")))

	ev := receive(t, b)
	assert.Equal(t, "drcuber-products", ev.Key)
	assert.Equal(t, "tab-a", ev.Origin)
	require.NotNil(t, ev.NewValue)
	assert.Equal(t, "[]", *ev.NewValue)

	assertNoEvent(t, a)
}

func TestHubPreservesOrderPerSubscriber(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ch, cancel := hub.Subscribe("reader")
	defer cancel()

	// Publishing must not block even though nobody is reading yet
	for i := 0; i < 100; i++ {
		require.NoError(t, hub.Publish(context.Background(), Changed("k", fmt.Sprint(i), "writer")))
	}

	for i := 0; i < 100; i++ {
		ev := receive(t, ch)
		assert.Equal(t, fmt.Sprint(i), *ev.NewValue)
	}
}

func TestHubRemovalEvent(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ch, cancel := hub.Subscribe("reader")
	defer cancel()

	require.NoError(t, hub.Publish(context.Background(), Deleted("drcuber-admin-session", "writer")))
	ev := receive(t, ch)
	assert.True(t, ev.Removed())
}

func TestHubCancelClosesChannel(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("reader")
	assert.Equal(t, 1, hub.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, hub.Subscribers())

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	// Publishing after cancel is harmless
	assert.NoError(t, hub.Publish(context.Background(), Changed("k", "v", "writer")))
}

func TestHubPublishCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewHub().Publish(ctx, Changed("k", "v", "w")), context.Canceled)
}

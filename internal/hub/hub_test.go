package hub

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusharNova/hgr/internal/device"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func update(id string, state bool) device.Update {
	return device.Update{DeviceID: id, Device: device.Device{ID: id, State: state}}
}

func TestHub_DeliversToAllSubscribers(t *testing.T) {
	h := New(quietLogger(), nil)
	defer h.Close()

	a, _ := h.Subscribe(context.Background())
	b, _ := h.Subscribe(context.Background())
	require.Equal(t, 2, h.Count())

	h.Publish(update("device_1", true))

	for name, ch := range map[string]<-chan device.Update{"a": a, "b": b} {
		select {
		case u := <-ch:
			assert.Equal(t, "device_1", u.DeviceID, "subscriber %s", name)
			assert.True(t, u.Device.State, "subscriber %s", name)
		case <-time.After(time.Second):
			t.Fatalf("subscriber %s received nothing", name)
		}
	}
}

func TestHub_PerDeviceOrderMatchesPublishOrder(t *testing.T) {
	h := New(quietLogger(), nil)
	defer h.Close()

	ch, _ := h.Subscribe(context.Background())

	h.Publish(update("device_1", true))
	h.Publish(update("device_1", false))

	first := <-ch
	second := <-ch
	assert.True(t, first.Device.State)
	assert.False(t, second.Device.State)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	h := New(quietLogger(), nil)
	defer h.Close()

	ch, id := h.Subscribe(context.Background())
	h.Unsubscribe(id)

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.Count())

	// Idempotent.
	h.Unsubscribe(id)
}

func TestHub_ContextCancellationUnsubscribes(t *testing.T) {
	h := New(quietLogger(), nil)
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := h.Subscribe(ctx)
	cancel()

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after context cancellation")
	}
}

func TestHub_SlowSubscriberIsEvictedNotBlocking(t *testing.T) {
	h := New(quietLogger(), nil)
	defer h.Close()

	slow, _ := h.Subscribe(context.Background())
	healthy, _ := h.Subscribe(context.Background())

	// Fill the slow subscriber's buffer without draining it, keeping the
	// healthy subscriber drained so only the slow one is behind.
	for i := 0; i < subscriberBufferSize; i++ {
		h.Publish(update("device_1", i%2 == 0))
		select {
		case <-healthy:
		case <-time.After(time.Second):
			t.Fatal("healthy subscriber starved")
		}
	}

	// The overflow publish must return promptly and evict only the slow
	// subscriber.
	done := make(chan struct{})
	go func() {
		h.Publish(update("device_2", true))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	assert.Equal(t, 1, h.Count())

	select {
	case u := <-healthy:
		assert.Equal(t, "device_2", u.DeviceID)
	case <-time.After(time.Second):
		t.Fatal("healthy subscriber missed the overflow update")
	}

	// The slow subscriber's channel is closed once drained.
	drainedCount := 0
	for range slow {
		drainedCount++
	}
	assert.Equal(t, subscriberBufferSize, drainedCount)
}

func TestHub_PublishDuringUnsubscribeNeverPanics(t *testing.T) {
	h := New(quietLogger(), nil)
	defer h.Close()

	// Disconnects race publishes constantly in production: every session
	// teardown unsubscribes while registry mutations keep publishing. A
	// send into a channel closed by a concurrent Unsubscribe would panic,
	// so churn subscriptions hard against a publisher loop.
	done := make(chan struct{})
	var publishers, churners sync.WaitGroup

	for p := 0; p < 4; p++ {
		publishers.Add(1)
		go func() {
			defer publishers.Done()
			for i := 0; ; i++ {
				select {
				case <-done:
					return
				default:
					h.Publish(update("device_1", i%2 == 0))
				}
			}
		}()
	}

	for s := 0; s < 8; s++ {
		churners.Add(1)
		go func() {
			defer churners.Done()
			for i := 0; i < 200; i++ {
				// Never drain: full channels force the eviction path to
				// race the explicit unsubscribe as well.
				_, id := h.Subscribe(context.Background())
				h.Unsubscribe(id)
			}
		}()
	}

	finished := make(chan struct{})
	go func() {
		churners.Wait()
		close(done)
		publishers.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(10 * time.Second):
		t.Fatal("publish/unsubscribe churn deadlocked")
	}
	assert.Equal(t, 0, h.Count())
}

func TestHub_CloseShutsDownAllSubscribers(t *testing.T) {
	h := New(quietLogger(), nil)

	a, _ := h.Subscribe(context.Background())
	b, _ := h.Subscribe(context.Background())

	h.Close()

	_, openA := <-a
	_, openB := <-b
	assert.False(t, openA)
	assert.False(t, openB)

	// Subscribing after close yields a closed channel.
	c, _ := h.Subscribe(context.Background())
	_, openC := <-c
	assert.False(t, openC)
}

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerDeliversInOrder(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe(8)
	defer cancel()

	ctx := context.Background()
	for i := uint(1); i <= 3; i++ {
		require.NoError(t, b.Publish(ctx, AddonEvent{Type: AddonCommitted, AddonID: i}))
	}

	for want := uint(1); want <= 3; want++ {
		select {
		case ev := <-ch:
			assert.Equal(t, want, ev.AddonID)
		case <-time.After(time.Second):
			t.Fatalf("event %d not delivered", want)
		}
	}
}

func TestBrokerFanOutToAllSubscribers(t *testing.T) {
	b := NewBroker()
	a, cancelA := b.Subscribe(1)
	defer cancelA()
	c, cancelC := b.Subscribe(1)
	defer cancelC()
	assert.Equal(t, 2, b.SubscriberCount())

	require.NoError(t, b.Publish(context.Background(), AddonEvent{Type: AddonInvoiced, AddonID: 5}))
	assert.Equal(t, uint(5), (<-a).AddonID)
	assert.Equal(t, uint(5), (<-c).AddonID)
}

func TestBrokerCancelClosesChannel(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe(0)
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, b.SubscriberCount())
	assert.NoError(t, b.Publish(context.Background(), AddonEvent{Type: AddonDeleted}))
}

func TestBrokerEvictsSubscriberThatStopsReading(t *testing.T) {
	b := NewBroker()
	stalled, cancelStalled := b.Subscribe(1)
	defer cancelStalled()
	live, cancelLive := b.Subscribe(4)
	defer cancelLive()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := uint(1); i <= 3; i++ {
			_ = b.Publish(context.Background(), AddonEvent{Type: AddonUpdated, AddonID: i})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish waited on a subscriber that never reads")
	}

	// buffer ของ stalled รับได้ตัวแรก จากนั้นถูกตัดออกและ channel ปิด
	assert.Equal(t, uint(1), (<-stalled).AddonID)
	_, open := <-stalled
	assert.False(t, open)
	assert.Equal(t, 1, b.SubscriberCount())

	for want := uint(1); want <= 3; want++ {
		assert.Equal(t, want, (<-live).AddonID)
	}

	// cancel หลังถูก evict ต้องไม่ panic
	cancelStalled()
}

func TestBrokerUnbufferedSubscriberNeverBlocks(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe(0)
	defer cancel()

	require.NoError(t, b.Publish(context.Background(), AddonEvent{Type: AddonCommitted}))
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestBrokerPublishHonoursContext(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe(1)
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	stop()
	err := b.Publish(ctx, AddonEvent{Type: AddonUpdated})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ch)
}

type failingPublisher struct{ err error }

func (p failingPublisher) Publish(context.Context, AddonEvent) error { return p.err }

func TestFanoutJoinsErrors(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe(1)
	defer cancel()

	redisDown := errors.New("redis down")
	f := Fanout{failingPublisher{err: redisDown}, b, Nop{}}

	err := f.Publish(context.Background(), AddonEvent{Type: AddonCommitted, AddonID: 9})
	assert.ErrorIs(t, err, redisDown)
	// later sinks still got the event
	assert.Equal(t, uint(9), (<-ch).AddonID)
}

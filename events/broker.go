package events

import (
	"context"
	"log"
	"sync"
)

type subscription struct {
	ch        chan AddonEvent
	closeOnce sync.Once
}

// Broker delivers every published event to every live subscriber, in publish
// order. Publish never waits on a subscriber: one whose buffer is full is
// evicted and its channel closed, so the reader can reconnect and reload.
type Broker struct {
	pubMu  sync.Mutex
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]*subscription)}
}

// Subscribe returns the event channel and a cancel func. The channel is
// closed after cancel or when the subscriber falls behind by more than buffer events.
func (b *Broker) Subscribe(buffer int) (<-chan AddonEvent, func()) {
	if buffer < 0 {
		buffer = 0
	}
	sub := &subscription{ch: make(chan AddonEvent, buffer)}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = sub
	b.mu.Unlock()

	return sub.ch, func() { b.remove(id, sub) }
}

// remove ปิด channel หลัง delete ออกจาก map ภายใต้ write lock
// Publish ที่ถือ read lock อยู่จึงไม่ส่งเข้า channel ที่ปิดแล้ว
func (b *Broker) remove(id int, sub *subscription) {
	sub.closeOnce.Do(func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(sub.ch)
	})
}

func (b *Broker) Publish(ctx context.Context, event AddonEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	var slow map[int]*subscription
	b.mu.RLock()
	for id, sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
			if slow == nil {
				slow = make(map[int]*subscription)
			}
			slow[id] = sub
		}
	}
	b.mu.RUnlock()

	for id, sub := range slow {
		log.Printf("⚠️ event subscriber %d is not draining, dropped at %s addon %d", id, event.Type, event.AddonID)
		b.remove(id, sub)
	}
	return nil
}

func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

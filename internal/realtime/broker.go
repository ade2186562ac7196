package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Event carries one changed row on a table-scoped channel. Row holds the full
// replacement row as JSON; consumers unmarshal into their own entity type.
type Event struct {
	Table     string
	Column    string
	Value     string
	Row       json.RawMessage
	Timestamp time.Time
}

// channelKey identifies a subscription scope: one table plus an equality
// filter on one column.
func channelKey(table, column, value string) string {
	return table + "/" + column + "=" + value
}

// Broker fans table change events out to subscribers. Delivery is
// best-effort: a subscriber that stops draining its channel loses events
// rather than blocking publishers.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string]map[int64]*subscriber
	nextID      int64
	bufferSize  int
}

type subscriber struct {
	id     int64
	stream chan Event
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string]map[int64]*subscriber),
		bufferSize:  16,
	}
}

// Subscribe registers interest in rows of table whose column equals value.
// The returned release func must be called to stop delivery; cancelling ctx
// releases as well.
func (b *Broker) Subscribe(ctx context.Context, table, column, value string) (<-chan Event, func()) {
	if table == "" || column == "" {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}
	key := channelKey(table, column, value)
	sub := &subscriber{
		id:     b.nextSequence(),
		stream: make(chan Event, b.bufferSize),
	}
	b.register(key, sub)
	release := func() {
		b.unregister(key, sub.id)
	}
	go func() {
		<-ctx.Done()
		release()
	}()
	return sub.stream, release
}

// Publish delivers the event to every subscriber of its channel without
// blocking.
func (b *Broker) Publish(event Event) {
	if event.Table == "" || event.Column == "" {
		return
	}
	key := channelKey(event.Table, event.Column, event.Value)
	b.mu.RLock()
	subs := b.subscribers[key]
	if len(subs) == 0 {
		b.mu.RUnlock()
		return
	}
	copies := make([]*subscriber, 0, len(subs))
	for _, sub := range subs {
		copies = append(copies, sub)
	}
	b.mu.RUnlock()
	for _, sub := range copies {
		select {
		case sub.stream <- event:
		default:
		}
	}
}

func (b *Broker) nextSequence() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	return b.nextID
}

func (b *Broker) register(key string, sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[key]; !ok {
		b.subscribers[key] = make(map[int64]*subscriber)
	}
	b.subscribers[key][sub.id] = sub
}

func (b *Broker) unregister(key string, subscriberID int64) {
	b.mu.Lock()
	subs := b.subscribers[key]
	if subs != nil {
		delete(subs, subscriberID)
		if len(subs) == 0 {
			delete(b.subscribers, key)
		}
	}
	b.mu.Unlock()
}

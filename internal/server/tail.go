package server

import (
	"context"
	"sync"
	"time"

	"github.com/lindenhall/squire/internal/chat"
)

// TailMessage is one outbound chat line as observed on the emitter tap.
type TailMessage struct {
	Channel   string    `json:"channel"`
	Text      string    `json:"text"`
	Action    bool      `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// LineDispatcher fans outbound chat lines out to live tail subscribers.
// Slow subscribers drop lines rather than stalling the bot.
type LineDispatcher struct {
	mu          sync.RWMutex
	subscribers map[int64]*lineSubscriber
	nextID      int64
	bufferSize  int
}

type lineSubscriber struct {
	id     int64
	stream chan TailMessage
}

func NewLineDispatcher() *LineDispatcher {
	return &LineDispatcher{
		subscribers: make(map[int64]*lineSubscriber),
		bufferSize:  16,
	}
}

func (d *LineDispatcher) Subscribe(ctx context.Context) (<-chan TailMessage, func()) {
	subscriber := &lineSubscriber{
		id:     d.nextSequence(),
		stream: make(chan TailMessage, d.bufferSize),
	}
	d.registerSubscriber(subscriber)
	cleanup := func() {
		d.unregisterSubscriber(subscriber.id)
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return subscriber.stream, cleanup
}

func (d *LineDispatcher) Publish(message TailMessage) {
	d.mu.RLock()
	copies := make([]*lineSubscriber, 0, len(d.subscribers))
	for _, subscriber := range d.subscribers {
		copies = append(copies, subscriber)
	}
	d.mu.RUnlock()
	for _, subscriber := range copies {
		select {
		case subscriber.stream <- message:
		default:
		}
	}
}

func (d *LineDispatcher) nextSequence() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	return d.nextID
}

func (d *LineDispatcher) registerSubscriber(subscriber *lineSubscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers[subscriber.id] = subscriber
}

func (d *LineDispatcher) unregisterSubscriber(subscriberID int64) {
	d.mu.Lock()
	delete(d.subscribers, subscriberID)
	d.mu.Unlock()
}

// TapEmitter forwards every line to the underlying emitter and mirrors it
// into the line dispatcher.
type TapEmitter struct {
	Next       chat.Emitter
	Dispatcher *LineDispatcher
	Clock      func() time.Time
}

func (t *TapEmitter) Emit(ctx chat.Context, text string, style chat.Style) {
	t.Next.Emit(ctx, text, style)
	clock := t.Clock
	if clock == nil {
		clock = time.Now
	}
	t.Dispatcher.Publish(TailMessage{
		Channel:   ctx.Channel,
		Text:      text,
		Action:    style == chat.StyleAction,
		Timestamp: clock(),
	})
}

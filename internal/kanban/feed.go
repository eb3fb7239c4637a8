package kanban

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// EventCardMoved is both the redis channel and the event type of a
// committed move.
const EventCardMoved = "EVENT_CARD_MOVED"

// MoveEvent announces a committed stage change. To is the wire code.
type MoveEvent struct {
	Type   string   `json:"type"`
	DNIs   []string `json:"dnis"`
	From   string   `json:"from"`
	To     string   `json:"to"`
	At     string   `json:"at"`
	Origin string   `json:"origin"`
}

// Feed publishes committed moves and listens for moves made on other boards
// so they can reload. A nil *Feed is valid and does nothing.
type Feed struct {
	rdb    *redis.Client
	origin string
	log    logrus.FieldLogger
}

// NewFeed returns a feed over rdb; a nil client yields a nil feed.
func NewFeed(rdb *redis.Client, log logrus.FieldLogger) *Feed {
	if rdb == nil {
		return nil
	}
	return &Feed{rdb: rdb, origin: uuid.NewString(), log: log.WithField("component", "feed")}
}

// Publish implements Publisher. Failures are logged and otherwise ignored:
// the move is already committed.
func (f *Feed) Publish(ctx context.Context, ev MoveEvent) {
	if f == nil {
		return
	}
	ev.Origin = f.origin
	if ev.Type == "" {
		ev.Type = EventCardMoved
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		f.log.WithError(err).Warn("encode move event failed")
		return
	}
	if err := f.rdb.Publish(ctx, EventCardMoved, payload).Err(); err != nil {
		f.log.WithError(err).Warn("publish " + EventCardMoved + " failed")
	}
}

// Listen delivers moves made elsewhere to fn until ctx is done. Events this
// feed published itself are skipped.
func (f *Feed) Listen(ctx context.Context, fn func(MoveEvent)) error {
	if f == nil {
		<-ctx.Done()
		return nil
	}
	sub := f.rdb.Subscribe(ctx, EventCardMoved)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, keep := f.decode(msg.Payload)
			if keep {
				fn(ev)
			}
		}
	}
}

func (f *Feed) decode(payload string) (MoveEvent, bool) {
	var ev MoveEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		f.log.WithError(err).Warn("malformed move event")
		return MoveEvent{}, false
	}
	return ev, ev.Origin != f.origin
}

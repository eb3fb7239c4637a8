package kanban

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestFeed_NilIsNoop(t *testing.T) {
	log, _ := test.NewNullLogger()
	f := NewFeed(nil, log)
	if f != nil {
		t.Fatal("NewFeed(nil) must return nil")
	}
	f.Publish(context.Background(), MoveEvent{DNIs: []string{"1"}})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := f.Listen(ctx, func(MoveEvent) { t.Error("nil feed delivered an event") }); err != nil {
		t.Errorf("Listen: %v", err)
	}
}

func TestFeed_DecodeSkipsOwnEvents(t *testing.T) {
	log, hook := test.NewNullLogger()
	f := &Feed{origin: "me", log: log}

	own, _ := json.Marshal(MoveEvent{Type: EventCardMoved, DNIs: []string{"1"}, Origin: "me"})
	if _, keep := f.decode(string(own)); keep {
		t.Error("own events must be skipped")
	}

	other, _ := json.Marshal(MoveEvent{Type: EventCardMoved, DNIs: []string{"2"}, To: "CONTRATADO", Origin: "them"})
	ev, keep := f.decode(string(other))
	if !keep || ev.To != "CONTRATADO" || len(ev.DNIs) != 1 {
		t.Errorf("decode = %+v, %v", ev, keep)
	}

	if _, keep := f.decode("{not json"); keep {
		t.Error("malformed payload must be dropped")
	}
	if len(hook.Entries) != 1 {
		t.Errorf("expected one warning, got %d", len(hook.Entries))
	}
}

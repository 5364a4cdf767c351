package ws

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if messageType == websocket.TextMessage {
		msg := make([]byte, len(data))
		copy(msg, data)
		f.messages = append(f.messages, msg)
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeConn) messageAt(index int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.messages) {
		return nil
	}
	msg := make([]byte, len(f.messages[index]))
	copy(msg, f.messages[index])
	return msg
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestFeedPublishReachesSubscriber(t *testing.T) {
	feed := NewFeed(zap.NewNop())
	conn := &fakeConn{}
	c := newClient(conn, zap.NewNop())
	feed.add(c)
	go c.writePump(time.Hour)
	defer c.close()

	feed.Publish(SessionEvent{
		Kind:      "started",
		SessionID: 7,
		UserID:    42,
		TS:        time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	})

	waitFor(t, func() bool { return conn.messageCount() == 1 })

	var event SessionEvent
	if err := json.Unmarshal(conn.messageAt(0), &event); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Kind != "started" || event.SessionID != 7 || event.UserID != 42 {
		t.Fatalf("event = %+v", event)
	}
}

func TestFeedRemoveStopsDelivery(t *testing.T) {
	feed := NewFeed(zap.NewNop())
	conn := &fakeConn{}
	c := newClient(conn, zap.NewNop())
	feed.add(c)
	go c.writePump(time.Hour)

	if feed.SubscriberCount() != 1 {
		t.Fatalf("subscribers = %d, want 1", feed.SubscriberCount())
	}

	feed.remove(c)
	c.close()
	waitFor(t, func() bool { return conn.isClosed() })

	feed.Publish(SessionEvent{Kind: "heartbeat", SessionID: 7})
	if feed.SubscriberCount() != 0 {
		t.Fatalf("subscribers = %d, want 0", feed.SubscriberCount())
	}
}

func TestFeedSlowSubscriberDoesNotBlock(t *testing.T) {
	feed := NewFeed(zap.NewNop())
	conn := &fakeConn{}
	c := newClient(conn, zap.NewNop())
	feed.add(c)
	// write pump intentionally not started; the send buffer fills up

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			feed.Publish(SessionEvent{Kind: "heartbeat", SessionID: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
}

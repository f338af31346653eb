package ws

import (
	"testing"
	"time"
)

// fakeConn satisfies Conn without a network.
type fakeConn struct {
	written chan []byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{written: make(chan []byte, 64)}
}

func (f *fakeConn) ReadMessage() (int, []byte, error)    { select {} }
func (f *fakeConn) WriteMessage(_ int, data []byte) error { f.written <- data; return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error      { return nil }
func (f *fakeConn) Close() error                          { return nil }

func newTestClient(id, userID string) *Client {
	return NewClient(id, userID, newFakeConn())
}

func drain(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.Send:
		return data
	default:
		t.Fatalf("client %s received nothing", c.ID)
		return nil
	}
}

func TestHub_PublishReachesSubscribers(t *testing.T) {
	hub := NewHub()
	a := newTestClient("s1", "alice")
	b := newTestClient("s2", "bob")
	hub.Subscribe(a, "room:x")
	hub.Subscribe(b, "room:x")

	hub.Publish("room:x", []byte("hello"))

	if got := string(drain(t, a)); got != "hello" {
		t.Errorf("a received %q", got)
	}
	if got := string(drain(t, b)); got != "hello" {
		t.Errorf("b received %q", got)
	}
}

func TestHub_PublishExceptSkipsSender(t *testing.T) {
	hub := NewHub()
	a := newTestClient("s1", "alice")
	b := newTestClient("s2", "bob")
	hub.Subscribe(a, "room:x")
	hub.Subscribe(b, "room:x")

	hub.PublishExcept("room:x", []byte("joined"), a)

	select {
	case data := <-a.Send:
		t.Errorf("skipped client received %q", data)
	default:
	}
	if got := string(drain(t, b)); got != "joined" {
		t.Errorf("b received %q", got)
	}
}

func TestHub_PersonalChannelReachesAllDevices(t *testing.T) {
	hub := NewHub()
	phone := newTestClient("s1", "alice")
	laptop := newTestClient("s2", "alice")
	hub.Subscribe(phone, "user:alice")
	hub.Subscribe(laptop, "user:alice")

	hub.Publish("user:alice", []byte("badge"))

	for _, c := range []*Client{phone, laptop} {
		if got := string(drain(t, c)); got != "badge" {
			t.Errorf("device %s received %q", c.ID, got)
		}
	}
}

func TestHub_NonSubscriberReceivesNothing(t *testing.T) {
	hub := NewHub()
	a := newTestClient("s1", "alice")
	c := newTestClient("s3", "carol")
	hub.Subscribe(a, "room:x")
	hub.Subscribe(c, "room:y")

	hub.Publish("room:x", []byte("hello"))

	select {
	case data := <-c.Send:
		t.Errorf("carol received %q for a room she never joined", data)
	default:
	}
}

func TestHub_UnsubscribeLeavesOtherChannels(t *testing.T) {
	hub := NewHub()
	a := newTestClient("s1", "alice")
	hub.Subscribe(a, "room:x", "user:alice")

	hub.Unsubscribe(a, "room:x")

	hub.Publish("room:x", []byte("room"))
	hub.Publish("user:alice", []byte("badge"))

	if got := string(drain(t, a)); got != "badge" {
		t.Errorf("expected only the personal-channel event, first got %q", got)
	}
	if hub.Subscribers("room:x") != 0 {
		t.Errorf("room:x still has %d subscribers", hub.Subscribers("room:x"))
	}
}

func TestHub_DropRemovesEverywhereAndClosesSend(t *testing.T) {
	hub := NewHub()
	a := newTestClient("s1", "alice")
	hub.Subscribe(a, "room:x", "user:alice")

	hub.Drop(a)

	if hub.Subscribers("room:x") != 0 || hub.Subscribers("user:alice") != 0 {
		t.Error("dropped client still subscribed")
	}
	if _, ok := <-a.Send; ok {
		t.Error("send queue not closed after Drop")
	}
	// A second Drop must not panic on the closed channel.
	hub.Drop(a)
}

func TestHub_SlowClientIsDetached(t *testing.T) {
	hub := NewHub()
	slow := newTestClient("s1", "alice")
	hub.Subscribe(slow, "room:x")

	for i := 0; i < sendBuffer+10; i++ {
		hub.Publish("room:x", []byte("spam"))
	}

	if hub.Subscribers("room:x") != 0 {
		t.Error("slow client was not detached")
	}
}

func TestHub_EnqueueAfterDetachDoesNotPanic(t *testing.T) {
	hub := NewHub()
	slow := newTestClient("s1", "alice")
	hub.Subscribe(slow, "room:x")

	for i := 0; i < sendBuffer+10; i++ {
		hub.Publish("room:x", []byte("spam"))
	}
	if hub.Subscribers("room:x") != 0 {
		t.Fatal("slow client was not detached")
	}

	// The read loop does not learn about the detach synchronously; its next
	// direct reply must be dropped, not crash on the closed queue.
	if slow.Enqueue([]byte("reply")) {
		t.Error("Enqueue reported success on a detached client")
	}
	if slow.Enqueue([]byte("reply")) {
		t.Error("repeated Enqueue reported success on a detached client")
	}
}

package ws

import (
	"testing"
	"time"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	sess := &Session{SocketID: "s1", UserID: "alice", PeerID: "bob", Room: "r1", JoinedAt: time.Now()}

	if prev := reg.Register(sess); prev != nil {
		t.Errorf("fresh register returned prior session %+v", prev)
	}

	got, ok := reg.Lookup("s1")
	if !ok {
		t.Fatal("Lookup missed a registered session")
	}
	if got.UserID != "alice" || got.PeerID != "bob" {
		t.Errorf("Lookup returned %+v", got)
	}
}

func TestRegistry_RegisterOverwritesSameSocket(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Session{SocketID: "s1", UserID: "alice", PeerID: "bob", Room: "r1"})

	prev := reg.Register(&Session{SocketID: "s1", UserID: "alice", PeerID: "carol", Room: "r2"})
	if prev == nil || prev.PeerID != "bob" {
		t.Fatalf("overwrite returned %+v, want the bob session", prev)
	}

	got, _ := reg.Lookup("s1")
	if got.PeerID != "carol" || got.Room != "r2" {
		t.Errorf("session after overwrite = %+v", got)
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Session{SocketID: "s1", UserID: "alice", PeerID: "bob", Room: "r1"})

	sess, ok := reg.Remove("s1")
	if !ok || sess.UserID != "alice" {
		t.Fatalf("Remove returned (%+v, %v)", sess, ok)
	}

	if _, ok := reg.Remove("s1"); ok {
		t.Error("second Remove reported a session")
	}
	if _, ok := reg.Remove("never-registered"); ok {
		t.Error("Remove of unknown socket reported a session")
	}
	if reg.Len() != 0 {
		t.Errorf("Len = %d, want 0", reg.Len())
	}
}

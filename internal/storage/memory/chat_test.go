package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kushvardhan/CodeMate-Backend/internal/storage"
)

func TestChatStore_FirstMessageCreatesSingleConversation(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	msg, err := store.AppendMessage(ctx, "alice", "bob", "hi")
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if !msg.Seen.Seen("alice") {
		t.Error("sender's own message should be seen by the sender")
	}
	if msg.Seen.Seen("bob") {
		t.Error("receiver should not have seen a fresh message")
	}

	conv, err := store.ConversationBetween(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("ConversationBetween failed: %v", err)
	}
	if len(conv.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(conv.Messages))
	}

	convs, err := store.ConversationsFor(ctx, "alice")
	if err != nil {
		t.Fatalf("ConversationsFor failed: %v", err)
	}
	if len(convs) != 1 {
		t.Errorf("expected exactly 1 conversation for alice, got %d", len(convs))
	}
}

func TestChatStore_ConcurrentFirstContact(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := store.AppendMessage(ctx, "alice", "bob", "from alice"); err != nil {
				t.Errorf("AppendMessage alice->bob: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := store.AppendMessage(ctx, "bob", "alice", "from bob"); err != nil {
				t.Errorf("AppendMessage bob->alice: %v", err)
			}
		}()
	}
	wg.Wait()

	convs, err := store.ConversationsFor(ctx, "alice")
	if err != nil {
		t.Fatalf("ConversationsFor failed: %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("expected exactly 1 conversation after concurrent first contact, got %d", len(convs))
	}
	if got := len(convs[0].Messages); got != 100 {
		t.Errorf("expected 100 messages, got %d", got)
	}
}

func TestChatStore_AppendOrderPreserved(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	texts := []string{"hello", "are you there?", "ok"}
	for _, text := range texts {
		if _, err := store.AppendMessage(ctx, "x", "y", text); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	conv, err := store.ConversationBetween(ctx, "y", "x")
	if err != nil {
		t.Fatalf("ConversationBetween failed: %v", err)
	}
	for i, text := range texts {
		if conv.Messages[i].Text != text {
			t.Errorf("message %d = %q, want %q", i, conv.Messages[i].Text, text)
		}
	}
}

func TestChatStore_MarkSeen(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	store.AppendMessage(ctx, "alice", "bob", "one")
	store.AppendMessage(ctx, "alice", "bob", "two")
	store.AppendMessage(ctx, "bob", "alice", "reply")

	changed, err := store.MarkSeen(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	if changed != 2 {
		t.Errorf("MarkSeen changed %d flags, want 2", changed)
	}

	conv, _ := store.ConversationBetween(ctx, "alice", "bob")
	for i := range conv.Messages {
		m := conv.Messages[i]
		if m.SenderID == "alice" && !m.Seen.Seen("bob") {
			t.Errorf("message %q not marked seen by bob", m.Text)
		}
		if m.SenderID == "bob" && m.Seen.Seen("alice") {
			t.Errorf("bob's own message %q should stay unseen by alice", m.Text)
		}
	}
	if conv.UnseenCountFor("bob") != 0 {
		t.Errorf("bob's unseen count = %d after MarkSeen, want 0", conv.UnseenCountFor("bob"))
	}

	// Idempotent: a second call flips nothing.
	changed, err = store.MarkSeen(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("second MarkSeen failed: %v", err)
	}
	if changed != 0 {
		t.Errorf("second MarkSeen changed %d flags, want 0", changed)
	}
}

func TestChatStore_MarkSeenWithoutConversation(t *testing.T) {
	store := NewChatStore()
	_, err := store.MarkSeen(context.Background(), "alice", "stranger")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("MarkSeen on missing conversation = %v, want ErrNotFound", err)
	}
}

func TestChatStore_FindOrCreateIsStable(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	first, err := store.FindOrCreateConversation(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("FindOrCreateConversation failed: %v", err)
	}
	second, err := store.FindOrCreateConversation(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("FindOrCreateConversation failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("find-or-create returned different conversations: %s vs %s", first.ID, second.ID)
	}
}

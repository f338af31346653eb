// Package notify relays hub events through Valkey pub/sub so that room and
// personal-channel notifications reach a user's sockets even when they are
// connected to a different server instance. With a single instance the
// bridge is optional; the hub alone is a complete local bus.
package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/valkey-io/valkey-go"
)

// pubsubChannel is the single Valkey channel every instance subscribes to.
const pubsubChannel = "codemate:events"

// LocalBus is the in-process side of the bridge (*ws.Hub).
type LocalBus interface {
	Publish(channel string, data []byte)
}

// frame is the wire format relayed through Valkey: which hub channel the
// event targets, and the already-encoded event envelope.
type frame struct {
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload"`
}

// Bridge satisfies chat.Publisher. Publishes go out through Valkey; every
// instance (this one included) receives them in Run and delivers to its
// local hub, so local delivery happens exactly once, via the loopback.
type Bridge struct {
	client valkey.Client
	local  LocalBus
}

// NewBridge connects to Valkey at addr and wraps the local bus.
func NewBridge(addr string, local LocalBus) (*Bridge, error) {
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, err
	}
	return &Bridge{client: client, local: local}, nil
}

// Publish relays the event through Valkey. If Valkey is unreachable the
// event falls back to local-only delivery so a cache outage degrades to
// single-instance behavior instead of silence.
func (b *Bridge) Publish(channel string, data []byte) {
	msg, err := json.Marshal(frame{Channel: channel, Payload: data})
	if err != nil {
		log.Printf("[Notify] Error encoding frame for %s: %v", channel, err)
		b.local.Publish(channel, data)
		return
	}

	cmd := b.client.B().Publish().Channel(pubsubChannel).Message(string(msg)).Build()
	if err := b.client.Do(context.Background(), cmd).Error(); err != nil {
		log.Printf("[Notify] Publish to Valkey failed, delivering locally: %v", err)
		b.local.Publish(channel, data)
	}
}

// Run subscribes to the shared channel and delivers every received frame to
// the local hub. It blocks until ctx is canceled or the connection fails.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.client.B().Subscribe().Channel(pubsubChannel).Build()
	return b.client.Receive(ctx, sub, func(msg valkey.PubSubMessage) {
		var f frame
		if err := json.Unmarshal([]byte(msg.Message), &f); err != nil {
			log.Printf("[Notify] Dropping malformed frame: %v", err)
			return
		}
		b.local.Publish(f.Channel, f.Payload)
	})
}

// Close releases the Valkey connection.
func (b *Bridge) Close() {
	b.client.Close()
}

// README: Publish contract for real-time notifications.
package events

import "context"

// Publisher delivers events to topic subscribers. Delivery is best-effort:
// implementations log and swallow transport failures, and callers never block
// order processing on the outcome. Any pub/sub transport (WebSocket bridge,
// message broker, SSE) can sit behind this contract.
type Publisher interface {
	Publish(ctx context.Context, topic string, e Event)
}

// Nop discards every event. Useful in tests and tooling.
type Nop struct{}

func (Nop) Publish(context.Context, string, Event) {}

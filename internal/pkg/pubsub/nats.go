package pubsub

import (
	"time"

	"github.com/nats-io/nats.go"
)

// Handler receives the raw payload of a published message. The slice is a
// private copy; handlers may retain it.
type Handler func(data []byte)

// Subscription is an active channel binding that can be torn down
type Subscription interface {
	Unsubscribe() error
}

// Transport is the pub/sub abstraction the real-time subscriber binds
// against. Connection-level retries and delivery guarantees belong to the
// transport, not to its consumers.
type Transport interface {
	Subscribe(subject string, h Handler) (Subscription, error)
	Close()
}

// NATSTransport implements Transport on a core NATS connection
type NATSTransport struct {
	nc *nats.Conn
}

// Connect establishes a NATS connection with unlimited reconnects
func Connect(url string) (*NATSTransport, error) {
	nc, err := nats.Connect(url,
		nats.Name("connect-gateway"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &NATSTransport{nc: nc}, nil
}

// Subscribe binds a handler to a subject. Payloads are copied before the
// handler runs so the NATS buffer can be reused.
func (t *NATSTransport) Subscribe(subject string, h Handler) (Subscription, error) {
	sub, err := t.nc.Subscribe(subject, func(m *nats.Msg) {
		h(append([]byte(nil), m.Data...))
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Close drains the connection, letting in-flight handlers finish
func (t *NATSTransport) Close() {
	_ = t.nc.Drain()
}

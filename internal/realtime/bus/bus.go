package bus

import (
	"context"

	"github.com/yungbote/mastery-engine/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}

type noopBus struct{}

// NewNoop returns a bus that drops every message. Used when REDIS_ADDR
// is unset and in tests.
func NewNoop() Bus { return noopBus{} }

func (noopBus) Publish(ctx context.Context, msg realtime.Message) error { return nil }

func (noopBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	return nil
}

func (noopBus) Close() error { return nil }

package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/vr-bridge/internal/infrastructure/config"
	"github.com/nerrad567/vr-bridge/internal/infrastructure/mqtt"
)

// Transport is the broker surface the publisher drives. Satisfied by
// the MQTT client.
type Transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishJSON(topic string, v any) error
}

var _ Transport = (*mqtt.Client)(nil)

// Publisher maps state values and discovery configs onto broker
// topics, retrying transient failures with bounded exponential
// backoff.
//
// Each value maps deterministically to one topic and one payload;
// the publisher holds no per-entity state, so the caller decides what
// is worth sending.
type Publisher struct {
	transport Transport
	topics    mqtt.Topics
	qos       byte
	retain    bool

	attempts int
	initial  time.Duration
	max      time.Duration

	// sleep waits out one backoff period. Injectable so tests can
	// drive the retry curve without real delays.
	sleep func(ctx context.Context, d time.Duration) error

	logger Logger
}

// NewPublisher creates a publisher over a connected transport.
//
// Parameters:
//   - transport: broker client
//   - topics: topic builders carrying the configured prefix and node
//   - retain: whether state publishes are retained
//   - qos: QoS level for state publishes
//   - retry: attempt ceiling and backoff curve
//   - logger: may be nil
func NewPublisher(transport Transport, topics mqtt.Topics, retain bool, qos byte, retry config.RetryConfig, logger Logger) *Publisher {
	if logger == nil {
		logger = noopLogger{}
	}
	attempts := retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Publisher{
		transport: transport,
		topics:    topics,
		qos:       qos,
		retain:    retain,
		attempts:  attempts,
		initial:   retry.GetInitialBackoff(),
		max:       retry.GetMaxBackoff(),
		sleep:     sleepContext,
		logger:    logger,
	}
}

// PublishState sends one attribute value to its state topic. An empty
// value clears the topic, which removes any retained reading.
func (p *Publisher) PublishState(ctx context.Context, entityID, attribute, value string) error {
	topic := p.topics.EntityState(entityID, attribute)
	return p.withRetry(ctx, topic, func() error {
		return p.transport.Publish(topic, []byte(value), p.qos, p.retain)
	})
}

// PublishDiscovery sends one retained discovery config.
func (p *Publisher) PublishDiscovery(ctx context.Context, msg discoveryMessage) error {
	return p.withRetry(ctx, msg.Topic, func() error {
		return p.transport.PublishJSON(msg.Topic, msg.Payload)
	})
}

// withRetry runs op up to the attempt ceiling, doubling the backoff
// after each failure up to the configured maximum. Exhaustion and
// interruption both surface as ErrPublishExhausted so the caller can
// log and move on without updating its bookkeeping.
func (p *Publisher) withRetry(ctx context.Context, topic string, op func() error) error {
	delay := p.initial
	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if attempt >= p.attempts {
			return fmt.Errorf("%w: %s after %d attempts: %w", ErrPublishExhausted, topic, attempt, err)
		}

		p.logger.Warn("publish failed, will retry",
			"topic", topic,
			"attempt", attempt,
			"backoff", delay,
			"error", err)

		if err := p.sleep(ctx, delay); err != nil {
			return fmt.Errorf("%w: %s interrupted during backoff: %w", ErrPublishExhausted, topic, err)
		}
		delay *= 2
		if delay > p.max {
			delay = p.max
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

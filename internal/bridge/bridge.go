package bridge

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/nerrad567/vr-bridge/internal/infrastructure/config"
	"github.com/nerrad567/vr-bridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/vr-bridge/internal/vr"
)

// Logger defines the logging interface used by the bridge controller
// and publisher. This allows different logging implementations to be
// used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// State is the controller's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Source is the capture surface the controller polls. Satisfied by the
// vr capture source.
type Source interface {
	Capture(ctx context.Context) (vr.StateSnapshot, error)
	DrainEvents() bool
}

var _ Source = (*vr.Source)(nil)

// Conn is the broker connection surface the controller manages.
// Satisfied by the MQTT client.
type Conn interface {
	Transport
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	SetOnConnect(callback func())
	SetOnDisconnect(callback func(err error))
	IsConnected() bool
	Close() error
}

var _ Conn = (*mqtt.Client)(nil)

// Connector dials the broker. Called from the Connecting state;
// production wires mqtt.Connect, tests substitute their own.
type Connector func() (Conn, error)

// Bridge is the poll loop controller: it owns the connection
// lifecycle, the retained snapshot baseline and the entity registry,
// and drives capture, diff and publish once per tick.
//
// Lifecycle: Idle → Connecting → Running → Draining → Stopped, with
// Running → Connecting on transport drops. A single goroutine inside
// Run drives everything; ticks never overlap.
type Bridge struct {
	topics    mqtt.Topics
	connect   Connector
	source    Source
	differ    *vr.Differ
	registry  *Registry
	discovery *Discovery
	logger    Logger

	pollInterval     time.Duration
	retain           bool
	qos              byte
	retry            config.RetryConfig
	reconnectInitial time.Duration
	reconnectMax     time.Duration

	conn      Conn
	publisher *Publisher
	baseline  *vr.StateSnapshot

	connCh       chan struct{}
	dropCh       chan error
	reannounceCh chan struct{}

	// sleep waits out one connect backoff period. Injectable so tests
	// can drive reconnection without real delays.
	sleep func(ctx context.Context, d time.Duration) error

	health healthState
}

// New wires a bridge controller.
//
// Parameters:
//   - cfg: full configuration; poll, retry, reconnect and QoS settings
//     are read from it
//   - topics: topic builders shared with the transport and discovery
//   - connect: broker dialer
//   - source: snapshot capture layer
//   - discovery: discovery renderer
//   - logger: may be nil
func New(cfg *config.Config, topics mqtt.Topics, connect Connector, source Source, discovery *Discovery, logger Logger) *Bridge {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Bridge{
		topics:           topics,
		connect:          connect,
		source:           source,
		differ:           vr.NewDiffer(cfg.Bridge.BatteryTolerance),
		registry:         NewRegistry(),
		discovery:        discovery,
		logger:           logger,
		pollInterval:     cfg.Bridge.GetPollInterval(),
		retain:           cfg.Bridge.RetainState,
		qos:              byte(cfg.MQTT.QoS),
		retry:            cfg.Bridge.PublishRetry,
		reconnectInitial: cfg.MQTT.GetReconnectInitialDelay(),
		reconnectMax:     cfg.MQTT.GetReconnectMaxDelay(),
		connCh:           make(chan struct{}, 1),
		dropCh:           make(chan error, 1),
		reannounceCh:     make(chan struct{}, 1),
		sleep:            sleepContext,
	}
}

// Health returns the controller's current vital signs.
func (b *Bridge) Health() Health {
	return b.health.snapshot()
}

// Run drives the bridge until the context is cancelled or the runtime
// asks the process to exit.
//
// Returns nil on a clean context shutdown, ErrRuntimeQuit when the VR
// runtime requested the exit.
func (b *Bridge) Run(ctx context.Context) error {
	b.setState(StateConnecting)
	if err := b.establish(ctx); err != nil {
		return b.drain(nil)
	}
	b.attach()
	return b.loop(ctx)
}

// establish dials the broker until it accepts, backing off between
// attempts. Unlimited: a long-running service outwaits a dead broker
// rather than give up. Fails only when the context ends first.
func (b *Bridge) establish(ctx context.Context) error {
	delay := b.reconnectInitial
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := b.connect()
		if err == nil {
			b.conn = conn
			b.publisher = NewPublisher(conn, b.topics, b.retain, b.qos, b.retry, b.logger)
			b.logger.Info("broker connected", "attempt", attempt)
			return nil
		}

		b.logger.Warn("broker connection failed",
			"attempt", attempt,
			"backoff", delay,
			"error", err)

		if err := b.sleep(ctx, delay); err != nil {
			return err
		}
		delay *= 2
		if delay > b.reconnectMax {
			delay = b.reconnectMax
		}
	}
}

// attach hooks the connection's lifecycle notifications into the
// controller's channels and registers the discovery-era bookkeeping.
func (b *Bridge) attach() {
	b.conn.SetOnConnect(func() {
		select {
		case b.connCh <- struct{}{}:
		default:
		}
	})
	b.conn.SetOnDisconnect(func(err error) {
		select {
		case b.dropCh <- err:
		default:
		}
	})

	if !b.discovery.Enabled() {
		return
	}

	// The consumer's birth payload signals a lost discovery cache.
	err := b.conn.Subscribe(b.topics.DiscoveryStatus(), b.qos, func(_ string, payload []byte) error {
		if string(payload) == "online" {
			select {
			case b.reannounceCh <- struct{}{}:
			default:
			}
		}
		return nil
	})
	if err != nil {
		b.logger.Warn("discovery status subscription failed", "error", err)
	}

	// The availability channel is an entity too; snapshots never carry
	// it, so seed its announcement here.
	b.registry.Resolve("power").Descriptor = powerDescriptor()
}

func (b *Bridge) loop(ctx context.Context) error {
	b.setState(StateRunning)

	// First tick immediately: state should appear on the broker as
	// soon as the session is up, not one poll interval later.
	if quit := b.tick(ctx); quit {
		return b.drain(ErrRuntimeQuit)
	}

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return b.drain(nil)

		case err := <-b.dropCh:
			b.health.reconnect()
			b.logger.Warn("broker connection lost", "error", err)
			b.setState(StateConnecting)
			if err := b.awaitReconnect(ctx); err != nil {
				return b.drain(nil)
			}
			b.setState(StateRunning)

		case <-b.reannounceCh:
			b.reannounceAll()

		case <-ticker.C:
			if quit := b.tick(ctx); quit {
				return b.drain(ErrRuntimeQuit)
			}
		}
	}
}

// awaitReconnect parks the controller until the transport reports the
// session restored. The paho layer redials in the background; entity
// bookkeeping is preserved so the reconnect does not replay discovery.
// Connection state is verified on every wakeup rather than trusted
// from the notification alone, since a restore signal can already be
// stale by the time it is read.
func (b *Bridge) awaitReconnect(ctx context.Context) error {
	probe := time.NewTicker(b.reconnectInitial)
	defer probe.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.connCh:
		case <-b.dropCh:
		case <-b.reannounceCh:
			b.reannounceAll()
		case <-probe.C:
		}

		if b.conn.IsConnected() {
			b.logger.Info("broker connection restored")
			return nil
		}
	}
}

func (b *Bridge) reannounceAll() {
	b.health.reannounce()
	b.logger.Info("consumer restarted, re-announcing all entities")
	b.registry.ForceReannounce()

	// Dropping the baseline replays every entity as an appearance on
	// the next tick, which re-sends discovery and current values.
	b.baseline = nil
}

// drain is the terminal transition: best-effort offline publish via
// the connection's bounded close, then Stopped.
func (b *Bridge) drain(cause error) error {
	b.setState(StateDraining)
	if b.conn != nil {
		if err := b.conn.Close(); err != nil {
			b.logger.Warn("broker disconnect failed", "error", err)
		}
	}
	b.setState(StateStopped)
	return cause
}

// tick runs one poll cycle. Returns true when the runtime asked the
// process to exit.
func (b *Bridge) tick(ctx context.Context) bool {
	if b.source.DrainEvents() {
		b.logger.Info("runtime requested exit")
		return true
	}

	snap, err := b.source.Capture(ctx)
	if err != nil {
		switch {
		case errors.Is(err, vr.ErrRuntimeUnavailable):
			b.health.captureSkipped()
			b.logger.Warn("capture skipped, keeping previous baseline", "error", err)
		case ctx.Err() != nil:
			// Shutdown surfaces at the next select.
		default:
			b.health.captureSkipped()
			b.logger.Error("capture failed", "error", err)
		}
		return false
	}

	changes := b.differ.Diff(b.baseline, snap)
	next := b.differ.Rebaseline(b.baseline, snap)

	for _, change := range changes {
		b.applyChange(ctx, change)
	}
	b.announcePending(ctx)
	b.reconcile(ctx, next)

	b.baseline = &next
	b.health.tick()

	if len(changes) > 0 {
		b.logger.Debug("tick applied", "changes", len(changes))
	}
	return false
}

// applyChange handles the lifecycle side of one change. Attribute
// values flow to the broker in reconcile; disappearances clear their
// topics here so removals precede the tick's appearances.
func (b *Bridge) applyChange(ctx context.Context, change vr.Change) {
	switch change.Kind {
	case vr.ChangeDisappeared:
		entry := b.registry.Resolve(change.EntityID)
		b.retire(ctx, entry)
		b.registry.Forget(change.EntityID)
		b.logger.Info("entity disappeared", "entity", change.EntityID)

	case vr.ChangeAppeared:
		entry := b.registry.Resolve(change.EntityID)
		entry.Descriptor = change.Descriptor
		b.logger.Info("entity appeared", "entity", change.EntityID)

	case vr.ChangeAttribute:
		b.logger.Debug("attribute changed",
			"entity", change.EntityID,
			"attribute", change.Attribute,
			"old", change.Old,
			"new", change.New)
	}
}

// retire clears a vanished entity's topics: the primary connectivity
// flag flips to OFF, every other reading empties so nothing stale
// survives as retained state.
func (b *Bridge) retire(ctx context.Context, entry *RegistryEntry) {
	if entry.Descriptor == nil {
		return
	}
	for _, schema := range entry.Descriptor.Attributes {
		value := ""
		if schema.Attribute == vr.AttrState && schema.Kind == vr.KindBinarySensor {
			value = mqtt.PayloadOff
		}
		if err := b.publisher.PublishState(ctx, entry.EntityID, schema.Attribute, value); err != nil {
			b.health.publishFailure()
			b.logger.Error("retire publish failed",
				"entity", entry.EntityID,
				"attribute", schema.Attribute,
				"error", err)
		}
	}
}

// announcePending publishes discovery configs for every entity still
// waiting for one: fresh appearances, announcements that failed
// earlier, and everything after a consumer restart.
func (b *Bridge) announcePending(ctx context.Context) {
	if !b.discovery.Enabled() {
		return
	}
	for _, entry := range b.registry.sorted() {
		if entry.Announced || entry.Descriptor == nil {
			continue
		}
		if err := b.announce(ctx, entry.Descriptor); err != nil {
			b.health.publishFailure()
			b.logger.Error("discovery announcement failed",
				"entity", entry.EntityID,
				"error", err)
			continue
		}
		b.registry.MarkAnnounced(entry.EntityID)
	}
}

func (b *Bridge) announce(ctx context.Context, desc *vr.EntityDescriptor) error {
	for _, msg := range b.discovery.Messages(desc) {
		if err := b.publisher.PublishDiscovery(ctx, msg); err != nil {
			return err
		}
	}
	b.logger.Info("entity announced", "entity", desc.EntityID)
	return nil
}

// reconcile pushes every attribute whose broker value is stale against
// the retained baseline. Fresh appearances publish all their values
// here, steady entities publish nothing, and values whose earlier
// publish failed get another try. Attributes an entity stopped
// reporting clear to empty.
func (b *Bridge) reconcile(ctx context.Context, snap vr.StateSnapshot) {
	for _, view := range vr.Flatten(snap) {
		entry := b.registry.Resolve(view.EntityID)

		current := make(map[string]bool, len(view.Attributes))
		for _, attr := range view.Attributes {
			current[attr.Name] = true
			if last, ok := entry.LastPublished[attr.Name]; ok && last == attr.Value {
				continue
			}
			if err := b.publisher.PublishState(ctx, view.EntityID, attr.Name, attr.Value); err != nil {
				b.health.publishFailure()
				b.logger.Error("state publish failed",
					"entity", view.EntityID,
					"attribute", attr.Name,
					"error", err)
				continue
			}
			b.health.statePublish()
			entry.LastPublished[attr.Name] = attr.Value
		}

		stale := make([]string, 0)
		for name := range entry.LastPublished {
			if !current[name] {
				stale = append(stale, name)
			}
		}
		sort.Strings(stale)
		for _, name := range stale {
			if err := b.publisher.PublishState(ctx, view.EntityID, name, ""); err != nil {
				b.health.publishFailure()
				b.logger.Error("state clear failed",
					"entity", view.EntityID,
					"attribute", name,
					"error", err)
				continue
			}
			delete(entry.LastPublished, name)
		}
	}
}

func (b *Bridge) setState(next State) {
	prev := b.health.setState(next)
	if prev != next {
		b.logger.Info("state transition", "from", prev.String(), "to", next.String())
	}
}

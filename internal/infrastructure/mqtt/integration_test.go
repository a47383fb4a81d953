//go:build integration

package mqtt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// Integration tests for connection and roundtrip behaviour.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...
//
// Note: Some tests may be flaky in CI due to timing dependencies.
// Consider running with: go test -tags=integration -count=1 -v ...

func TestIntegration_Connect(t *testing.T) {
	cfg := testConfig()

	client, err := Connect(cfg, testTopics())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
}

func TestIntegration_ConnectInvalidBroker(t *testing.T) {
	cfg := testConfig()
	cfg.Port = 19999 // nothing listens here

	_, err := Connect(cfg, testTopics())
	if err == nil {
		t.Fatal("Connect() expected error for invalid broker")
	}

	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

// TestIntegration_AvailabilityPublished verifies the retained ON marker
// lands on the power topic after connecting, where Home Assistant's
// availability blocks look for it.
func TestIntegration_AvailabilityPublished(t *testing.T) {
	topics := testTopics()

	cfg := testConfig()
	cfg.ClientID = "vrbridge-test-avail"
	client, err := Connect(cfg, topics)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	// Give the async on-connect handler time to publish
	time.Sleep(200 * time.Millisecond)

	// A fresh subscriber should receive the retained marker immediately
	cfg.ClientID = "vrbridge-test-avail-watch"
	watcher, err := Connect(cfg, Topics{Prefix: "vr-status", Node: "watcher"})
	if err != nil {
		t.Fatalf("Connect() watcher error = %v", err)
	}
	defer watcher.Close()

	received := make(chan string, 1)
	err = watcher.Subscribe(topics.Availability(), 1, func(_ string, payload []byte) error {
		select {
		case received <- string(payload):
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	select {
	case payload := <-received:
		if payload != PayloadOn {
			t.Errorf("availability payload = %q, want %q", payload, PayloadOn)
		}
	case <-time.After(5 * time.Second):
		t.Error("Timeout waiting for retained availability marker")
	}
}

func TestIntegration_CloseMarksOffline(t *testing.T) {
	topics := testTopics()
	topics.Node = "close-test"

	cfg := testConfig()
	cfg.ClientID = "vrbridge-test-close"
	client, err := Connect(cfg, topics)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close(), want false")
	}

	// The retained payload left behind must be the offline marker
	cfg.ClientID = "vrbridge-test-close-watch"
	watcher, err := Connect(cfg, Topics{Prefix: "vr-status", Node: "watcher"})
	if err != nil {
		t.Fatalf("Connect() watcher error = %v", err)
	}
	defer watcher.Close()

	received := make(chan string, 1)
	err = watcher.Subscribe(topics.Availability(), 1, func(_ string, payload []byte) error {
		select {
		case received <- string(payload):
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	select {
	case payload := <-received:
		if payload != PayloadOff {
			t.Errorf("availability payload = %q, want %q", payload, PayloadOff)
		}
	case <-time.After(5 * time.Second):
		t.Error("Timeout waiting for retained offline marker")
	}
}

func TestIntegration_HealthCheck(t *testing.T) {
	cfg := testConfig()

	client, err := Connect(cfg, testTopics())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v, want nil", err)
	}

	client.Close()

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() after Close error = %v, want ErrNotConnected", err)
	}
}

func TestIntegration_PublishRoundtrip(t *testing.T) {
	topics := testTopics()

	cfg := testConfig()
	cfg.ClientID = "vrbridge-test-pub"
	pubClient, err := Connect(cfg, topics)
	if err != nil {
		t.Fatalf("Connect() publisher error = %v", err)
	}
	defer pubClient.Close()

	cfg.ClientID = "vrbridge-test-sub"
	subClient, err := Connect(cfg, topics)
	if err != nil {
		t.Fatalf("Connect() subscriber error = %v", err)
	}
	defer subClient.Close()

	topic := topics.EntityState("headset", "state")
	received := make(chan string, 1)
	var once sync.Once

	err = subClient.Subscribe(topic, 1, func(_ string, payload []byte) error {
		once.Do(func() {
			received <- string(payload)
		})
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if err := pubClient.PublishString(topic, PayloadOn, 1, false); err != nil {
		t.Fatalf("PublishString() error = %v", err)
	}

	select {
	case payload := <-received:
		if payload != PayloadOn {
			t.Errorf("Received payload = %q, want %q", payload, PayloadOn)
		}
	case <-time.After(5 * time.Second):
		t.Error("Timeout waiting for message")
	}
}

func TestIntegration_PublishJSON(t *testing.T) {
	topics := testTopics()

	cfg := testConfig()
	cfg.ClientID = "vrbridge-test-json-pub"
	pubClient, err := Connect(cfg, topics)
	if err != nil {
		t.Fatalf("Connect() publisher error = %v", err)
	}
	defer pubClient.Close()

	cfg.ClientID = "vrbridge-test-json-sub"
	subClient, err := Connect(cfg, topics)
	if err != nil {
		t.Fatalf("Connect() subscriber error = %v", err)
	}
	defer subClient.Close()

	topic := topics.DiscoveryConfig("binary_sensor", "den_headset")
	received := make(chan string, 1)

	err = subClient.Subscribe(topic, 1, func(_ string, payload []byte) error {
		select {
		case received <- string(payload):
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	payload := map[string]string{"name": "Headset", "state_topic": topics.EntityState("headset", "state")}
	if err := pubClient.PublishJSON(topic, payload); err != nil {
		t.Fatalf("PublishJSON() error = %v", err)
	}

	select {
	case got := <-received:
		if got == "" || got[0] != '{' {
			t.Errorf("Received payload = %q, want JSON object", got)
		}
	case <-time.After(5 * time.Second):
		t.Error("Timeout waiting for message")
	}
}

func TestIntegration_SubscriptionTracking(t *testing.T) {
	cfg := testConfig()
	cfg.ClientID = "vrbridge-test-sub-track"

	client, err := Connect(cfg, testTopics())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	topics := []string{
		"vr-status/test/topic1",
		"vr-status/test/topic2",
		"vr-status/test/topic3",
	}

	handler := func(topic string, payload []byte) error {
		return nil
	}

	for _, topic := range topics {
		if err := client.Subscribe(topic, 1, handler); err != nil {
			t.Fatalf("Subscribe(%s) error = %v", topic, err)
		}
	}

	if client.SubscriptionCount() != len(topics) {
		t.Errorf("SubscriptionCount() = %d, want %d", client.SubscriptionCount(), len(topics))
	}

	for _, topic := range topics {
		if !client.HasSubscription(topic) {
			t.Errorf("HasSubscription(%s) = false, want true", topic)
		}
	}

	if err := client.Unsubscribe(topics[0]); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}

	if client.SubscriptionCount() != len(topics)-1 {
		t.Errorf("SubscriptionCount() after unsubscribe = %d, want %d", client.SubscriptionCount(), len(topics)-1)
	}

	if client.HasSubscription(topics[0]) {
		t.Errorf("HasSubscription(%s) = true after unsubscribe", topics[0])
	}
}

func TestIntegration_WildcardSubscription(t *testing.T) {
	topics := testTopics()

	cfg := testConfig()
	cfg.ClientID = "vrbridge-test-wild-pub"
	pubClient, err := Connect(cfg, topics)
	if err != nil {
		t.Fatalf("Connect() publisher error = %v", err)
	}
	defer pubClient.Close()

	cfg.ClientID = "vrbridge-test-wild-sub"
	subClient, err := Connect(cfg, topics)
	if err != nil {
		t.Fatalf("Connect() subscriber error = %v", err)
	}
	defer subClient.Close()

	var receivedMu sync.Mutex
	receivedTopics := make(map[string]bool)

	err = subClient.Subscribe(topics.NodeStates(), 1, func(topic string, payload []byte) error {
		receivedMu.Lock()
		receivedTopics[topic] = true
		receivedMu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	stateTopics := []string{
		topics.EntityState("ctrl-1", "battery"),
		topics.EntityState("ctrl-2", "battery"),
		topics.EntityState("tracker-1", "state"),
	}

	for _, topic := range stateTopics {
		if err := pubClient.PublishString(topic, "72", 1, false); err != nil {
			t.Fatalf("Publish(%s) error = %v", topic, err)
		}
	}

	time.Sleep(500 * time.Millisecond)

	receivedMu.Lock()
	defer receivedMu.Unlock()

	for _, topic := range stateTopics {
		if !receivedTopics[topic] {
			t.Errorf("Did not receive message for topic %s", topic)
		}
	}
}

func TestIntegration_OnConnectCallback(t *testing.T) {
	cfg := testConfig()
	cfg.ClientID = "vrbridge-test-callback"

	// Connect first, then set callback. The paho on-connect handler fires
	// asynchronously and might race with our SetOnConnect call, so either
	// outcome below is valid. The callback mechanism exists primarily for
	// reconnection notifications.
	client, err := Connect(cfg, testTopics())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	called := make(chan struct{}, 1)
	client.SetOnConnect(func() {
		select {
		case called <- struct{}{}:
		default:
		}
	})

	select {
	case <-called:
	case <-time.After(50 * time.Millisecond):
	}
}

func TestIntegration_HandlerReturnsError(t *testing.T) {
	topics := testTopics()

	cfg := testConfig()
	cfg.ClientID = "vrbridge-test-handler-err"
	client, err := Connect(cfg, topics)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	logger := &mockLogger{}
	client.SetLogger(logger)

	topic := topics.EntityState("headset", "state")
	handlerCalled := make(chan struct{}, 1)

	err = client.Subscribe(topic, 1, func(string, []byte) error {
		select {
		case handlerCalled <- struct{}{}:
		default:
		}
		return errors.New("handler error")
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if err := client.PublishString(topic, PayloadOn, 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case <-handlerCalled:
	case <-time.After(2 * time.Second):
		t.Error("Handler was not called")
	}
}

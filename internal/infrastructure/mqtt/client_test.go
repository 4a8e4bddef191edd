package mqtt

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/simpledb/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "simpledb-test",
		},
		QoS:         1,
		TopicPrefix: "simpledb",
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// =============================================================================
// Topic Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	topics := Topics{Prefix: "shop/"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "change", got: topics.Change("orders", "insert"), want: "shop/change/orders/insert"},
		{name: "table changes", got: topics.TableChanges("orders"), want: "shop/change/orders/+"},
		{name: "all changes", got: topics.AllChanges(), want: "shop/change/#"},
		{name: "status", got: topics.SystemStatus(), want: "shop/system/status"},
		{name: "default prefix", got: Topics{}.Change("t", "drop"), want: "simpledb/change/t/drop"},
		{name: "sanitised segment", got: topics.Change("a/b+#", ""), want: "shop/change/a_b__/_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("topic = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestTopics_ParseChange(t *testing.T) {
	topics := Topics{}

	table, op, ok := topics.ParseChange(topics.Change("users", "update"))
	if !ok || table != "users" || op != "update" {
		t.Errorf("ParseChange() = %q, %q, %v", table, op, ok)
	}

	for _, topic := range []string{
		"simpledb/system/status",
		"simpledb/change/users",
		"simpledb/change/users/update/extra",
		"other/change/users/insert",
	} {
		if _, _, ok := topics.ParseChange(topic); ok {
			t.Errorf("ParseChange(%q) should fail", topic)
		}
	}
}

// =============================================================================
// Option Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.MQTTAuthConfig{Username: "user", Password: "pass"}

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v", opts.Servers)
	}
	if opts.ClientID != "simpledb-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "user" || opts.Password != "pass" {
		t.Error("credentials not applied")
	}
	if !opts.CleanSession || !opts.AutoReconnect {
		t.Error("expected clean session and auto-reconnect")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	if opts.Servers[0].Scheme != "ssl" {
		t.Errorf("scheme = %q, want ssl", opts.Servers[0].Scheme)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS config missing or below minimum version")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, Topics{Prefix: "p"}, "client-1")

	if !opts.WillEnabled || !opts.WillRetained {
		t.Error("will should be enabled and retained")
	}
	if opts.WillTopic != "p/system/status" {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}
	payload := string(opts.WillPayload)
	if !strings.Contains(payload, `"status":"offline"`) || !strings.Contains(payload, `"client_id":"client-1"`) {
		t.Errorf("WillPayload = %s", payload)
	}
}

// =============================================================================
// Disconnected Client Tests
// =============================================================================

func TestPublishValidation(t *testing.T) {
	client := &Client{}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{name: "empty topic", topic: "", qos: 1, wantErr: ErrInvalidTopic},
		{name: "invalid qos", topic: "t", qos: 3, wantErr: ErrInvalidQoS},
		{name: "payload too large", topic: "t", payload: make([]byte, maxPayloadSize+1), wantErr: ErrPublishFailed},
		{name: "not connected", topic: "t", payload: []byte("{}"), wantErr: ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribeValidation(t *testing.T) {
	client := &Client{}
	noop := func(string, []byte) error { return nil }

	if err := client.Subscribe("", 1, noop); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v", err)
	}
	if err := client.Subscribe("t", 3, noop); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("invalid qos error = %v", err)
	}
	if err := client.Subscribe("t", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler error = %v", err)
	}
	if err := client.Subscribe("t", 1, noop); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected error = %v", err)
	}
	if err := client.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("unsubscribe empty topic error = %v", err)
	}
	if err := client.Unsubscribe("t"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("unsubscribe disconnected error = %v", err)
	}
	if client.SubscriptionCount() != 0 {
		t.Error("failed subscriptions must not be tracked")
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	client := &Client{}

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() error = %v, want context.Canceled", err)
	}
}

func TestConnectionLost_Logged(t *testing.T) {
	logger := &mockLogger{}
	client := &Client{connected: true}
	client.SetLogger(logger)

	client.onConnectionLost(errors.New("broker gone"))

	if client.IsConnected() {
		t.Error("client should be disconnected")
	}
	if len(logger.warns) != 1 {
		t.Errorf("warns = %v, want 1 entry", logger.warns)
	}
}

// =============================================================================
// Handler Wrapping Tests
// =============================================================================

// fakeMessage implements pahomqtt.Message.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
	warns  []string
}

func (l *mockLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *mockLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *mockLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func TestDeliver(t *testing.T) {
	logger := &mockLogger{}
	client := &Client{}
	client.SetLogger(logger)

	var received string
	ok := client.deliver(func(topic string, payload []byte) error {
		received = topic + " " + string(payload)
		return nil
	})
	ok(nil, fakeMessage{topic: "a/b", payload: []byte("x")})
	if received != "a/b x" {
		t.Errorf("handler received %q", received)
	}

	failing := client.deliver(func(string, []byte) error { return errors.New("bad") })
	failing(nil, fakeMessage{topic: "t"})

	panicking := client.deliver(func(string, []byte) error { panic("boom") })
	panicking(nil, fakeMessage{topic: "t"})

	if len(logger.warns) != 1 {
		t.Errorf("warns = %v, want 1 entry", logger.warns)
	}
	if len(logger.errors) != 1 {
		t.Errorf("errors = %v, want 1 entry", logger.errors)
	}
}

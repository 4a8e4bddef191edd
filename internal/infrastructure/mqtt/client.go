package mqtt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/simpledb/internal/infrastructure/config"
)

// Client carries simpledb change events to and from an MQTT broker.
//
// Subscriptions are remembered and replayed after paho reconnects. The
// client announces itself on the status topic, and the broker publishes a
// retained offline will if the process dies without Close.
//
// All methods are safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics

	mu        sync.RWMutex
	connected bool
	subs      map[string]subscription
	logger    Logger
}

// Logger receives connection and handler diagnostics. *logging.Logger
// satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type subscription struct {
	qos     byte
	handler MessageHandler
}

// MessageHandler receives one message. paho calls handlers on its own
// goroutines; a returned error is logged and the message still counts as
// delivered.
type MessageHandler func(topic string, payload []byte) error

// errTimeout marks a broker round trip that did not finish in time.
var errTimeout = errors.New("timed out")

// Connect dials the configured broker and waits for the first connection.
// paho keeps reconnecting in the background afterwards.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{
		cfg:    cfg,
		topics: Topics{Prefix: cfg.TopicPrefix},
		subs:   make(map[string]subscription),
	}

	opts := buildClientOptions(cfg)
	configureLWT(opts, c.topics, cfg.Broker.ClientID)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.onConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.onConnectionLost(err) })

	c.client = pahomqtt.NewClient(opts)
	if err := wait(c.client.Connect(), defaultConnectTimeout); err != nil {
		c.client.Disconnect(0)
		return nil, fmt.Errorf("%w: %s:%d: %w", ErrConnectionFailed, cfg.Broker.Host, cfg.Broker.Port, err)
	}

	// The OnConnect handler runs asynchronously and may still be pending.
	c.setConnected(true)
	return c, nil
}

// wait blocks on a paho token for at most timeout.
func wait(token pahomqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("%w after %v", errTimeout, timeout)
	}
	return token.Error()
}

func (c *Client) onConnect() {
	c.setConnected(true)

	c.mu.RLock()
	subs := make(map[string]subscription, len(c.subs))
	for topic, sub := range c.subs {
		subs[topic] = sub
	}
	c.mu.RUnlock()

	// Tokens are not awaited here: paho runs this handler on its
	// connection goroutine.
	for topic, sub := range subs {
		c.client.Subscribe(topic, sub.qos, c.deliver(sub.handler))
	}
	c.client.Publish(c.topics.SystemStatus(), c.QoS(), true,
		buildStatusPayload("online", c.cfg.Broker.ClientID, ""))

	if log := c.log(); log != nil {
		log.Info("mqtt connected", "broker", c.cfg.Broker.Host, "subscriptions", len(subs))
	}
}

func (c *Client) onConnectionLost(err error) {
	c.setConnected(false)
	if log := c.log(); log != nil {
		log.Warn("mqtt connection lost, reconnecting", "broker", c.cfg.Broker.Host, "error", err)
	}
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

// Close announces a graceful offline status, which subscribers can tell
// apart from the will, and disconnects.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	if c.IsConnected() {
		status := buildStatusPayload("offline", c.cfg.Broker.ClientID, "graceful_shutdown")
		if err := wait(c.client.Publish(c.topics.SystemStatus(), c.QoS(), true, status), defaultPublishTimeout); err != nil {
			if log := c.log(); log != nil {
				log.Warn("mqtt offline status not sent", "error", err)
			}
		}
	}
	c.client.Disconnect(defaultDisconnectQuiesce)
	c.setConnected(false)
	return nil
}

// HealthCheck reports ErrNotConnected while the broker is unreachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected returns the last known connection state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}

// Topics returns the topic builder for the configured prefix.
func (c *Client) Topics() Topics {
	return c.topics
}

// QoS returns the configured QoS level for change events.
func (c *Client) QoS() byte {
	return byte(c.cfg.QoS)
}

// SetLogger routes connection and handler diagnostics to logger. Without
// one they are dropped.
func (c *Client) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

func (c *Client) log() Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

// deliver adapts a MessageHandler to paho, logging handler errors and
// recovering handler panics so one bad message cannot stop delivery.
func (c *Client) deliver(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if log := c.log(); log != nil {
					log.Error("mqtt handler panicked", "topic", msg.Topic(), "panic", r)
				}
			}
		}()
		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if log := c.log(); log != nil {
				log.Warn("mqtt handler failed", "topic", msg.Topic(), "error", err)
			}
		}
	}
}

// Package changefeed publishes simpledb write events to MQTT.
//
// Each successful write becomes one JSON message on
// {prefix}/change/{table}/{operation}. Failed writes are not published:
// subscribers only ever see changes that reached the database.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	feed := changefeed.New(client, client.Topics(), client.QoS(), logger)
//	db, err := simpledb.Open(ctx, dbCfg, simpledb.Options{Observers: []simpledb.Observer{feed}})
package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/simpledb/internal/convert"
	"github.com/nerrad567/simpledb/internal/infrastructure/logging"
	"github.com/nerrad567/simpledb/internal/infrastructure/mqtt"
	"github.com/nerrad567/simpledb/internal/simpledb"
)

// Publisher sends a payload to a topic. *mqtt.Client implements it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Message is the JSON payload of a change event.
type Message struct {
	ID         string         `json:"id"`
	Table      string         `json:"table"`
	Operation  string         `json:"operation"`
	Column     string         `json:"column,omitempty"`
	Rows       int64          `json:"rows"`
	Entry      *convert.Entry `json:"entry,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	DurationMS float64        `json:"duration_ms"`
}

// Feed is a simpledb.Observer that publishes change events.
type Feed struct {
	publisher Publisher
	topics    mqtt.Topics
	qos       byte
	logger    *logging.Logger
	newID     func() string
}

// New creates a Feed. A nil logger discards.
func New(publisher Publisher, topics mqtt.Topics, qos byte, logger *logging.Logger) *Feed {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Feed{
		publisher: publisher,
		topics:    topics,
		qos:       qos,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// Observe publishes ev unless the write failed.
func (f *Feed) Observe(_ context.Context, ev simpledb.Event) error {
	if ev.Err != nil {
		return nil
	}
	msg := Message{
		ID:         f.newID(),
		Table:      ev.Table,
		Operation:  string(ev.Operation),
		Column:     ev.Column,
		Rows:       ev.Rows,
		Entry:      ev.Entry,
		Timestamp:  ev.Started.UTC(),
		DurationMS: float64(ev.Duration.Microseconds()) / 1000,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding change event: %w", err)
	}
	topic := f.topics.Change(ev.Table, string(ev.Operation))
	if err := f.publisher.Publish(topic, payload, f.qos, false); err != nil {
		return fmt.Errorf("publishing change event to %s: %w", topic, err)
	}
	f.logger.Debug("change published", "topic", topic, "id", msg.ID)
	return nil
}

// Decode parses a change event payload.
func Decode(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, fmt.Errorf("decoding change event: %w", err)
	}
	return msg, nil
}

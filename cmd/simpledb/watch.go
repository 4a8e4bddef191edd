package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nerrad567/simpledb/internal/changefeed"
	"github.com/nerrad567/simpledb/internal/infrastructure/mqtt"
)

// WatchCmd follows the change feed.
type WatchCmd struct {
	Table string `help:"Only show changes to this table."`
	Count int    `help:"Exit after this many events. Zero follows until interrupted."`
}

func (c *WatchCmd) Run(ctx context.Context, a *app) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if !cfg.MQTT.Enabled {
		return errors.New("watch needs mqtt.enabled in the config")
	}

	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer client.Close()

	topics := client.Topics()
	topic := topics.AllChanges()
	if c.Table != "" {
		topic = topics.TableChanges(c.Table)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := &eventPrinter{out: a.out, topics: topics, limit: c.Count, done: cancel}
	if err := client.Subscribe(topic, client.QoS(), w.handle); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}

	<-ctx.Done()
	return nil
}

// eventPrinter prints change events as they arrive. paho delivers
// messages on one goroutine, so the counter needs no lock.
type eventPrinter struct {
	out    io.Writer
	topics mqtt.Topics
	limit  int
	seen   int
	done   func()
}

func (p *eventPrinter) handle(topic string, payload []byte) error {
	table, op, ok := p.topics.ParseChange(topic)
	if !ok {
		return nil
	}
	msg, err := changefeed.Decode(payload)
	if err != nil {
		return err
	}

	line := fmt.Sprintf("%s %s %s rows=%d", msg.Timestamp.Format("15:04:05.000"), table, op, msg.Rows)
	if msg.Column != "" {
		line += " column=" + msg.Column
	}
	if msg.Entry != nil {
		line += " " + msg.Entry.String()
	}
	fmt.Fprintln(p.out, line)

	p.seen++
	if p.limit > 0 && p.seen >= p.limit {
		p.done()
	}
	return nil
}

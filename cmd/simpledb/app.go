package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nerrad567/simpledb/internal/changefeed"
	"github.com/nerrad567/simpledb/internal/infrastructure/config"
	"github.com/nerrad567/simpledb/internal/infrastructure/database"
	"github.com/nerrad567/simpledb/internal/infrastructure/influxdb"
	"github.com/nerrad567/simpledb/internal/infrastructure/logging"
	"github.com/nerrad567/simpledb/internal/infrastructure/mqtt"
	"github.com/nerrad567/simpledb/internal/opmetrics"
	"github.com/nerrad567/simpledb/internal/simpledb"
)

// app is bound into every command's Run method.
type app struct {
	globals *Globals
	out     io.Writer
}

// loadConfig reads the config file and applies the global flag overrides.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.globals.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if a.globals.DB != "" {
		cfg.Database.Path = a.globals.DB
	}
	if a.globals.Driver != "" {
		cfg.Database.Driver = a.globals.Driver
	}
	if a.globals.LogLevel != "" {
		cfg.Logging.Level = a.globals.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// dbConfig maps the database config section onto the engine config.
func dbConfig(cfg *config.Config) database.Config {
	return database.Config{
		Driver:      cfg.Database.Driver,
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	}
}

// session is an open database plus the optional change feed and metrics
// backends observing it.
type session struct {
	cfg     *config.Config
	logger  *logging.Logger
	db      *simpledb.Database
	metrics *opmetrics.Recorder
	mqtt    *mqtt.Client
	influx  *influxdb.Client
}

// open loads the config and opens the database with every enabled
// observer attached. A backend that fails to connect is logged and left
// out; the database still opens.
func (a *app) open(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	return openSession(ctx, cfg)
}

func openSession(ctx context.Context, cfg *config.Config) (*session, error) {
	log := logging.New(cfg.Logging, version)
	s := &session{cfg: cfg, logger: log, metrics: opmetrics.New(nil)}

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			log.Warn("change feed disabled: MQTT connection failed", "error", err)
		} else {
			client.SetLogger(log)
			s.mqtt = client
		}
	}
	if cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			log.Warn("operation metrics disabled: InfluxDB connection failed", "error", err)
		} else {
			client.SetOnError(func(err error) {
				log.Warn("InfluxDB write failed", "error", err)
			})
			s.influx = client
			s.metrics = opmetrics.New(client)
		}
	}

	observers := []simpledb.Observer{s.metrics}
	if s.mqtt != nil {
		observers = append(observers, changefeed.New(s.mqtt, s.mqtt.Topics(), s.mqtt.QoS(), log))
	}

	registry, err := cfg.Registry()
	if err != nil {
		s.closeBackends()
		return nil, fmt.Errorf("building extended types: %w", err)
	}
	db, err := simpledb.Open(ctx, dbConfig(cfg), simpledb.Options{
		Registry:  registry,
		Encoder:   cfg.Encoder(),
		Logger:    log,
		Observers: observers,
	})
	if err != nil {
		s.closeBackends()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s.db = db
	log.Debug("database opened", "path", cfg.Database.Path, "driver", cfg.Database.Driver)
	return s, nil
}

// Close closes the database and then the backends, so the last writes
// still reach them.
func (s *session) Close() error {
	var errs []error
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	s.closeBackends()
	return errors.Join(errs...)
}

func (s *session) closeBackends() {
	if s.influx != nil {
		if err := s.influx.Close(); err != nil {
			s.logger.Warn("closing InfluxDB client", "error", err)
		}
	}
	if s.mqtt != nil {
		if err := s.mqtt.Close(); err != nil {
			s.logger.Warn("closing MQTT client", "error", err)
		}
	}
}

// withSession opens a session, runs fn and closes the session, keeping
// fn's error first.
func (a *app) withSession(ctx context.Context, fn func(*session) error) (err error) {
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(s)
}

// printJSON writes v as one line of JSON.
func (a *app) printJSON(v any) error {
	return json.NewEncoder(a.out).Encode(v)
}

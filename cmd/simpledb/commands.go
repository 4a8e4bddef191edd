package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/nerrad567/simpledb/internal/api"
	"github.com/nerrad567/simpledb/internal/convert"
	"github.com/nerrad567/simpledb/internal/infrastructure/database"
	"github.com/nerrad567/simpledb/internal/simpledb"
)

// ServeCmd serves the HTTP API until interrupted.
type ServeCmd struct {
	Host string `help:"Listen address, overriding the config."`
	Port int    `help:"Listen port, overriding the config." default:"-1"`
}

func (c *ServeCmd) Run(ctx context.Context, a *app) error {
	return a.withSession(ctx, func(s *session) error {
		apiCfg := s.cfg.API
		if c.Host != "" {
			apiCfg.Host = c.Host
		}
		if c.Port >= 0 {
			apiCfg.Port = c.Port
		}

		deps := api.Deps{
			Config:  apiCfg,
			Logger:  s.logger,
			DB:      s.db,
			Metrics: s.metrics,
			Version: version,
		}
		if s.mqtt != nil {
			deps.MQTT = s.mqtt
		}
		if s.influx != nil {
			deps.InfluxDB = s.influx
		}
		server, err := api.New(deps)
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("starting API server: %w", err)
		}
		s.logger.Info("simpledb serving",
			"address", server.Addr().String(),
			"database", s.db.Path(),
			"version", version,
			"commit", commit,
		)

		<-ctx.Done()
		s.logger.Info("shutdown signal received")
		return server.Close()
	})
}

// TablesCmd lists tables.
type TablesCmd struct {
	Prefix string `help:"Only list tables whose name starts with this prefix."`
}

func (c *TablesCmd) Run(ctx context.Context, a *app) error {
	return a.withSession(ctx, func(s *session) error {
		var filter func(string) bool
		if c.Prefix != "" {
			filter = func(name string) bool { return strings.HasPrefix(name, c.Prefix) }
		}
		tables, err := s.db.Tables(ctx, filter)
		if err != nil {
			return err
		}
		for _, t := range tables {
			fmt.Fprintln(a.out, t.Name())
		}
		return nil
	})
}

// CreateCmd creates a table from name:type column specs.
type CreateCmd struct {
	Table   string   `arg:"" help:"Table name."`
	Columns []string `arg:"" help:"Columns as name:type, type one of int, float, string, boolean or a native SQLite type."`
	PK      string   `name:"pk" required:"" help:"Primary key column."`
}

func (c *CreateCmd) Run(ctx context.Context, a *app) error {
	defs := make([]simpledb.ColumnDef, len(c.Columns))
	for i, text := range c.Columns {
		def, err := convert.ParseColumnSpec(text)
		if err != nil {
			return err
		}
		defs[i] = def
	}
	return a.withSession(ctx, func(s *session) error {
		table, err := s.db.Create(ctx, c.Table, defs, c.PK)
		if err != nil {
			return err
		}
		desc, err := table.Describe(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, desc)
		return nil
	})
}

// DropCmd drops a table.
type DropCmd struct {
	Table string `arg:"" help:"Table name."`
}

func (c *DropCmd) Run(ctx context.Context, a *app) error {
	return a.withSession(ctx, func(s *session) error {
		return s.db.Drop(ctx, c.Table)
	})
}

// ColumnsCmd lists a table's columns and declared types.
type ColumnsCmd struct {
	Table string `arg:"" help:"Table name."`
}

func (c *ColumnsCmd) Run(ctx context.Context, a *app) error {
	return a.withSession(ctx, func(s *session) error {
		table, err := requireTable(ctx, s, c.Table)
		if err != nil {
			return err
		}
		infos, err := table.ColumnInfo(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		for _, info := range infos {
			flags := ""
			if info.PrimaryKey {
				flags = "PRIMARY KEY"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Type, flags)
		}
		return tw.Flush()
	})
}

// AddColumnCmd adds a column.
type AddColumnCmd struct {
	Table  string `arg:"" help:"Table name."`
	Column string `arg:"" help:"Column name."`
	Type   string `arg:"" optional:"" default:"string" help:"Logical or native type."`
}

func (c *AddColumnCmd) Run(ctx context.Context, a *app) error {
	return a.withSession(ctx, func(s *session) error {
		_, err := s.db.Table(c.Table).AddColumn(ctx, c.Column, c.Type)
		return err
	})
}

// DropColumnCmd drops a column.
type DropColumnCmd struct {
	Table  string `arg:"" help:"Table name."`
	Column string `arg:"" help:"Column name."`
}

func (c *DropColumnCmd) Run(ctx context.Context, a *app) error {
	return a.withSession(ctx, func(s *session) error {
		return s.db.Table(c.Table).DropColumn(ctx, c.Column)
	})
}

// InsertCmd inserts one row.
type InsertCmd struct {
	Table string `arg:"" help:"Table name."`
	Entry string `arg:"" help:"Row as a JSON object, e.g. '{\"id\":1,\"name\":\"ada\"}'."`
}

func (c *InsertCmd) Run(ctx context.Context, a *app) error {
	entry, err := parseEntry(c.Entry)
	if err != nil {
		return err
	}
	return a.withSession(ctx, func(s *session) error {
		table, err := requireTable(ctx, s, c.Table)
		if err != nil {
			return err
		}
		stored, err := table.Add(ctx, entry)
		if err != nil {
			return err
		}
		return a.printJSON(stored)
	})
}

// Match selects rows by column value.
type Match struct {
	Where string `help:"Match column." required:""`
	Value string `help:"Match value. JSON scalars keep their type (1, true, null); other text is a string."`
}

// OptionalMatch selects rows by column value when --where is given.
type OptionalMatch struct {
	Where string `help:"Match column."`
	Value string `help:"Match value. JSON scalars keep their type (1, true, null); other text is a string."`
}

// SelectCmd prints rows.
type SelectCmd struct {
	Table   string   `arg:"" help:"Table name."`
	Columns []string `help:"Columns to print (comma separated). All when omitted."`
	OptionalMatch `embed:""`
}

func (c *SelectCmd) Run(ctx context.Context, a *app) error {
	return a.withSession(ctx, func(s *session) error {
		table, err := requireTable(ctx, s, c.Table)
		if err != nil {
			return err
		}
		var rows []*convert.Entry
		if c.Where != "" {
			rows, err = matching(ctx, table, c.Where, convert.ParseValue(c.Value), c.Columns)
		} else {
			rows, err = table.All(ctx, c.Columns...)
		}
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := a.printJSON(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// matching returns the rows where column equals value, keeping only the
// requested columns.
func matching(ctx context.Context, table *simpledb.Table, column string, value any, columns []string) ([]*convert.Entry, error) {
	rows, err := table.Where(ctx, column, value)
	if err != nil || len(columns) == 0 {
		return rows, err
	}
	for i, row := range rows {
		kept := convert.NewEntry()
		for _, c := range columns {
			if v, ok := row.Lookup(c); ok {
				kept.Set(c, v)
			}
		}
		rows[i] = kept
	}
	return rows, nil
}

// UpdateCmd updates matching rows.
type UpdateCmd struct {
	Table string `arg:"" help:"Table name."`
	Entry string `arg:"" help:"Columns to set as a JSON object."`
	Match `embed:""`
}

func (c *UpdateCmd) Run(ctx context.Context, a *app) error {
	entry, err := parseEntry(c.Entry)
	if err != nil {
		return err
	}
	return a.withSession(ctx, func(s *session) error {
		table, err := requireTable(ctx, s, c.Table)
		if err != nil {
			return err
		}
		rows, err := table.Update(ctx, c.Where, convert.ParseValue(c.Value), entry)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := a.printJSON(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteCmd deletes matching rows.
type DeleteCmd struct {
	Table string `arg:"" help:"Table name."`
	Match `embed:""`
}

func (c *DeleteCmd) Run(ctx context.Context, a *app) error {
	return a.withSession(ctx, func(s *session) error {
		table, err := requireTable(ctx, s, c.Table)
		if err != nil {
			return err
		}
		n, err := table.Delete(ctx, c.Where, convert.ParseValue(c.Value))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted %d\n", n)
		return nil
	})
}

// DescribeCmd prints the facade descriptions.
type DescribeCmd struct {
	Table  string `arg:"" optional:"" help:"Table to describe. The whole database when omitted."`
	Column string `help:"Describe this column of the table instead, with its values."`
}

func (c *DescribeCmd) Run(ctx context.Context, a *app) error {
	if c.Column != "" && c.Table == "" {
		return errors.New("--column needs a table")
	}
	return a.withSession(ctx, func(s *session) error {
		var (
			desc string
			err  error
		)
		switch {
		case c.Table == "":
			desc, err = s.db.Describe(ctx)
		case c.Column != "":
			var table *simpledb.Table
			if table, err = requireTable(ctx, s, c.Table); err == nil {
				desc, err = table.Column(c.Column).Describe(ctx)
			}
		default:
			var table *simpledb.Table
			if table, err = requireTable(ctx, s, c.Table); err == nil {
				desc, err = table.Describe(ctx)
			}
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, desc)
		return nil
	})
}

// DumpCmd prints INSERT statements for stored rows.
type DumpCmd struct {
	Tables []string `arg:"" optional:"" help:"Tables to dump. Every table when omitted."`
	Escape string   `help:"Quote escaping: backslash or standard. Use standard to replay the output into SQLite."`
}

func (c *DumpCmd) Run(ctx context.Context, a *app) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if c.Escape != "" {
		cfg.Encoding.Escape = c.Escape
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	s, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	var tables []*simpledb.Table
	if len(c.Tables) == 0 {
		if tables, err = s.db.Tables(ctx, nil); err != nil {
			return err
		}
	} else {
		for _, name := range c.Tables {
			table, err := requireTable(ctx, s, name)
			if err != nil {
				return err
			}
			tables = append(tables, table)
		}
	}

	for _, table := range tables {
		stmts, err := table.Dump(ctx)
		if err != nil {
			return err
		}
		for _, stmt := range stmts {
			fmt.Fprintln(a.out, stmt)
		}
	}
	return nil
}

// MigrateCmd applies migrations from a directory of
// VERSION_name.up.sql / VERSION_name.down.sql files.
type MigrateCmd struct {
	Dir    string `help:"Migrations directory." type:"existingdir" required:""`
	Down   bool   `help:"Roll back the most recent migration instead."`
	Status bool   `help:"Print applied and pending migrations without changing anything."`
}

func (c *MigrateCmd) Run(ctx context.Context, a *app) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Open(ctx, dbConfig(cfg))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	fsys := os.DirFS(c.Dir)
	switch {
	case c.Status:
		applied, pending, err := db.MigrationStatus(ctx, fsys)
		if err != nil {
			return err
		}
		for _, m := range applied {
			fmt.Fprintf(a.out, "applied  %s\n", m.Version)
		}
		for _, m := range pending {
			fmt.Fprintf(a.out, "pending  %s %s\n", m.Version, m.Name)
		}
	case c.Down:
		v, err := db.MigrateDown(ctx, fsys)
		if err != nil {
			return err
		}
		if v == "" {
			fmt.Fprintln(a.out, "nothing to roll back")
		} else {
			fmt.Fprintf(a.out, "rolled back %s\n", v)
		}
	default:
		if err := db.Migrate(ctx, fsys); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "migrations applied")
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(a *app) error {
	fmt.Fprintf(a.out, "simpledb %s (commit %s, built %s)\n", version, commit, date)
	return nil
}

// requireTable returns the table facade or ErrTableNotFound.
func requireTable(ctx context.Context, s *session, name string) (*simpledb.Table, error) {
	table := s.db.Table(name)
	exists, err := table.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", simpledb.ErrTableNotFound, name)
	}
	return table, nil
}

// parseEntry reads a JSON object argument.
func parseEntry(text string) (*convert.Entry, error) {
	entry := convert.NewEntry()
	if err := entry.UnmarshalJSON([]byte(text)); err != nil {
		return nil, fmt.Errorf("entry must be a JSON object: %w", err)
	}
	return entry, nil
}

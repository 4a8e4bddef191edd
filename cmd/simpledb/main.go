// Command simpledb is a typed command-line front end and HTTP server for
// SQLite databases.
//
// Every command opens the database named by --db (or the config file),
// runs through the simpledb facades and exits. serve keeps the database
// open behind the REST API; watch follows the MQTT change feed.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Globals are the flags shared by every command.
type Globals struct {
	Config   string `name:"config" short:"c" help:"Config file (YAML). Defaults apply when omitted." type:"path" env:"SIMPLEDB_CONFIG"`
	DB       string `name:"db" help:"Database path, overriding the config. 'memory' and 'disk' open temporary databases."`
	Driver   string `name:"driver" help:"SQLite driver: sqlite3 (cgo) or sqlite (pure Go)."`
	LogLevel string `name:"log-level" help:"Log level: debug, info, warn, error."`
}

// CLI defines the command-line interface.
type CLI struct {
	Globals `embed:""`

	Serve      ServeCmd      `cmd:"" help:"Serve the HTTP API"`
	Tables     TablesCmd     `cmd:"" help:"List tables"`
	Create     CreateCmd     `cmd:"" help:"Create a table"`
	Drop       DropCmd       `cmd:"" help:"Drop a table"`
	Columns    ColumnsCmd    `cmd:"" help:"List the columns of a table"`
	AddColumn  AddColumnCmd  `cmd:"" name:"add-column" help:"Add a column to a table"`
	DropColumn DropColumnCmd `cmd:"" name:"drop-column" help:"Drop a column from a table"`
	Insert     InsertCmd     `cmd:"" help:"Insert a row given as a JSON object"`
	Select     SelectCmd     `cmd:"" help:"Print rows as JSON lines"`
	Update     UpdateCmd     `cmd:"" help:"Update matching rows from a JSON object"`
	Delete     DeleteCmd     `cmd:"" help:"Delete matching rows"`
	Describe   DescribeCmd   `cmd:"" help:"Describe the database, a table or a column"`
	Dump       DumpCmd       `cmd:"" help:"Print rows as INSERT statements"`
	Migrate    MigrateCmd    `cmd:"" help:"Apply or roll back SQL migrations from a directory"`
	Watch      WatchCmd      `cmd:"" help:"Print change events from the MQTT change feed"`
	Version    VersionCmd    `cmd:"" help:"Print version information"`
}

func main() {
	// Cancel on Ctrl+C or SIGTERM so serve and watch shut down cleanly.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args and executes the selected command, separated from main
// for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command-line arguments without the program name
//   - stdout, stderr: Output streams
//
// Returns:
//   - error: nil on success, or error describing failure
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("simpledb"),
		kong.Description("Typed convenience layer over embedded SQLite"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		return fmt.Errorf("building command line: %w", err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(&app{globals: &cli.Globals, out: stdout})
}

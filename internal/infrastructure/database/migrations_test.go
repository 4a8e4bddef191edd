package database

import (
	"context"
	"testing"
	"testing/fstest"
	"time"
)

// testMigrations is a two-step migration set.
func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"20261019_120000_create_users.up.sql": {
			Data: []byte("CREATE TABLE test_users (id INTEGER PRIMARY KEY, name TEXT NOT NULL);"),
		},
		"20261019_120000_create_users.down.sql": {
			Data: []byte("DROP TABLE test_users;"),
		},
		"20261019_130000_add_email.up.sql": {
			Data: []byte("ALTER TABLE test_users ADD COLUMN email TEXT;"),
		},
		"README.md": {Data: []byte("not a migration")},
	}
}

func tableCount(t *testing.T, db *DB, name string) int {
	t.Helper()
	var count int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&count)
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	return count
}

// TestMigrate verifies migration application.
func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Migrate(ctx, testMigrations()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if tableCount(t, db, "test_users") != 1 {
		t.Fatal("table test_users not created")
	}

	applied, pending, err := db.MigrationStatus(ctx, testMigrations())
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 {
		t.Errorf("expected 2 applied migrations, got %d", len(applied))
	}
	if len(pending) != 0 {
		t.Errorf("expected 0 pending migrations, got %d", len(pending))
	}

	// Running again should be idempotent
	if err := db.Migrate(ctx, testMigrations()); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

// TestMigrate_FailureStopsAtBrokenMigration verifies per-migration atomicity.
func TestMigrate_FailureStopsAtBrokenMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx := context.Background()
	fsys := testMigrations()
	fsys["20261019_130000_add_email.up.sql"] = &fstest.MapFile{Data: []byte("ALTER TABLE nope ADD COLUMN x TEXT;")}

	if err := db.Migrate(ctx, fsys); err == nil {
		t.Fatal("Migrate() expected error")
	}

	applied, pending, err := db.MigrationStatus(ctx, fsys)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 1 || len(pending) != 1 {
		t.Errorf("applied = %d, pending = %d, want 1 and 1", len(applied), len(pending))
	}
}

// TestMigrateDown verifies migration rollback.
func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx := context.Background()
	fsys := testMigrations()
	delete(fsys, "20261019_130000_add_email.up.sql")

	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	version, err := db.MigrateDown(ctx, fsys)
	if err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if version != "20261019_120000" {
		t.Errorf("MigrateDown() version = %q", version)
	}
	if tableCount(t, db, "test_users") != 0 {
		t.Error("table test_users should have been dropped")
	}

	version, err = db.MigrateDown(ctx, fsys)
	if err != nil || version != "" {
		t.Errorf("MigrateDown() with nothing applied = %q, %v", version, err)
	}
}

// TestMigrateDown_NoDownSQL verifies a migration without a down file
// cannot be rolled back.
func TestMigrateDown_NoDownSQL(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx := context.Background()
	if err := db.Migrate(ctx, testMigrations()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if _, err := db.MigrateDown(ctx, testMigrations()); err == nil {
		t.Error("MigrateDown() expected error for migration without down SQL")
	}
}

// TestMigrateNoMigrations verifies behaviour with no migrations.
func TestMigrateNoMigrations(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx := context.Background()
	if err := db.Migrate(ctx, nil); err != nil {
		t.Fatalf("Migrate(nil) error = %v", err)
	}
	if err := db.Migrate(ctx, fstest.MapFS{}); err != nil {
		t.Fatalf("Migrate(empty) error = %v", err)
	}
}

// TestMigrationStatus verifies status reporting before migrating.
func TestMigrationStatus(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	applied, pending, err := db.MigrationStatus(context.Background(), testMigrations())
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected 0 applied, got %d", len(applied))
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].Name != "create_users" || pending[1].Name != "add_email" {
		t.Errorf("pending order = %s, %s", pending[0].Name, pending[1].Name)
	}
	if pending[0].DownSQL == "" {
		t.Error("create_users should carry its down SQL")
	}
}

// TestParseMigrationFilename verifies filename parsing.
func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVersion string
		wantIsUp    bool
		wantOk      bool
	}{
		{
			name:        "valid up migration",
			filename:    "20261019_120000_create_users.up.sql",
			wantVersion: "20261019_120000",
			wantIsUp:    true,
			wantOk:      true,
		},
		{
			name:        "valid down migration",
			filename:    "20261019_120000_create_users.down.sql",
			wantVersion: "20261019_120000",
			wantOk:      true,
		},
		{name: "not sql file", filename: "readme.txt"},
		{name: "missing direction", filename: "20261019_120000_create_users.sql"},
		{name: "invalid format", filename: "invalid.up.sql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOk {
				t.Errorf("ok = %v, want %v", ok, tt.wantOk)
			}
			if ok {
				if version != tt.wantVersion {
					t.Errorf("version = %v, want %v", version, tt.wantVersion)
				}
				if isUp != tt.wantIsUp {
					t.Errorf("isUp = %v, want %v", isUp, tt.wantIsUp)
				}
			}
		})
	}
}

// TestExtractMigrationName verifies name extraction.
func TestExtractMigrationName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"20261019_120000_create_users.up.sql", "create_users"},
		{"20261019_120000_initial_schema.down.sql", "initial_schema"},
		{"20261019_120000_add_email_to_users.up.sql", "add_email_to_users"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := extractMigrationName(tt.filename); got != tt.want {
				t.Errorf("extractMigrationName(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

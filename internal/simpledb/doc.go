// Package simpledb provides the Database, Table and Column facades: a typed
// convenience layer over an embedded SQLite engine.
//
// Writes run through the convert package: producers are resolved once,
// extended type columns are generated, and values are bound as statement
// parameters. Reads type values from the declared column types and restore
// extended type columns.
//
// Every write operation is reported to the configured Observers after it
// completes. Observers publish change events and record metrics elsewhere in
// this module; their failures are logged and never fail the write.
//
// Usage:
//
//	db, err := simpledb.Open(ctx, database.Config{Path: database.PathMemory}, simpledb.Options{
//	    Registry: convert.NewRegistry(map[string]convert.ExtendedType{"created_at": convert.Dates(nil)}),
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	users, err := db.Create(ctx, "users", []simpledb.ColumnDef{
//	    {Name: "id", Type: "int"},
//	    {Name: "name", Type: "string"},
//	    {Name: "created_at", Type: "string"},
//	}, "id")
//	_, err = users.Add(ctx, convert.NewEntry().Set("id", 1).Set("name", "ada"))
package simpledb

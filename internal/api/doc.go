// Package api provides the HTTP REST API over the simpledb facades.
//
// It exposes table, column and row operations plus health and metrics
// endpoints. Request and response bodies are JSON; rows are JSON objects
// whose keys keep the table's column order.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

// Package influxdb provides InfluxDB connectivity for simpledb.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, batched point writing and health monitoring. simpledb uses it
// to record one point per database write operation (see package opmetrics).
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WritePoint("simpledb_operations", tags, fields, time.Now())
//
// # Error Handling
//
// Writes are non-blocking; batch errors are delivered via SetOnError.
// Connection and health check errors are returned directly.
//
// Writes are batched according to batch_size and flush_interval.
package influxdb

// Package config handles loading and validating simpledb configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with SIMPLEDB_* environment variables
//   - Validation of every section, reporting all problems at once
//   - Building the extended type registry and value encoder from config
//
// Security Considerations:
//   - Sensitive values (MQTT password, InfluxDB token) should be set via
//     environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("simpledb.yaml")
//	if err != nil {
//	    return err
//	}
//	registry, err := cfg.Registry()
//
// Example file:
//
//	database:
//	  path: ./data/app.db
//	extended_types:
//	  created_at: dates
//	mqtt:
//	  enabled: true
//	  topic_prefix: simpledb
package config

package mqtt

import (
	"strings"
)

// DefaultTopicPrefix is the root of every simpledb topic when no prefix is
// configured.
const DefaultTopicPrefix = "simpledb"

// Topics builds simpledb MQTT topic names under a common prefix.
// Using these helpers keeps publishers and subscribers in agreement.
//
//	topics := mqtt.Topics{Prefix: "shop"}
//	topics.Change("orders", "insert")
//	// Returns: "shop/change/orders/insert"
type Topics struct {
	Prefix string
}

// prefix returns the configured prefix without trailing slashes.
func (t Topics) prefix() string {
	p := strings.TrimRight(t.Prefix, "/")
	if p == "" {
		return DefaultTopicPrefix
	}
	return p
}

// Change returns the topic for a write operation on a table.
//
// Example: simpledb/change/orders/insert
func (t Topics) Change(table, op string) string {
	return t.prefix() + "/change/" + segment(table) + "/" + segment(op)
}

// TableChanges returns a pattern matching every operation on one table.
//
// Pattern: simpledb/change/orders/+
func (t Topics) TableChanges(table string) string {
	return t.prefix() + "/change/" + segment(table) + "/+"
}

// AllChanges returns a pattern matching every change event.
//
// Pattern: simpledb/change/#
func (t Topics) AllChanges() string {
	return t.prefix() + "/change/#"
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: simpledb/system/status
func (t Topics) SystemStatus() string {
	return t.prefix() + "/system/status"
}

// ParseChange splits a change topic into its table and operation.
// It reports false for topics outside the change hierarchy.
func (t Topics) ParseChange(topic string) (table, op string, ok bool) {
	rest, found := strings.CutPrefix(topic, t.prefix()+"/change/")
	if !found {
		return "", "", false
	}
	table, op, found = strings.Cut(rest, "/")
	if !found || table == "" || op == "" || strings.Contains(op, "/") {
		return "", "", false
	}
	return table, op, true
}

// segmentReplacer neutralises characters that would change a topic's
// structure or turn it into a wildcard.
var segmentReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_")

// segment makes a table or operation name safe to use as one topic level.
func segment(s string) string {
	if s == "" {
		return "_"
	}
	return segmentReplacer.Replace(s)
}

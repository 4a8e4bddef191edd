// Package mqtt provides MQTT client connectivity for the simpledb change feed.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//
// # Topics
//
//	{prefix}/change/{table}/{op}   one message per write operation
//	{prefix}/system/status         retained online/offline status
//
// The prefix defaults to "simpledb". Table and operation names that contain
// "/", "+" or "#" have those characters replaced with "_".
//
// # Security Considerations
//
//   - Use TLS (cfg.Broker.TLS=true) for brokers outside localhost
//   - Change events carry row contents; restrict topic ACLs accordingly
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := client.Topics().Change("orders", "insert")
//	err = client.Publish(topic, payload, client.QoS(), false)
package mqtt

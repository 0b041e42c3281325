// Package messaging provides a broker-agnostic API for publishing and
// consuming messages.
//
// Use-case code depends on the Messaging interface only. The concrete broker
// (in-process memory, NATS, NSQ, Kafka or Google Pub/Sub) is picked at startup
// through NewFromDriver.
package messaging

// Package kafka publishes job status events to Kafka through a
// segmentio/kafka-go Writer.
//
// Configuration:
//
//	kafka:
//	  enabled: true
//	  brokers: ["localhost:9092"]
//	  topic: "scribe.jobs"
package kafka

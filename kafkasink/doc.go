// Package kafkasink publishes console audit reports to an Apache Kafka topic.
//
// A [Sink] wraps a franz-go (kgo) client. Every audited test with console findings is
// produced synchronously as one JSON record whose headers carry the run id and the
// OpenTelemetry trace context (TraceContext, Baggage and Jaeger propagation).
//
// Configuration lives under the "kafka" key of the console plugin section:
//   - [ProducerOpts] — required acks, compression codec, timeouts.
//   - [SASL] — plain, SCRAM-SHA-256, SCRAM-SHA-512 or AWS MSK IAM. Empty IAM keys are
//     resolved through the default AWS credential chain.
//   - [TLS] — client certificate and root CA.
package kafkasink

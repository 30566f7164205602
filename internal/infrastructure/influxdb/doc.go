// Package influxdb ships bulb telemetry to an InfluxDB v2 instance.
//
// Writes are non-blocking: points are batched by the client library and
// flushed on an interval, so recording a metric from the realtime
// receive path never stalls message handling. Async write failures are
// surfaced through an error callback rather than return values.
//
// The integration is optional; when disabled in configuration, Connect
// returns ErrDisabled and callers run without telemetry.
package influxdb

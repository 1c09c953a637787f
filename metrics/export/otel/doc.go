// Package otel provides OpenTelemetry metric exporter bindings for
// authstate counters and histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each
// metric and Int64ObservableGauge per histogram bucket. A single callback
// reads [authstate.Manager.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate manager state.
package otel

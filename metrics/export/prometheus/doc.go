// Package prometheus renders authstate metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] accepts a [authstate.Manager] and exposes an
// [net/http.Handler] that renders all counters and histograms. Counter
// names are prefixed authstate_*_total; the single histogram is
// authstate_login_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the
//     Handler wherever they serve metrics.
//   - Mutate manager state.
package prometheus

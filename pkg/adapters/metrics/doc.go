// Package metrics provides MetricsCollector implementations.
//
// Implementations:
//   - prometheus: Prometheus counters, gauges and histograms
//   - noop: discards everything, for tests
package metrics

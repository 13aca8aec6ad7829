// Package metrics defines the sinks that record device activity. A sink
// must implement MetricsSink and may implement any of the optional
// recorder interfaces; MultiSink fans out to every sink supporting a
// record. The factory helpers return a MultiSink automatically when
// multiple sinks are configured.
package metrics

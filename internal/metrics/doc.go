// Package metrics provides build observability hooks.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites. PrometheusRecorder
// backs the Recorder with client_golang collectors on a private registry; the
// CLI dumps it with WriteTextfile for the node_exporter textfile collector.
package metrics

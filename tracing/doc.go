// Package tracing integrates observability back-ends with the launcher run
// sequencer to provide per-stage tracing information. All instrumentation is
// kept in a separate package so that applications which do not require
// tracing can exclude it from their build.
package tracing

// Package metrics derives per-runner usage metrics from the runner and
// environment snapshots returned by the API.
//
// Derivation is total: every field has a fallback, so a runner always
// produces a Metrics record. All records of one report run share a single
// reference time, captured by the caller and passed to NewDeriver, so that
// uptimes and costs add up consistently across the report.
package metrics

// Package aggregates defines the error vocabulary shared by domain write boundaries.
//
// Data-layer implementations map infrastructure failures onto these codes so callers
// can decide per call site whether a failure is fatal, absorbed or retried.
package aggregates

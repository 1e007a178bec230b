// Package aggregates contains the storage-backed implementations of the
// application and permission DAOs.
//
// Implementations here compose table-level repos from internal/data/repos,
// own the transaction boundary of each write, and translate driver errors
// into aggregate error codes.
package aggregates

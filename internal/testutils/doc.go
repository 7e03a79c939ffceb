// Package testutils provides helpers shared by tests across packages:
// fixture builders for posts, a memory-backed slog handler for asserting on
// log output, and JWT helpers that sign tokens with a test-only secret.
//
// Nothing in this package may be imported by non-test code.
package testutils

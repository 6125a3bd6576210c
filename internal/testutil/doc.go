// Package testutil provides deterministic fixtures for watcher and harness
// tests: identifier generators with predictable output, an in-memory track
// source, and record builders.
package testutil

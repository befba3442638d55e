// Package testutil provides utilities for testing dotfold components.
//
// Key components:
//   - Env: builds a repository plus fake home directory on a MemoryFS
//   - MemoryFS: in-memory types.FS implementation for fast, isolated tests
//   - Assertions: lightweight checks over values and filesystem state
//
// Usage guidelines:
//   - Most tests should run against MemoryFS for speed and isolation
//   - Only lock and root-discovery tests need the real filesystem helpers
//   - All test data should be defined inline, not in external files
//   - Each test should be completely isolated with no shared state
package testutil

// Package types holds the small shared vocabulary of the engine: the
// filesystem interface every component operates through, and the
// file-or-directory kind tag attached to managed paths.
package types

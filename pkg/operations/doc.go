// Package operations plans and executes the symlink changes that make
// a home directory match a resolution.
//
// The Planner compares each resolved entry against live home state: a
// correct link is a skip, a wrong link or real content is an unlink
// followed by a link, an absent path is a link. Symlinks that point
// into the repository but resolve to no current entry get an unlink on
// its own - the leftover of a shrunk manifest or a decomposed
// directory - and never anything more: real content is only ever
// removed on a path a link immediately replaces, after the backup has
// captured it.
//
// The Executor walks the plan in order. Failures are collected per
// logical path and block only that path's later steps, so one bad path
// never stops the rest of the run. In dry-run mode the same plan is
// reported with no filesystem mutation at all.
package operations

// Package database stores crawl history in SQLite.
//
// Two tables are kept:
//   - visits: the last expansion time of every URL, per hostname. A later
//     run can load these to continue honouring the revisit cooldown.
//   - runs: one summary row per crawl run, listed by the history command.
//
// The driver is modernc.org/sqlite, which needs no cgo. Timestamps are
// stored as fixed-width UTC text so that string comparison orders them.
package database

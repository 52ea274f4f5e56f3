// Package library persists the imported model catalogue and viewer settings
// in SQLite.
//
// The Store records every model descriptor that was imported (one row per
// descriptor path), remembers which model is current, and keeps a small
// key/value table of viewer preferences. Schema changes ship as numbered
// files under migrations/ and are applied in order on Open.
package library

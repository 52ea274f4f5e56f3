// Package importer turns LPK packages and loose model descriptors into
// library entries.
//
// Each package import extracts into its own directory under the configured
// library_dir, named after the sanitized container stem. Imports of the same
// model are serialized across processes with a file lock in data_dir/locks,
// since an extraction owns and clears its output directory. Every import is
// tagged with a session ID that flows through the log context.
package importer

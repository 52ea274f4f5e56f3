// Package lpk converts Live2D Viewer EX asset packages (LPK) into plain model
// directories a Cubism runtime can load.
//
// An LPK is a ZIP container. Plain packages already hold a *.model3.json or
// *.model.json descriptor and are extracted verbatim. Encrypted packages carry a
// config.mlve manifest (possibly under its MD5-hashed alias) describing the
// model identity and costume tree; their payload entries are named by 32-hex
// digests, XOR-encrypted with a keystream derived from the manifest, and need
// their file type sniffed from magic bytes after decryption.
//
// Extraction always clears the output directory first. Callers must not run two
// extractions into the same directory concurrently.
package lpk

package lpk

import "errors"

var (
	// ErrIO marks container, filesystem, and output write failures.
	ErrIO = errors.New("lpk i/o failure")
	// ErrNoDescriptor is returned when a plain package holds no
	// *.model3.json or *.model.json file.
	ErrNoDescriptor = errors.New("no .model3.json or .model.json found in archive")
	// ErrNoEncryptedDescriptor is returned when no costume of an encrypted
	// package resolves to a decrypted entry.
	ErrNoEncryptedDescriptor = errors.New("no model descriptor found in encrypted package")
)

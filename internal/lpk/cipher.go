package lpk

import (
	"strings"
	"unicode/utf16"
)

// chunkSize is the keystream period. The generator state is reseeded with the
// entry key at the start of every chunk.
const chunkSize = 1024

const (
	lcgIncrement  = 2531011
	lcgMultiplier = 214013
)

// HashString mirrors Java's String.hashCode: a 32-bit wrapping polynomial hash
// over UTF-16 code units, sign-extended to 64 bits.
func HashString(s string) int64 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(unit)
	}
	return int64(h)
}

// DeriveKey builds the per-entry key. Sidecar-dependent (STM) packages mix in
// the external config values; every other variant hashes model id + entry name.
func DeriveKey(variant FormatVariant, modelID string, sidecar Sidecar, entryName string) int64 {
	var b strings.Builder
	b.WriteString(modelID)
	if variant == VariantSidecar {
		b.WriteString(sidecar.FileID)
		b.WriteString(entryName)
		b.WriteString(sidecar.MetaData)
	} else {
		b.WriteString(entryName)
	}
	return HashString(b.String())
}

// Transform applies the LCG keystream to data and returns a new slice. XOR is
// self-inverse, so the same call encrypts and decrypts.
func Transform(data []byte, key int64) []byte {
	out := make([]byte, len(data))
	for start := 0; start < len(data); start += chunkSize {
		end := min(start+chunkSize, len(data))
		state := key
		for i := start; i < end; i++ {
			state = ((lcgIncrement + lcgMultiplier*state) >> 16 & 0xFFFF) & 0xFFFFFFFF
			out[i] = data[i] ^ byte(state)
		}
	}
	return out
}

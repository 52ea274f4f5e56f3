package lpk

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	magicPNG  = []byte{0x89, 0x50, 0x4E, 0x47}
	magicMOC3 = []byte{0x4D, 0x4F, 0x43, 0x33}
	magicMOC  = []byte{0x6D, 0x6F, 0x63}
	magicRIFF = []byte{0x52, 0x49, 0x46, 0x46}
	magicOGG  = []byte{0x4F, 0x67, 0x67, 0x53}
	magicID3  = []byte{0x49, 0x44, 0x33}
	magicJPEG = []byte{0xFF, 0xD8, 0xFF}
)

// Extension constants returned by DetectExtension.
const (
	ExtPNG    = "png"
	ExtMOC3   = "moc3"
	ExtMOC    = "moc"
	ExtWAV    = "wav"
	ExtOGG    = "ogg"
	ExtMP3    = "mp3"
	ExtJPEG   = "jpg"
	ExtJSON   = "json"
	ExtMotion = "mtn"
	ExtBinary = "bin"
)

// DetectExtension classifies decrypted entry content by its leading bytes.
// Binary magics are checked before any text sniffing because binary payloads
// can happen to be valid UTF-8. Unknown content maps to ExtBinary.
func DetectExtension(data []byte) string {
	switch {
	case bytes.HasPrefix(data, magicPNG):
		return ExtPNG
	case bytes.HasPrefix(data, magicMOC3):
		return ExtMOC3
	case bytes.HasPrefix(data, magicMOC):
		return ExtMOC
	case bytes.HasPrefix(data, magicRIFF):
		return ExtWAV
	case bytes.HasPrefix(data, magicOGG):
		return ExtOGG
	case isMP3(data):
		return ExtMP3
	case bytes.HasPrefix(data, magicJPEG):
		return ExtJPEG
	}

	if !utf8.Valid(data) {
		return ExtBinary
	}
	text := strings.TrimLeftFunc(string(data), unicode.IsSpace)
	switch {
	case strings.HasPrefix(text, "{"), strings.HasPrefix(text, "["):
		return ExtJSON
	case strings.HasPrefix(text, "# Live2D"):
		return ExtMotion
	}
	return ExtBinary
}

// isMP3 matches an MPEG frame sync (0xFF followed by the top three bits set)
// or an ID3v2 tag header.
func isMP3(data []byte) bool {
	if len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0 {
		return true
	}
	return bytes.HasPrefix(data, magicID3)
}

package lpk

import (
	"io/fs"
	"path/filepath"
	"strings"
	"unicode"
)

// Descriptor suffixes for Cubism 3+ and Cubism 2 models.
const (
	SuffixModernDescriptor = ".model3.json"
	SuffixLegacyDescriptor = ".model.json"
)

// defaultModelName names the descriptor when the manifest has no name.
const defaultModelName = "model"

// IsDescriptorName reports whether name carries a descriptor suffix.
func IsDescriptorName(name string) bool {
	return strings.HasSuffix(name, SuffixModernDescriptor) || strings.HasSuffix(name, SuffixLegacyDescriptor)
}

// FindDescriptor walks dir depth-first in lexical order and returns the first
// descriptor file it finds.
func FindDescriptor(dir string) (string, bool) {
	var found string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && IsDescriptorName(d.Name()) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	return found, found != ""
}

// DescriptorSuffix picks the descriptor suffix for a decrypted costume file.
// Cubism 3+ descriptors carry "FileReferences" or "Version" keys.
func DescriptorSuffix(content string) string {
	if strings.Contains(content, `"FileReferences"`) || strings.Contains(content, `"Version"`) {
		return SuffixModernDescriptor
	}
	return SuffixLegacyDescriptor
}

// DescriptorFileName combines the sanitized model name with the suffix chosen
// from content. An empty name falls back to "model".
func DescriptorFileName(modelName, content string) string {
	return SanitizeName(modelName) + DescriptorSuffix(content)
}

// SanitizeName keeps letters, digits, '-', '_' and '.'; every other rune
// becomes '_'.
func SanitizeName(name string) string {
	if name == "" {
		return defaultModelName
	}
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r):
			return r
		case r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, name)
}

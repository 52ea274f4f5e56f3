package lpk

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rive2d/internal/fileutil"
	"rive2d/internal/logging"
)

// Hashed payload suffixes. ".bin3" marks model/texture payloads and is
// stripped before ".bin".
const (
	SuffixModelPayload = ".bin3"
	SuffixPayload      = ".bin"
)

const hashedStemLen = 32

// IsHashedEntry reports whether name is a 32-digit lowercase hex stem
// followed by a recognized payload suffix.
func IsHashedEntry(name string) bool {
	stem, ok := hashedStem(name)
	if !ok || len(stem) != hashedStemLen {
		return false
	}
	for i := 0; i < len(stem); i++ {
		if !isHexDigit(stem[i]) {
			return false
		}
	}
	return true
}

func hashedStem(name string) (string, bool) {
	if stem, ok := strings.CutSuffix(name, SuffixModelPayload); ok {
		return stem, true
	}
	return strings.CutSuffix(name, SuffixPayload)
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f')
}

// RenameMap records original hashed entry names and the sniffed output names
// they were written under.
type RenameMap map[string]string

// Rewrite replaces every original name in text with its new name. Longer keys
// are replaced first so a ".bin" key never clobbers part of a ".bin3" key.
func (m RenameMap) Rewrite(text string) string {
	if len(m) == 0 {
		return text
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// entryStats summarizes what the pipeline wrote.
type entryStats struct {
	files int
	bytes int64
}

type decryptParams struct {
	container Container
	outputDir string
	manifest  *Manifest
	sidecar   Sidecar
	logger    *slog.Logger
}

// decryptEntries writes every non-manifest entry into the output directory,
// decrypting and renaming hashed entries. Any failure aborts the whole run.
func decryptEntries(ctx context.Context, p decryptParams) (RenameMap, entryStats, error) {
	renames := make(RenameMap)
	var stats entryStats

	encrypted := p.manifest.Encrypted()
	variant := p.manifest.Variant()
	modelID := p.manifest.ModelID()

	for _, name := range p.container.Names() {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		if isManifestEntry(name) || strings.HasSuffix(name, "/") {
			continue
		}
		hashed := IsHashedEntry(name)

		data, err := p.container.Read(name)
		if err != nil {
			return nil, stats, fmt.Errorf("%w: %s: %w", ErrIO, name, err)
		}
		if encrypted && hashed {
			data = Transform(data, DeriveKey(variant, modelID, p.sidecar, name))
		}

		outName := name
		if hashed {
			stem, _ := hashedStem(name)
			outName = stem + "." + DetectExtension(data)
			renames[name] = outName
		}

		target, err := fileutil.SafeJoin(p.outputDir, outName)
		if err != nil {
			return nil, stats, fmt.Errorf("%w: %w", ErrIO, err)
		}
		if err := fileutil.WriteFile(target, data); err != nil {
			return nil, stats, fmt.Errorf("%w: write %s: %w", ErrIO, outName, err)
		}
		stats.files++
		stats.bytes += int64(len(data))
		p.logger.Debug("entry written",
			logging.String("entry", name),
			logging.String("output", outName),
			logging.Bool("hashed", hashed),
			logging.Int("bytes", len(data)),
		)
	}
	return renames, stats, nil
}

// resolveDescriptor finalizes the first costume whose renamed file exists:
// rewrites its references, names it after the model, and removes the
// intermediate file.
func resolveDescriptor(outputDir string, manifest *Manifest, renames RenameMap, logger *slog.Logger) (string, error) {
	for _, costume := range manifest.CostumePaths() {
		renamed, ok := renames[costume]
		if !ok {
			continue
		}
		src := filepath.Join(outputDir, renamed)
		if _, err := os.Stat(src); err != nil {
			continue
		}

		raw, err := os.ReadFile(src)
		if err != nil {
			return "", fmt.Errorf("%w: read descriptor %s: %w", ErrIO, renamed, err)
		}
		content := renames.Rewrite(string(raw))

		name, _ := manifest.ModelName()
		final := filepath.Join(outputDir, DescriptorFileName(name, content))
		if err := fileutil.WriteFile(final, []byte(content)); err != nil {
			return "", fmt.Errorf("%w: write descriptor: %w", ErrIO, err)
		}
		if final != src {
			if err := os.Remove(src); err != nil {
				logger.Debug("intermediate descriptor not removed", logging.String("path", src), logging.Error(err))
			}
		}
		logger.Debug("descriptor resolved",
			logging.String("costume", costume),
			logging.String("descriptor", filepath.Base(final)),
		)
		return final, nil
	}
	return "", ErrNoEncryptedDescriptor
}

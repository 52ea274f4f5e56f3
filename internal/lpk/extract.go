package lpk

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"rive2d/internal/fileutil"
	"rive2d/internal/logging"
)

// Result describes a finished extraction.
type Result struct {
	// DescriptorPath is the absolute path of the model descriptor.
	DescriptorPath string
	// Encrypted is true when a manifest drove the extraction.
	Encrypted  bool
	FormatType string
	ModelName  string
	Files      int
	Bytes      int64
	// Renamed maps hashed entry names to their output names.
	Renamed  RenameMap
	Duration time.Duration
}

// Extractor runs LPK extractions. The zero value is usable.
type Extractor struct {
	Logger *slog.Logger
	// SidecarName overrides the sidecar file name; empty means config.json.
	SidecarName string
}

// NewExtractor returns an Extractor logging under the "lpk" component.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{Logger: logging.NewComponentLogger(logger, "lpk")}
}

// Extract unpacks the package at containerPath into outputDir and returns the
// descriptor path. See Extractor.Extract.
func Extract(containerPath, outputDir string) (string, error) {
	res, err := (&Extractor{}).Extract(context.Background(), containerPath, outputDir)
	if err != nil {
		return "", err
	}
	return res.DescriptorPath, nil
}

// Extract clears outputDir, then either copies a plain package verbatim or
// decrypts an encrypted one, and finally locates the model descriptor.
// Failures abandon the run; outputDir may hold partial output until the next
// attempt clears it.
func (e *Extractor) Extract(ctx context.Context, containerPath, outputDir string) (*Result, error) {
	logger := e.logger().With(logging.String(logging.FieldContainer, filepath.Base(containerPath)))
	started := time.Now()

	if strings.TrimSpace(outputDir) == "" {
		return nil, fmt.Errorf("%w: output dir is required", ErrIO)
	}
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve output dir: %w", ErrIO, err)
	}
	absContainer, err := filepath.Abs(containerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve container path: %w", ErrIO, err)
	}
	if fileutil.Contains(absOut, absContainer) {
		return nil, fmt.Errorf("%w: output dir %s contains the package being extracted", ErrIO, absOut)
	}
	if err := fileutil.ResetDir(absOut); err != nil {
		return nil, fmt.Errorf("%w: reset output dir: %w", ErrIO, err)
	}

	container, err := OpenZip(absContainer)
	if err != nil {
		return nil, err
	}
	defer container.Close()

	pkg := e.classify(absContainer, container, logger)
	res, err := pkg.extract(ctx, container, absOut, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "lpk extraction failed", "lpk_extract_failed",
			logging.String("kind", pkg.kind()),
			logging.Error(err),
		)
		return nil, err
	}
	res.Duration = time.Since(started)
	logger.Info("lpk extracted",
		logging.String("kind", pkg.kind()),
		logging.String("descriptor", filepath.Base(res.DescriptorPath)),
		logging.Int("files", res.Files),
		logging.Int64("bytes", res.Bytes),
		logging.Duration("elapsed", res.Duration),
	)
	return res, nil
}

func (e *Extractor) logger() *slog.Logger {
	if e == nil || e.Logger == nil {
		return logging.NewNop()
	}
	return e.Logger
}

// classify decides once which of the two package shapes applies.
func (e *Extractor) classify(containerPath string, c Container, logger *slog.Logger) pkg {
	manifest, malformed := probeManifest(c)
	for _, err := range malformed {
		logging.WarnWithContext(logger, "manifest candidate unreadable; treating as plain package", "lpk_manifest_malformed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "package extracted without decryption"),
		)
	}
	if manifest == nil {
		return plainPackage{}
	}
	var side Sidecar
	if manifest.Variant() == VariantSidecar {
		name := strings.TrimSpace(e.sidecarName())
		side = loadSidecarNamed(containerPath, name, logger)
	}
	return encryptedPackage{manifest: manifest, sidecar: side}
}

func (e *Extractor) sidecarName() string {
	if e == nil || strings.TrimSpace(e.SidecarName) == "" {
		return SidecarName
	}
	return e.SidecarName
}

// pkg is one of plainPackage or encryptedPackage.
type pkg interface {
	kind() string
	extract(ctx context.Context, c Container, outputDir string, logger *slog.Logger) (*Result, error)
}

type plainPackage struct{}

func (plainPackage) kind() string { return "plain" }

func (plainPackage) extract(ctx context.Context, c Container, outputDir string, logger *slog.Logger) (*Result, error) {
	res := &Result{}
	for _, name := range c.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		target, err := fileutil.SafeJoin(outputDir, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}
		if strings.HasSuffix(name, "/") {
			if err := fileutil.EnsureDir(target); err != nil {
				return nil, fmt.Errorf("%w: create %s: %w", ErrIO, name, err)
			}
			continue
		}
		data, err := c.Read(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrIO, name, err)
		}
		if err := fileutil.WriteFile(target, data); err != nil {
			return nil, fmt.Errorf("%w: write %s: %w", ErrIO, name, err)
		}
		res.Files++
		res.Bytes += int64(len(data))
	}

	path, ok := FindDescriptor(outputDir)
	if !ok {
		return nil, ErrNoDescriptor
	}
	logger.Debug("plain package descriptor found", logging.String("descriptor", path))
	res.DescriptorPath = path
	return res, nil
}

type encryptedPackage struct {
	manifest *Manifest
	sidecar  Sidecar
}

func (encryptedPackage) kind() string { return "encrypted" }

func (p encryptedPackage) extract(ctx context.Context, c Container, outputDir string, logger *slog.Logger) (*Result, error) {
	logger = logger.With(
		logging.String("format", p.manifest.FormatType()),
		logging.String("key_variant", p.manifest.Variant().String()),
	)
	renames, stats, err := decryptEntries(ctx, decryptParams{
		container: c,
		outputDir: outputDir,
		manifest:  p.manifest,
		sidecar:   p.sidecar,
		logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	path, err := resolveDescriptor(outputDir, p.manifest, renames, logger)
	if err != nil {
		return nil, err
	}
	name, _ := p.manifest.ModelName()
	return &Result{
		DescriptorPath: path,
		Encrypted:      true,
		FormatType:     p.manifest.FormatType(),
		ModelName:      name,
		Files:          stats.files,
		Bytes:          stats.bytes,
		Renamed:        renames,
	}, nil
}

package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"rive2d/internal/config"
	"rive2d/internal/fileutil"
	"rive2d/internal/library"
	"rive2d/internal/logging"
	"rive2d/internal/lpk"
)

var (
	// ErrImportInProgress is returned when another import holds the model lock.
	ErrImportInProgress = errors.New("another import of this model is in progress")
	// ErrModelNotFound is returned when the input path does not exist.
	ErrModelNotFound = errors.New("model file not found")
	// ErrInvalidFormat is returned for descriptors without a .json extension.
	ErrInvalidFormat = errors.New("invalid model file format")
	// ErrOutputDirInUse is returned when a different package already owns the
	// library directory this package would extract into.
	ErrOutputDirInUse = errors.New("library directory belongs to another package")
)

// Result describes a recorded import.
type Result struct {
	ImportID       string        `json:"import_id"`
	Source         string        `json:"source"`
	OutputDir      string        `json:"output_dir"`
	DescriptorPath string        `json:"descriptor_path"`
	Name           string        `json:"name"`
	Encrypted      bool          `json:"encrypted"`
	FormatType     string        `json:"format_type,omitempty"`
	Files          int           `json:"files"`
	Bytes          int64         `json:"bytes"`
	Current        bool          `json:"current"`
	Duration       time.Duration `json:"duration_ns"`
}

// Service coordinates extraction and library bookkeeping.
type Service struct {
	cfg       *config.Config
	store     *library.Store
	extractor *lpk.Extractor
	logger    *slog.Logger
}

// New constructs an import service.
func New(cfg *config.Config, store *library.Store, logger *slog.Logger) (*Service, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("importer requires config and library store")
	}
	logger = logging.NewComponentLogger(logger, "importer")
	return &Service{
		cfg:       cfg,
		store:     store,
		extractor: &lpk.Extractor{SidecarName: cfg.Import.SidecarName},
		logger:    logger,
	}, nil
}

// Import dispatches on the file extension: .json files are recorded as
// descriptors, anything else is extracted as a package.
func (s *Service) Import(ctx context.Context, path string) (*Result, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return s.ImportDescriptor(ctx, path)
	}
	return s.ImportPackage(ctx, path)
}

// OutputDir returns the library directory a package extracts into.
func (s *Service) OutputDir(containerPath string) string {
	return filepath.Join(s.cfg.Paths.LibraryDir, modelKey(containerPath))
}

// ImportPackage extracts containerPath into the library and records the
// resulting descriptor.
func (s *Service) ImportPackage(ctx context.Context, containerPath string) (*Result, error) {
	absPath, err := filepath.Abs(containerPath)
	if err != nil {
		return nil, fmt.Errorf("resolve package path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, absPath)
		}
		return nil, fmt.Errorf("stat package: %w", err)
	}

	importID := uuid.NewString()
	ctx = logging.WithImportID(ctx, importID)
	logger := logging.WithContext(ctx, s.logger)

	lock, err := s.acquire(modelKey(absPath))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Debug("release import lock failed", logging.Error(err))
		}
	}()

	outputDir := s.OutputDir(absPath)
	if err := s.checkOwner(ctx, outputDir, absPath); err != nil {
		return nil, err
	}
	logger.Info("import started",
		logging.String(logging.FieldEventType, "import_start"),
		logging.String("output_dir", outputDir),
	)

	extractor := *s.extractor
	extractor.Logger = logger
	res, err := extractor.Extract(ctx, absPath, outputDir)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filepath.Base(absPath), err)
	}

	result := &Result{
		ImportID:       importID,
		Source:         absPath,
		OutputDir:      outputDir,
		DescriptorPath: res.DescriptorPath,
		Name:           displayName(res),
		Encrypted:      res.Encrypted,
		FormatType:     res.FormatType,
		Files:          res.Files,
		Bytes:          res.Bytes,
		Duration:       res.Duration,
	}
	if err := s.record(ctx, result); err != nil {
		return nil, err
	}
	logger.Info("import completed",
		logging.String(logging.FieldEventType, "import_complete"),
		logging.String("descriptor", res.DescriptorPath),
		logging.Bool("current", result.Current),
	)
	return result, nil
}

// ImportDescriptor records an already unpacked .json descriptor without
// copying or extracting anything.
func (s *Service) ImportDescriptor(ctx context.Context, path string) (*Result, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve descriptor path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, absPath)
		}
		return nil, fmt.Errorf("stat descriptor: %w", err)
	}
	if info.IsDir() || !strings.EqualFold(filepath.Ext(absPath), ".json") {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, absPath)
	}
	if _, err := os.ReadFile(absPath); err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}

	importID := uuid.NewString()
	ctx = logging.WithContainer(logging.WithImportID(ctx, importID), filepath.Base(absPath))
	result := &Result{
		ImportID:       importID,
		Source:         absPath,
		OutputDir:      filepath.Dir(absPath),
		DescriptorPath: absPath,
		Name:           library.DisplayName(absPath),
	}
	if err := s.record(ctx, result); err != nil {
		return nil, err
	}
	logging.WithContext(ctx, s.logger).Info("descriptor recorded",
		logging.String(logging.FieldEventType, "import_complete"),
		logging.String("descriptor", absPath),
	)
	return result, nil
}

func (s *Service) record(ctx context.Context, result *Result) error {
	err := s.store.UpsertModel(ctx, library.Model{
		Path:       result.DescriptorPath,
		Name:       result.Name,
		Source:     result.Source,
		Encrypted:  result.Encrypted,
		FormatType: result.FormatType,
	})
	if err != nil {
		return fmt.Errorf("record model: %w", err)
	}
	if s.cfg.Import.MakeCurrent {
		if err := s.store.SetCurrentModel(ctx, result.DescriptorPath); err != nil {
			return fmt.Errorf("select model: %w", err)
		}
		result.Current = true
	}
	return nil
}

// checkOwner refuses to reuse outputDir when a recorded model below it came
// from a different source, since extraction clears the directory first.
func (s *Service) checkOwner(ctx context.Context, outputDir, source string) error {
	models, err := s.store.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("check library directory owner: %w", err)
	}
	for _, m := range models {
		if !fileutil.Contains(outputDir, m.Path) || m.Source == source {
			continue
		}
		return fmt.Errorf("%w: %s was imported from %s; remove %s first", ErrOutputDirInUse, outputDir, m.Source, m.Path)
	}
	return nil
}

func (s *Service) acquire(key string) (*flock.Flock, error) {
	lockDir := s.cfg.LockDir()
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	lock := flock.New(filepath.Join(lockDir, key+".lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire import lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrImportInProgress, key)
	}
	return lock, nil
}

// modelKey names the per-model output directory and lock file.
func modelKey(containerPath string) string {
	base := filepath.Base(containerPath)
	return lpk.SanitizeName(strings.TrimSuffix(base, filepath.Ext(base)))
}

func displayName(res *lpk.Result) string {
	if strings.TrimSpace(res.ModelName) != "" {
		return res.ModelName
	}
	return library.DisplayName(res.DescriptorPath)
}

package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"rive2d/internal/config"
)

// Store manages the model catalogue backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Model is one imported descriptor.
type Model struct {
	ID         int64
	Path       string
	Name       string
	Source     string
	Encrypted  bool
	FormatType string
	AddedAt    time.Time
}

// Open initializes or connects to the library database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("library requires config")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath opens the database file at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// AddModel records a descriptor. Paths already present are left untouched.
func (s *Store) AddModel(ctx context.Context, m Model) error {
	return s.insertModel(ctx, m, `INSERT OR IGNORE INTO models (path, name, source, encrypted, format_type, added_at)
         VALUES (?, ?, ?, ?, ?, ?)`)
}

// UpsertModel records a descriptor, refreshing the metadata of an existing
// row in place. Settings that point at the path are left alone.
func (s *Store) UpsertModel(ctx context.Context, m Model) error {
	return s.insertModel(ctx, m, `INSERT INTO models (path, name, source, encrypted, format_type, added_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
             name = excluded.name,
             source = excluded.source,
             encrypted = excluded.encrypted,
             format_type = excluded.format_type,
             added_at = excluded.added_at`)
}

func (s *Store) insertModel(ctx context.Context, m Model, query string) error {
	path := strings.TrimSpace(m.Path)
	if path == "" {
		return errors.New("model path is required")
	}
	name := strings.TrimSpace(m.Name)
	if name == "" {
		name = DisplayName(path)
	}
	added := m.AddedAt
	if added.IsZero() {
		added = time.Now()
	}
	_, err := s.db.ExecContext(ctx, query,
		path, name, m.Source, boolToInt(m.Encrypted), m.FormatType, added.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("insert model: %w", err)
	}
	return nil
}

// RemoveModel deletes a descriptor and clears current_model if it pointed at it.
func (s *Store) RemoveModel(ctx context.Context, path string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin remove tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM models WHERE path = ?`, path)
	if err != nil {
		return false, fmt.Errorf("delete model: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM settings WHERE key = ? AND value = ?`, SettingCurrentModel, path); err != nil {
		return false, fmt.Errorf("clear current model: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit remove: %w", err)
	}
	return removed > 0, nil
}

// GetModel returns the model stored under path, or nil when absent.
func (s *Store) GetModel(ctx context.Context, path string) (*Model, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM models WHERE path = ?`, path)
	m, err := scanModel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get model: %w", err)
	}
	return m, nil
}

// ListModels returns all models, most recently added first.
func (s *Store) ListModels(ctx context.Context) ([]Model, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+modelColumns+` FROM models ORDER BY added_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	var models []Model
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan model: %w", err)
		}
		models = append(models, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate models: %w", err)
	}
	return models, nil
}

// SetCurrentModel selects path as the current model, recording it if needed.
func (s *Store) SetCurrentModel(ctx context.Context, path string) error {
	if err := s.AddModel(ctx, Model{Path: path}); err != nil {
		return err
	}
	return s.SetSetting(ctx, SettingCurrentModel, path)
}

// timestampLayout has a fixed width so added_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const modelColumns = "id, path, name, source, encrypted, format_type, added_at"

func scanModel(scanner interface{ Scan(dest ...any) error }) (*Model, error) {
	var (
		m         Model
		encrypted int64
		addedRaw  string
	)
	if err := scanner.Scan(&m.ID, &m.Path, &m.Name, &m.Source, &encrypted, &m.FormatType, &addedRaw); err != nil {
		return nil, err
	}
	m.Encrypted = encrypted != 0
	if ts, err := time.Parse(timestampLayout, addedRaw); err == nil {
		m.AddedAt = ts
	}
	return &m, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// DisplayName derives a human readable name from a descriptor path, e.g.
// "/x/hiyori_pro.model3.json" becomes "Hiyori Pro".
func DisplayName(path string) string {
	base := filepath.Base(path)
	for _, suffix := range []string{".model3.json", ".model.json", ".json"} {
		if trimmed, ok := strings.CutSuffix(base, suffix); ok {
			base = trimmed
			break
		}
	}
	return titleCase(base)
}

package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// Setting keys understood by the viewer.
const (
	SettingCurrentModel = "current_model"
	SettingShowBorder   = "show_border"
	SettingModelX       = "model_x"
	SettingModelY       = "model_y"
	SettingModelScale   = "model_scale"
	SettingTapMotion    = "tap_motion"
	SettingShowHitAreas = "show_hit_areas"
	SettingLockModel    = "lock_model"
)

// KnownSettings lists the keys accepted by the CLI, in display order.
var KnownSettings = []string{
	SettingCurrentModel,
	SettingShowBorder,
	SettingModelX,
	SettingModelY,
	SettingModelScale,
	SettingTapMotion,
	SettingShowHitAreas,
	SettingLockModel,
}

// Snapshot is the viewer state assembled from the settings and models tables.
type Snapshot struct {
	CurrentModel string   `json:"current_model,omitempty"`
	Models       []string `json:"models"`
	ShowBorder   bool     `json:"show_border"`
	ModelX       *float64 `json:"model_x,omitempty"`
	ModelY       *float64 `json:"model_y,omitempty"`
	ModelScale   *float64 `json:"model_scale,omitempty"`
	TapMotion    bool     `json:"tap_motion"`
	ShowHitAreas bool     `json:"show_hit_areas"`
	LockModel    bool     `json:"lock_model"`
}

// GetSetting returns the stored value for key and whether it was present.
func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// DeleteSettings removes the given keys.
func (s *Store) DeleteSettings(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete setting %s: %w", key, err)
		}
	}
	return nil
}

// Snapshot loads the full viewer state. Missing or unparsable values fall
// back to their defaults (tap_motion on, everything else off or unset).
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	values := make(map[string]string)
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}

	models, err := s.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(models))
	for _, m := range models {
		paths = append(paths, m.Path)
	}

	return &Snapshot{
		CurrentModel: values[SettingCurrentModel],
		Models:       paths,
		ShowBorder:   boolSetting(values, SettingShowBorder, false),
		ModelX:       floatSetting(values, SettingModelX),
		ModelY:       floatSetting(values, SettingModelY),
		ModelScale:   floatSetting(values, SettingModelScale),
		TapMotion:    boolSetting(values, SettingTapMotion, true),
		ShowHitAreas: boolSetting(values, SettingShowHitAreas, false),
		LockModel:    boolSetting(values, SettingLockModel, false),
	}, nil
}

func boolSetting(values map[string]string, key string, fallback bool) bool {
	value, ok := values[key]
	if !ok {
		return fallback
	}
	return value == "true"
}

func floatSetting(values map[string]string, key string) *float64 {
	value, ok := values[key]
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}

// NormalizeSetting validates value for key and returns its canonical form.
func NormalizeSetting(key, value string) (string, error) {
	switch key {
	case SettingCurrentModel:
		if value == "" {
			return "", errors.New("current_model requires a descriptor path")
		}
		return value, nil
	case SettingShowBorder, SettingTapMotion, SettingShowHitAreas, SettingLockModel:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("%s expects true or false, got %q", key, value)
		}
		return strconv.FormatBool(b), nil
	case SettingModelX, SettingModelY, SettingModelScale:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return "", fmt.Errorf("%s expects a number, got %q", key, value)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("unknown setting %q", key)
}

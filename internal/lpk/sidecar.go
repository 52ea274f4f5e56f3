package lpk

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"rive2d/internal/logging"
)

// SidecarName is the external config file shipped next to STM packages.
const SidecarName = "config.json"

// Sidecar carries the extra key material of STM packages.
type Sidecar struct {
	FileID   string `json:"fileId"`
	MetaData string `json:"metaData"`
}

// LoadSidecar reads config.json from the container's directory. A missing or
// unreadable file yields the zero Sidecar; keys derived from it will usually
// fail to decrypt hashed entries, which is tolerated.
func LoadSidecar(containerPath string, logger *slog.Logger) Sidecar {
	return loadSidecarNamed(containerPath, SidecarName, logger)
}

func loadSidecarNamed(containerPath, name string, logger *slog.Logger) Sidecar {
	if logger == nil {
		logger = logging.NewNop()
	}
	path := filepath.Join(filepath.Dir(containerPath), name)
	data, err := os.ReadFile(path)
	if err == nil {
		var side Sidecar
		if err = json.Unmarshal(data, &side); err == nil {
			logger.Debug("loaded sidecar config", logging.String("path", path))
			return side
		}
	}
	logging.WarnWithContext(logger, "sidecar config unavailable; decryption may fail", "lpk_sidecar_missing",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "place the package's config.json next to the .lpk file"),
		logging.String(logging.FieldImpact, "hashed entries are decrypted with incomplete key material"),
	)
	return Sidecar{}
}

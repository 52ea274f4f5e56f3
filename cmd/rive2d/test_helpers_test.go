package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rive2d/internal/config"
	"rive2d/internal/lpk"
	"rive2d/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("RIVE2D_LIBRARY_DIR", "")

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(homeDir, ".config", "rive2d", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nlibrary_dir = %q\ndata_dir = %q\n\n[logging]\nlevel = \"error\"\ndir = \"\"\n\n[import]\nmake_current = %t\n",
		cfg.Paths.LibraryDir,
		cfg.Paths.DataDir,
		cfg.Import.MakeCurrent,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

const fixtureDescriptorEntry = "38ce3c662ee7afaaecb6be49ee76d171.bin3"

// writeFixturePackage builds a small encrypted package named after name.
func writeFixturePackage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name+".lpk")
	descriptor := []byte(`{"Version":3,"FileReferences":{"Moc":"m.moc3"}}`)
	testsupport.WriteZip(t, path,
		testsupport.ZipEntry{Name: lpk.ManifestName, Data: []byte(`{"type":"STD_2_0","encrypt":"true","id":"5","name":"` + name + `",` +
			`"list":[{"costume":[{"path":"` + fixtureDescriptorEntry + `"}]}]}`)},
		testsupport.ZipEntry{Name: fixtureDescriptorEntry, Data: lpk.Transform(descriptor, lpk.HashString("5"+fixtureDescriptorEntry))},
	)
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

package lpk_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rive2d/internal/lpk"
	"rive2d/internal/testsupport"
)

const (
	descEntry = "38ce3c662ee7afaaecb6be49ee76d171.bin3"
	mocEntry  = "c6f00db7036d812b27ba3b7f291412c5.bin3"
	texEntry  = "4a301072dec6b6a49050e5b294cd7983.bin"
)

var (
	mocData = append([]byte("MOC3"), bytes.Repeat([]byte{0x07}, 3000)...)
	texData = append([]byte{0x89, 0x50, 0x4E, 0x47}, bytes.Repeat([]byte{0x42}, 1500)...)
)

func encryptedFixture(t *testing.T, dir, manifest string, key func(entry string) int64) string {
	t.Helper()
	descriptor := []byte(`{"Version":3,"FileReferences":{"Moc":"` + mocEntry + `","Textures":["` + texEntry + `"]}}`)
	path := filepath.Join(dir, "model.lpk")
	testsupport.WriteZip(t, path,
		testsupport.ZipEntry{Name: lpk.ManifestName, Data: []byte(manifest)},
		testsupport.ZipEntry{Name: descEntry, Data: lpk.Transform(descriptor, key(descEntry))},
		testsupport.ZipEntry{Name: mocEntry, Data: lpk.Transform(mocData, key(mocEntry))},
		testsupport.ZipEntry{Name: texEntry, Data: lpk.Transform(texData, key(texEntry))},
		testsupport.ZipEntry{Name: "readme.txt", Data: []byte("plain")},
	)
	return path
}

func TestExtractPlainPackage(t *testing.T) {
	dir := t.TempDir()
	container := filepath.Join(dir, "plain.lpk")
	testsupport.WriteZip(t, container,
		testsupport.ZipEntry{Name: "runtime/", Data: nil},
		testsupport.ZipEntry{Name: "runtime/x.model3.json", Data: []byte(`{"Version":3}`)},
		testsupport.ZipEntry{Name: "runtime/x.moc3", Data: mocData},
	)
	out := filepath.Join(dir, "out")

	path, err := lpk.Extract(container, out)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if path != filepath.Join(out, "runtime", "x.model3.json") {
		t.Fatalf("unexpected descriptor %q", path)
	}
	if !filepath.IsAbs(path) {
		t.Fatalf("descriptor path should be absolute: %q", path)
	}
	got, err := os.ReadFile(filepath.Join(out, "runtime", "x.moc3"))
	if err != nil || !bytes.Equal(got, mocData) {
		t.Fatalf("plain entry not copied verbatim (err=%v)", err)
	}
}

func TestExtractEncryptedStandard(t *testing.T) {
	dir := t.TempDir()
	manifest := `{"type":"STD_2_0","encrypt":"true","id":"1234","name":"My Model!",
		"list":[{"costume":[{"path":"ffffffffffffffffffffffffffffffff.bin3"},{"path":"` + descEntry + `"}]}]}`
	container := encryptedFixture(t, dir, manifest, func(entry string) int64 {
		return lpk.HashString("1234" + entry)
	})
	out := filepath.Join(dir, "out")

	res, err := lpk.NewExtractor(nil).Extract(context.Background(), container, out)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !res.Encrypted || res.FormatType != "STD_2_0" || res.ModelName != "My Model!" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.DescriptorPath != filepath.Join(out, "My_Model_.model3.json") {
		t.Fatalf("unexpected descriptor %q", res.DescriptorPath)
	}
	if res.Files != 4 {
		t.Fatalf("expected 4 files, got %d", res.Files)
	}

	content, err := os.ReadFile(res.DescriptorPath)
	if err != nil {
		t.Fatalf("read descriptor: %v", err)
	}
	want := `{"Version":3,"FileReferences":{"Moc":"c6f00db7036d812b27ba3b7f291412c5.moc3","Textures":["4a301072dec6b6a49050e5b294cd7983.png"]}}`
	if string(content) != want {
		t.Fatalf("descriptor = %s\nwant %s", content, want)
	}

	tex, err := os.ReadFile(filepath.Join(out, "4a301072dec6b6a49050e5b294cd7983.png"))
	if err != nil || !bytes.Equal(tex, texData) {
		t.Fatalf("texture not decrypted (err=%v)", err)
	}
	if _, err := os.Stat(filepath.Join(out, "38ce3c662ee7afaaecb6be49ee76d171.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("intermediate descriptor should be removed, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "readme.txt")); err != nil {
		t.Fatalf("non-hashed entry missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, lpk.ManifestName)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("manifest should not be extracted, stat err=%v", err)
	}
}

func TestExtractEncryptedSidecarVariant(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, lpk.SidecarName), []byte(`{"fileId":"F9","metaData":"meta"}`))
	manifest := `{"type":"STM_1_0","encrypt":"true","id":"77","list":[{"costume":[{"path":"` + descEntry + `"}]}]}`
	container := encryptedFixture(t, dir, manifest, func(entry string) int64 {
		return lpk.HashString("77" + "F9" + entry + "meta")
	})

	path, err := lpk.Extract(container, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if filepath.Base(path) != "model.model3.json" {
		t.Fatalf("unexpected descriptor %q", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read descriptor: %v", err)
	}
	if !strings.Contains(string(content), "c6f00db7036d812b27ba3b7f291412c5.moc3") {
		t.Fatalf("references not rewritten: %s", content)
	}
}

func TestExtractSidecarNameOverride(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "keys.json"), []byte(`{"fileId":"A","metaData":"B"}`))
	manifest := `{"type":"STM_1_0","encrypt":"true","id":"1","list":[{"costume":[{"path":"` + descEntry + `"}]}]}`
	container := encryptedFixture(t, dir, manifest, func(entry string) int64 {
		return lpk.HashString("1" + "A" + entry + "B")
	})

	ex := &lpk.Extractor{SidecarName: "keys.json"}
	res, err := ex.Extract(context.Background(), container, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if filepath.Base(res.DescriptorPath) != "model.model3.json" {
		t.Fatalf("unexpected descriptor %q", res.DescriptorPath)
	}
}

func TestExtractMissingSidecarIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	manifest := `{"type":"STM_1_0","encrypt":"true","id":"77","list":[{"costume":[{"path":"` + descEntry + `"}]}]}`
	container := encryptedFixture(t, dir, manifest, func(entry string) int64 {
		return lpk.HashString("77" + "F9" + entry + "meta")
	})

	res, err := lpk.NewExtractor(nil).Extract(context.Background(), container, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !res.Encrypted || !lpk.IsDescriptorName(res.DescriptorPath) {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestExtractUnencryptedManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := `{"type":"STD_1_0","encrypt":"false","id":"1","name":"Raw","list":[{"costume":[{"path":"` + descEntry + `"}]}]}`
	container := filepath.Join(dir, "raw.lpk")
	testsupport.WriteZip(t, container,
		testsupport.ZipEntry{Name: lpk.ManifestName, Data: []byte(manifest)},
		testsupport.ZipEntry{Name: descEntry, Data: []byte(`{"model":"` + mocEntry + `"}`)},
		testsupport.ZipEntry{Name: mocEntry, Data: []byte("moc\x00legacy")},
	)

	path, err := lpk.Extract(container, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if filepath.Base(path) != "Raw.model.json" {
		t.Fatalf("unexpected descriptor %q", path)
	}
	content, _ := os.ReadFile(path)
	if string(content) != `{"model":"c6f00db7036d812b27ba3b7f291412c5.moc"}` {
		t.Fatalf("unexpected descriptor content %s", content)
	}
}

func TestExtractNoDescriptor(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.lpk")
	testsupport.WriteZip(t, plain, testsupport.ZipEntry{Name: "texture.png", Data: texData})

	if _, err := lpk.Extract(plain, filepath.Join(dir, "a")); !errors.Is(err, lpk.ErrNoDescriptor) {
		t.Fatalf("expected ErrNoDescriptor, got %v", err)
	}

	enc := filepath.Join(dir, "enc.lpk")
	testsupport.WriteZip(t, enc,
		testsupport.ZipEntry{Name: lpk.ManifestName, Data: []byte(`{"encrypt":"true","id":"1","list":[{"costume":[{"path":"` + descEntry + `"}]}]}`)},
		testsupport.ZipEntry{Name: "texture.png", Data: texData},
	)
	if _, err := lpk.Extract(enc, filepath.Join(dir, "b")); !errors.Is(err, lpk.ErrNoEncryptedDescriptor) {
		t.Fatalf("expected ErrNoEncryptedDescriptor, got %v", err)
	}
}

func TestExtractMalformedManifestFallsBack(t *testing.T) {
	dir := t.TempDir()
	container := filepath.Join(dir, "broken.lpk")
	testsupport.WriteZip(t, container,
		testsupport.ZipEntry{Name: lpk.ManifestName, Data: []byte("{not json")},
		testsupport.ZipEntry{Name: "m.model.json", Data: []byte(`{"model":"m.moc"}`)},
	)

	res, err := lpk.NewExtractor(nil).Extract(context.Background(), container, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Encrypted || filepath.Base(res.DescriptorPath) != "m.model.json" {
		t.Fatalf("unexpected result %+v", res)
	}
}

// snapshotDir maps every file below dir to its contents.
func snapshotDir(t *testing.T, dir string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	return files
}

func requireSameTree(t *testing.T, first, second map[string]string) {
	t.Helper()
	if len(first) != len(second) {
		t.Fatalf("file count changed between runs: %d vs %d", len(first), len(second))
	}
	for name, data := range first {
		other, ok := second[name]
		if !ok {
			t.Fatalf("%s missing after re-run", name)
		}
		if other != data {
			t.Fatalf("%s differs after re-run", name)
		}
	}
}

func TestExtractClearsOutputDir(t *testing.T) {
	dir := t.TempDir()
	container := filepath.Join(dir, "plain.lpk")
	testsupport.WriteZip(t, container, testsupport.ZipEntry{Name: "x.model3.json", Data: []byte(`{"Version":3}`)})

	out := filepath.Join(dir, "out")
	testsupport.WriteFile(t, filepath.Join(out, "stale", "old.model3.json"), []byte("{}"))

	first, err := lpk.Extract(container, out)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "stale")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stale output should be removed, stat err=%v", err)
	}
	before := snapshotDir(t, out)

	second, err := lpk.Extract(container, out)
	if err != nil || second != first {
		t.Fatalf("re-run = %q, %v; want %q", second, err, first)
	}
	requireSameTree(t, before, snapshotDir(t, out))
}

func TestExtractEncryptedRerunIsIdentical(t *testing.T) {
	dir := t.TempDir()
	manifest := `{"type":"STD_2_0","encrypt":"true","id":"1234","name":"Rerun",
		"list":[{"costume":[{"path":"` + descEntry + `"}]}]}`
	container := encryptedFixture(t, dir, manifest, func(entry string) int64 {
		return lpk.HashString("1234" + entry)
	})
	out := filepath.Join(dir, "out")

	first, err := lpk.Extract(container, out)
	if err != nil {
		t.Fatalf("first Extract: %v", err)
	}
	before := snapshotDir(t, out)
	if len(before) != 4 {
		t.Fatalf("expected 4 output files, got %v", before)
	}
	if !strings.Contains(before["Rerun.model3.json"], "4a301072dec6b6a49050e5b294cd7983.png") {
		t.Fatalf("references not rewritten: %s", before["Rerun.model3.json"])
	}

	testsupport.WriteFile(t, filepath.Join(out, "leftover.bin"), []byte("x"))
	second, err := lpk.Extract(container, out)
	if err != nil {
		t.Fatalf("second Extract: %v", err)
	}
	if second != first {
		t.Fatalf("descriptor path changed: %q vs %q", second, first)
	}
	requireSameTree(t, before, snapshotDir(t, out))
}

func TestExtractRejectsBlankOutputDir(t *testing.T) {
	dir := t.TempDir()
	container := filepath.Join(dir, "plain.lpk")
	testsupport.WriteZip(t, container, testsupport.ZipEntry{Name: "x.model3.json", Data: []byte(`{"Version":3}`)})
	keep := filepath.Join(dir, "precious.txt")
	testsupport.WriteFile(t, keep, []byte("keep me"))
	t.Chdir(dir)

	for _, out := range []string{"", "   "} {
		if _, err := lpk.Extract(container, out); !errors.Is(err, lpk.ErrIO) {
			t.Fatalf("Extract(%q): expected ErrIO, got %v", out, err)
		}
	}
	if _, err := os.Stat(keep); err != nil {
		t.Fatalf("working directory was modified: %v", err)
	}
}

func TestExtractRejectsOutputDirHoldingContainer(t *testing.T) {
	dir := t.TempDir()
	container := filepath.Join(dir, "pkgs", "plain.lpk")
	testsupport.WriteZip(t, container, testsupport.ZipEntry{Name: "x.model3.json", Data: []byte(`{"Version":3}`)})

	for _, out := range []string{filepath.Join(dir, "pkgs"), dir} {
		if _, err := lpk.Extract(container, out); !errors.Is(err, lpk.ErrIO) {
			t.Fatalf("Extract into %s: expected ErrIO, got %v", out, err)
		}
		if _, err := os.Stat(container); err != nil {
			t.Fatalf("container removed by extraction into %s: %v", out, err)
		}
	}
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	container := filepath.Join(dir, "slip.lpk")
	testsupport.WriteZip(t, container,
		testsupport.ZipEntry{Name: "../escaped.txt", Data: []byte("x")},
		testsupport.ZipEntry{Name: "x.model3.json", Data: []byte(`{"Version":3}`)},
	)

	_, err := lpk.Extract(container, filepath.Join(dir, "out"))
	if !errors.Is(err, lpk.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escaped.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("entry escaped the output dir, stat err=%v", err)
	}
}

func TestExtractMissingContainer(t *testing.T) {
	dir := t.TempDir()
	_, err := lpk.Extract(filepath.Join(dir, "nope.lpk"), filepath.Join(dir, "out"))
	if !errors.Is(err, lpk.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
}

func TestExtractCanceled(t *testing.T) {
	dir := t.TempDir()
	container := filepath.Join(dir, "plain.lpk")
	testsupport.WriteZip(t, container, testsupport.ZipEntry{Name: "x.model3.json", Data: []byte(`{"Version":3}`)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := lpk.NewExtractor(nil).Extract(ctx, container, filepath.Join(dir, "out")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

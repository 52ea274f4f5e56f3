package lpk

import "testing"

func TestManifestAliases(t *testing.T) {
	if got := ManifestHash(); got != "1d862f7d02e6008f4550188a31ca654f" {
		t.Fatalf("ManifestHash = %q", got)
	}
	aliases := ManifestAliases()
	want := []string{"config.mlve", "1d862f7d02e6008f4550188a31ca654f.bin", "1d862f7d02e6008f4550188a31ca654f"}
	if len(aliases) != len(want) {
		t.Fatalf("aliases = %v", aliases)
	}
	for i := range want {
		if aliases[i] != want[i] {
			t.Fatalf("alias %d = %q, want %q", i, aliases[i], want[i])
		}
	}
}

func TestLocateManifestOrder(t *testing.T) {
	c := newMemContainer().
		add("1d862f7d02e6008f4550188a31ca654f", []byte(`{"id":"bare"}`)).
		add("1d862f7d02e6008f4550188a31ca654f.bin", []byte(`{"id":"bin"}`))

	m, ok := LocateManifest(c)
	if !ok {
		t.Fatal("expected manifest")
	}
	if m.ModelID() != "bin" {
		t.Fatalf("expected .bin alias to win, got %q", m.ModelID())
	}

	c.add("config.mlve", []byte(`{"id":"literal"}`))
	m, _ = LocateManifest(c)
	if m.ModelID() != "literal" {
		t.Fatalf("expected literal name to win, got %q", m.ModelID())
	}
}

func TestLocateManifestMalformedFallsThrough(t *testing.T) {
	c := newMemContainer().
		add("config.mlve", []byte("not json")).
		add("1d862f7d02e6008f4550188a31ca654f", []byte(`{"id":"bare"}`))

	m, malformed := probeManifest(c)
	if m == nil || m.ModelID() != "bare" {
		t.Fatalf("expected fallback to bare alias, got %+v", m)
	}
	if len(malformed) != 1 {
		t.Fatalf("expected one malformed candidate, got %v", malformed)
	}

	only := newMemContainer().add("config.mlve", []byte("{"))
	if _, ok := LocateManifest(only); ok {
		t.Fatal("malformed manifest should be treated as absent")
	}
	if _, ok := LocateManifest(newMemContainer()); ok {
		t.Fatal("empty container should have no manifest")
	}
}

func TestManifestAccessors(t *testing.T) {
	m, err := ParseManifest([]byte(`{
		"type": "STM_1_0",
		"encrypt": "true",
		"id": "123",
		"name": "Hiyori",
		"list": [
			{"avatar": "a.png", "costume": [{"name": "one", "path": "p1.bin3"}, {"name": "two", "path": "p2.bin3"}]},
			{"costume": [{"path": "p3.bin3"}]}
		]
	}`))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if !m.Encrypted() || m.Variant() != VariantSidecar || m.FormatType() != "STM_1_0" {
		t.Fatalf("unexpected flags: encrypted=%v variant=%v type=%q", m.Encrypted(), m.Variant(), m.FormatType())
	}
	if name, ok := m.ModelName(); !ok || name != "Hiyori" {
		t.Fatalf("ModelName = %q, %v", name, ok)
	}
	paths := m.CostumePaths()
	if len(paths) != 3 || paths[0] != "p1.bin3" || paths[2] != "p3.bin3" {
		t.Fatalf("CostumePaths = %v", paths)
	}

	empty, err := ParseManifest([]byte(`{"encrypt":"yes","type":"STD_2_0"}`))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if empty.Encrypted() {
		t.Fatal("only the literal string \"true\" enables decryption")
	}
	if empty.Variant() != VariantStandard || empty.ModelID() != "" {
		t.Fatalf("unexpected defaults: %v %q", empty.Variant(), empty.ModelID())
	}
	if _, ok := empty.ModelName(); ok {
		t.Fatal("expected absent name")
	}
}

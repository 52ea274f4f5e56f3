package lpk

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// ManifestName is the literal manifest entry name inside an LPK.
const ManifestName = "config.mlve"

// FormatVariant selects the key material layout.
type FormatVariant int

const (
	// VariantStandard covers STD_1_0 / STD_2_0 and unknown types: key = id + entry.
	VariantStandard FormatVariant = iota
	// VariantSidecar covers STM_* packages whose key mixes in config.json values.
	VariantSidecar
)

func (v FormatVariant) String() string {
	if v == VariantSidecar {
		return "sidecar"
	}
	return "standard"
}

// Manifest is the decoded config.mlve document.
type Manifest struct {
	Type       *string     `json:"type"`
	Encrypt    *string     `json:"encrypt"`
	ID         *string     `json:"id"`
	Name       *string     `json:"name"`
	Characters []Character `json:"list"`
}

// Character groups the costumes of one selectable character.
type Character struct {
	Avatar   string    `json:"avatar"`
	Costumes []Costume `json:"costume"`
}

// Costume points at the (hashed) entry that decrypts to a model descriptor.
type Costume struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Encrypted reports whether payload entries must be decrypted.
func (m *Manifest) Encrypted() bool {
	return m.Encrypt != nil && *m.Encrypt == "true"
}

// Variant reports the key derivation layout declared by the manifest type.
func (m *Manifest) Variant() FormatVariant {
	if m.Type != nil && strings.HasPrefix(*m.Type, "STM") {
		return VariantSidecar
	}
	return VariantStandard
}

// ModelID returns the model identifier or "" when absent.
func (m *Manifest) ModelID() string {
	if m.ID == nil {
		return ""
	}
	return *m.ID
}

// ModelName returns the declared model name and whether one was present.
func (m *Manifest) ModelName() (string, bool) {
	if m.Name == nil {
		return "", false
	}
	return *m.Name, true
}

// FormatType returns the raw manifest type string.
func (m *Manifest) FormatType() string {
	if m.Type == nil {
		return ""
	}
	return *m.Type
}

// CostumePaths flattens the character/costume tree in manifest order.
func (m *Manifest) CostumePaths() []string {
	var paths []string
	for _, ch := range m.Characters {
		for _, c := range ch.Costumes {
			paths = append(paths, c.Path)
		}
	}
	return paths
}

// ManifestHash is the MD5 hex digest of ManifestName, used by packages that
// hide the manifest under a hashed entry name.
func ManifestHash() string {
	sum := md5.Sum([]byte(ManifestName))
	return hex.EncodeToString(sum[:])
}

// ManifestAliases lists the candidate manifest entry names in lookup order.
func ManifestAliases() []string {
	hashed := ManifestHash()
	return []string{ManifestName, hashed + ".bin", hashed}
}

// LocateManifest returns the first candidate entry that exists and decodes.
// A missing or undecodable manifest is not an error: it marks a plain package.
func LocateManifest(c Container) (*Manifest, bool) {
	m, _ := probeManifest(c)
	return m, m != nil
}

// probeManifest also reports candidates that were present but failed to
// decode so the caller can surface them.
func probeManifest(c Container) (*Manifest, []error) {
	var malformed []error
	for _, name := range ManifestAliases() {
		data, err := c.Read(name)
		if err != nil {
			continue
		}
		m, err := ParseManifest(data)
		if err != nil {
			malformed = append(malformed, fmt.Errorf("%s: %w", name, err))
			continue
		}
		return m, malformed
	}
	return nil, malformed
}

// ParseManifest decodes a manifest document.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func isManifestEntry(name string) bool {
	for _, alias := range ManifestAliases() {
		if name == alias {
			return true
		}
	}
	return false
}

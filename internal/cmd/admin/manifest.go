package admin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest lists font files to seed into the catalog. Relative paths resolve
// against the manifest's directory.
type Manifest struct {
	UploadedBy string          `yaml:"uploaded_by"`
	Fonts      []ManifestEntry `yaml:"fonts"`
}

// ManifestEntry names one font file.
type ManifestEntry struct {
	Path       string `yaml:"path"`
	UploadedBy string `yaml:"uploaded_by,omitempty"`
}

// LoadManifest reads and validates a seed manifest.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if len(manifest.Fonts) == 0 {
		return Manifest{}, errors.New("manifest lists no fonts")
	}
	base := filepath.Dir(path)
	for i, entry := range manifest.Fonts {
		entry.Path = strings.TrimSpace(entry.Path)
		if entry.Path == "" {
			return Manifest{}, fmt.Errorf("manifest font %d: path is required", i)
		}
		if !filepath.IsAbs(entry.Path) {
			entry.Path = filepath.Join(base, entry.Path)
		}
		if strings.TrimSpace(entry.UploadedBy) == "" {
			entry.UploadedBy = strings.TrimSpace(manifest.UploadedBy)
		}
		manifest.Fonts[i] = entry
	}
	return manifest, nil
}

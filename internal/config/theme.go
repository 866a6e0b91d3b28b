package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formwizard/pkg/render"
)

// LoadManifest reads a go-theme manifest from a JSON or YAML file.
func LoadManifest(path string) (*theme.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read theme %s: %w", path, err)
	}
	manifest, err := DecodeManifest(data)
	if err != nil {
		return nil, fmt.Errorf("config: theme %s: %w", path, err)
	}
	return manifest, nil
}

// DecodeManifest decodes manifest bytes. YAML is a superset of JSON so both
// encodings go through the same parser.
func DecodeManifest(data []byte) (*theme.Manifest, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	manifest := &theme.Manifest{}
	if err := mapstructure.Decode(raw, manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if strings.TrimSpace(manifest.Name) == "" {
		return nil, errors.New("manifest name is required")
	}
	return manifest, nil
}

// LoadCatalog reads a translation catalog keyed by locale and message key.
func LoadCatalog(path string) (render.MapTranslator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read catalog %s: %w", path, err)
	}
	var catalog map[string]map[string]string
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("config: catalog %s: %w", path, err)
	}
	return render.MapTranslator(catalog), nil
}

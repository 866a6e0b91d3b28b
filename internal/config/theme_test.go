package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeManifest(t *testing.T) {
	manifest, err := DecodeManifest([]byte(`{
  "name": "acme",
  "version": "1.0.0",
  "tokens": {"brand": "#123456"},
  "templates": {"forms.text": "themes/acme/text.tmpl"},
  "assets": {"prefix": "/static/acme", "files": {"stylesheet": "theme.css"}},
  "variants": {"dark": {"tokens": {"brand": "#000000"}}}
}`))
	require.NoError(t, err)

	assert.Equal(t, "acme", manifest.Name)
	assert.Equal(t, "#123456", manifest.Tokens["brand"])
	assert.Equal(t, "themes/acme/text.tmpl", manifest.Templates["forms.text"])
	assert.Equal(t, "/static/acme", manifest.Assets.Prefix)
	assert.Equal(t, "theme.css", manifest.Assets.Files["stylesheet"])
	assert.Equal(t, "#000000", manifest.Variants["dark"].Tokens["brand"])
}

func TestDecodeManifest_RequiresName(t *testing.T) {
	_, err := DecodeManifest([]byte("tokens:\n  brand: red\n"))
	require.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("es:\n  wizard.next: Siguiente\n"), 0o644))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)

	got, err := catalog.Translate("es", "wizard.next")
	require.NoError(t, err)
	assert.Equal(t, "Siguiente", got)
}

package appearance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLookup(t *testing.T) {
	r := NewRecord(DefaultNames)
	require.Equal(t, 7, r.Len())

	i, err := r.IndexOf("Lantern")
	require.NoError(t, err)
	assert.Equal(t, Index(4), i)

	name, ok := r.Name(5)
	assert.True(t, ok)
	assert.Equal(t, "Skeleton", name)

	_, ok = r.Name(7)
	assert.False(t, ok)
	assert.False(t, r.Valid(-1))
}

func TestRecordUnknownName(t *testing.T) {
	r := NewRecord([]string{"Lantern"})
	_, err := r.IndexOf("Chandelier")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownName))
	assert.Contains(t, err.Error(), "Lantern")
}

func TestRecordCopiesInput(t *testing.T) {
	names := []string{"a", "b"}
	r := NewRecord(names)
	names[0] = "z"
	n, _ := r.Name(0)
	assert.Equal(t, "a", n)
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
appearances: [Lantern, Skeleton]
camera:
  follow: true
  offset: [0, 12, 8]
`), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lantern", "Skeleton"}, m.Appearances)
	assert.True(t, m.Camera.Follow)
	assert.Equal(t, [3]float32{0, 12, 8}, m.Camera.Offset)
	assert.Equal(t, [3]float32{15, 20, 15}, m.Camera.Position)
}

func TestLoadManifestRejectsEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.yaml")
	require.NoError(t, os.WriteFile(path, []byte("appearances: []\n"), 0o644))
	_, err := LoadManifest(path)
	require.Error(t, err)
}

func TestLoadManifestProjection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.yaml")
	require.NoError(t, os.WriteFile(path, []byte("appearances: [Lantern]\ncamera: {projection: ortho, ortho_size: 6}\n"), 0o644))
	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "ortho", m.Camera.Projection)
	assert.InDelta(t, 6, m.Camera.OrthoSize, 1e-6)

	require.NoError(t, os.WriteFile(path, []byte("appearances: [Lantern]\ncamera: {projection: fisheye}\n"), 0o644))
	_, err = LoadManifest(path)
	require.Error(t, err)
}

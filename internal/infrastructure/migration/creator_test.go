package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/cmlibra71/keenan-group-channels/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add carts table", "add_carts_table"},
		{"Add-Carts-Table", "add_carts_table"},
		{"ADD__CARTS", "add_carts"},
		{"  spaces  ", "spaces"},
		{"special!@#chars", "special_chars"},
		{"_leading_and_trailing_", "leading_and_trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestList_EmbeddedSchema(t *testing.T) {
	files, err := List(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for i, f := range files {
		assert.Equal(t, uint(i+1), f.Version, "versions are contiguous")
		assert.NotEmpty(t, f.DownPath, "%s has a down script", f.Base())
	}
	assert.Equal(t, "000001_channels", files[0].Base())
}

func TestList_Errors(t *testing.T) {
	_, err := List(fstest.MapFS{
		"000001_a.down.sql": {Data: []byte("")},
	})
	assert.ErrorContains(t, err, "has no up script")

	_, err = List(fstest.MapFS{
		"000001_a.up.sql": {Data: []byte("")},
		"000001_b.up.sql": {Data: []byte("")},
	})
	assert.ErrorContains(t, err, "is used by")

	files, err := List(fstest.MapFS{
		"README.md":       {Data: []byte("")},
		"000002_b.up.sql": {Data: []byte("")},
		"000010_c.up.sql": {Data: []byte("")},
		"000001_a.up.sql": {Data: []byte("")},
		"notes/x.up.sql":  {Data: []byte("")},
	})
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, []uint{1, 2, 10}, []uint{files[0].Version, files[1].Version, files[2].Version})
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := Create(dir, "Add carts", "carts and cart items", now)
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_carts.up.sql"), first.UpPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- add_carts")
	assert.Contains(t, string(up), "2026-03-01T12:00:00Z")
	assert.Contains(t, string(up), "-- carts and cart items")

	second, err := Create(dir, "add quotes", "", now)
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.FileExists(t, second.DownPath)

	files, err := List(os.DirFS(dir))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = Create(dir, "!!!", "", now)
	assert.Error(t, err)
}

package nvme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nisheethbhat/nvmeqemu/regs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigAppliesDefaultImageSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("image_path: /tmp/disk.img\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/disk.img", cfg.ImagePath)
	assert.Equal(t, int64(DefaultImageSize), cfg.ImageSize)
}

func TestLoadConfigParsesRegisterOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	content := "image_path: /tmp/disk.img\n" +
		"image_size: 2048\n" +
		"registers:\n" +
		"  - offset: 20\n" +
		"    length: 4\n" +
		"    rw_mask: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Registers, 1)
	assert.Equal(t, 20, cfg.Registers[0].Offset)

	// Offset 20 (0x14) is CC, already in the default table, so the override
	// replaces that row rather than adding one.
	table := cfg.RegisterTable()
	assert.Len(t, table, len(regs.Default()))
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

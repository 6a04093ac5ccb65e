package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, exists, err := Load(filepath.Join(t.TempDir(), "moflex.toml"), "tg5040", "")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Equal(t, "/mnt/SDCARD/", cfg.StorageRoot())
	assert.Equal(t, "/mnt/SDCARD/MOFLEX/", cfg.BrowseRoot())
	assert.Equal(t, "/mnt/SDCARD/MOFLEX/OLDMOFLEX", cfg.QuarantinePath())
	assert.Equal(t, "/mnt/SDCARD/.moflex_state", cfg.StatePath())
	assert.Equal(t, "/mnt/SDCARD/.moflex.lock", cfg.LockPath())
	assert.Equal(t, 126, cfg.Relocation.WarnThreshold)
	assert.Equal(t, 50*time.Millisecond, cfg.FileSettle())
	assert.Equal(t, 100*time.Millisecond, cfg.BatchSettle())
	assert.Equal(t, 2*time.Second, cfg.LaunchDelay())
	assert.Equal(t, []string{
		"/mnt/SDCARD/Tools/tg5040",
		"/mnt/SDCARD/.system/tg5040/paks",
	}, cfg.BackendDirs())
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moflex.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[paths]
browse_dir = "/Movies/"

[relocation]
warn_threshold = 64
file_settle_ms = 0

[launch]
candidates = ["Player.pak"]
backends = ["/opt/paks"]

[logging]
level = " DEBUG "
`), 0o644))

	cfg, exists, err := Load(path, "tg5050", "/media/card/")
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Equal(t, "/media/card/Movies/", cfg.BrowseRoot())
	assert.Equal(t, 64, cfg.Relocation.WarnThreshold)
	assert.Zero(t, cfg.FileSettle())
	assert.Equal(t, []string{"Player.pak"}, cfg.Launch.Candidates)
	assert.Equal(t, []string{"/opt/paks"}, cfg.BackendDirs())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "[paths]\nnope = 1\n",
		"bad toml":     "[paths\n",
		"bad level":    "[logging]\nlevel = \"loud\"\n",
		"neg delay":    "[launch]\ndelay_ms = -5\n",
		"nested quar":  "[paths]\nquarantine_dir = \"a/b\"\n",
		"shown state":  "[paths]\nstate_file = \"state\"\n",
		"zero visible": "[browser]\nvisible_lines = 0\n",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "moflex.toml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, _, err := Load(path, "tg5040", "")
		assert.Error(t, err, name)
	}
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "/mnt/SDCARD/.userdata/tg5040/moflex.toml", DefaultPath("/mnt/SDCARD", "tg5040"))
}

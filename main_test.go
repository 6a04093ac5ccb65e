package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Helaas/nextui-moflex-pak/internal/config"
	"github.com/Helaas/nextui-moflex-pak/internal/relocstate"
)

func TestDetectPlatform(t *testing.T) {
	cases := map[string]Platform{
		"":       PlatformTG5040,
		"tg5040": PlatformTG5040,
		"TG3040": PlatformTG5040,
		"tg5050": PlatformTG5050,
		"mac":    PlatformMac,
		"other":  PlatformTG5040,
	}
	for env, want := range cases {
		assert.Equal(t, want, detectPlatform(env), env)
	}
}

func TestSummarizeNames(t *testing.T) {
	assert.Equal(t, "a\nb", summarizeNames([]string{"a", "b"}))
	assert.Equal(t, "a\nb\nc\n(+2 more)", summarizeNames([]string{"a", "b", "c", "d", "e"}))
}

func TestFolderTitle(t *testing.T) {
	assert.Equal(t, "MOFLEX/Action", folderTitle("/mnt/SDCARD/MOFLEX/Action/", "/mnt/SDCARD/", 3, false))
	assert.Equal(t, "MOFLEX  (40 folders)", folderTitle("/mnt/SDCARD/MOFLEX/", "/mnt/SDCARD/", 40, true))
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	prev := platform
	platform = PlatformMac
	t.Cleanup(func() { platform = prev })

	sdcard := t.TempDir()
	cfg, _, err := config.Load(filepath.Join(sdcard, "missing.toml"), string(platform), sdcard)
	require.NoError(t, err)
	return newApp(cfg, zap.NewNop())
}

func TestRunRestoreCommand(t *testing.T) {
	a := newTestApp(t)
	src := filepath.Join(a.cfg.BrowseRoot(), "Action")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(a.cfg.StorageRoot(), "a.moflex"), []byte("x"), 0o644))

	var out bytes.Buffer
	require.NoError(t, a.runRestore(&out))
	assert.Contains(t, out.String(), "No files to restore")

	require.NoError(t, a.store.Save(relocstate.Record{SourceFolder: src, Active: true}))
	out.Reset()
	require.NoError(t, a.runRestore(&out))
	assert.Contains(t, out.String(), "Restored 1 file(s)")
	assert.FileExists(t, filepath.Join(src, "a.moflex"))

	require.NoError(t, a.store.Save(relocstate.Record{SourceFolder: filepath.Join(src, "gone"), Active: true}))
	require.NoError(t, os.WriteFile(filepath.Join(a.cfg.StorageRoot(), "b.moflex"), []byte("x"), 0o644))
	assert.ErrorContains(t, a.runRestore(&out), "incomplete")
}

func TestRenderStatus(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.store.Save(relocstate.Record{SourceFolder: "/cards/MOFLEX/Drama", Active: true}))

	status := a.renderStatus()
	assert.Contains(t, status, "Relocation active")
	assert.Contains(t, status, "/cards/MOFLEX/Drama")
	assert.Contains(t, status, "not installed")
}

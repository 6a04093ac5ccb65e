package launch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePak(t *testing.T, dir, id string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, id), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, id, launchScript), []byte("#!/bin/sh\n"), mode))
}

func TestPakPlatformInstalled(t *testing.T) {
	dir := t.TempDir()
	writePak(t, dir, "Movie.pak", 0o755)
	writePak(t, dir, "Broken.pak", 0o644)
	b := Backend{Name: "sd", Dir: dir}

	p := NewPakPlatform()
	assert.True(t, p.Installed(b, "Movie.pak"))
	assert.False(t, p.Installed(b, "Broken.pak"))
	assert.False(t, p.Installed(b, "Missing.pak"))
}

func TestPakPlatformPrepareAndJump(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })

	dir := t.TempDir()
	writePak(t, dir, "Movie.pak", 0o755)
	b := Backend{Name: "sd", Dir: dir}

	var gotArgv0 string
	var gotEnv []string
	p := NewPakPlatform()
	p.Env = []string{"PLATFORM=tg5040"}
	p.exec = func(argv0 string, argv []string, envv []string) error {
		gotArgv0, gotEnv = argv0, envv
		return nil
	}

	assert.Error(t, p.Jump(context.Background()), "jump before prepare")
	require.NoError(t, p.Prepare(context.Background(), Target{Backend: b, ID: "Movie.pak"}))
	require.NoError(t, p.Jump(context.Background()))

	assert.Equal(t, filepath.Join(dir, "Movie.pak", launchScript), gotArgv0)
	assert.Equal(t, []string{"PLATFORM=tg5040"}, gotEnv)
}

func TestPakPlatformPrepareMissing(t *testing.T) {
	p := NewPakPlatform()
	err := p.Prepare(context.Background(), Target{Backend: Backend{Dir: t.TempDir()}, ID: "Nope.pak"})
	assert.Error(t, err)
}

package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Helaas/nextui-moflex-pak/internal/relocstate"
)

func TestRestoreOnStartupNothingToDo(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, RestoreNotNeeded, f.session.RestoreOnStartup().Outcome)

	require.NoError(t, f.store.Save(relocstate.Record{SourceFolder: "/x", Active: false}))
	assert.Equal(t, RestoreNotNeeded, f.session.RestoreOnStartup().Outcome)
}

func TestRestoreOnStartupMovesFilesHome(t *testing.T) {
	f := newFixture(t)
	src := f.collection(t, "Action", 0)
	for _, n := range []string{"a.moflex", "b.MOFLEX"} {
		require.NoError(t, os.WriteFile(filepath.Join(f.root, n), []byte("x"), 0o644))
	}
	require.NoError(t, f.store.Save(relocstate.Record{SourceFolder: src, Active: true}))

	rep := f.session.RestoreOnStartup()

	assert.Equal(t, RestoreDone, rep.Outcome)
	assert.Equal(t, src, rep.SourceFolder)
	assert.Zero(t, countMovies(t, f.root))
	assert.Equal(t, 2, countMovies(t, src))
	_, ok := f.store.Load()
	assert.False(t, ok)
}

func TestRestoreOnStartupFailureKeepsRecordAndRetries(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.browse, "Deleted")
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "a.moflex"), []byte("x"), 0o644))
	require.NoError(t, f.store.Save(relocstate.Record{SourceFolder: src, Active: true}))

	for run := 0; run < 2; run++ {
		rep := f.session.RestoreOnStartup()
		assert.Equal(t, RestoreFailed, rep.Outcome)
		assert.Equal(t, []string{"a.moflex"}, failedNames(rep.Result))

		rec, ok := f.store.Load()
		require.True(t, ok)
		assert.True(t, rec.Active)
	}

	require.NoError(t, os.MkdirAll(src, 0o755))
	assert.Equal(t, RestoreDone, f.session.RestoreOnStartup().Outcome)
	assert.FileExists(t, filepath.Join(src, "a.moflex"))
}

func TestQuarantineLegacyFiles(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "old.moflex"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "keep.txt"), []byte("x"), 0o644))

	rep := f.session.QuarantineLegacy()

	require.True(t, rep.Ran)
	assert.True(t, rep.Result.OK())
	assert.FileExists(t, filepath.Join(f.browse, "OLDMOFLEX", "old.moflex"))
	assert.FileExists(t, filepath.Join(f.root, "keep.txt"))
	assert.False(t, f.session.QuarantineLegacy().Ran, "nothing left to park")
}

func TestQuarantineSkippedWhileRecordExists(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "mine.moflex"), []byte("x"), 0o644))
	require.NoError(t, f.store.Save(relocstate.Record{SourceFolder: "/elsewhere", Active: true}))

	assert.False(t, f.session.QuarantineLegacy().Ran)
	assert.FileExists(t, filepath.Join(f.root, "mine.moflex"))
}

func TestLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".moflex.lock")
	l, err := Lock(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Unlock() })

	_, err = Lock(path)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

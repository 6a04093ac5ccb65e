// Package mover classifies movie files and moves them between a collection
// folder and the storage root.
package mover

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Helaas/nextui-moflex-pak/internal/durable"
)

// Extension is the only file type the pak ever relocates.
const Extension = ".moflex"

// IsHidden reports whether name uses the dot-prefix hidden convention.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// IsEligible reports whether filename ends in Extension (any case) and has at
// least one character before it.
func IsEligible(filename string) bool {
	if len(filename) < len(Extension)+1 {
		return false
	}
	return strings.EqualFold(filename[len(filename)-len(Extension):], Extension)
}

// File is one eligible file found by Scan.
type File struct {
	Name string
	Size int64
}

// Scan lists the eligible, non-hidden entries directly under dir.
func Scan(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir: %w", err)
	}

	var files []File
	for _, e := range entries {
		name := e.Name()
		if IsHidden(name) || !IsEligible(name) {
			continue
		}
		f := File{Name: name}
		if info, err := e.Info(); err == nil {
			f.Size = info.Size()
		}
		files = append(files, f)
	}
	return files, nil
}

// Count returns the number of eligible files directly under dir.
func Count(dir string) (int, error) {
	files, err := Scan(dir)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// TotalSize sums the sizes of files.
func TotalSize(files []File) uint64 {
	var total uint64
	for _, f := range files {
		if f.Size > 0 {
			total += uint64(f.Size)
		}
	}
	return total
}

// Failure records one file that could not be moved.
type Failure struct {
	Name string
	Err  error
}

// Result reports the outcome of a Move.
type Result struct {
	Moved    []string
	Failures []Failure
	// OpenErr is set when the source folder itself could not be read.
	OpenErr error
}

// OK is the aggregate success flag: the source was readable and every
// eligible file was renamed.
func (r Result) OK() bool {
	return r.OpenErr == nil && len(r.Failures) == 0
}

// Mover renames eligible files between two folders.
type Mover struct {
	commit durable.Committer
	logger *zap.Logger
	rename func(oldpath, newpath string) error
}

// New returns a Mover that commits through commit after every rename.
func New(commit durable.Committer, logger *zap.Logger) *Mover {
	if commit == nil {
		commit = durable.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mover{commit: commit, logger: logger, rename: os.Rename}
}

// Move renames every eligible, non-hidden file directly under src into dst,
// keeping its name. It keeps going past individual failures and never rolls
// back files already moved. An existing file with the same name in dst is
// replaced, as rename(2) does.
func (m *Mover) Move(src, dst string) Result {
	var res Result
	log := m.logger.With(zap.String("src", src), zap.String("dst", dst))

	entries, err := os.ReadDir(src)
	if err != nil {
		res.OpenErr = fmt.Errorf("reading source dir: %w", err)
		log.Warn("move: source unreadable", zap.Error(err))
		return res
	}

	for _, e := range entries {
		name := e.Name()
		if IsHidden(name) || !IsEligible(name) {
			continue
		}
		from, to := JoinPath(src, name), JoinPath(dst, name)
		if err := m.rename(from, to); err != nil {
			log.Warn("move: rename failed", zap.String("file", name), zap.Error(err))
			res.Failures = append(res.Failures, Failure{Name: name, Err: err})
			continue
		}
		m.commit.AfterFile()
		res.Moved = append(res.Moved, name)
	}
	m.commit.AfterBatch()

	log.Info("move finished",
		zap.Int("moved", len(res.Moved)),
		zap.Int("failed", len(res.Failures)),
	)
	return res
}

// JoinPath appends name to dir, adding a separator only when dir lacks a
// trailing one. Unlike filepath.Join it keeps dir verbatim.
func JoinPath(dir, name string) string {
	if dir == "" || strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

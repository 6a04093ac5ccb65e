package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// launchScript is the entry point every NextUI pak ships.
const launchScript = "launch.sh"

// PakPlatform launches NextUI paks: a candidate id is a "<Name>.pak" folder
// under a backend directory, and the jump replaces this process with the
// pak's launch script.
type PakPlatform struct {
	// Env is passed to the launched pak. Nil means the current environment.
	Env []string

	prepared string
	exec     func(argv0 string, argv []string, envv []string) error
}

// NewPakPlatform returns a PakPlatform that execs through unix.Exec.
func NewPakPlatform() *PakPlatform {
	return &PakPlatform{exec: unix.Exec}
}

func scriptPath(backend Backend, id string) string {
	return filepath.Join(backend.Dir, id, launchScript)
}

// Installed implements Platform.
func (p *PakPlatform) Installed(backend Backend, id string) bool {
	return unix.Access(scriptPath(backend, id), unix.X_OK) == nil
}

// Prepare implements Platform.
func (p *PakPlatform) Prepare(_ context.Context, target Target) error {
	script, err := filepath.Abs(scriptPath(target.Backend, target.ID))
	if err != nil {
		return fmt.Errorf("resolving launch script: %w", err)
	}
	info, err := os.Stat(script)
	if err != nil {
		return fmt.Errorf("stat launch script: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("launch script %s is a directory", script)
	}
	p.prepared = script
	return nil
}

// Jump implements Platform.
func (p *PakPlatform) Jump(_ context.Context) error {
	if p.prepared == "" {
		return errors.New("jump without prepare")
	}
	env := p.Env
	if env == nil {
		env = os.Environ()
	}
	if err := os.Chdir(filepath.Dir(p.prepared)); err != nil {
		return fmt.Errorf("entering pak dir: %w", err)
	}
	return p.exec(p.prepared, []string{p.prepared}, env)
}

// Package launch hands the device over to an installed movie player pak.
//
// Candidates and backends are plain configuration: the launcher probes every
// backend in order and, within each, every candidate in order. The first
// installed match is prepared and jumped to.
package launch

import (
	"context"

	"go.uber.org/zap"
)

// Backend is one storage location that may hold installed paks.
type Backend struct {
	Name string
	Dir  string
}

// Target is a candidate resolved on a backend.
type Target struct {
	Backend Backend
	ID      string
}

// Platform performs the device-specific steps of a hand-off.
type Platform interface {
	// Installed reports whether id is present on backend.
	Installed(backend Backend, id string) bool
	// Prepare readies the hand-off to target.
	Prepare(ctx context.Context, target Target) error
	// Jump transfers execution to the prepared target. On real hardware a
	// successful Jump does not return.
	Jump(ctx context.Context) error
}

// Launcher tries candidates against backends, first match wins.
type Launcher struct {
	Candidates []string
	Backends   []Backend

	platform Platform
	logger   *zap.Logger
}

// New returns a Launcher over the ordered candidates and backends.
func New(candidates []string, backends []Backend, platform Platform, logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{
		Candidates: candidates,
		Backends:   backends,
		platform:   platform,
		logger:     logger,
	}
}

// Find returns the first installed candidate without launching it.
func (l *Launcher) Find() (Target, bool) {
	for _, b := range l.Backends {
		for _, id := range l.Candidates {
			if l.platform.Installed(b, id) {
				return Target{Backend: b, ID: id}, true
			}
		}
	}
	return Target{}, false
}

// Launch hands off to the first installed candidate that prepares and jumps
// cleanly. It returns false when nothing could be launched.
func (l *Launcher) Launch(ctx context.Context) bool {
	for _, b := range l.Backends {
		for _, id := range l.Candidates {
			if ctx.Err() != nil {
				return false
			}
			if !l.platform.Installed(b, id) {
				continue
			}
			target := Target{Backend: b, ID: id}
			log := l.logger.With(zap.String("backend", b.Name), zap.String("id", id))

			if err := l.platform.Prepare(ctx, target); err != nil {
				log.Warn("launch: prepare failed", zap.Error(err))
				continue
			}
			log.Info("launch: jumping")
			if err := l.platform.Jump(ctx); err != nil {
				log.Warn("launch: jump failed", zap.Error(err))
				continue
			}
			return true
		}
	}
	l.logger.Warn("launch: no installed player could be started",
		zap.Strings("candidates", l.Candidates),
		zap.Int("backends", len(l.Backends)),
	)
	return false
}

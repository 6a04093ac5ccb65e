// Package durable wraps filesystem mutations on the SD card with a commit
// barrier and a settle delay.
//
// The card buffers writes and is observed to drop them when power is cut or
// when another application takes over the device right after a rename. The
// card gives no completion signal, so every mutation is followed by a global
// sync and a fixed blocking pause.
package durable

import (
	"time"

	"go.uber.org/zap"
)

// Default settle intervals after a single file rename and after a batch or
// state-file operation.
const (
	DefaultFileSettle  = 50 * time.Millisecond
	DefaultBatchSettle = 100 * time.Millisecond
)

// Committer is the barrier the mover and the state store call after every
// mutating operation. Implementations never fail the caller.
type Committer interface {
	// AfterFile commits and settles after one file rename.
	AfterFile()
	// AfterBatch commits and settles after a batch move or a state-file write/delete.
	AfterBatch()
}

// Gateway is the real-hardware Committer.
type Gateway struct {
	FileSettle  time.Duration
	BatchSettle time.Duration

	logger *zap.Logger
	sync   func() error
	sleep  func(time.Duration)
}

// New returns a Gateway with the given settle intervals. Zero intervals fall
// back to the defaults.
func New(fileSettle, batchSettle time.Duration, logger *zap.Logger) *Gateway {
	if fileSettle <= 0 {
		fileSettle = DefaultFileSettle
	}
	if batchSettle <= 0 {
		batchSettle = DefaultBatchSettle
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		FileSettle:  fileSettle,
		BatchSettle: batchSettle,
		logger:      logger,
		sync:        syncAll,
		sleep:       time.Sleep,
	}
}

// AfterFile implements Committer.
func (g *Gateway) AfterFile() { g.CommitAndSettle(g.FileSettle) }

// AfterBatch implements Committer.
func (g *Gateway) AfterBatch() { g.CommitAndSettle(g.BatchSettle) }

// CommitAndSettle flushes buffered writes to the card and blocks for settle.
// A failed flush is logged and otherwise ignored.
func (g *Gateway) CommitAndSettle(settle time.Duration) {
	if err := g.sync(); err != nil {
		g.logger.Debug("filesystem sync failed", zap.Error(err))
	}
	if settle > 0 {
		g.sleep(settle)
	}
}

// Nop is a Committer that does nothing. Host-side tests and the mac
// development platform use it.
type Nop struct{}

func (Nop) AfterFile()  {}
func (Nop) AfterBatch() {}

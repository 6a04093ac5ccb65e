// Package session drives the folder browser and the relocate-then-launch
// protocol on top of the catalog, mover, state store and launcher.
//
// A Session is single-threaded. The UI loop feeds it one Input at a time via
// Handle and calls Advance while it sits in Relocating or LaunchPending.
// Each call performs at most one transition.
package session

import (
	"context"
	"errors"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Helaas/nextui-moflex-pak/internal/catalog"
	"github.com/Helaas/nextui-moflex-pak/internal/mover"
	"github.com/Helaas/nextui-moflex-pak/internal/relocstate"
)

// StateStore persists the relocation record.
type StateStore interface {
	Save(relocstate.Record) error
	Load() (relocstate.Record, bool)
	Clear() error
}

// Relocator moves eligible files between two folders.
type Relocator interface {
	Move(src, dst string) mover.Result
}

// Launcher hands the device to the movie player.
type Launcher interface {
	Launch(ctx context.Context) bool
}

// Options holds paths and thresholds.
type Options struct {
	BrowseRoot     string
	StorageRoot    string
	QuarantinePath string
	// WarnThreshold is the file count above which the player is known to crash.
	WarnThreshold int
	LaunchDelay   time.Duration
	Catalog       catalog.Options
}

// Pending describes the folder awaiting confirmation or being relocated.
type Pending struct {
	Name         string
	SourceFolder string
	Count        int
	// OverThreshold warns that the player may crash on this many files.
	OverThreshold bool
}

// Session is the browser state machine.
type Session struct {
	opts     Options
	store    StateStore
	mover    Relocator
	launcher Launcher
	logger   *zap.Logger
	sleep    func(time.Duration)

	state    State
	cat      *catalog.Catalog
	pending  *Pending
	launched bool
}

// New returns a Session. It does not touch the filesystem.
func New(opts Options, store StateStore, mv Relocator, launcher Launcher, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.BrowseRoot = catalog.WithSeparator(opts.BrowseRoot)
	opts.StorageRoot = catalog.WithSeparator(opts.StorageRoot)
	return &Session{
		opts:     opts,
		store:    store,
		mover:    mv,
		launcher: launcher,
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// ErrBrowseRootUnavailable is returned by Open when the collections folder
// cannot be read.
var ErrBrowseRootUnavailable = errors.New("browse root unavailable")

// EnsureBrowseRoot creates the collections folder if it is missing.
func (s *Session) EnsureBrowseRoot() error {
	return os.MkdirAll(s.opts.BrowseRoot, 0o755)
}

// Open lists the browse root and enters Browsing.
func (s *Session) Open() error {
	cat, ok := catalog.List(s.opts.BrowseRoot, s.opts.Catalog)
	if !ok {
		s.logger.Warn("browse root unavailable", zap.String("path", s.opts.BrowseRoot))
		return ErrBrowseRootUnavailable
	}
	s.cat = cat
	s.state = Browsing
	s.logger.Info("browsing", zap.String("path", cat.Path), zap.Int("folders", cat.Len()))
	return nil
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Catalog returns the current listing. It is nil before Open.
func (s *Session) Catalog() *catalog.Catalog { return s.cat }

// Pending returns the folder awaiting confirmation or relocation.
func (s *Session) Pending() (Pending, bool) {
	if s.pending == nil {
		return Pending{}, false
	}
	return *s.pending, true
}

// AtRoot reports whether the browser shows the browse root.
func (s *Session) AtRoot() bool {
	return s.cat == nil || s.cat.Path == s.opts.BrowseRoot
}

// Launched reports whether control was handed to the player.
func (s *Session) Launched() bool { return s.launched }

// Select moves the cursor to index i and selects it.
func (s *Session) Select(i int) Notice {
	if s.state != Browsing || s.cat == nil {
		return Notice{}
	}
	s.cat.Jump(i)
	return s.Handle(InputSelect)
}

// Handle applies one user input.
func (s *Session) Handle(in Input) Notice {
	switch s.state {
	case Browsing:
		return s.handleBrowsing(in)
	case ConfirmingSelection:
		return s.handleConfirming(in)
	case RestoringAfterLaunchFailure:
		if in == InputAcknowledge || in == InputExit {
			s.to(Exiting)
		}
	case Relocating, LaunchPending:
		// These states advance on their own; input waits.
	}
	return Notice{}
}

func (s *Session) handleBrowsing(in Input) Notice {
	if in == InputExit {
		s.to(Exiting)
		return Notice{}
	}
	if s.cat == nil {
		return Notice{Kind: NoticeUnavailable, Folder: s.opts.BrowseRoot}
	}

	switch in {
	case InputUp:
		s.cat.Up()
	case InputDown:
		s.cat.Down()
	case InputSelect:
		return s.selectCurrent()
	case InputOpen:
		entry, ok := s.cat.Selected()
		if !ok {
			return Notice{}
		}
		return s.relist(s.cat.Path + entry.Name + "/")
	case InputBack:
		if s.AtRoot() {
			return Notice{}
		}
		return s.relist(catalog.Parent(s.cat.Path, s.opts.BrowseRoot))
	}
	return Notice{}
}

func (s *Session) relist(path string) Notice {
	cat, ok := catalog.List(path, s.opts.Catalog)
	if !ok {
		s.logger.Warn("folder unavailable", zap.String("path", path))
		return Notice{Kind: NoticeUnavailable, Folder: path}
	}
	s.cat = cat
	s.logger.Debug("browsing", zap.String("path", cat.Path), zap.Int("folders", cat.Len()))
	return Notice{}
}

func (s *Session) selectCurrent() Notice {
	entry, ok := s.cat.Selected()
	if !ok || !entry.IsDir {
		return Notice{}
	}
	if rec, ok := s.store.Load(); ok && rec.Active {
		s.logger.Warn("relocation still recorded, refusing selection", zap.String("source", rec.SourceFolder))
		return Notice{Kind: NoticeRelocationPending, Folder: rec.SourceFolder}
	}

	i := s.cat.Cursor()
	source := s.cat.SourceFolder(i)
	count, err := s.cat.EnsureEligibleCount(i)
	if err != nil {
		s.logger.Warn("folder unavailable", zap.String("path", source), zap.Error(err))
		return Notice{Kind: NoticeUnavailable, Folder: source}
	}

	if count == 0 {
		sub, _ := catalog.List(source, catalog.Options{MaxEntries: 1})
		return Notice{
			Kind:          NoticeEmptySelection,
			Folder:        source,
			HasSubfolders: sub != nil && sub.Len() > 0,
		}
	}

	s.pending = &Pending{
		Name:          entry.Name,
		SourceFolder:  source,
		Count:         count,
		OverThreshold: count > s.opts.WarnThreshold,
	}
	s.logger.Info("folder selected",
		zap.String("source", source),
		zap.Int("count", count),
		zap.Bool("over_threshold", s.pending.OverThreshold),
	)
	s.to(ConfirmingSelection)
	return Notice{}
}

func (s *Session) handleConfirming(in Input) Notice {
	switch in {
	case InputAccept:
		s.to(Relocating)
	case InputDecline, InputBack:
		s.pending = nil
		s.to(Browsing)
	case InputExit:
		s.pending = nil
		s.to(Exiting)
	}
	return Notice{}
}

// Advance runs the blocking step of Relocating or LaunchPending. In any other
// state it does nothing.
func (s *Session) Advance(ctx context.Context) Notice {
	switch s.state {
	case Relocating:
		return s.relocate()
	case LaunchPending:
		return s.launch(ctx)
	}
	return Notice{}
}

func (s *Session) relocate() Notice {
	p := s.pending
	res := s.mover.Move(p.SourceFolder, s.opts.StorageRoot)
	if !res.OK() {
		s.logger.Error("relocation failed",
			zap.String("source", p.SourceFolder),
			zap.Int("moved", len(res.Moved)),
			zap.Int("failed", len(res.Failures)),
		)
		s.pending = nil
		s.to(Browsing)
		return Notice{Kind: NoticeMoveFailed, Folder: p.SourceFolder, Moved: len(res.Moved), Failed: failedNames(res)}
	}

	if err := s.store.Save(relocstate.Record{SourceFolder: p.SourceFolder, Active: true}); err != nil {
		// Launching without a record would strand the files at the root.
		s.logger.Error("relocation state not saved, moving files back", zap.Error(err))
		back := s.mover.Move(s.opts.StorageRoot, p.SourceFolder)
		s.pending = nil
		s.to(Browsing)
		return Notice{Kind: NoticeStateNotSaved, Folder: p.SourceFolder, Moved: len(back.Moved), Failed: failedNames(back)}
	}

	s.to(LaunchPending)
	return Notice{Folder: p.SourceFolder, Moved: len(res.Moved)}
}

func (s *Session) launch(ctx context.Context) Notice {
	p := s.pending
	if s.opts.LaunchDelay > 0 {
		s.sleep(s.opts.LaunchDelay)
	}
	if s.launcher.Launch(ctx) {
		s.launched = true
		s.to(Exiting)
		return Notice{Kind: NoticeLaunched, Folder: p.SourceFolder}
	}

	res := s.mover.Move(s.opts.StorageRoot, p.SourceFolder)
	s.to(RestoringAfterLaunchFailure)
	if !res.OK() {
		s.logger.Error("launch failed and restore incomplete, keeping relocation state",
			zap.String("source", p.SourceFolder),
			zap.Int("failed", len(res.Failures)),
		)
		return Notice{Kind: NoticeLaunchFailedRestoreIncomplete, Folder: p.SourceFolder, Moved: len(res.Moved), Failed: failedNames(res)}
	}
	if err := s.store.Clear(); err != nil {
		s.logger.Warn("clearing relocation state", zap.Error(err))
	}
	return Notice{Kind: NoticeLaunchFailed, Folder: p.SourceFolder, Moved: len(res.Moved)}
}

func (s *Session) to(next State) {
	if next != s.state {
		s.logger.Debug("transition", zap.Stringer("from", s.state), zap.Stringer("to", next))
	}
	s.state = next
}

func failedNames(res mover.Result) []string {
	names := make([]string, 0, len(res.Failures))
	for _, f := range res.Failures {
		names = append(names, f.Name)
	}
	return names
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.uber.org/zap"

	"github.com/Helaas/nextui-moflex-pak/internal/catalog"
	"github.com/Helaas/nextui-moflex-pak/internal/config"
	"github.com/Helaas/nextui-moflex-pak/internal/durable"
	"github.com/Helaas/nextui-moflex-pak/internal/launch"
	"github.com/Helaas/nextui-moflex-pak/internal/mover"
	"github.com/Helaas/nextui-moflex-pak/internal/relocstate"
	"github.com/Helaas/nextui-moflex-pak/internal/session"
)

// ── Device paths ─────────────────────────────────────────────

const sdcardPath = "/mnt/SDCARD"

// getSDCardPath returns the card root, adjusted for macOS development.
func getSDCardPath() string {
	if sdcard := os.Getenv("SDCARD_PATH"); sdcard != "" {
		return sdcard
	}
	if platform == PlatformMac {
		// Use a local mock directory structure for development
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, "mock_sdcard")
	}
	return sdcardPath
}

func getLogPath(sdcard string) string {
	return filepath.Join(sdcard, ".userdata", string(platform), "logs", "moflex.log")
}

// ── App wiring ───────────────────────────────────────────────

// app bundles the configured core components for one run.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *relocstate.Store
	mover    *mover.Mover
	launcher *launch.Launcher
	session  *session.Session
}

func newApp(cfg *config.Config, logger *zap.Logger) *app {
	var commit durable.Committer = durable.New(cfg.FileSettle(), cfg.BatchSettle(), logger.Named("durable"))
	if platform == PlatformMac {
		commit = durable.Nop{}
	}

	backends := make([]launch.Backend, 0, len(cfg.Launch.Backends))
	for i, dir := range cfg.BackendDirs() {
		backends = append(backends, launch.Backend{Name: cfg.Launch.Backends[i], Dir: dir})
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		store:  relocstate.NewStore(cfg.StatePath(), commit, logger.Named("state")),
		mover:  mover.New(commit, logger.Named("mover")),
	}
	a.launcher = launch.New(cfg.Launch.Candidates, backends, launch.NewPakPlatform(), logger.Named("launch"))
	a.session = session.New(session.Options{
		BrowseRoot:     cfg.BrowseRoot(),
		StorageRoot:    cfg.StorageRoot(),
		QuarantinePath: cfg.QuarantinePath(),
		WarnThreshold:  cfg.Relocation.WarnThreshold,
		LaunchDelay:    cfg.LaunchDelay(),
		Catalog: catalog.Options{
			VisibleLines: cfg.Browser.VisibleLines,
			MaxEntries:   cfg.Browser.MaxEntries,
		},
	}, a.store, a.mover, a.launcher, logger.Named("session"))
	return a
}

// lock takes the storage root lock and returns its release func.
func (a *app) lock() (func(), error) {
	l, err := session.Lock(a.cfg.LockPath())
	if err != nil {
		return nil, err
	}
	return func() {
		if err := l.Unlock(); err != nil {
			a.logger.Warn("releasing lock", zap.Error(err))
		}
	}, nil
}

// logError logs a non-nil, non-cancelled error.
func (a *app) logError(context string, err error) {
	if err != nil && !isErrCancelled(err) {
		a.logger.Error(context, zap.Error(err))
	}
}

// ── Headless commands ────────────────────────────────────────

// runRestore performs only the startup restore step.
func (a *app) runRestore(w io.Writer) error {
	unlock, err := a.lock()
	if err != nil {
		return err
	}
	defer unlock()

	rep := a.session.RestoreOnStartup()
	switch rep.Outcome {
	case session.RestoreNotNeeded:
		fmt.Fprintln(w, "No files to restore.")
	case session.RestoreDone:
		fmt.Fprintf(w, "Restored %d file(s) to %s\n", len(rep.Result.Moved), rep.SourceFolder)
	case session.RestoreFailed:
		return fmt.Errorf("restore to %s incomplete: %s", rep.SourceFolder, restoreFailureDetail(rep.Result))
	}
	return nil
}

func restoreFailureDetail(res mover.Result) string {
	if res.OpenErr != nil {
		return res.OpenErr.Error()
	}
	return fmt.Sprintf("%d moved, %d failed", len(res.Moved), len(res.Failures))
}

// renderStatus describes the relocation record, root contents and player lookup.
func (a *app) renderStatus() string {
	rows := [][]string{
		{"Platform", string(platform)},
		{"SD card", a.cfg.StorageRoot()},
		{"Collections", a.cfg.BrowseRoot()},
		{"State file", a.store.Path()},
	}

	if rec, ok := a.store.Load(); ok {
		rows = append(rows,
			[]string{"Relocation active", strconv.FormatBool(rec.Active)},
			[]string{"Source folder", rec.SourceFolder},
		)
	} else {
		rows = append(rows, []string{"Relocation active", "false"})
	}

	if files, err := mover.Scan(a.cfg.StorageRoot()); err == nil {
		rows = append(rows, []string{"Files at root",
			fmt.Sprintf("%d (%s)", len(files), humanize.Bytes(mover.TotalSize(files)))})
	}

	player := "not installed"
	if target, ok := a.launcher.Find(); ok {
		player = filepath.Join(target.Backend.Dir, target.ID)
	}
	rows = append(rows, []string{"Movie player", player})

	return renderTable([]string{"Item", "Value"}, rows)
}

func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
	})
	return tw.Render()
}

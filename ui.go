package main

import (
	"context"
	"fmt"
	"strings"

	gaba "github.com/BrandonKowalski/gabagool/v2/pkg/gabagool"
	"github.com/BrandonKowalski/gabagool/v2/pkg/gabagool/constants"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Helaas/nextui-moflex-pak/internal/mover"
	"github.com/Helaas/nextui-moflex-pak/internal/session"
)

const appTitle = "Moflex Launcher"

// ── Pak run ──────────────────────────────────────────────────

// runPak is the interactive run: restore, quarantine, then browse.
func (a *app) runPak(ctx context.Context) error {
	unlock, err := a.lock()
	if err != nil {
		return err
	}
	defer unlock()

	gaba.Init(gaba.Options{
		WindowTitle:    appTitle,
		ShowBackground: true,
		LogPath:        getLogPath(a.cfg.Paths.SDCard),
		IsNextUI:       platform != PlatformMac,
	})
	defer gaba.Close()

	// The record must be honoured before anything else touches the root.
	a.startupRestoreFlow()

	if err := a.session.EnsureBrowseRoot(); err != nil {
		a.logError("creating browse root", err)
	}
	a.quarantineFlow()

	if err := a.session.Open(); err != nil {
		showMessage(fmt.Sprintf("%s Folder Not Found\n\nPut your moflex collections in\n%s\n\nExample:\n  %s/Action/\n  %s/Comedy/",
			a.cfg.Paths.BrowseDir, a.cfg.BrowseRoot(), a.cfg.Paths.BrowseDir, a.cfg.Paths.BrowseDir), "Quit")
		return nil
	}

	a.browseLoop(ctx)
	return nil
}

func (a *app) browseLoop(ctx context.Context) {
	for {
		switch a.session.State() {
		case session.Browsing:
			a.browseStep()
		case session.ConfirmingSelection:
			a.confirmStep()
		case session.Relocating:
			a.relocateStep(ctx)
		case session.LaunchPending:
			a.launchStep(ctx)
		case session.RestoringAfterLaunchFailure:
			a.session.Handle(session.InputAcknowledge)
		case session.Exiting:
			a.logger.Info("exiting", zap.Bool("launched", a.session.Launched()))
			return
		}
	}
}

// ── Startup ──────────────────────────────────────────────────

func (a *app) startupRestoreFlow() {
	rec, ok := a.store.Load()
	if !ok || !rec.Active {
		return
	}

	var rep session.RestoreReport
	gaba.ProcessMessage(fmt.Sprintf("Restoring files...\n\n%s", rec.SourceFolder),
		gaba.ProcessMessageOptions{ShowThemeBackground: true},
		func() (any, error) {
			rep = a.session.RestoreOnStartup()
			return nil, nil
		},
	)

	switch rep.Outcome {
	case session.RestoreDone:
		showMessage(fmt.Sprintf("Files restored successfully!\n\n%d file(s) returned to\n%s",
			len(rep.Result.Moved), rep.SourceFolder), "Continue")
	case session.RestoreFailed:
		showMessage(fmt.Sprintf("ERROR: Failed to restore files!\n\n%s\n\nPlease move the .moflex files from\nthe SD card root back manually.\nThis app will retry on every launch.",
			restoreFailureDetail(rep.Result)), "Continue")
	}
}

func (a *app) quarantineFlow() {
	var rep session.QuarantineReport
	gaba.ProcessMessage("Checking for old moflex files...",
		gaba.ProcessMessageOptions{ShowThemeBackground: true},
		func() (any, error) {
			rep = a.session.QuarantineLegacy()
			return nil, nil
		},
	)
	if !rep.Ran {
		return
	}

	msg := fmt.Sprintf("Found moflex files in the SD card root.\n\nMoved %d file(s) to\n%s", len(rep.Result.Moved), rep.Folder)
	if !rep.Result.OK() {
		msg += "\n\nWarning: some files may not have moved."
	}
	showMessage(msg, "Continue")
}

// ── Browser ──────────────────────────────────────────────────

func (a *app) browseStep() {
	cat := a.session.Catalog()
	backLabel := "Back"
	if a.session.AtRoot() {
		backLabel = "Quit"
	}

	if cat.Len() == 0 {
		showMessage(fmt.Sprintf("(Empty folder)\n\n%s", cat.Path), backLabel)
		a.leaveFolder()
		return
	}

	items := make([]gaba.MenuItem, cat.Len())
	for i, e := range cat.Entries {
		text := e.Name
		if e.EligibleCount > 0 {
			text = fmt.Sprintf("%s  [%d]", e.Name, e.EligibleCount)
		}
		items[i] = gaba.MenuItem{Text: text}
	}

	opts := gaba.DefaultListOptions(a.browseTitle(), items)
	opts.FooterHelpItems = []gaba.FooterHelpItem{
		{ButtonName: "B", HelpText: backLabel},
		{ButtonName: "A", HelpText: "Select"},
	}

	result, err := gaba.List(opts)
	if isErrCancelled(err) {
		a.leaveFolder()
		return
	}
	if err != nil || len(result.Selected) == 0 {
		a.logError("browse list", err)
		a.session.Handle(session.InputExit)
		return
	}

	a.logger.Debug("ui: selected folder", zap.Int("index", result.Selected[0]))
	a.showNotice(a.session.Select(result.Selected[0]))
}

// browseTitle is the current folder relative to the card, with the folder
// count when the listing does not fit on one screen. The list scrolls itself,
// so only the total is shown.
func (a *app) browseTitle() string {
	cat := a.session.Catalog()
	return folderTitle(cat.Path, a.cfg.StorageRoot(), cat.Len(), cat.Overflows())
}

func folderTitle(path, storageRoot string, folders int, overflows bool) string {
	title := strings.TrimSuffix(strings.TrimPrefix(path, storageRoot), "/")
	if overflows {
		title = fmt.Sprintf("%s  (%d folders)", title, folders)
	}
	return title
}

func (a *app) leaveFolder() {
	if a.session.AtRoot() {
		a.session.Handle(session.InputExit)
		return
	}
	a.showNotice(a.session.Handle(session.InputBack))
}

func (a *app) confirmStep() {
	p, ok := a.session.Pending()
	if !ok {
		a.session.Handle(session.InputDecline)
		return
	}

	size := "size unknown"
	if files, err := mover.Scan(p.SourceFolder); err == nil {
		size = humanize.Bytes(mover.TotalSize(files))
	}

	msg := fmt.Sprintf("Selected: %s\nMoflex files: %d (%s)\n\n", p.Name, p.Count, size)
	if p.OverThreshold {
		msg += fmt.Sprintf("WARNING: More than %d files!\nThe movie player may crash.\n\n", a.cfg.Relocation.WarnThreshold)
	}
	msg += "Move files and launch the player?"

	result, err := gaba.ConfirmationMessage(msg,
		[]gaba.FooterHelpItem{
			{ButtonName: "B", HelpText: "Cancel"},
			{ButtonName: "A", HelpText: "Launch", IsConfirmButton: true},
		},
		gaba.MessageOptions{
			ConfirmButton: constants.VirtualButtonA,
		},
	)
	if isErrCancelled(err) || result == nil || !result.Confirmed {
		a.session.Handle(session.InputDecline)
		return
	}
	a.session.Handle(session.InputAccept)
}

func (a *app) relocateStep(ctx context.Context) {
	p, _ := a.session.Pending()
	var n session.Notice
	gaba.ProcessMessage(fmt.Sprintf("Moving files to the SD card root...\n\nFrom: %s", p.SourceFolder),
		gaba.ProcessMessageOptions{ShowThemeBackground: true},
		func() (any, error) {
			n = a.session.Advance(ctx)
			return nil, nil
		},
	)
	a.showNotice(n)
}

func (a *app) launchStep(ctx context.Context) {
	var n session.Notice
	gaba.ProcessMessage("Files moved successfully!\n\nLaunching the movie player...\nWhen done, exit and relaunch\nthis app to restore files.",
		gaba.ProcessMessageOptions{ShowThemeBackground: true},
		func() (any, error) {
			n = a.session.Advance(ctx)
			return nil, nil
		},
	)
	a.showNotice(n)
}

// showNotice tells the user about a transition outcome. It may feed a
// follow-up input back into the session.
func (a *app) showNotice(n session.Notice) {
	switch n.Kind {
	case session.NoticeUnavailable:
		showMessage(fmt.Sprintf("Could not open folder.\n\n%s", n.Folder), "Back")

	case session.NoticeEmptySelection:
		if !n.HasSubfolders {
			showMessage("No moflex files found!", "Back")
			return
		}
		result, err := gaba.ConfirmationMessage(
			fmt.Sprintf("No moflex files in\n%s\n\nOpen it to browse its folders?", n.Folder),
			[]gaba.FooterHelpItem{
				{ButtonName: "B", HelpText: "Back"},
				{ButtonName: "A", HelpText: "Open", IsConfirmButton: true},
			},
			gaba.MessageOptions{ConfirmButton: constants.VirtualButtonA},
		)
		if isErrCancelled(err) || result == nil || !result.Confirmed {
			return
		}
		a.showNotice(a.session.Handle(session.InputOpen))

	case session.NoticeMoveFailed:
		showMessage(fmt.Sprintf("ERROR: Failed to move files!\n\n%d moved, %d failed:\n%s\n\nMoved files are in the SD card root.",
			n.Moved, len(n.Failed), summarizeNames(n.Failed)), "Back")

	case session.NoticeStateNotSaved:
		showMessage("ERROR: Could not save restore info.\n\nFiles were moved back and the\nplayer was not launched.", "Back")

	case session.NoticeLaunchFailed:
		showMessage(fmt.Sprintf("Failed to launch the movie player!\n\n%d file(s) restored to\n%s", n.Moved, n.Folder), "Exit")

	case session.NoticeRelocationPending:
		showMessage(fmt.Sprintf("Files from an earlier launch are\nstill in the SD card root.\n\nThey belong to:\n%s\n\nRelaunch this app to restore them,\nor move them back manually.", n.Folder), "Back")

	case session.NoticeLaunchFailedRestoreIncomplete:
		showMessage(fmt.Sprintf("Failed to launch the movie player!\n\nCould not restore:\n%s\n\nRelaunch this app to retry,\nor move them back manually.", summarizeNames(n.Failed)), "Exit")
	}
}

// summarizeNames lists the first few names and counts the rest.
func summarizeNames(names []string) string {
	const shown = 3
	if len(names) <= shown {
		return strings.Join(names, "\n")
	}
	return fmt.Sprintf("%s\n(+%d more)", strings.Join(names[:shown], "\n"), len(names)-shown)
}

// ── Utility screens ──────────────────────────────────────────

func showMessage(message, button string) {
	gaba.ConfirmationMessage(message,
		[]gaba.FooterHelpItem{
			{ButtonName: "A", HelpText: button, IsConfirmButton: true},
		},
		gaba.MessageOptions{
			ConfirmButton: constants.VirtualButtonA,
		},
	)
}

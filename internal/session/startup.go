package session

import (
	"os"

	"go.uber.org/zap"

	"github.com/Helaas/nextui-moflex-pak/internal/mover"
)

// RestoreOutcome is the result of the startup restore check.
type RestoreOutcome int

const (
	// RestoreNotNeeded: no active record.
	RestoreNotNeeded RestoreOutcome = iota
	// RestoreDone: files are back and the record is cleared.
	RestoreDone
	// RestoreFailed: files could not all be moved back; the record is kept
	// and the user must recover manually or retry on the next run.
	RestoreFailed
)

// RestoreReport describes what RestoreOnStartup did.
type RestoreReport struct {
	Outcome      RestoreOutcome
	SourceFolder string
	Result       mover.Result
}

// RestoreOnStartup moves displaced files home when an active record exists.
// It must run before anything else touches the storage root.
func (s *Session) RestoreOnStartup() RestoreReport {
	rec, ok := s.store.Load()
	if !ok || !rec.Active {
		return RestoreReport{Outcome: RestoreNotNeeded}
	}

	log := s.logger.With(zap.String("source", rec.SourceFolder))
	log.Info("restoring displaced files")
	res := s.mover.Move(s.opts.StorageRoot, rec.SourceFolder)
	if !res.OK() {
		log.Error("startup restore failed, keeping relocation state",
			zap.Int("moved", len(res.Moved)),
			zap.Int("failed", len(res.Failures)),
			zap.NamedError("open", res.OpenErr),
		)
		return RestoreReport{Outcome: RestoreFailed, SourceFolder: rec.SourceFolder, Result: res}
	}

	if err := s.store.Clear(); err != nil {
		log.Warn("clearing relocation state", zap.Error(err))
	}
	log.Info("startup restore done", zap.Int("moved", len(res.Moved)))
	return RestoreReport{Outcome: RestoreDone, SourceFolder: rec.SourceFolder, Result: res}
}

// QuarantineReport describes what QuarantineLegacy did.
type QuarantineReport struct {
	Ran    bool
	Folder string
	Result mover.Result
}

// QuarantineLegacy parks movie files left loose at the storage root by older
// versions in the quarantine folder. It only runs when no record exists,
// since loose files are otherwise expected to belong to that record.
func (s *Session) QuarantineLegacy() QuarantineReport {
	if _, ok := s.store.Load(); ok {
		return QuarantineReport{}
	}
	if n, _ := mover.Count(s.opts.StorageRoot); n == 0 {
		return QuarantineReport{}
	}

	dst := s.opts.QuarantinePath
	report := QuarantineReport{Ran: true, Folder: dst}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		s.logger.Warn("creating quarantine folder", zap.String("path", dst), zap.Error(err))
	}
	report.Result = s.mover.Move(s.opts.StorageRoot, dst)
	s.logger.Info("legacy files quarantined",
		zap.String("dst", dst),
		zap.Int("moved", len(report.Result.Moved)),
		zap.Int("failed", len(report.Result.Failures)),
	)
	return report
}

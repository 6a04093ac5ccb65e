package session

import "fmt"

// State is a node of the browse/relocate/launch state machine.
type State int

const (
	Browsing State = iota
	ConfirmingSelection
	Relocating
	LaunchPending
	RestoringAfterLaunchFailure
	Exiting
)

func (s State) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case ConfirmingSelection:
		return "confirming"
	case Relocating:
		return "relocating"
	case LaunchPending:
		return "launch-pending"
	case RestoringAfterLaunchFailure:
		return "restoring-after-launch-failure"
	case Exiting:
		return "exiting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Input is one user intent fed to Handle.
type Input int

const (
	InputUp Input = iota
	InputDown
	InputSelect
	// InputOpen descends into the selected folder.
	InputOpen
	InputBack
	InputExit
	InputAccept
	InputDecline
	InputAcknowledge
)

// NoticeKind classifies what the UI has to tell the user after a transition.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	// NoticeUnavailable: a folder could not be opened.
	NoticeUnavailable
	// NoticeEmptySelection: the selected folder holds no movie files.
	NoticeEmptySelection
	// NoticeMoveFailed: relocation did not complete; some files may already
	// sit at the storage root.
	NoticeMoveFailed
	// NoticeStateNotSaved: the relocation record could not be written, so the
	// files were moved back instead of launching.
	NoticeStateNotSaved
	// NoticeLaunched: control was handed to the player.
	NoticeLaunched
	// NoticeLaunchFailed: no player started; the files were put back.
	NoticeLaunchFailed
	// NoticeLaunchFailedRestoreIncomplete: no player started and the files
	// could not all be put back. The record stays so the next run retries.
	NoticeLaunchFailedRestoreIncomplete
	// NoticeRelocationPending: an earlier relocation is still recorded, so no
	// new one may start. Folder names the recorded source.
	NoticeRelocationPending
)

// Notice is the user-facing outcome of a transition.
type Notice struct {
	Kind   NoticeKind
	Folder string
	// HasSubfolders is set on NoticeEmptySelection when the folder can be opened instead.
	HasSubfolders bool
	Moved         int
	Failed        []string
}

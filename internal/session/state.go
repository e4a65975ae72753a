package session

import (
	"github.com/HaiFongPan/folio-cli/internal/form"
	"github.com/HaiFongPan/folio-cli/internal/intake"
	"github.com/HaiFongPan/folio-cli/internal/preview"
)

// State is the UI state
type State int

const (
	StateIdle State = iota
	StateFileAdopted
	StateConfiguring
	StateUploading
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFileAdopted:
		return "file-adopted"
	case StateConfiguring:
		return "configuring"
	case StateUploading:
		return "uploading"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// NoticeKind styles a notice
type NoticeKind int

const (
	NoticeError NoticeKind = iota
	NoticeWarning
)

// Notice is a blocking message the user has to dismiss
type Notice struct {
	Kind NoticeKind
	Text string
}

// Progress is the upload indicator
type Progress struct {
	Visible bool
	Percent int
	File    string
}

// StatusKind styles the status line
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusError
)

// Status is the one-line message under the main view
type Status struct {
	Kind StatusKind
	Text string
}

// View is a snapshot of everything the UI renders
type View struct {
	State         State
	DropPrompt    string
	Input         string
	Selection     *intake.FileSelection
	Fields        []form.Field
	FolioLabel    string
	SubmitEnabled bool
	Pages         int // 0 while unknown
	Preview       preview.Slot
	Progress      Progress
	Notice        *Notice
	Status        Status
	ResultPath    string // last saved result, until another file is adopted
}

// Prompts and notices
const (
	PromptIdle         = "Drop a PDF here or press ctrl+o to browse"
	NoticeNetworkError = "Network error."
)

// Package session drives the foliation workflow: file intake, configuration,
// preview and upload, as one state machine living on the UI event loop.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/folio-cli/internal/form"
	"github.com/HaiFongPan/folio-cli/internal/intake"
	"github.com/HaiFongPan/folio-cli/internal/preview"
	"github.com/HaiFongPan/folio-cli/internal/schedule"
	"github.com/HaiFongPan/folio-cli/internal/upload"
)

// Deps wires the machine to its collaborators
type Deps struct {
	Policy     intake.Policy
	Form       *form.Configuration
	Fetcher    preview.Fetcher
	Submitter  upload.Submitter
	Sink       upload.Sink
	Store      *preview.Store
	Clock      schedule.Scheduler
	Dispatcher Dispatcher
	CountPages intake.PageCounter // optional

	Debounce       time.Duration
	AdoptDelay     time.Duration
	PreviewTimeout time.Duration
	PreviewWidth   int
	PreviewHeight  int
	ResultPrefix   string
}

// Machine owns the session state. Not safe for concurrent use.
type Machine struct {
	intake   *intake.Controller
	form     *form.Configuration
	preview  *preview.Scheduler
	upload   *upload.Controller
	clock    schedule.Scheduler
	dispatch Dispatcher
	pages    intake.PageCounter

	adoptDelay  time.Duration
	adoptHandle schedule.Handle

	state      State
	dropPrompt string
	folio      string
	pageCount  int
	notice     *Notice
	status     Status
	resultPath string
}

// New creates a machine in the idle state
func New(deps Deps) *Machine {
	m := &Machine{
		intake:     intake.NewController(deps.Policy),
		form:       deps.Form,
		clock:      deps.Clock,
		dispatch:   deps.Dispatcher,
		pages:      deps.CountPages,
		adoptDelay: deps.AdoptDelay,
		state:      StateIdle,
		dropPrompt: PromptIdle,
	}

	m.preview = preview.New(deps.Policy, deps.Fetcher, deps.Store, deps.Clock, deps.Dispatcher.Post, preview.Options{
		Debounce:  deps.Debounce,
		Timeout:   deps.PreviewTimeout,
		MaxWidth:  deps.PreviewWidth,
		MaxHeight: deps.PreviewHeight,
	})
	m.upload = upload.New(deps.Submitter, deps.Sink, deps.ResultPrefix, deps.Dispatcher.Post)
	m.refreshFolio()

	return m
}

// State returns the current state
func (m *Machine) State() State {
	return m.state
}

// View returns what the UI should render
func (m *Machine) View() View {
	v := View{
		State:         m.state,
		DropPrompt:    m.dropPrompt,
		Input:         m.intake.Input(),
		Selection:     m.intake.Selection(),
		Fields:        m.form.Fields(),
		FolioLabel:    m.folio,
		SubmitEnabled: m.intake.SubmitEnabled() && m.state != StateUploading,
		Pages:         m.pageCount,
		Preview:       m.preview.Slot(),
		Notice:        m.notice,
		Status:        m.status,
		ResultPath:    m.resultPath,
	}

	if s := m.upload.Session(); s != nil && m.state == StateUploading {
		v.Progress = Progress{Visible: true, Percent: s.Percent, File: s.FileName}
	}
	return v
}

// Handle applies one message and reports whether it was recognised
func (m *Machine) Handle(msg any) bool {
	switch msg := msg.(type) {
	case PickFiles:
		if m.acceptsInput() {
			m.adopt(func() (*intake.FileSelection, error) { return m.intake.Adopt(intake.SourcePicker, msg.Paths) })
		}
	case DropFiles:
		if m.acceptsInput() {
			m.adopt(func() (*intake.FileSelection, error) { return m.intake.AdoptDropped(msg.Text) })
		}
	case SetField:
		if m.editable() {
			if err := m.form.Set(msg.Name, msg.Value); err != nil {
				logrus.Debugf("Rejected field edit: %v", err)
				return true
			}
			m.onConfigurationChanged()
		}
	case CycleField:
		if m.editable() {
			if err := m.form.Cycle(msg.Name, msg.Delta); err != nil {
				logrus.Debugf("Rejected field cycle: %v", err)
				return true
			}
			m.onConfigurationChanged()
		}
	case Submit:
		if m.editable() {
			m.submit()
		}
	case DismissNotice:
		m.notice = nil
	case Reload:
		if m.state != StateUploading {
			m.reload()
		}

	case adoptionSettledMsg:
		m.settleAdoption(msg)
	case pageCountMsg:
		if sel := m.intake.Selection(); sel != nil && sel.ID == msg.selectionID {
			if msg.err != nil {
				logrus.WithError(msg.err).Debug("Page count unavailable")
			} else {
				m.pageCount = msg.pages
			}
		}

	case preview.FireMsg:
		if job := m.preview.Fire(msg); job != nil {
			m.dispatch.Go(func() any { return job() })
		}
	case preview.ResultMsg:
		m.preview.Complete(msg)

	case upload.ProgressMsg:
		m.upload.Progress(msg)
	case upload.DoneMsg:
		m.finishUpload(msg)

	default:
		return false
	}
	return true
}

// Close releases what the session still holds
func (m *Machine) Close() {
	if m.adoptHandle != nil {
		m.adoptHandle.Cancel()
	}
	m.preview.Reset()
}

func (m *Machine) acceptsInput() bool {
	return m.notice == nil && m.state != StateUploading
}

func (m *Machine) editable() bool {
	return m.notice == nil && m.state == StateConfiguring
}

func (m *Machine) setState(s State) {
	if s == m.state {
		return
	}
	logrus.WithFields(logrus.Fields{"from": m.state, "to": s}).Info("State transition")
	m.state = s
}

func (m *Machine) adopt(adoptFn func() (*intake.FileSelection, error)) {
	sel, err := adoptFn()
	if err != nil {
		logrus.WithError(err).Warn("File adoption failed")
		m.status = Status{Kind: StatusError, Text: fmt.Sprintf("Could not open the file: %v", err)}
		return
	}
	if sel == nil {
		return
	}

	if err := m.intake.ValidateHardLimit(); err != nil {
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			logrus.WithField("size", verr.Size).Warn("File rejected by hard limit")
		}
		m.notice = &Notice{Kind: NoticeError, Text: err.Error()}
		m.resetToHome()
		return
	}

	if m.adoptHandle != nil {
		m.adoptHandle.Cancel()
	}

	// the previous document's preview must not outlive it
	m.preview.Reset()
	m.status = Status{}
	m.resultPath = ""
	m.pageCount = 0
	m.dropPrompt = "📄 " + sel.Name
	m.setState(StateFileAdopted)

	id := sel.ID
	m.adoptHandle = m.clock.Schedule(m.adoptDelay, func() {
		m.dispatch.Post(adoptionSettledMsg{selectionID: id})
	})
}

func (m *Machine) settleAdoption(msg adoptionSettledMsg) {
	sel := m.intake.Selection()
	if m.state != StateFileAdopted || sel == nil || sel.ID != msg.selectionID {
		return
	}
	m.adoptHandle = nil
	m.setState(StateConfiguring)
	m.onConfigurationChanged()

	if m.pages != nil && m.intake.Policy().PreviewEligibility(sel) == intake.Eligible {
		count, path, id := m.pages, sel.Path, sel.ID
		m.dispatch.Go(func() any {
			n, err := count(path)
			return pageCountMsg{selectionID: id, pages: n, err: err}
		})
	}
}

func (m *Machine) onConfigurationChanged() {
	m.refreshFolio()
	m.preview.OnRelevantChange(m.intake.Selection(), m.form.Snapshot())
}

func (m *Machine) refreshFolio() {
	m.folio = form.FolioLabel(m.form.Get(form.FieldStartNumber))
}

func (m *Machine) submit() {
	if !m.intake.SubmitEnabled() {
		if err := m.intake.ValidateHardLimit(); err != nil {
			m.notice = &Notice{Kind: NoticeError, Text: err.Error()}
			m.resetToHome()
		}
		return
	}

	job, err := m.upload.Start(m.intake.Selection(), m.form.Snapshot())
	if err != nil {
		m.status = Status{Kind: StatusError, Text: err.Error()}
		return
	}

	m.status = Status{}
	m.setState(StateUploading)
	m.dispatch.Go(func() any { return job() })
}

func (m *Machine) finishUpload(msg upload.DoneMsg) {
	out := m.upload.Finish(msg)
	if out == nil {
		return
	}

	switch out.Kind {
	case upload.OutcomeSuccess:
		m.setState(StateDone)
		m.reload()
		m.status = Status{Kind: StatusSuccess, Text: fmt.Sprintf("Saved %s to %s", out.Name, out.Path)}
		m.resultPath = out.Path
	case upload.OutcomeStatus:
		m.setState(StateError)
		m.notice = &Notice{Kind: NoticeError, Text: fmt.Sprintf(
			"Error %d while processing. Try again with a smaller file.", out.StatusCode)}
		m.reload()
	case upload.OutcomeNetwork:
		m.notice = &Notice{Kind: NoticeError, Text: NoticeNetworkError}
		m.setState(StateConfiguring)
	default:
		m.setState(StateError)
		m.notice = &Notice{Kind: NoticeError, Text: fmt.Sprintf("The document could not be processed: %v", out.Err)}
		m.reload()
	}
}

// resetToHome clears the selection and both inputs, hides the
// configuration view and restores the idle prompts. Field values stay.
func (m *Machine) resetToHome() {
	if m.adoptHandle != nil {
		m.adoptHandle.Cancel()
		m.adoptHandle = nil
	}
	m.intake.Clear()
	m.preview.Reset()
	m.pageCount = 0
	m.dropPrompt = PromptIdle
	m.setState(StateIdle)
}

// reload returns to the initial state, field defaults included
func (m *Machine) reload() {
	m.resetToHome()
	m.form.Reset()
	m.upload.Clear()
	m.refreshFolio()
}

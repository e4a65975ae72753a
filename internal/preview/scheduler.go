// Package preview schedules first-page previews of the selected document.
package preview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/folio-cli/internal/foliator"
	"github.com/HaiFongPan/folio-cli/internal/form"
	"github.com/HaiFongPan/folio-cli/internal/intake"
	"github.com/HaiFongPan/folio-cli/internal/schedule"
)

// Messages shown in the preview slot
const (
	MessageNoDocument = "Upload a PDF to see the preview."
	MessageGenerating = "Generating preview..."
	MessageReady      = "Preview of the first page:"
)

// MessageKind drives the styling of the slot message
type MessageKind int

const (
	KindIdle MessageKind = iota
	KindLoading
	KindWarning
	KindError
	KindSuccess
)

// Slot is what the preview panel displays
type Slot struct {
	Message      string
	Kind         MessageKind
	Image        *Image
	ImageVisible bool
}

// Fetcher issues the preview request
type Fetcher interface {
	Preview(ctx context.Context, sel *intake.FileSelection, snap form.Snapshot) ([]byte, error)
}

// FireMsg is posted when the debounce timer expires
type FireMsg struct {
	Seq uint64
}

// ResultMsg is the outcome of a preview job
type ResultMsg struct {
	Generation uint64
	Image      *Image
	Err        error
}

// Job runs off the event loop
type Job func() ResultMsg

// Options tune the scheduler
type Options struct {
	Debounce  time.Duration
	Timeout   time.Duration
	MaxWidth  int
	MaxHeight int
}

type pendingRequest struct {
	seq  uint64
	sel  *intake.FileSelection
	snap form.Snapshot
}

// Scheduler debounces preview requests and makes sure only the newest
// response reaches the slot. Every method must be called from the event
// loop; post may be called from any goroutine.
type Scheduler struct {
	policy  intake.Policy
	fetcher Fetcher
	store   *Store
	clock   schedule.Scheduler
	post    func(msg any)
	opts    Options

	seq        uint64
	pending    *pendingRequest
	handle     schedule.Handle
	generation uint64
	slot       Slot
}

// New creates a scheduler. post delivers FireMsg back into the event loop.
func New(policy intake.Policy, fetcher Fetcher, store *Store, clock schedule.Scheduler, post func(msg any), opts Options) *Scheduler {
	return &Scheduler{
		policy:  policy,
		fetcher: fetcher,
		store:   store,
		clock:   clock,
		post:    post,
		opts:    opts,
		slot:    Slot{Message: MessageNoDocument, Kind: KindIdle},
	}
}

// Slot returns what the preview panel should show
func (s *Scheduler) Slot() Slot {
	return s.slot
}

// Generation returns the current generation token
func (s *Scheduler) Generation() uint64 {
	return s.generation
}

// Pending reports whether a debounced request is waiting for its timer
func (s *Scheduler) Pending() bool {
	return s.pending != nil
}

// OnRelevantChange reacts to a new selection or an edited field.
// Eligibility is checked before any timer is armed.
func (s *Scheduler) OnRelevantChange(sel *intake.FileSelection, snap form.Snapshot) {
	switch s.policy.PreviewEligibility(sel) {
	case intake.NoDocument:
		s.suppress(MessageNoDocument, KindIdle)
		return
	case intake.TooLarge:
		s.suppress(fmt.Sprintf(
			"PREVIEW DISABLED: the file is %.1f MB, above the %.0f MB preview limit. It can still be processed.",
			sel.SizeMB(), s.policy.SoftLimitMB()), KindWarning)
		logrus.WithField("size", sel.Size).Info("Preview suppressed, file above soft limit")
		return
	}

	s.seq++
	seq := s.seq
	s.pending = &pendingRequest{seq: seq, sel: sel, snap: snap}
	s.handle = schedule.Reschedule(s.clock, s.handle, s.opts.Debounce, func() {
		s.post(FireMsg{Seq: seq})
	})
}

// Fire starts the pending request if msg belongs to it. A timer that fired
// just before being cancelled can still deliver its message; those are
// recognised by their sequence number and return nil.
func (s *Scheduler) Fire(msg FireMsg) Job {
	if s.pending == nil || msg.Seq != s.pending.seq {
		logrus.Debugf("Dropping superseded preview fire %d", msg.Seq)
		return nil
	}

	req := s.pending
	s.pending = nil
	s.handle = nil

	s.generation++
	gen := s.generation
	s.slot.Message = MessageGenerating
	s.slot.Kind = KindLoading
	s.slot.ImageVisible = false

	logrus.WithFields(logrus.Fields{"generation": gen, "file": req.sel.Name}).Debug("Preview request started")

	fetcher, store, opts := s.fetcher, s.store, s.opts
	return func() ResultMsg {
		ctx := context.Background()
		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}

		data, err := fetcher.Preview(ctx, req.sel, req.snap)
		if err != nil {
			return ResultMsg{Generation: gen, Err: err}
		}

		img, err := decode(data, opts.MaxWidth, opts.MaxHeight)
		if err != nil {
			return ResultMsg{Generation: gen, Err: err}
		}

		handle, err := store.Create(img)
		if err != nil {
			return ResultMsg{Generation: gen, Err: err}
		}
		return ResultMsg{Generation: gen, Image: handle}
	}
}

// Complete applies a job result. Results from older generations release
// their image and change nothing else.
func (s *Scheduler) Complete(msg ResultMsg) {
	if msg.Generation != s.generation {
		s.store.Release(msg.Image)
		logrus.Debugf("Discarding stale preview generation %d (current %d)", msg.Generation, s.generation)
		return
	}

	s.store.Release(s.slot.Image)
	s.slot.Image = nil
	s.slot.ImageVisible = false

	if msg.Err != nil {
		logrus.WithError(msg.Err).WithField("generation", msg.Generation).Warn("Preview failed")
		s.slot.Message = errorMessage(msg.Err)
		s.slot.Kind = KindError
		return
	}

	s.slot.Image = msg.Image
	s.slot.ImageVisible = true
	s.slot.Message = MessageReady
	s.slot.Kind = KindSuccess
}

// Reset cancels pending work and returns the slot to its idle state
func (s *Scheduler) Reset() {
	s.suppress(MessageNoDocument, KindIdle)
}

// suppress cancels the pending timer, invalidates in-flight requests and
// releases the displayed image.
func (s *Scheduler) suppress(message string, kind MessageKind) {
	if s.handle != nil {
		s.handle.Cancel()
		s.handle = nil
	}
	s.pending = nil
	s.generation++

	s.store.Release(s.slot.Image)
	s.slot = Slot{Message: message, Kind: kind}
}

func errorMessage(err error) string {
	var statusErr *foliator.StatusError
	var netErr *foliator.NetworkError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Error: the preview took too long."
	case errors.As(err, &statusErr):
		return "Error: " + statusErr.Error()
	case errors.As(err, &netErr):
		return "Error: the preview service could not be reached."
	default:
		return "Error: " + err.Error()
	}
}

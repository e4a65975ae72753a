// Package upload runs the progress-tracked submission of the selected document.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/folio-cli/internal/foliator"
	"github.com/HaiFongPan/folio-cli/internal/form"
	"github.com/HaiFongPan/folio-cli/internal/intake"
)

// ErrUploadActive is returned by Start while another upload runs
var ErrUploadActive = errors.New("an upload is already in progress")

// Submitter sends the document to the service
type Submitter interface {
	Submit(ctx context.Context, sel *intake.FileSelection, snap form.Snapshot, onProgress foliator.ProgressFunc) (*foliator.Result, error)
}

// Sink stores the processed document and returns where it ended up
type Sink interface {
	Save(ctx context.Context, name string, body io.Reader) (string, error)
}

// ProgressMsg reports bytes sent for a session
type ProgressMsg struct {
	Session uint64
	Loaded  int64
	Total   int64
}

// DoneMsg ends a session
type DoneMsg struct {
	Session uint64
	Path    string
	Name    string
	Err     error
}

// Job runs off the event loop
type Job func() DoneMsg

// OutcomeKind classifies how a session ended
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeStatus              // the service answered with a non-200 status
	OutcomeNetwork             // no response at all
	OutcomeLocal               // reading the source or saving the result failed
)

// Outcome is the terminal state of a session
type Outcome struct {
	Kind       OutcomeKind
	Path       string
	Name       string
	StatusCode int
	Err        error
}

// Session is the state of the running (or last) upload
type Session struct {
	ID       uint64
	FileName string
	Loaded   int64
	Total    int64
	Percent  int
	Outcome  *Outcome
}

// SaveError wraps a failure to store the processed document
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save result: %v", e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Controller allows one upload at a time. Methods run on the event loop.
type Controller struct {
	submitter Submitter
	sink      Sink
	marker    string
	post      func(msg any)

	nextID  uint64
	session *Session
}

// New creates a controller. marker prefixes result file names; post
// delivers ProgressMsg into the event loop from the sending goroutine.
func New(submitter Submitter, sink Sink, marker string, post func(msg any)) *Controller {
	return &Controller{submitter: submitter, sink: sink, marker: marker, post: post}
}

// Active reports whether a session is running
func (c *Controller) Active() bool {
	return c.session != nil && c.session.Outcome == nil
}

// Session returns a copy of the current session, nil when there is none
func (c *Controller) Session() *Session {
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Start begins a session at 0% and returns the job that performs it
func (c *Controller) Start(sel *intake.FileSelection, snap form.Snapshot) (Job, error) {
	if c.Active() {
		return nil, ErrUploadActive
	}
	if sel == nil {
		return nil, errors.New("no file selected")
	}

	c.nextID++
	id := c.nextID
	c.session = &Session{ID: id, FileName: sel.Name, Total: sel.Size}

	logrus.WithFields(logrus.Fields{"session": id, "file": sel.Name, "size": sel.Size}).Info("Upload started")

	submitter, sink, post := c.submitter, c.sink, c.post
	name := ResultName(c.marker, sel.Name)

	return func() DoneMsg {
		ctx := context.Background()
		// the transport may report from its own goroutine, even after Submit returns
		var (
			mu        sync.Mutex
			sent      = -1
			lastTotal int64
		)

		res, err := submitter.Submit(ctx, sel, snap, func(loaded, total int64) {
			mu.Lock()
			defer mu.Unlock()
			lastTotal = total
			// one message per percent step is enough for the bar
			if p := Percent(loaded, total); p > sent {
				sent = p
				post(ProgressMsg{Session: id, Loaded: loaded, Total: total})
			}
		})
		if err != nil {
			return DoneMsg{Session: id, Err: err}
		}
		defer res.Body.Close()

		mu.Lock()
		total := lastTotal
		mu.Unlock()
		if total <= 0 {
			total = 1
		}
		post(ProgressMsg{Session: id, Loaded: total, Total: total})

		path, err := sink.Save(ctx, name, res.Body)
		if err != nil {
			return DoneMsg{Session: id, Name: name, Err: &SaveError{Err: err}}
		}
		return DoneMsg{Session: id, Path: path, Name: name}
	}, nil
}

// Progress applies a progress report. The percent never decreases.
// Returns false when the message belongs to another session.
func (c *Controller) Progress(msg ProgressMsg) bool {
	if !c.Active() || msg.Session != c.session.ID {
		return false
	}
	if msg.Total <= 0 {
		return true
	}

	c.session.Loaded = msg.Loaded
	c.session.Total = msg.Total
	if p := Percent(msg.Loaded, msg.Total); p > c.session.Percent {
		c.session.Percent = p
	}
	return true
}

// Finish records the end of a session and classifies it.
// Returns nil when the message belongs to another session.
func (c *Controller) Finish(msg DoneMsg) *Outcome {
	if !c.Active() || msg.Session != c.session.ID {
		return nil
	}

	out := &Outcome{Path: msg.Path, Name: msg.Name, Err: msg.Err}

	var statusErr *foliator.StatusError
	var netErr *foliator.NetworkError
	switch {
	case msg.Err == nil:
		out.Kind = OutcomeSuccess
		c.session.Percent = 100
	case errors.As(msg.Err, &statusErr):
		out.Kind = OutcomeStatus
		out.StatusCode = statusErr.StatusCode
	case errors.As(msg.Err, &netErr):
		out.Kind = OutcomeNetwork
	default:
		out.Kind = OutcomeLocal
	}

	c.session.Outcome = out

	entry := logrus.WithFields(logrus.Fields{"session": msg.Session, "outcome": out.Kind})
	if msg.Err != nil {
		entry.WithError(msg.Err).Warn("Upload failed")
	} else {
		entry.WithField("path", msg.Path).Info("Upload finished")
	}
	return out
}

// Clear forgets the finished session
func (c *Controller) Clear() {
	if !c.Active() {
		c.session = nil
	}
}

// Percent is round(loaded/total*100) clamped to [0, 100]
func Percent(loaded, total int64) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(loaded) / float64(total) * 100))
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// ResultName is the file name the processed document is saved under
func ResultName(marker, original string) string {
	return marker + original
}

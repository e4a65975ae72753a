package intake

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// ErrNoFile is returned when a drop carried nothing that looks like a path
var ErrNoFile = errors.New("no file in the dropped content")

// Controller owns the active FileSelection and the two inputs feeding it.
// Not safe for concurrent use; it lives on the UI event loop.
type Controller struct {
	policy    Policy
	selection *FileSelection
	input     string
	nextID    uint64
	stat      func(path string, source Source) (*FileSelection, error)
}

// NewController creates an intake controller enforcing policy
func NewController(policy Policy) *Controller {
	return &Controller{policy: policy, stat: Stat}
}

// Policy returns the size policy in force
func (c *Controller) Policy() Policy {
	return c.policy
}

// Selection returns the active selection, nil when there is none
func (c *Controller) Selection() *FileSelection {
	return c.selection
}

// Input returns the path shown in the picker and drop inputs
func (c *Controller) Input() string {
	return c.input
}

// Adopt makes the first entry of paths the active selection, replacing any
// previous one. An empty list is ignored and returns (nil, nil).
// On a stat failure the previous selection is kept.
func (c *Controller) Adopt(source Source, paths []string) (*FileSelection, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	sel, err := c.stat(paths[0], source)
	if err != nil {
		return nil, err
	}

	c.nextID++
	sel.ID = c.nextID
	c.selection = sel
	c.input = sel.Path

	logrus.WithFields(logrus.Fields{
		"source": source,
		"name":   sel.Name,
		"size":   sel.Size,
		"mime":   sel.MIMEType,
		"id":     sel.ID,
	}).Info("File adopted")

	if len(paths) > 1 {
		logrus.Debugf("Ignoring %d additional dropped files", len(paths)-1)
	}
	return sel, nil
}

// AdoptDropped parses terminal-dropped text and adopts the first path in it
func (c *Controller) AdoptDropped(text string) (*FileSelection, error) {
	paths := ParseDropped(text)
	if len(paths) == 0 {
		return nil, ErrNoFile
	}
	return c.Adopt(SourceDrop, paths)
}

// Clear drops the selection and empties both inputs
func (c *Controller) Clear() {
	c.selection = nil
	c.input = ""
}

// ValidateHardLimit checks the active selection against the hard limit
func (c *Controller) ValidateHardLimit() error {
	return c.policy.ValidateHardLimit(c.selection)
}

// SubmitEnabled reports whether the active selection may be uploaded
func (c *Controller) SubmitEnabled() bool {
	return c.policy.SubmitEnabled(c.selection)
}

package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// loopDispatcher connects the session to the bubbletea program. Posts go
// through program.Send; jobs are collected and handed back from Update
// as commands, which bubbletea runs on its own goroutines.
type loopDispatcher struct {
	mu      sync.Mutex
	program *tea.Program
	pending []tea.Cmd
}

// Post implements session.Dispatcher. Messages posted before the program
// is attached are dropped.
func (d *loopDispatcher) Post(msg any) {
	d.mu.Lock()
	p := d.program
	d.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Go implements session.Dispatcher
func (d *loopDispatcher) Go(job func() any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, func() tea.Msg { return job() })
}

func (d *loopDispatcher) setProgram(p *tea.Program) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.program = p
}

// drain returns the collected jobs as one command
func (d *loopDispatcher) drain() tea.Cmd {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) == 0 {
		return nil
	}
	cmds := d.pending
	d.pending = nil
	return tea.Batch(cmds...)
}

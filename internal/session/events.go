package session

// User events. Each one is consumed by exactly one owner inside the machine.
type (
	// PickFiles carries the paths chosen in the file picker
	PickFiles struct{ Paths []string }
	// DropFiles carries text pasted by the terminal when files are dropped on it
	DropFiles struct{ Text string }
	// SetField assigns a field value
	SetField struct{ Name, Value string }
	// CycleField moves a select field to the next or previous option
	CycleField struct {
		Name  string
		Delta int
	}
	// Submit asks for the upload to start
	Submit struct{}
	// DismissNotice closes the blocking notice
	DismissNotice struct{}
	// Reload returns everything to the initial state
	Reload struct{}
)

// Internal completions
type (
	adoptionSettledMsg struct{ selectionID uint64 }
	pageCountMsg       struct {
		selectionID uint64
		pages       int
		err         error
	}
)

// Dispatcher connects the machine to the event loop
type Dispatcher interface {
	// Post delivers msg into the event loop. Safe from any goroutine, but
	// never called synchronously from inside Handle.
	Post(msg any)
	// Go runs job off the event loop and delivers its result as a message
	Go(job func() any)
}

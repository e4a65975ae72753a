package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/HaiFongPan/folio-cli/internal/preview"
	tuiconfig "github.com/HaiFongPan/folio-cli/internal/tui/config"
	img "github.com/HaiFongPan/folio-cli/internal/tui/image"
	"github.com/HaiFongPan/folio-cli/internal/tui/theme"
)

// PreviewModal shows the current preview image fullscreen, using the
// terminal graphics protocol when there is one
type PreviewModal struct {
	width    int
	height   int
	renderer *img.Renderer
	image    *preview.Image
	fileName string
	pages    int

	loading  bool
	rendered *img.Rendered
	err      error
	seq      int
}

type (
	modalRenderedMsg struct {
		seq      int
		rendered *img.Rendered
		err      error
	}
	modalClosedMsg struct{}
)

// NewPreviewModal creates a modal for image
func NewPreviewModal(renderer *img.Renderer, image *preview.Image, fileName string, pages, width, height int) *PreviewModal {
	return &PreviewModal{
		width:    width,
		height:   height,
		renderer: renderer,
		image:    image,
		fileName: fileName,
		pages:    pages,
		loading:  true,
	}
}

// ImageID returns the id of the displayed image
func (m *PreviewModal) ImageID() uint64 {
	return m.image.ID
}

// Resize changes the modal size; Init has to run again
func (m *PreviewModal) Resize(width, height int) {
	m.width = width
	m.height = height
}

// Init renders the image off the event loop
func (m *PreviewModal) Init() tea.Cmd {
	m.seq++
	m.loading = true
	seq, renderer, image := m.seq, m.renderer, m.image
	cols, rows := m.imageArea()

	return func() tea.Msg {
		out, err := renderer.Render(image.Path, image.ID, cols, rows)
		return modalRenderedMsg{seq: seq, rendered: out, err: err}
	}
}

// Apply installs a render result, ignoring those of an earlier size
func (m *PreviewModal) Apply(msg modalRenderedMsg) {
	if msg.seq != m.seq {
		return
	}
	m.loading = false
	m.rendered = msg.rendered
	m.err = msg.err
}

// Update handles a key press; closing keys produce modalClosedMsg
func (m *PreviewModal) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc", "ctrl+p", "enter":
		return func() tea.Msg { return modalClosedMsg{} }
	}
	return nil
}

func (m *PreviewModal) imageArea() (int, int) {
	cols := max(1, m.width-4)
	rows := max(1, m.height-tuiconfig.ModalHeaderRows-2)
	return cols, rows
}

// View renders the modal
func (m *PreviewModal) View() string {
	center := lipgloss.NewStyle().Width(m.width).Align(lipgloss.Center)

	nameLine := center.
		Bold(true).
		Foreground(lipgloss.Color(theme.ColorBrightCyan)).
		Render("📄 " + m.fileName)

	var statusText string
	switch {
	case m.loading:
		statusText = "Rendering preview…"
	case m.err != nil:
		statusText = theme.CreateMessageStyle(theme.LevelError).Render(fmt.Sprintf("Failed to render: %v", m.err))
	default:
		statusText = fmt.Sprintf("First page · %dx%d px", m.image.Width, m.image.Height)
		if m.pages > 0 {
			statusText += fmt.Sprintf(" · %d pages", m.pages)
		}
	}
	statusLine := center.Render(statusText)

	hint := center.
		Foreground(lipgloss.Color(theme.ColorBrightBlack)).
		Render("q/esc to close")

	var b strings.Builder
	b.WriteString(nameLine)
	b.WriteString("\n")
	b.WriteString(statusLine)
	b.WriteString("\n")
	b.WriteString(hint)
	b.WriteString("\n")

	if m.loading || m.err != nil || m.rendered == nil {
		return b.String()
	}

	if m.rendered.Protocol == img.ProtocolANSI || m.rendered.Protocol == img.ProtocolNone {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.rendered.Data))
		return b.String()
	}

	// graphics go to an absolute cell position below the header
	col := 1 + max(0, m.width-m.rendered.Cols)/2
	row := tuiconfig.ModalHeaderRows + 1
	fmt.Fprintf(&b, "\x1b[%d;%dH%s\x1b[0m", row, col, m.rendered.Data)
	return b.String()
}

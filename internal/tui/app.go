package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/folio-cli/internal/config"
	"github.com/HaiFongPan/folio-cli/internal/form"
	"github.com/HaiFongPan/folio-cli/internal/intake"
	"github.com/HaiFongPan/folio-cli/internal/preview"
	"github.com/HaiFongPan/folio-cli/internal/schedule"
	"github.com/HaiFongPan/folio-cli/internal/session"
	tuiconfig "github.com/HaiFongPan/folio-cli/internal/tui/config"
	img "github.com/HaiFongPan/folio-cli/internal/tui/image"
	"github.com/HaiFongPan/folio-cli/internal/tui/messaging"
	"github.com/HaiFongPan/folio-cli/internal/tui/theme"
	"github.com/HaiFongPan/folio-cli/internal/utils"
)

// KeyMap defines keybindings for the application
type KeyMap struct {
	Open    key.Binding
	Drop    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Left    key.Binding
	Right   key.Binding
	Submit  key.Binding
	Preview key.Binding
	Reload  key.Binding
	Copy    key.Binding
	Dismiss key.Binding
	Close   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "browse files"),
		),
		Drop: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "use typed path"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab/↓", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab/↑", "previous field"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "previous option"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next option"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "number pages"),
		),
		Preview: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "full preview"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "start over"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy result path"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("enter", "esc"),
			key.WithHelp("enter/esc", "dismiss"),
		),
		Close: key.NewBinding(
			key.WithKeys("q", "ctrl+o"),
			key.WithHelp("q", "close"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Submit, k.Preview, k.Reload, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.Drop, k.Reload, k.Copy},
		{k.Next, k.Prev, k.Left, k.Right},
		{k.Submit, k.Preview},
		{k.Help, k.Quit},
	}
}

// Options configures the application model
type Options struct {
	Config   *config.Config
	Deps     session.Deps // Dispatcher and Clock are filled in when nil
	Renderer *img.Renderer
	StartDir string // initial directory of the file picker
}

// Model is the foliation client TUI. All session state lives in the
// machine; the model only turns keys into events and views into text.
type Model struct {
	cfg      *config.Config
	machine  *session.Machine
	loop     *loopDispatcher
	renderer *img.Renderer
	status   messaging.StatusManager
	out      io.Writer
	copy     func(string) error
	lastDir  string

	keyMap    KeyMap
	help      help.Model
	spinner   spinner.Model
	progress  progress.Model
	picker    filepicker.Model
	dropInput textinput.Model
	inputs    map[string]textinput.Model
	focus     int

	view         session.View
	picking      bool
	showHelp     bool
	modal        *PreviewModal
	windowWidth  int
	windowHeight int
}

// NewModel creates the application model
func NewModel(opts Options) *Model {
	deps := opts.Deps
	var loop *loopDispatcher
	if deps.Dispatcher == nil {
		loop = &loopDispatcher{}
		deps.Dispatcher = loop
	}
	if deps.Clock == nil {
		deps.Clock = schedule.Timer{}
	}

	renderer := opts.Renderer
	if renderer == nil {
		renderer = img.NewRenderer(opts.Config.UI.ImagePreviewMethod)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorBrightYellow))

	h := help.New()
	h.ShowAll = false

	drop := textinput.New()
	drop.Placeholder = "/path/to/document.pdf"
	drop.CharLimit = 4096
	drop.Width = tuiconfig.DialogDefaultWidth - 6
	drop.Focus()

	fp := filepicker.New()
	fp.AllowedTypes = []string{".pdf", ".PDF"}
	fp.AutoHeight = false
	fp.Height = tuiconfig.FilePickerHeight
	fp.ShowPermissions = false
	fp.CurrentDirectory = opts.StartDir
	if fp.CurrentDirectory == "" {
		if home, err := os.UserHomeDir(); err == nil {
			fp.CurrentDirectory = home
		}
	}

	m := &Model{
		cfg:          opts.Config,
		machine:      session.New(deps),
		loop:         loop,
		renderer:     renderer,
		status:       messaging.NewStatusManager(),
		out:          os.Stdout,
		copy:         utils.CopyToClipboard,
		keyMap:       DefaultKeyMap(),
		help:         h,
		spinner:      s,
		progress:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(tuiconfig.ProgressBarWidth)),
		picker:       fp,
		dropInput:    drop,
		inputs:       make(map[string]textinput.Model),
		windowWidth:  80,
		windowHeight: 24,
	}

	for _, f := range m.machine.View().Fields {
		if f.Kind != form.KindNumber {
			continue
		}
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 8
		ti.Width = tuiconfig.FieldInputWidth
		ti.SetValue(f.Value)
		m.inputs[f.Name] = ti
	}

	m.refresh()
	return m
}

// SetProgram sets the tea.Program reference for direct message sending
func (m *Model) SetProgram(p *tea.Program) {
	if m.loop != nil {
		m.loop.setProgram(p)
	}
}

// LastDirectory returns the directory of the last adopted document
func (m *Model) LastDirectory() string {
	return m.lastDir
}

// Close releases the session resources
func (m *Model) Close() {
	m.machine.Close()
}

// Init implements the bubbletea.Model interface
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

// Update implements the bubbletea.Model interface
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.progress.Width = min(tuiconfig.ProgressBarWidth, max(10, msg.Width-16))
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
		if m.modal != nil {
			m.modal.Resize(msg.Width, msg.Height)
			cmds = append(cmds, m.modal.Init())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case modalRenderedMsg:
		if m.modal != nil {
			m.modal.Apply(msg)
		}

	case modalClosedMsg:
		m.closeModal()

	default:
		if !m.machine.Handle(msg) {
			// file picker directory reads, cursor blinks
			if m.picking {
				cmds = append(cmds, m.updatePicker(msg))
			}
			var cmd tea.Cmd
			m.dropInput, cmd = m.dropInput.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.refresh()
	if m.loop != nil {
		cmds = append(cmds, m.loop.drain())
	}
	return m, tea.Batch(cmds...)
}

// handleKey routes a key to the layer on top: modal, notice, help, picker, then the state view
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keyMap.Quit) {
		if m.view.State == session.StateUploading {
			logrus.Warn("Quitting with an upload in progress")
		}
		return tea.Quit
	}

	if m.modal != nil {
		return m.modal.Update(msg)
	}

	if m.view.Notice != nil {
		if key.Matches(msg, m.keyMap.Dismiss) {
			m.machine.Handle(session.DismissNotice{})
		}
		return nil
	}

	if m.showHelp {
		if key.Matches(msg, m.keyMap.Help) || key.Matches(msg, m.keyMap.Dismiss) || key.Matches(msg, m.keyMap.Close) {
			m.showHelp = false
		}
		return nil
	}

	if m.picking {
		if key.Matches(msg, m.keyMap.Close) {
			m.picking = false
			return nil
		}
		return m.updatePicker(msg)
	}

	if m.view.State == session.StateUploading {
		return nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true
		return nil
	case key.Matches(msg, m.keyMap.Open):
		m.picking = true
		return m.picker.Init()
	case key.Matches(msg, m.keyMap.Reload):
		m.machine.Handle(session.Reload{})
		return nil
	case key.Matches(msg, m.keyMap.Preview):
		return m.openModal()
	case key.Matches(msg, m.keyMap.Copy):
		m.copyResultPath()
		return nil
	case msg.Paste && (m.home() || isDroppedFile(string(msg.Runes))):
		// terminals deliver dropped files as pasted text
		m.machine.Handle(session.DropFiles{Text: string(msg.Runes)})
		return nil
	}

	if m.home() {
		return m.handleHomeKey(msg)
	}
	return m.handleConfigKey(msg)
}

// isDroppedFile reports whether pasted text names an existing file, so a
// paste into a form field is not taken for a drop
func isDroppedFile(text string) bool {
	paths := intake.ParseDropped(text)
	if len(paths) == 0 {
		return false
	}
	info, err := os.Stat(paths[0])
	return err == nil && !info.IsDir()
}

func (m *Model) handleHomeKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keyMap.Drop) {
		if text := strings.TrimSpace(m.dropInput.Value()); text != "" {
			m.machine.Handle(session.DropFiles{Text: text})
		}
		return nil
	}

	var cmd tea.Cmd
	m.dropInput, cmd = m.dropInput.Update(msg)
	return cmd
}

func (m *Model) handleConfigKey(msg tea.KeyMsg) tea.Cmd {
	fields := m.view.Fields
	submitFocus := len(fields)

	switch {
	case key.Matches(msg, m.keyMap.Submit):
		m.machine.Handle(session.Submit{})
		return nil
	case key.Matches(msg, m.keyMap.Next):
		m.focus = (m.focus + 1) % (submitFocus + 1)
		return nil
	case key.Matches(msg, m.keyMap.Prev):
		m.focus = (m.focus + submitFocus) % (submitFocus + 1)
		return nil
	case msg.Type == tea.KeyEnter:
		if m.focus == submitFocus {
			m.machine.Handle(session.Submit{})
		} else {
			m.focus++
		}
		return nil
	}

	if m.focus >= submitFocus {
		return nil
	}
	field := fields[m.focus]

	if field.Kind == form.KindSelect {
		switch {
		case key.Matches(msg, m.keyMap.Left):
			m.machine.Handle(session.CycleField{Name: field.Name, Delta: -1})
		case key.Matches(msg, m.keyMap.Right):
			m.machine.Handle(session.CycleField{Name: field.Name, Delta: 1})
		}
		return nil
	}

	ti, ok := m.inputs[field.Name]
	if !ok {
		return nil
	}
	before := ti.Value()
	var cmd tea.Cmd
	ti, cmd = ti.Update(msg)
	m.inputs[field.Name] = ti
	if ti.Value() != before {
		// refresh puts the accepted value back if the edit is rejected
		m.machine.Handle(session.SetField{Name: field.Name, Value: ti.Value()})
	}
	return cmd
}

func (m *Model) updatePicker(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		m.machine.Handle(session.PickFiles{Paths: []string{path}})
	} else if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.status.SetMessage(fmt.Sprintf("%s is not a PDF", filepath.Base(path)), messaging.MessageWarning)
	}
	return cmd
}

func (m *Model) copyResultPath() {
	path := m.view.ResultPath
	if path == "" {
		return
	}
	if err := m.copy(path); err != nil {
		logrus.WithError(err).Warn("Copy to clipboard failed")
		m.status.SetMessage("Could not copy the path: "+err.Error(), messaging.MessageError)
		return
	}
	m.status.SetMessage("Copied "+path, messaging.MessageSuccess)
}

func (m *Model) openModal() tea.Cmd {
	slot := m.view.Preview
	if !slot.ImageVisible || slot.Image == nil || m.view.Selection == nil {
		return nil
	}
	m.modal = NewPreviewModal(m.renderer, slot.Image, m.view.Selection.Name, m.view.Pages, m.windowWidth, m.windowHeight)
	return m.modal.Init()
}

func (m *Model) closeModal() {
	if m.modal == nil {
		return
	}
	m.renderer.Clear(m.out)
	m.modal = nil
}

func (m *Model) home() bool {
	return m.view.State == session.StateIdle || m.view.State == session.StateFileAdopted
}

// refresh takes a new view snapshot and brings the widgets in line with it
func (m *Model) refresh() {
	prev := m.view
	m.view = m.machine.View()

	for _, f := range m.view.Fields {
		if ti, ok := m.inputs[f.Name]; ok && ti.Value() != f.Value {
			ti.SetValue(f.Value)
			m.inputs[f.Name] = ti
		}
	}

	if sel := m.view.Selection; sel != nil && selectionID(prev) != sel.ID {
		m.lastDir = filepath.Dir(sel.Path)
	}

	if selectionID(prev) != selectionID(m.view) || prev.State != m.view.State || (m.view.Notice != nil && prev.Notice == nil) {
		m.dropInput.SetValue(m.view.Input)
		if m.view.State == session.StateIdle {
			m.focus = 0
		}
	}

	if prev.Status != m.view.Status {
		if m.view.Status.Text == "" {
			m.status.ClearMessage()
		} else {
			m.status.SetMessage(m.view.Status.Text, statusType(m.view.Status.Kind))
		}
	}

	if old := prev.Preview.Image; old != nil && (m.view.Preview.Image == nil || m.view.Preview.Image.ID != old.ID) {
		m.renderer.Forget(old.ID)
		if m.modal != nil && m.modal.ImageID() == old.ID {
			m.closeModal()
		}
	}

	m.applyFocus()
}

func (m *Model) applyFocus() {
	if m.home() {
		m.dropInput.Focus()
	} else {
		m.dropInput.Blur()
	}

	for i, f := range m.view.Fields {
		ti, ok := m.inputs[f.Name]
		if !ok {
			continue
		}
		if !m.home() && i == m.focus {
			ti.Focus()
		} else {
			ti.Blur()
		}
		m.inputs[f.Name] = ti
	}
}

// View implements the bubbletea.Model interface
func (m *Model) View() string {
	if m.modal != nil {
		return m.modal.View()
	}

	header := theme.CreateHeaderStyle().Render(fmt.Sprintf("📑 PDF Foliator · %s", m.cfg.Service.BaseURL))

	var body string
	if m.home() {
		body = m.renderHome()
	} else {
		body = m.renderWorkspace()
	}

	footer := theme.CreateFooterStyle().Render(m.help.ShortHelpView(m.keyMap.ShortHelp()))
	parts := []string{header, body}
	if status := m.status.RenderMessage(); status != "" {
		parts = append(parts, " "+status)
	}
	parts = append(parts, footer)
	baseView := lipgloss.JoinVertical(lipgloss.Left, parts...)

	switch {
	case m.view.Notice != nil:
		return m.renderFloatingDialog(m.renderNotice())
	case m.view.Progress.Visible:
		return m.renderFloatingDialog(m.renderUploadProgress())
	case m.picking:
		return m.renderFloatingDialog(m.renderPicker())
	case m.showHelp:
		return m.renderFloatingDialog(m.renderHelpDialog())
	}
	return baseView
}

// renderHome renders the drop zone
func (m *Model) renderHome() string {
	var b strings.Builder

	prompt := m.view.DropPrompt
	if m.view.State == session.StateFileAdopted {
		prompt = fmt.Sprintf("%s %s", prompt, m.spinner.View())
	}
	b.WriteString(theme.CreatePromptStyle().Render(prompt))
	b.WriteString("\n\n")
	b.WriteString(m.dropInput.View())
	b.WriteString("\n\n")
	b.WriteString(theme.CreateSecondaryTextStyle().Render("Drag a file onto the terminal, type a path and press enter, or press ctrl+o"))

	width := min(tuiconfig.DialogLargeWidth, max(tuiconfig.MinPanelWidth, m.windowWidth-4))
	return theme.CreateDropZoneStyle(width, m.view.State == session.StateFileAdopted).Render(b.String())
}

// renderWorkspace renders the configuration panel next to the preview panel
func (m *Model) renderWorkspace() string {
	leftWidth := max(tuiconfig.MinPanelWidth, int(float64(m.windowWidth)*tuiconfig.LeftPanelWidthRatio))
	rightWidth := max(tuiconfig.MinPanelWidth, m.windowWidth-leftWidth-tuiconfig.PanelSeparatorWidth)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderConfigPanel(leftWidth),
		lipgloss.NewStyle().Width(tuiconfig.PanelSeparatorWidth).Render("  "),
		m.renderPreviewPanel(rightWidth),
	)
}

func (m *Model) renderConfigPanel(width int) string {
	var b strings.Builder
	info := theme.CreateInfoTextStyle()

	b.WriteString(theme.CreateSectionHeaderStyle().Render("Document"))
	b.WriteString("\n")
	if sel := m.view.Selection; sel != nil {
		b.WriteString(info.Render("📄 " + truncate(sel.Name, tuiconfig.FileNameMaxLen)))
		b.WriteString("\n")
		details := fmt.Sprintf("📊 %s", utils.FormatBytes(sel.Size))
		if m.view.Pages > 0 {
			details += fmt.Sprintf(" · %d pages", m.view.Pages)
		}
		b.WriteString(info.Render(details))
		b.WriteString("\n\n")
	}

	b.WriteString(theme.CreateSectionHeaderStyle().Render("Numbering"))
	b.WriteString("\n")
	for i, f := range m.view.Fields {
		focused := i == m.focus
		b.WriteString(theme.CreateFieldLabelStyle(focused).Render(f.Label))
		if f.Kind == form.KindSelect {
			value := f.Value
			if focused {
				value = "‹ " + value + " ›"
			}
			b.WriteString(info.Render(value))
		} else if ti, ok := m.inputs[f.Name]; ok {
			b.WriteString(ti.View())
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.CreateSecondaryTextStyle().Render("First folio: "))
	b.WriteString(theme.CreateFolioStyle().Render(m.view.FolioLabel))
	b.WriteString("\n\n")

	b.WriteString(theme.CreateButtonStyle(m.focus == len(m.view.Fields), m.view.SubmitEnabled).Render("Number pages"))

	return theme.CreateUnifiedPanelStyle(width-2, 0).Render(b.String())
}

func (m *Model) renderPreviewPanel(width int) string {
	var b strings.Builder
	slot := m.view.Preview
	level := previewLevel(slot.Kind)

	b.WriteString(theme.CreateSectionHeaderStyle().Render("Preview"))
	b.WriteString("\n")
	caption := slot.Message
	if slot.Kind == preview.KindLoading {
		caption = m.spinner.View() + " " + caption
	}
	b.WriteString(theme.CreateMessageStyle(level).Width(width - 4).Render(caption))

	if slot.ImageVisible && slot.Image != nil {
		cols := min(m.cfg.UI.PreviewWidth, width-4)
		out, err := m.renderer.RenderText(slot.Image.Path, slot.Image.ID, cols, m.cfg.UI.PreviewHeight)
		b.WriteString("\n\n")
		if err != nil {
			logrus.WithError(err).Warn("Failed to render preview")
			b.WriteString(theme.CreateMessageStyle(theme.LevelError).Render("The preview could not be drawn"))
		} else {
			b.WriteString(out.Data)
		}
	}

	return theme.CreateUnifiedPanelStyle(width-2, 0).Render(b.String())
}

// renderFloatingDialog centres a dialog on the screen
func (m *Model) renderFloatingDialog(dialog string) string {
	return lipgloss.Place(
		m.windowWidth,
		m.windowHeight,
		lipgloss.Center,
		lipgloss.Center,
		dialog,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("#222222")),
	)
}

func (m *Model) renderNotice() string {
	n := m.view.Notice
	level := theme.LevelError
	if n.Kind == session.NoticeWarning {
		level = theme.LevelWarning
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		theme.CreateMessageStyle(level).Bold(true).Render(theme.GetMessageIcon(level)+n.Text),
		"",
		theme.CreateSecondaryTextStyle().Render("Press enter to continue"),
	)
	return theme.CreateNoticeStyle(tuiconfig.DialogDefaultWidth, level).Render(content)
}

// renderUploadProgress renders the upload progress dialog
func (m *Model) renderUploadProgress() string {
	p := m.view.Progress

	var b strings.Builder
	b.WriteString(theme.CreateProgressTextStyle().Render("📤 Numbering pages"))
	b.WriteString("\n\n")
	b.WriteString(theme.FormatProgressMessage("Sending", truncate(p.File, tuiconfig.FileNameMaxLen), p.Percent))
	b.WriteString("\n\n")
	b.WriteString(m.progress.ViewAs(float64(p.Percent) / 100))

	return theme.CreateDialogStyle(tuiconfig.DialogDefaultWidth, theme.ColorBrightCyan).Render(b.String())
}

func (m *Model) renderPicker() string {
	var b strings.Builder
	b.WriteString(theme.CreateSectionHeaderStyle().Render("📂 " + m.picker.CurrentDirectory))
	b.WriteString("\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n")
	b.WriteString(theme.CreateSecondaryTextStyle().Render("enter to choose • q to close"))

	width := min(tuiconfig.FilePickerDialogWidth, max(tuiconfig.MinPanelWidth, m.windowWidth-4))
	return theme.CreateDialogStyle(width, "").Align(lipgloss.Left).Render(b.String())
}

// renderHelpDialog renders the help dialog using bubbles components
func (m *Model) renderHelpDialog() string {
	title := theme.CreatePromptStyle().MarginBottom(1).Render("📑 PDF Foliator - Help")
	content := lipgloss.JoinVertical(lipgloss.Left, title, m.help.FullHelpView(m.keyMap.FullHelp()))
	return theme.CreateDialogStyle(min(tuiconfig.DialogLargeWidth, m.windowWidth-10), theme.ColorBrightYellow).
		Align(lipgloss.Left).
		Render(content)
}

func selectionID(v session.View) uint64 {
	if v.Selection == nil {
		return 0
	}
	return v.Selection.ID
}

func statusType(kind session.StatusKind) messaging.MessageType {
	switch kind {
	case session.StatusSuccess:
		return messaging.MessageSuccess
	case session.StatusError:
		return messaging.MessageError
	default:
		return messaging.MessageInfo
	}
}

func previewLevel(kind preview.MessageKind) int {
	switch kind {
	case preview.KindLoading:
		return theme.LevelLoading
	case preview.KindWarning:
		return theme.LevelWarning
	case preview.KindError:
		return theme.LevelError
	case preview.KindSuccess:
		return theme.LevelSuccess
	default:
		return theme.LevelInfo
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

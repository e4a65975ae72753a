package messaging

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/folio-cli/internal/tui/theme"
)

// MessageType represents different message types for status display
type MessageType int

// Message type constants, aligned with the theme levels
const (
	MessageInfo    MessageType = theme.LevelInfo
	MessageSuccess MessageType = theme.LevelSuccess
	MessageWarning MessageType = theme.LevelWarning
	MessageError   MessageType = theme.LevelError
)

// StatusManager manages the status line under the main view
type StatusManager interface {
	SetMessage(message string, msgType MessageType)
	ClearMessage()
	GetMessage() (string, MessageType, bool)
	RenderMessage() string
	HasMessage() bool
}

// StatusManagerImpl implements the StatusManager interface
type StatusManagerImpl struct {
	statusMessage string
	messageType   MessageType
}

// NewStatusManager creates a new status manager instance
func NewStatusManager() StatusManager {
	return &StatusManagerImpl{messageType: MessageInfo}
}

// SetMessage sets a status message with type. Setting the same message again is a no-op.
func (sm *StatusManagerImpl) SetMessage(message string, msgType MessageType) {
	if message == sm.statusMessage && msgType == sm.messageType {
		return
	}
	sm.statusMessage = message
	sm.messageType = msgType

	logrus.Debugf("StatusManager: message set to '%s' (type %d)", message, msgType)
}

// ClearMessage clears the status message
func (sm *StatusManagerImpl) ClearMessage() {
	sm.statusMessage = ""
}

// GetMessage returns the current message, type, and whether a message exists
func (sm *StatusManagerImpl) GetMessage() (string, MessageType, bool) {
	return sm.statusMessage, sm.messageType, sm.statusMessage != ""
}

// HasMessage returns whether there is currently a status message
func (sm *StatusManagerImpl) HasMessage() bool {
	return sm.statusMessage != ""
}

// RenderMessage renders the current status message with appropriate styling
func (sm *StatusManagerImpl) RenderMessage() string {
	if !sm.HasMessage() {
		return ""
	}

	messageStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.GetMessageColor(int(sm.messageType)))).
		Bold(true)

	return messageStyle.Render(fmt.Sprintf("%s%s", theme.GetMessageIcon(int(sm.messageType)), sm.statusMessage))
}

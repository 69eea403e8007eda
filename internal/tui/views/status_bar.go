package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"chatdesk/internal/status"
	"chatdesk/internal/tui/ui"
)

// StatusBar displays the connection state, environment and unread total.
type StatusBar struct {
	*tview.TextView
	env        string
	state      status.State
	unread     int
	flash      string
	flashLevel ui.FlashLevel
}

// NewStatusBar creates a new status bar.
func NewStatusBar(env string) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	sb := &StatusBar{TextView: tv, env: env, state: status.Disconnected}
	sb.render()
	return sb
}

// SetState updates the connection state display.
func (sb *StatusBar) SetState(s status.State) {
	sb.state = s
	sb.render()
}

// SetUnread updates the unread total.
func (sb *StatusBar) SetUnread(n int) {
	sb.unread = n
	sb.render()
}

// SetFlash sets a temporary notice, colored by level.
func (sb *StatusBar) SetFlash(msg string, level ui.FlashLevel) {
	sb.flash = msg
	sb.flashLevel = level
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	var stateColor string
	switch sb.state {
	case status.Connected:
		stateColor = "green"
	case status.Connecting, status.Reconnecting:
		stateColor = "yellow"
	default:
		stateColor = "red"
	}

	unread := ""
	if sb.unread > 0 {
		unread = fmt.Sprintf(" | [red::b]%d unread[-:-:-]", sb.unread)
	}

	clock := time.Now().Format("15:04")

	line := fmt.Sprintf(" [::b]%s[-:-:-] | [%s]%s[-]%s | %s",
		sb.env, stateColor, sb.state, unread, clock)
	if sb.flash != "" {
		flashColor := "skyblue"
		switch sb.flashLevel {
		case ui.FlashWarn:
			flashColor = "yellow"
		case ui.FlashErr:
			flashColor = "red"
		}
		line += fmt.Sprintf(" | [%s]%s[-]", flashColor, sb.flash)
	}

	_, _ = fmt.Fprint(sb, line)
}

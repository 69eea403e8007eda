package views

import (
	"fmt"

	"github.com/rivo/tview"

	"chatdesk/internal/chat"
	"chatdesk/internal/tui/ui"
)

// ConversationInfo displays detailed information about a conversation.
type ConversationInfo struct {
	*tview.TextView
	theme *ui.Theme
}

// NewConversationInfo creates a new conversation info view.
func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Conversation Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ConversationInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements ui.View.
func (ci *ConversationInfo) Name() string { return "Details" }


// Hints implements ui.View.
func (ci *ConversationInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// Update renders conversation details.
func (ci *ConversationInfo) Update(c *chat.Conversation) {
	ci.Clear()
	if c == nil {
		return
	}

	fg := fmt.Sprintf("#%06x", ci.theme.FgColor.Hex())
	ct := fmt.Sprintf("#%06x", ci.theme.CounterColor.Hex())

	lastActive := "-"
	if c.LastMessageAt != nil {
		lastActive = formatTimestamp(c.LastMessageAt.UnixMilli())
	}

	user := c.User.Email
	if user == "" {
		user = fmt.Sprintf("user #%d", c.UserID)
	}

	text := fmt.Sprintf(
		"\n [%s::b]User:[-:-:-]         [%s]%s[-]\n"+
			" [%s::b]Conversation:[-:-:-] [%s]#%d[-]\n"+
			" [%s::b]Status:[-:-:-]       [%s]%s[-]\n"+
			" [%s::b]Unread:[-:-:-]       [%s]%d[-]\n"+
			" [%s::b]Messages:[-:-:-]     [%s]%d[-]\n"+
			" [%s::b]Last Active:[-:-:-]  [%s]%s[-]\n"+
			" [%s::b]Last Message:[-:-:-] [%s]%s[-]",
		fg, ct, tview.Escape(user),
		fg, ct, c.ID,
		fg, ct, c.Status,
		fg, ct, c.UnreadCount,
		fg, ct, c.Count.Messages,
		fg, ct, lastActive,
		fg, ct, tview.Escape(sanitizeForTerminal(c.Preview())),
	)

	_, _ = fmt.Fprint(ci, text)
	ci.SetTitle(fmt.Sprintf(" %s ", user))
}

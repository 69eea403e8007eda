package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"chatdesk/internal/chat"
	"chatdesk/internal/tui/ui"
)

// ConversationList is the main conversation table.
type ConversationList struct {
	*tview.Table
	theme  *ui.Theme
	convs  []chat.Conversation
	status chat.StatusFilter
	filter string
}

// NewConversationList creates a new conversation list table.
func NewConversationList(theme *ui.Theme) *ConversationList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Conversations ")
	table.SetTitleColor(theme.TitleColor)

	return &ConversationList{
		Table:  table,
		theme:  theme,
		status: chat.FilterOpen,
	}
}

// Name implements ui.View.
func (cl *ConversationList) Name() string { return "Conversations" }


// Hints implements ui.View.
func (cl *ConversationList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "o/c/a", Description: "Open/Closed/All"},
		{Key: "/", Description: "Filter"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
		{Key: "q", Description: "Quit"},
		{Key: "0-9", Description: "Jump", Numeric: true},
	}
}

// Update refreshes the list with new data.
func (cl *ConversationList) Update(convs []chat.Conversation) {
	cl.convs = convs
	cl.render()
}

// SetStatusFilter records which status tab is active, for the title.
func (cl *ConversationList) SetStatusFilter(f chat.StatusFilter) {
	cl.status = f
	cl.render()
}

// SetFilter sets the active text filter and re-renders.
func (cl *ConversationList) SetFilter(filter string) {
	cl.filter = filter
	cl.render()
}

// ClearFilter clears the active text filter.
func (cl *ConversationList) ClearFilter() {
	cl.filter = ""
	cl.render()
}

func (cl *ConversationList) matches(c chat.Conversation) bool {
	if cl.filter == "" {
		return true
	}
	f := strings.ToLower(cl.filter)
	return strings.Contains(strings.ToLower(c.User.Email), f) ||
		strings.Contains(strings.ToLower(c.Preview()), f)
}

func (cl *ConversationList) render() {
	cl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" USER", 1},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
		{" STATUS", 0},
		{" UNREAD", 0},
	}
	for col, h := range headers {
		cell := tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetBackgroundColor(cl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp)
		cl.SetCell(0, col, cell)
	}

	row := 1
	for _, c := range cl.convs {
		if !cl.matches(c) {
			continue
		}

		user := c.User.Email
		if user == "" {
			user = fmt.Sprintf("user #%d", c.UserID)
		}

		unread := ""
		userColor := cl.theme.FgColor
		if c.UnreadCount > 0 {
			unread = fmt.Sprintf("%d", c.UnreadCount)
			userColor = cl.theme.UnreadColor
		}

		var lastAt int64
		if c.LastMessageAt != nil {
			lastAt = c.LastMessageAt.UnixMilli()
		}

		cl.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(user))).SetExpansion(1).SetTextColor(userColor))
		cl.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(c.Preview()))).SetExpansion(2).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 2, tview.NewTableCell(formatTimestamp(lastAt)).SetExpansion(0).SetTextColor(cl.theme.FgColor).SetAlign(tview.AlignRight))
		cl.SetCell(row, 3, tview.NewTableCell(c.Status).SetExpansion(0).SetTextColor(cl.theme.FgColor).SetAlign(tview.AlignRight))
		cl.SetCell(row, 4, tview.NewTableCell(unread).SetExpansion(0).SetTextColor(cl.theme.UnreadColor).SetAlign(tview.AlignRight))
		row++
	}

	label := string(cl.status)
	if cl.filter != "" {
		cl.SetTitle(fmt.Sprintf(" Conversations [%s] (%d/%d) filter: %s ", label, row-1, len(cl.convs), cl.filter))
	} else {
		cl.SetTitle(fmt.Sprintf(" Conversations [%s] (%d) ", label, len(cl.convs)))
	}
}

// SelectedConversation returns the ID of the currently selected row, zero
// when nothing is selected.
func (cl *ConversationList) SelectedConversation() int64 {
	row, _ := cl.GetSelection()
	idx := row - 1 // account for header
	if idx < 0 {
		return 0
	}

	visible := 0
	for _, c := range cl.convs {
		if !cl.matches(c) {
			continue
		}
		if visible == idx {
			return c.ID
		}
		visible++
	}
	return 0
}

// ConversationByIndex returns the ID of the Nth visible conversation
// (1-based), zero when out of range.
func (cl *ConversationList) ConversationByIndex(n int) int64 {
	if n < 1 {
		return 0
	}
	visible := 0
	for _, c := range cl.convs {
		if !cl.matches(c) {
			continue
		}
		visible++
		if visible == n {
			return c.ID
		}
	}
	return 0
}

// Conversation returns the cached conversation with the given ID.
func (cl *ConversationList) Conversation(id int64) *chat.Conversation {
	for i := range cl.convs {
		if cl.convs[i].ID == id {
			return &cl.convs[i]
		}
	}
	return nil
}

func formatTimestamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms)
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}

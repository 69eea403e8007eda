package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"chatdesk/internal/chat"
	"chatdesk/internal/tui/ui"
)

// MessageThread displays the active conversation and a composer.
type MessageThread struct {
	*tview.Flex
	theme          *ui.Theme
	messages       *tview.TextView
	composer       *tview.InputField
	title          string
	conversationID int64
	onSend         func(text string)
}

// NewMessageThread creates a new message thread view.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Compose (i to focus, /img <path> to attach) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 3, 0, false)

	mt := &MessageThread{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		composer: composer,
	}

	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && mt.onSend != nil {
			text := composer.GetText()
			if text != "" {
				mt.onSend(text)
				composer.SetText("")
			}
		}
	})

	return mt
}

// Name implements ui.View.
func (mt *MessageThread) Name() string {
	if mt.title != "" {
		return mt.title
	}
	return "Messages"
}


// Hints implements ui.View.
func (mt *MessageThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "d", Description: "Details"},
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// SetTitleText updates the thread title, usually the user's email.
func (mt *MessageThread) SetTitleText(title string) {
	mt.title = title
	mt.messages.SetTitle(fmt.Sprintf(" %s ", title))
}

// SetConversationID stores the conversation being displayed.
func (mt *MessageThread) SetConversationID(id int64) {
	mt.conversationID = id
}

// ConversationID returns the conversation being displayed.
func (mt *MessageThread) ConversationID() int64 {
	return mt.conversationID
}

// SetOnSend sets the callback when a message is sent.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// Update refreshes the thread with new messages, oldest first. Provisional
// messages render with a pending marker until the server confirms them.
func (mt *MessageThread) Update(msgs []chat.Message) {
	mt.messages.Clear()

	for _, m := range msgs {
		sender := "User"
		if m.SenderType == chat.SenderAdmin {
			sender = "You"
		}

		pending := ""
		if m.Provisional() {
			pending = " [::d]...sending[-:-:-]"
		}

		body := m.Content
		if m.ImageURL != "" {
			body = "[image] " + m.ImageURL
		}

		ts := formatTimestamp(m.CreatedAt.UnixMilli())
		line := fmt.Sprintf("[::b]%s[-:-:-] [::d]%s[-:-:-]%s\n%s\n\n",
			sender, ts, pending,
			tview.Escape(sanitizeForTerminal(body)))
		_, _ = fmt.Fprint(mt.messages, line)
	}

	mt.messages.ScrollToEnd()
}

// Messages returns the messages text view (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the composer input field (for focus management).
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}

package views

import (
	"fmt"

	"github.com/rivo/tview"

	"chatdesk/internal/tui/ui"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

// Name implements ui.View.
func (hv *HelpView) Name() string { return "Help" }


// Hints implements ui.View.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (hv *HelpView) render() {
	kc := fmt.Sprintf("#%06x", hv.theme.MenuKeyColor.Hex())

	help := fmt.Sprintf(`
  [::b]Global Keys[-:-:-]

  [%s]:[-:-:-]    Command mode        [%s]Esc[-:-:-]   Cancel / Go back
  [%s]/[-:-:-]    Filter mode         [%s]?[-:-:-]     Help
  [%s]q[-:-:-]    Quit / Back         [%s]Ctrl-C[-:-:-] Quit immediately

  [::b]Conversation List[-:-:-]

  [%s]Enter[-:-:-]  Open conversation  [%s]o[-:-:-]     Show open conversations
  [%s]1-9[-:-:-]    Jump to Nth row    [%s]c[-:-:-]     Show closed conversations
  [%s]j/Down[-:-:-] Move down          [%s]a[-:-:-]     Show all conversations
  [%s]k/Up[-:-:-]   Move up

  [::b]Message Thread[-:-:-]

  [%s]i[-:-:-]    Focus composer      [%s]d[-:-:-]     Show conversation details
  [%s]Esc[-:-:-]  Exit composer       [%s]Enter[-:-:-] Send message (in composer)

  In the composer, [%s]/img <path>[-:-:-] uploads an image (max 5MB) and
  sends it to the active conversation.

  [::b]Commands (: mode)[-:-:-]

  [%s]:search <query>[-:-:-]    Search cached messages
  [%s]:open[-:-:-] / [%s]:closed[-:-:-] / [%s]:all[-:-:-]   Switch status filter
  [%s]:img <path>[-:-:-]        Upload and send an image
  [%s]:help[-:-:-] / [%s]:h[-:-:-]       Show this help
  [%s]:quit[-:-:-] / [%s]:q[-:-:-]       Quit application
`,
		kc, kc, kc, kc, kc, kc,
		kc, kc, kc, kc, kc, kc, kc,
		kc, kc, kc, kc,
		kc,
		kc, kc, kc, kc, kc, kc, kc, kc, kc,
	)

	_, _ = fmt.Fprint(hv, help)
}

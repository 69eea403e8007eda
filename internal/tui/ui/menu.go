package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// Menu lists the active view's shortcuts in the header, one per line with
// the keys padded into a column.
type Menu struct {
	*tview.TextView
	theme *Theme
}

func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 2, 0)

	return &Menu{
		TextView: tv,
		theme:    theme,
	}
}

// Update replaces the shortcut list.
func (m *Menu) Update(hints []MenuHint) {
	m.Clear()

	width := 0
	for _, h := range hints {
		if len(h.Key) > width {
			width = len(h.Key)
		}
	}

	for _, h := range hints {
		color := m.theme.MenuKeyColor
		if h.Numeric {
			color = m.theme.NumericKeyColor
		}
		_, _ = fmt.Fprintf(m, "[%s::b]<%s>[-:-:-]%*s %s\n",
			colorName(color), h.Key, width-len(h.Key), "", h.Description)
	}
}

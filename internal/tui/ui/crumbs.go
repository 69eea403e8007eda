package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// Crumbs renders the navigation trail (Conversations › Thread › Details)
// under the header, highlighting the active view.
type Crumbs struct {
	*tview.TextView
	theme *Theme
}

func NewCrumbs(theme *Theme) *Crumbs {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &Crumbs{
		TextView: tv,
		theme:    theme,
	}
}

// Update redraws the trail from a bottom-first list of view labels.
func (c *Crumbs) Update(labels []string) {
	c.Clear()
	if len(labels) == 0 {
		return
	}

	var b strings.Builder
	last := len(labels) - 1
	for i, label := range labels {
		if i > 0 {
			b.WriteString(" › ")
		}
		if i == last {
			fmt.Fprintf(&b, "[%s:%s:b] %s [-:-:-]",
				colorName(c.theme.CrumbActiveFg), colorName(c.theme.CrumbActiveBg), label)
		} else {
			fmt.Fprintf(&b, "[%s:%s:] %s [-:-:-]",
				colorName(c.theme.CrumbInactiveFg), colorName(c.theme.CrumbInactiveBg), label)
		}
	}
	_, _ = fmt.Fprint(c, b.String())
}

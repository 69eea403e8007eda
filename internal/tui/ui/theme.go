package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Theme holds the console's color palette.
type Theme struct {
	BgColor          tcell.Color
	FgColor          tcell.Color
	BorderColor      tcell.Color
	BorderFocusColor tcell.Color

	// Conversation list table.
	TableHeaderFg tcell.Color
	TableHeaderBg tcell.Color
	TableCursorFg tcell.Color
	TableCursorBg tcell.Color
	UnreadColor   tcell.Color

	// Header and navigation chrome.
	CrumbActiveFg   tcell.Color
	CrumbActiveBg   tcell.Color
	CrumbInactiveFg tcell.Color
	CrumbInactiveBg tcell.Color
	MenuKeyColor    tcell.Color
	NumericKeyColor tcell.Color
	TitleColor      tcell.Color
	CounterColor    tcell.Color

	PromptBorderColor tcell.Color
}

// DefaultTheme is a dark palette; unread rows and the active crumb share
// the same accent so a waiting conversation stands out everywhere.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:          tcell.ColorBlack,
		FgColor:          tcell.ColorCadetBlue,
		BorderColor:      tcell.ColorDodgerBlue,
		BorderFocusColor: tcell.ColorLightSkyBlue,

		TableHeaderFg: tcell.ColorWhite,
		TableHeaderBg: tcell.ColorBlack,
		TableCursorFg: tcell.ColorBlack,
		TableCursorBg: tcell.ColorAqua,
		UnreadColor:   tcell.ColorOrange,

		CrumbActiveFg:   tcell.ColorBlack,
		CrumbActiveBg:   tcell.ColorOrange,
		CrumbInactiveFg: tcell.ColorBlack,
		CrumbInactiveBg: tcell.ColorAqua,
		MenuKeyColor:    tcell.ColorDodgerBlue,
		NumericKeyColor: tcell.ColorFuchsia,
		TitleColor:      tcell.ColorFuchsia,
		CounterColor:    tcell.ColorPapayaWhip,

		PromptBorderColor: tcell.ColorDodgerBlue,
	}
}

// colorName returns the tview color tag for a theme color.
func colorName(c tcell.Color) string {
	for name, val := range tcell.ColorNames {
		if val == c {
			return name
		}
	}
	return fmt.Sprintf("#%06x", c.Hex())
}

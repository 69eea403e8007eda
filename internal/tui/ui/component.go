package ui

// MenuHint is one keyboard shortcut entry for the header menu.
type MenuHint struct {
	Key         string
	Description string
	Numeric     bool // 1-9 conversation jumps get their own color
}

// View is implemented by every page on the navigation stack. Name labels
// the breadcrumb trail; Hints feeds the shortcut menu for whichever view
// is on top.
type View interface {
	Name() string
	Hints() []MenuHint
}

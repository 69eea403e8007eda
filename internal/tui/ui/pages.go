package ui

import "github.com/rivo/tview"

// Pages runs the console's navigation as a stack over tview.Pages: the
// conversation list sits at the bottom, thread / details / search / help
// push on top of it, and escape pops back down. Every stack change is
// reported through the onChange callback so the breadcrumb trail and menu
// can follow.
type Pages struct {
	*tview.Pages
	stack    []string
	onChange func(stack []string)
}

func NewPages() *Pages {
	return &Pages{Pages: tview.NewPages()}
}

// SetOnChange sets the stack-change callback.
func (p *Pages) SetOnChange(fn func(stack []string)) {
	p.onChange = fn
}

// Push shows the named page on top of the current one. Pushing the page
// that is already on top is a no-op, so opening the same conversation
// twice does not stack two thread pages.
func (p *Pages) Push(name string) {
	if top := p.Current(); top == name {
		return
	} else if top != "" {
		p.HidePage(top)
	}
	p.stack = append(p.stack, name)
	p.ShowPage(name)
	p.SendToFront(name)
	p.notify()
}

// Pop hides the top page and reveals the one beneath it. Returns the
// popped name, empty when the stack is already empty.
func (p *Pages) Pop() string {
	if len(p.stack) == 0 {
		return ""
	}
	top := p.stack[len(p.stack)-1]
	p.HidePage(top)
	p.stack = p.stack[:len(p.stack)-1]
	if next := p.Current(); next != "" {
		p.ShowPage(next)
		p.SendToFront(next)
	}
	p.notify()
	return top
}

// Current returns the top page name, empty when the stack is empty.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// Stack returns a copy of the stack, bottom first.
func (p *Pages) Stack() []string {
	s := make([]string, len(p.stack))
	copy(s, p.stack)
	return s
}

// Depth returns the stack depth.
func (p *Pages) Depth() int {
	return len(p.stack)
}

// Reset drops the whole stack and shows only the given page. Used once at
// startup to land on the conversation list.
func (p *Pages) Reset(name string) {
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = []string{name}
	p.ShowPage(name)
	p.SendToFront(name)
	p.notify()
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Stack())
	}
}

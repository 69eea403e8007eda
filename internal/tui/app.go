package tui

import (
	"context"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"chatdesk/internal/chat"
	"chatdesk/internal/tui/keys"
	"chatdesk/internal/tui/model"
	"chatdesk/internal/tui/ui"
	"chatdesk/internal/tui/views"
)

// Page names for the stack-based page manager.
const (
	pageConversations = "conversations"
	pageThread        = "thread"
	pageDetails       = "details"
	pageSearch        = "search"
	pageHelp          = "help"
)

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	pages    *ui.Pages
	vm       *model.ViewModel
	registry *keys.Registry

	logo     *ui.Logo
	info     *ui.SessionInfo
	menu     *ui.Menu
	crumbs   *ui.Crumbs
	prompt   *ui.Prompt
	rootFlex *tview.Flex

	statusBar *views.StatusBar
	convList  *views.ConversationList
	thread    *views.MessageThread
	details   *views.ConversationInfo
	searchV   *views.SearchView
	helpV     *views.HelpView

	components map[string]ui.View

	env    string
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(vm *model.ViewModel, env string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		theme:     theme,
		pages:     ui.NewPages(),
		vm:        vm,
		registry:  keys.NewRegistry(),
		logo:      ui.NewLogo(theme),
		info:      ui.NewSessionInfo(theme),
		menu:      ui.NewMenu(theme),
		crumbs:    ui.NewCrumbs(theme),
		prompt:    ui.NewPrompt(theme),
		statusBar: views.NewStatusBar(env),
		convList:  views.NewConversationList(theme),
		thread:    views.NewMessageThread(theme),
		details:   views.NewConversationInfo(theme),
		searchV:   views.NewSearchView(theme),
		helpV:     views.NewHelpView(theme),
		env:       env,
		ctx:       ctx,
		cancel:    cancel,
	}

	a.components = map[string]ui.View{
		pageConversations: a.convList,
		pageThread:        a.thread,
		pageDetails:       a.details,
		pageSearch:        a.searchV,
		pageHelp:          a.helpV,
	}

	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("quit", &keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "Quit",
		Handler:     func() { a.Stop() },
	})
	a.registry.AddGlobal("help", &keys.Action{
		Rune: '?', Key: tcell.KeyRune,
		Description: "Help",
		Handler:     func() { a.pages.Push(pageHelp) },
	})
	a.registry.AddGlobal("command", &keys.Action{
		Rune: ':', Key: tcell.KeyRune,
		Description: "Command",
		Handler:     func() { a.showPrompt(ui.PromptCommand) },
	})

	a.registry.AddView(pageConversations, "filter", &keys.Action{
		Rune: '/', Key: tcell.KeyRune,
		Description: "Filter",
		Handler:     func() { a.showPrompt(ui.PromptFilter) },
	})
	a.registry.AddView(pageConversations, "open", &keys.Action{
		Rune: 'o', Key: tcell.KeyRune,
		Description: "Open conversations",
		Handler:     func() { a.switchStatus(chat.FilterOpen) },
	})
	a.registry.AddView(pageConversations, "closed", &keys.Action{
		Rune: 'c', Key: tcell.KeyRune,
		Description: "Closed conversations",
		Handler:     func() { a.switchStatus(chat.FilterClosed) },
	})
	a.registry.AddView(pageConversations, "all", &keys.Action{
		Rune: 'a', Key: tcell.KeyRune,
		Description: "All conversations",
		Handler:     func() { a.switchStatus(chat.FilterAll) },
	})

	a.registry.AddView(pageThread, "details", &keys.Action{
		Rune: 'd', Key: tcell.KeyRune,
		Description: "Details",
		Handler:     func() { a.showDetails() },
	})

	// 1-9 jump straight to the Nth conversation.
	for r := '1'; r <= '9'; r++ {
		n := int(r - '0')
		a.registry.AddView(pageConversations, string(r), &keys.Action{
			Rune: r, Key: tcell.KeyRune,
			Handler: func() {
				if id := a.convList.ConversationByIndex(n); id != 0 {
					a.openConversation(id)
				}
			},
		})
	}
}

func (a *App) setupCallbacks() {
	a.convList.SetSelectedFunc(func(row, col int) {
		if id := a.convList.SelectedConversation(); id != 0 {
			a.openConversation(id)
		}
	})

	a.thread.SetOnSend(func(text string) {
		if path, ok := strings.CutPrefix(text, "/img "); ok {
			a.sendImage(strings.TrimSpace(path))
			return
		}
		if err := a.vm.SendText(text); err != nil {
			a.vm.Flash.Err(err)
			a.refresh()
		}
	})

	a.searchV.SetOnQuery(func(query string) {
		go func() {
			results, err := a.vm.SearchMessages(query)
			if err != nil {
				a.vm.Flash.Err(err)
				return
			}
			a.app.QueueUpdateDraw(func() {
				a.searchV.Update(results)
				a.app.SetFocus(a.searchV.Results())
			})
		}()
	})

	a.searchV.Results().SetSelectedFunc(func(row, col int) {
		if convID, _ := a.searchV.SelectedResult(); convID != 0 {
			a.pages.Pop()
			a.openConversation(convID)
		}
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		switch mode {
		case ui.PromptCommand:
			a.runCommand(ParseCommand(text))
		case ui.PromptFilter:
			a.convList.SetFilter(text)
		}
	})
	a.prompt.SetOnCancel(func() {
		a.hidePrompt()
		a.convList.ClearFilter()
	})

	a.pages.SetOnChange(func(stack []string) {
		labels := make([]string, len(stack))
		for i, name := range stack {
			labels[i] = name
			if c, ok := a.components[name]; ok {
				labels[i] = c.Name()
			}
		}
		a.crumbs.Update(labels)
		if c, ok := a.components[a.pages.Current()]; ok {
			a.menu.Update(c.Hints())
		}
	})
}

func (a *App) setupLayout() {
	a.pages.AddPage(pageConversations, a.convList, true, false)
	a.pages.AddPage(pageThread, a.thread, true, false)
	a.pages.AddPage(pageDetails, a.details, true, false)
	a.pages.AddPage(pageSearch, a.searchV, true, false)
	a.pages.AddPage(pageHelp, a.helpV, true, false)

	header := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.logo, 18, 0, false).
		AddItem(a.info, 28, 0, false).
		AddItem(a.menu, 0, 1, false)

	a.rootFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 5, 0, false).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(a.rootFlex, true)
	a.pages.Reset(pageConversations)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		current := a.pages.Current()

		if event.Key() == tcell.KeyEscape {
			if a.app.GetFocus() == a.prompt.InputField {
				return event // let the prompt's own handler cancel
			}
			if focused := a.app.GetFocus(); focused == a.thread.Composer() {
				a.app.SetFocus(a.thread.Messages())
				return nil
			}
			if a.pages.Depth() > 1 {
				a.pages.Pop()
				a.focusCurrent()
				return nil
			}
			return event
		}

		// Let text input widgets handle all keys normally.
		if _, ok := a.app.GetFocus().(*tview.InputField); ok {
			return event
		}

		// 'i' focuses the composer (only when not already in an input field).
		if current == pageThread && event.Key() == tcell.KeyRune && event.Rune() == 'i' {
			a.app.SetFocus(a.thread.Composer())
			return nil
		}

		if a.registry.HandleEvent(current, event) {
			return nil
		}
		return event
	})
}

func (a *App) focusCurrent() {
	switch a.pages.Current() {
	case pageConversations:
		a.app.SetFocus(a.convList)
	case pageThread:
		a.app.SetFocus(a.thread.Messages())
	case pageSearch:
		a.app.SetFocus(a.searchV.Input())
	default:
		a.app.SetFocus(a.pages)
	}
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.rootFlex.RemoveItem(a.statusBar)
	a.rootFlex.AddItem(a.prompt, 3, 0, false)
	a.rootFlex.AddItem(a.statusBar, 1, 0, false)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.rootFlex.RemoveItem(a.prompt)
	a.focusCurrent()
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "open":
		a.switchStatus(chat.FilterOpen)
	case "closed":
		a.switchStatus(chat.FilterClosed)
	case "all":
		a.switchStatus(chat.FilterAll)
	case "search":
		a.pages.Push(pageSearch)
		a.app.SetFocus(a.searchV.Input())
		if cmd.Args != "" {
			a.searchV.Input().SetText(cmd.Args)
			go func() {
				results, err := a.vm.SearchMessages(cmd.Args)
				if err != nil {
					a.vm.Flash.Err(err)
					return
				}
				a.app.QueueUpdateDraw(func() { a.searchV.Update(results) })
			}()
		}
	case "img":
		if cmd.Args == "" {
			a.vm.Flash.Warn("usage: :img <path>")
			return
		}
		a.sendImage(cmd.Args)
	case "help", "h":
		a.pages.Push(pageHelp)
	case "quit", "q":
		a.Stop()
	default:
		a.vm.Flash.Warn("unknown command: " + cmd.Name)
	}
}

func (a *App) switchStatus(f chat.StatusFilter) {
	a.vm.SetFilter(a.ctx, f)
	a.convList.SetStatusFilter(f)
}

func (a *App) sendImage(path string) {
	if a.vm.ActiveID() == 0 {
		a.vm.Flash.Warn("no conversation selected")
		return
	}
	go func() {
		if err := a.vm.SendImage(a.ctx, path); err != nil {
			a.vm.Flash.Err(err)
			return
		}
		a.vm.Flash.Info("Image sent")
	}()
}

func (a *App) openConversation(id int64) {
	a.vm.Select(a.ctx, id)

	title := "Conversation"
	if c := a.vm.Conversation(id); c != nil && c.User.Email != "" {
		title = c.User.Email
	}
	a.thread.SetConversationID(id)
	a.thread.SetTitleText(title)
	a.thread.Update(a.vm.Thread())
	a.pages.Push(pageThread)
	a.app.SetFocus(a.thread.Composer())
}

func (a *App) showDetails() {
	c := a.vm.Conversation(a.thread.ConversationID())
	if c == nil {
		return
	}
	a.details.Update(c)
	a.pages.Push(pageDetails)
}

// refresh redraws all views from the view model. Must run on the UI thread.
func (a *App) refresh() {
	a.convList.SetStatusFilter(a.vm.Filter())
	a.convList.Update(a.vm.Conversations())
	if a.pages.Current() == pageThread || a.thread.ConversationID() == a.vm.ActiveID() {
		a.thread.Update(a.vm.Thread())
	}
	a.statusBar.SetState(a.vm.State())
	a.statusBar.SetUnread(a.vm.Unread())
	flashMsg, flashLevel := a.vm.Flash.Get()
	a.statusBar.SetFlash(flashMsg, flashLevel)
	a.info.Update(&ui.SessionData{
		Environment:   a.env,
		Connection:    string(a.vm.State()),
		Conversations: len(a.vm.Conversations()),
		Unread:        a.vm.Unread(),
		Uptime:        a.vm.Uptime(),
	})
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	a.vm.Start(a.ctx)

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-a.ctx.Done():
				return
			case <-a.vm.RefreshCh():
			case <-ticker.C:
				// Keep the clock and flash expiry moving.
			}
			a.app.QueueUpdateDraw(func() { a.refresh() })
		}
	}()

	a.app.QueueUpdateDraw(func() { a.refresh() })
	return a.app.Run()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.vm.Stop()
	a.app.Stop()
}

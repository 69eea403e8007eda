package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"

	"chatdesk/internal/app"
	"chatdesk/internal/bus"
	"chatdesk/internal/config"
	"chatdesk/internal/session"
	"chatdesk/internal/store"
	"chatdesk/internal/tui"
	"chatdesk/internal/tui/model"
)

func main() {
	configFlag := flag.String("config", "", "config file path (overrides default location)")
	flag.Parse()

	var (
		cfg *config.Config
		mgr *session.Manager
		db  *store.DB
		b   *bus.Bus
	)

	// The TUI owns the terminal, so logs go to the file only.
	fxApp := fx.New(
		app.Module(app.Params{ConfigPath: *configFlag, QuietConsole: true}),
		fx.Populate(&cfg, &mgr, &db, &b),
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	vm := model.NewViewModel(mgr, db, b)
	ui := tui.NewApp(vm, cfg.Channel.Environment)
	runErr := ui.Run()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStop()
	if err := fxApp.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
}

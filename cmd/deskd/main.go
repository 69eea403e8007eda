package main

import (
	"flag"

	"go.uber.org/fx"

	"chatdesk/internal/app"
)

func main() {
	configFlag := flag.String("config", "", "config file path (overrides default location)")
	flag.Parse()

	fx.New(
		app.Module(app.Params{ConfigPath: *configFlag}),
	).Run()
}

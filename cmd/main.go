package main

import (
	"github.com/kiosklabs/kiosk-sync/internal/app"
	"github.com/kiosklabs/kiosk-sync/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}

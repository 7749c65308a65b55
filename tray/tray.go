// Package tray provides the system tray menu for capture watch mode.
package tray

import (
	"log"

	"github.com/getlantern/systray"
)

type Config struct {
	Title     string
	Tooltip   string
	OnCapture func()
	OnExit    func()
}

// Run starts the tray icon and blocks until Quit is selected. Must run on
// the main goroutine on some platforms.
func Run(cfg Config) {
	systray.Run(func() { onReady(cfg) }, func() { onExit(cfg) })
}

// Quit removes the tray icon and unblocks Run.
func Quit() {
	systray.Quit()
}

func onReady(cfg Config) {
	systray.SetTitle(cfg.Title)
	systray.SetTooltip(cfg.Tooltip)

	mCapture := systray.AddMenuItem("Capture now", "Capture the screen and process it")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				log.Printf("Tray: capture requested")
				if cfg.OnCapture != nil {
					cfg.OnCapture()
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func onExit(cfg Config) {
	if cfg.OnExit != nil {
		cfg.OnExit()
	}
}

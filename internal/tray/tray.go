// Package tray puts an exit control in the system tray for operators who
// run the daemon without a terminal.
package tray

import (
	"log"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
)

// ShutdownFunc is called when "Exit" is clicked.
type ShutdownFunc func()

// Tray manages the system tray icon and its menu.
type Tray struct {
	shutdownFunc ShutdownFunc
	once         sync.Once
	shuttingDown atomic.Bool
	menuExit     *systray.MenuItem
}

func New(shutdownFn ShutdownFunc) *Tray {
	return &Tray{shutdownFunc: shutdownFn}
}

// Run initializes the tray and blocks until Exit is clicked.
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() {
		t.onReady(iconData)
	}, func() {
		t.shuttingDown.Store(true)
	})
}

func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle("pad-motion")
	systray.SetTooltip("pad-motion virtual controller")

	t.menuExit = systray.AddMenuItem("Exit", "Stop the virtual controller")
	go t.handleMenuClicks()

	log.Println("system tray initialized")
}

func (t *Tray) handleMenuClicks() {
	<-t.menuExit.ClickedCh
	if t.shuttingDown.CompareAndSwap(false, true) {
		t.once.Do(t.shutdownFunc)
		systray.Quit()
	}
}

//go:build windows

// Package console installs the interrupt trap that flips the process into
// cooperative shutdown. Go's signal delivery on Windows can stall when a
// library pins an OS thread the way SDL does, so the trap is registered
// directly with the Win32 console API.
package console

import (
	"sync"
	"syscall"
)

var (
	kernel32                  = syscall.NewLazyDLL("kernel32.dll")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")
)

const (
	ctrlCEvent     = 0
	ctrlBreakEvent = 1
	ctrlCloseEvent = 2
)

// Trap invokes fn once when Ctrl+C, Ctrl+Break or a console close arrives.
// The returned release function uninstalls the handler.
func Trap(fn func()) func() {
	var once sync.Once
	handler := syscall.NewCallback(func(ctrlType uint32) uintptr {
		switch ctrlType {
		case ctrlCEvent, ctrlBreakEvent, ctrlCloseEvent:
			once.Do(fn)
			return 1
		}
		return 0
	})
	procSetConsoleCtrlHandler.Call(handler, 1)

	return func() {
		procSetConsoleCtrlHandler.Call(handler, 0)
	}
}

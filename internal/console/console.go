//go:build !windows

// Package console installs the interrupt trap that flips the process into
// cooperative shutdown. On Unix-like systems the standard signal machinery
// is enough; Windows gets a native console handler (see console_windows.go)
// because SDL's thread pinning interferes with Go's Ctrl+C delivery there.
package console

import (
	"os"
	"os/signal"
	"syscall"
)

// Trap invokes fn once when an interrupt or termination signal arrives. The
// returned release function uninstalls the trap.
func Trap(fn func()) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		if _, ok := <-sigCh; ok {
			fn()
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(sigCh)
	}
}

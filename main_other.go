//go:build !linux

package main

import (
	"os"
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	// The global hotkey needs the OS main thread in TUI mode. The fyne
	// window owns the main thread itself, so only -tui goes through
	// mainthread.Init.
	for _, arg := range os.Args[1:] {
		if arg == "-tui" {
			mainthread.Init(run)
			return
		}
	}
	run()
}

//go:build windows

package config

import (
	"os"

	"golang.org/x/sys/windows"
)

// characters file systems refuse in names, besides path separators
const reservedNameChars = "\x00<>\":/\\|?*"

// enableVT switches console to processing VT100 sequences, which fails on
// consoles older than Windows 10.
func enableVT(stream *os.File) bool {
	h := windows.Handle(stream.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return true
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}

//go:build !windows

package config

import "os"

// characters file systems refuse in names, besides path separators
const reservedNameChars = "\x00"

// enableVT is a no-op, terminals here understand escape sequences.
func enableVT(*os.File) bool {
	return true
}

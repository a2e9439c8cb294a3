// Package common keeps enumerations shared between configuration and the
// compiler packages. Keeping them here lets glaze and styles stay free of
// configuration imports.
package common

//go:generate go tool go-enum --marshal --names --values

// Dark mode adaptation of a theme color.
// ENUM(auto, fixed, static)
type ColorMode int

// Notation used when formatting resolved colors.
// ENUM(okhsl, rgb, hex, oklch)
type ColorFormat int

// Kind of rendered output cache used by the compiler.
// ENUM(none, memory, sqlite)
type CacheKind int

// Theme export flavor.
// ENUM(tokens, json, css)
type ExportKind int

// Persistent cache is only useful for ahead-of-time extraction.
func (c CacheKind) Persistent() bool {
	return c == CacheKindSqlite
}

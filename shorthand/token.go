// Package shorthand implements the per-property value micro-language: a flat
// tokenizer, a recursive AST builder and a renderer producing CSS text with
// custom units, color references and CSS variable references substituted.
package shorthand

import (
	"fmt"
	"strings"
)

// TokenType classifies a shorthand token.
type TokenType int

const (
	TokenText         TokenType = iota // structural or opaque text: ")", ",", "/", quoted strings
	TokenSpace                         // collapsed whitespace
	TokenValue                         // word or number with optional unit
	TokenColor                         // #name, #name.NN, #hex or absorbed color function
	TokenPropertyRef                   // $name
	TokenPropertyName                  // child of a var() node built from $name
	TokenFunction                      // name( ... )
	TokenBracket                       // ( ... )
)

func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "text"
	case TokenSpace:
		return "space"
	case TokenValue:
		return "value"
	case TokenColor:
		return "color"
	case TokenPropertyRef:
		return "property-ref"
	case TokenPropertyName:
		return "property-name"
	case TokenFunction:
		return "function"
	case TokenBracket:
		return "bracket"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// Token is both the flat tokenizer output and the AST node. Only function and
// bracket tokens own children.
type Token struct {
	Type      TokenType
	Value     string  // raw text, function name, or property name
	Unit      string  // unit of a numeric value, may be empty
	Amount    float64 // numeric part of a value
	HasAmount bool    // true when Value starts with a number
	Children  []Token
}

// IsStructural reports whether the token is a close paren or a comma.
func (t Token) IsStructural() bool {
	return t.Type == TokenText && (t.Value == ")" || t.Value == ",")
}

// opens reports whether the token starts a nesting level.
func (t Token) opens() bool {
	return t.Type == TokenFunction || t.Type == TokenBracket
}

// source returns the text the token was scanned from.
func (t Token) source() string {
	switch t.Type {
	case TokenPropertyRef:
		return "$" + t.Value
	case TokenFunction:
		return t.Value + "("
	case TokenBracket:
		return "("
	case TokenSpace:
		return " "
	default:
		return t.Value
	}
}

// String returns token sequence as it was scanned, used in diagnostics.
func String(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.source())
	}
	return sb.String()
}

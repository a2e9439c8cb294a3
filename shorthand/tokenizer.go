package shorthand

import (
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
)

// Tokenize scans one shorthand value into flat tokens. It never fails: any
// byte sequence it does not recognize ends up in a value or text token.
func Tokenize(value string) []Token {
	s := &scanner{src: []byte(value)}
	s.run()
	return s.out
}

type scanner struct {
	src     []byte
	pos     int
	out     []Token
	pending bool // whitespace seen since last emitted token
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isNameChar(c byte) bool {
	return c == '-' || c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isWordStop reports whether c terminates a plain word.
func isWordStop(c byte) bool {
	switch c {
	case '(', ')', ',', '"', '\'', '/', '$':
		return true
	}
	return isSpace(c)
}

func (s *scanner) peek(off int) byte {
	if s.pos+off < len(s.src) {
		return s.src[s.pos+off]
	}
	return 0
}

// emit appends token inserting a single space for any whitespace that was
// skipped, unless whitespace is not significant next to the tokens involved.
func (s *scanner) emit(t Token) {
	if s.pending && len(s.out) > 0 && !t.IsStructural() {
		last := s.out[len(s.out)-1]
		if !last.opens() && !(last.Type == TokenText && last.Value == ",") {
			s.out = append(s.out, Token{Type: TokenSpace, Value: " "})
		}
	}
	s.pending = false
	s.out = append(s.out, t)
}

func (s *scanner) run() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case isSpace(c):
			for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
				s.pos++
			}
			s.pending = true
		case c == '"' || c == '\'':
			s.quoted(c)
		case c == '(':
			s.pos++
			s.emit(Token{Type: TokenBracket, Value: "("})
		case c == ')' || c == ',' || c == '/':
			s.pos++
			s.emit(Token{Type: TokenText, Value: string(c)})
		case c == '$':
			s.reference()
		case c == '#':
			s.color()
		case isDigit(c) || (c == '.' || c == '-' || c == '+') && s.startsNumber():
			s.number()
		default:
			s.word()
		}
	}
}

func (s *scanner) startsNumber() bool {
	switch s.src[s.pos] {
	case '.':
		return isDigit(s.peek(1))
	case '-', '+':
		return isDigit(s.peek(1)) || s.peek(1) == '.' && isDigit(s.peek(2))
	}
	return false
}

func (s *scanner) quoted(q byte) {
	start := s.pos
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		s.pos++
		if c == '\\' && s.pos < len(s.src) {
			s.pos++
			continue
		}
		if c == q {
			break
		}
	}
	s.emit(Token{Type: TokenText, Value: string(s.src[start:s.pos])})
}

func (s *scanner) name() string {
	start := s.pos
	for s.pos < len(s.src) && isNameChar(s.src[s.pos]) {
		s.pos++
	}
	return string(s.src[start:s.pos])
}

func (s *scanner) reference() {
	s.pos++
	name := s.name()
	if name == "" {
		s.emit(Token{Type: TokenText, Value: "$"})
		return
	}
	s.emit(Token{Type: TokenPropertyRef, Value: name})
}

func (s *scanner) color() {
	start := s.pos
	s.pos++
	s.name()
	// opacity suffix: #name.NN
	if s.peek(0) == '.' && isDigit(s.peek(1)) {
		s.pos++
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
		}
	}
	s.emit(Token{Type: TokenColor, Value: string(s.src[start:s.pos])})
}

func (s *scanner) number() {
	start := s.pos
	rest := s.src[s.pos:]
	n, u := parse.Dimension(rest)
	if n == 0 {
		s.word()
		return
	}
	s.pos += n + u
	// a dimension glued to more name characters ("1x2", "2x-large") is a plain word
	if s.pos < len(s.src) && !isWordStop(s.src[s.pos]) {
		for s.pos < len(s.src) && !isWordStop(s.src[s.pos]) {
			s.pos++
		}
		s.emit(Token{Type: TokenValue, Value: string(s.src[start:s.pos])})
		return
	}
	num := string(rest[:n])
	amount, err := strconv.ParseFloat(strings.TrimPrefix(num, "+"), 64)
	if err != nil {
		s.emit(Token{Type: TokenValue, Value: string(s.src[start:s.pos])})
		return
	}
	s.emit(Token{
		Type:      TokenValue,
		Value:     string(s.src[start:s.pos]),
		Unit:      string(rest[n : n+u]),
		Amount:    amount,
		HasAmount: true,
	})
}

func (s *scanner) word() {
	start := s.pos
	for s.pos < len(s.src) && !isWordStop(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		// lone stop character that no other branch handled
		s.pos++
		s.emit(Token{Type: TokenText, Value: string(s.src[start:s.pos])})
		return
	}
	word := string(s.src[start:s.pos])
	if s.peek(0) == '(' {
		s.pos++
		if word == "url" {
			s.url()
			return
		}
		s.emit(Token{Type: TokenFunction, Value: word})
		return
	}
	s.emit(Token{Type: TokenValue, Value: word})
}

// url keeps the argument of url() as one opaque text token.
func (s *scanner) url() {
	s.emit(Token{Type: TokenFunction, Value: "url"})
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != ')' {
		if q := s.src[s.pos]; q == '"' || q == '\'' {
			s.pos++
			for s.pos < len(s.src) && s.src[s.pos] != q {
				s.pos++
			}
		}
		if s.pos < len(s.src) {
			s.pos++
		}
	}
	if arg := strings.TrimSpace(string(s.src[start:s.pos])); arg != "" {
		s.emit(Token{Type: TokenText, Value: arg})
	}
	if s.pos < len(s.src) {
		s.pos++
		s.emit(Token{Type: TokenText, Value: ")"})
	}
}

// Groups splits flat tokens on top-level commas. Leading and trailing spaces
// of every group are dropped.
func Groups(tokens []Token) [][]Token {
	var (
		groups [][]Token
		cur    []Token
		depth  int
	)
	flush := func() {
		for len(cur) > 0 && cur[0].Type == TokenSpace {
			cur = cur[1:]
		}
		for len(cur) > 0 && cur[len(cur)-1].Type == TokenSpace {
			cur = cur[:len(cur)-1]
		}
		groups = append(groups, cur)
		cur = nil
	}
	for _, t := range tokens {
		switch {
		case t.opens():
			depth++
		case t.Type == TokenText && t.Value == ")":
			if depth > 0 {
				depth--
			}
		case t.Type == TokenText && t.Value == "," && depth == 0:
			flush()
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 || len(groups) > 0 {
		flush()
	}
	return groups
}

// Words splits value on top-level whitespace keeping nested parts intact
// ("1px solid rgb(0 0 0)" gives three words).
func Words(value string) []string {
	var (
		words []string
		cur   []Token
		depth int
	)
	for _, t := range Tokenize(value) {
		switch {
		case t.opens():
			depth++
		case t.Type == TokenText && t.Value == ")":
			if depth > 0 {
				depth--
			}
		case t.Type == TokenSpace && depth == 0:
			words = append(words, String(cur))
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		words = append(words, String(cur))
	}
	return words
}

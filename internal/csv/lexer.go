package csv

import "fmt"

// TokenKind is the lexical class of a token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenText
	TokenString
	TokenComma
	TokenNewline
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenText:
		return "TEXT"
	case TokenString:
		return "STRING"
	case TokenComma:
		return "','"
	case TokenNewline:
		return "NEWLINE"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a lexeme with its 1-based source position.
type Token struct {
	Kind   TokenKind
	Text   string
	Line   int
	Column int
}

// Lexer splits CSV source text into tokens.
type Lexer struct {
	src  string
	pos  int
	line int
	col  int
}

// NewLexer returns a lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Next returns the next token. Once the input is exhausted it keeps
// returning a TokenEOF.
func (l *Lexer) Next() (Token, error) {
	if l.pos >= len(l.src) {
		return Token{Kind: TokenEOF, Line: l.line, Column: l.col}, nil
	}

	start := Token{Line: l.line, Column: l.col}
	switch c := l.src[l.pos]; c {
	case ',':
		l.advance(1)
		start.Kind, start.Text = TokenComma, ","
		return start, nil

	case '\n':
		l.newline(1)
		start.Kind, start.Text = TokenNewline, "\n"
		return start, nil

	case '\r':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '\n' {
			l.newline(2)
			start.Kind, start.Text = TokenNewline, "\r\n"
			return start, nil
		}
		return Token{}, l.errorf(ErrBareCR, start.Line, start.Column)

	case '"':
		return l.quoted(start)

	default:
		return l.text(start)
	}
}

// quoted scans a STRING token. Doubled quotes stay in the token text.
func (l *Lexer) quoted(tok Token) (Token, error) {
	begin := l.pos
	l.advance(1)

	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '"':
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '"' {
				l.advance(2)
				continue
			}
			l.advance(1)
			tok.Kind, tok.Text = TokenString, l.src[begin:l.pos]
			return tok, nil
		case '\n':
			l.newline(1)
		default:
			l.advance(1)
		}
	}

	return Token{}, l.errorf(ErrUnterminatedQuote, tok.Line, tok.Column)
}

// text scans a TEXT token up to the next delimiter or line break.
func (l *Lexer) text(tok Token) (Token, error) {
	begin := l.pos
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ',', '\n', '\r':
			tok.Kind, tok.Text = TokenText, l.src[begin:l.pos]
			return tok, nil
		case '"':
			return Token{}, l.errorf(ErrBareQuote, l.line, l.col)
		}
		l.advance(1)
	}
	tok.Kind, tok.Text = TokenText, l.src[begin:l.pos]
	return tok, nil
}

func (l *Lexer) advance(n int) {
	l.pos += n
	l.col += n
}

func (l *Lexer) newline(n int) {
	l.pos += n
	l.line++
	l.col = 1
}

func (l *Lexer) errorf(err error, line, col int) *ParseError {
	return &ParseError{Line: line, Column: col, Err: err}
}

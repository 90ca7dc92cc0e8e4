package csv

import (
	"errors"
	"fmt"
	"io"
)

// Grammar violations. A *ParseError wraps exactly one of these.
var (
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
	ErrBareQuote         = errors.New(`bare " in non-quoted field`)
	ErrTrailingText      = errors.New("extraneous text after quoted field")
	ErrBareCR            = errors.New("carriage return not followed by line feed")
)

// ParseError reports where in the input a grammar violation occurred.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("csv: line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser builds a Tree from a token stream with one token of lookahead.
type Parser struct {
	lex    *Lexer
	peeked *Token
}

// NewParser returns a parser over src.
func NewParser(src string) *Parser {
	return &Parser{lex: NewLexer(src)}
}

// Parse parses a complete CSV document held in memory.
func Parse(src string) (*Tree, error) {
	return NewParser(src).Parse()
}

// ParseReader reads r to the end and parses it. A leading UTF-8 byte
// order mark is dropped and invalid UTF-8 bytes are replaced with '?'.
func ParseReader(r io.Reader) (*Tree, error) {
	data, err := io.ReadAll(NewCleanReader(r))
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return Parse(string(data))
}

// Parse runs the csvFile rule.
func (p *Parser) Parse() (*Tree, error) {
	tree := &Tree{}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == TokenEOF {
		return tree, nil
	}

	if tree.Header, err = p.row(HeaderRow); err != nil {
		return nil, err
	}

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokenEOF {
			return tree, nil
		}

		row, err := p.row(DataRow)
		if err != nil {
			return nil, err
		}
		tree.Rows = append(tree.Rows, row)
	}
}

// row runs the row rule and tags the result with kind.
func (p *Parser) row(kind RowKind) (*Row, error) {
	first, err := p.peek()
	if err != nil {
		return nil, err
	}
	row := &Row{Kind: kind, Line: first.Line}

	f, err := p.field()
	if err != nil {
		return nil, err
	}
	row.Fields = append(row.Fields, f)

	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}

		switch tok.Kind {
		case TokenComma:
			f, err := p.field()
			if err != nil {
				return nil, err
			}
			row.Fields = append(row.Fields, f)
		case TokenNewline, TokenEOF:
			return row, nil
		default:
			// Only a STRING can be directly followed by TEXT or STRING;
			// the lexer rejects a quote inside TEXT itself.
			return nil, &ParseError{Line: tok.Line, Column: tok.Column, Err: ErrTrailingText}
		}
	}
}

// field runs the field rule. The empty alternative consumes nothing.
func (p *Parser) field() (Field, error) {
	tok, err := p.peek()
	if err != nil {
		return Field{}, err
	}

	switch tok.Kind {
	case TokenText:
		p.peeked = nil
		return Field{Kind: FieldText, Text: tok.Text, Line: tok.Line, Column: tok.Column}, nil
	case TokenString:
		p.peeked = nil
		return Field{Kind: FieldString, Text: tok.Text, Line: tok.Line, Column: tok.Column}, nil
	default:
		return Field{Kind: FieldEmpty, Line: tok.Line, Column: tok.Column}, nil
	}
}

func (p *Parser) peek() (Token, error) {
	if p.peeked != nil {
		return *p.peeked, nil
	}
	tok, err := p.lex.Next()
	if err != nil {
		return Token{}, err
	}
	p.peeked = &tok
	return tok, nil
}

func (p *Parser) next() (Token, error) {
	tok, err := p.peek()
	if err != nil {
		return Token{}, err
	}
	if tok.Kind != TokenEOF {
		p.peeked = nil
	}
	return tok, nil
}

// Package csv implements the comma-separated grammar used by csvaudit.
//
// Input is lexed into TEXT, STRING, COMMA and NEWLINE tokens and parsed
// into a [Tree] whose rows are tagged as either the header row or a data
// row. The grammar is:
//
//	csvFile : header row* EOF ;
//	header  : row ;
//	row     : field (',' field)* ('\r'? '\n' | EOF) ;
//	field   : TEXT | STRING | /* empty */ ;
//	TEXT    : ~[,\n\r"]+ ;
//	STRING  : '"' ('""' | ~'"')* '"' ;
//
// Any grammar violation is returned as a *[ParseError]; no partial tree is
// produced.
package csv

// RowKind tags a row with the production it was parsed from.
type RowKind int

const (
	HeaderRow RowKind = iota
	DataRow
)

func (k RowKind) String() string {
	switch k {
	case HeaderRow:
		return "header"
	case DataRow:
		return "row"
	default:
		return "unknown"
	}
}

// FieldKind identifies which alternative of the field rule matched.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldString
	FieldEmpty
)

func (k FieldKind) String() string {
	switch k {
	case FieldText:
		return "text"
	case FieldString:
		return "string"
	case FieldEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Field is a single cell as it appeared in the source.
// For FieldString, Text includes the surrounding quote delimiters.
type Field struct {
	Kind   FieldKind
	Text   string
	Line   int
	Column int
}

// Row is one line of the input.
type Row struct {
	Kind   RowKind
	Line   int
	Fields []Field
}

// Tree is the parse result for a whole file.
// Header is nil only when the input was empty.
type Tree struct {
	Header *Row
	Rows   []*Row
}

// Nodes returns every row in source order, header first.
func (t *Tree) Nodes() []*Row {
	if t == nil {
		return nil
	}
	nodes := make([]*Row, 0, len(t.Rows)+1)
	if t.Header != nil {
		nodes = append(nodes, t.Header)
	}
	return append(nodes, t.Rows...)
}

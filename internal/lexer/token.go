package lexer

import "fmt"

// Kind identifies what a Token represents. The elaborator (internal/elaborate)
// only ever reads a token's Value as its textual form and switches on the
// handful of literal kinds named in spec.md §6 (Int, Uint, Float, Bool,
// Char, String); every other Kind exists to drive the parser.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF
	NEWLINE
	INDENT
	DEDENT

	IDENT
	LABEL // reserved; the lexer never emits it — a loop label such as `l` in `loop l:` lexes as IDENT

	INT    // signed integer literal, Value + IntValue + Bits
	UINT   // unsigned integer literal, Value + UintValue + Bits
	FLOAT  // floating point literal, Value + FloatValue + Bits
	BOOL   // true/false, Value + BoolValue
	CHAR   // 'x', Value + CharValue
	STRING // "...", Value + StringValue

	FUN
	USE
	AS
	VAR
	MUT
	RETURN
	IF
	ELSE
	LOOP
	BREAK

	LPAREN
	RPAREN
	COLON
	COMMA
	SEMI
	ARROW // ->
	HASH  // introduces an attribute line

	OP // any operator/punctuation symbol; Value carries the literal text
)

var names = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	NEWLINE: "NEWLINE",
	INDENT:  "INDENT",
	DEDENT:  "DEDENT",
	IDENT:   "IDENT",
	LABEL:   "LABEL",
	INT:     "INT",
	UINT:    "UINT",
	FLOAT:   "FLOAT",
	BOOL:    "BOOL",
	CHAR:    "CHAR",
	STRING:  "STRING",
	FUN:     "fun",
	USE:     "use",
	AS:      "as",
	VAR:     "var",
	MUT:     "mut",
	RETURN:  "return",
	IF:      "if",
	ELSE:    "else",
	LOOP:    "loop",
	BREAK:   "break",
	LPAREN:  "(",
	RPAREN:  ")",
	COLON:   ":",
	COMMA:   ",",
	SEMI:    ";",
	ARROW:   "->",
	HASH:    "#",
	OP:      "operator",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var keywords = map[string]Kind{
	"fun":    FUN,
	"use":    USE,
	"as":     AS,
	"var":    VAR,
	"mut":    MUT,
	"return": RETURN,
	"if":     IF,
	"else":   ELSE,
	"loop":   LOOP,
	"break":  BREAK,
}

// Token is a single lexical unit. Only the fields relevant to a Kind are
// populated; the rest stay at their zero value.
type Token struct {
	Kind   Kind
	Value  string // textual form, exactly as it appeared in source
	Line   int
	Column int
	File   string

	IntValue    int64
	UintValue   uint64
	FloatValue  float64
	BoolValue   bool
	CharValue   rune
	StringValue []byte
	Bits        int
}

// Position formats the token's source location as file:line:column.
func (t Token) Position() string {
	return fmt.Sprintf("%s:%d:%d", t.File, t.Line, t.Column)
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Value, t.Position())
}

// Is reports whether the token is of the given kind. Convenience used
// throughout the parser instead of repeating `.Kind == ...`.
func (t Token) Is(k Kind) bool { return t.Kind == k }

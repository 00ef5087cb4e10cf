package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
)

var (
	codeColor = color.New(color.FgRed, color.Bold)
	posColor  = color.New(color.FgCyan)
	msgColor  = color.New(color.FgWhite)
)

// Report writes a human-facing, colored rendering of err to w. Whether
// colors are written follows fatih/color's global color.NoColor (set
// from whether stdout is a terminal, and by the driver's -no-color
// flag), not whether w itself is a terminal.
func Report(w io.Writer, err *Error) {
	codeColor.Fprint(w, string(err.Code))
	fmt.Fprint(w, " ")
	if err.HasTok {
		posColor.Fprint(w, err.Token.Position())
		fmt.Fprint(w, " ")
	}
	msgColor.Fprintln(w, err.Message)
}

// Encoded is a deterministic, tool-friendly JSON rendering of an Error.
// Field order and JSON key order are fixed so that two runs over
// identical input byte-for-byte match (no map iteration anywhere in
// the marshal path), matching the compiler's other deterministic
// artifacts.
type Encoded struct {
	Schema  string `json:"schema"`
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

const schemaVersion = "prometh.diagnostic/v1"

// Encode converts err into its deterministic JSON form.
func Encode(err *Error) Encoded {
	e := Encoded{Schema: schemaVersion, Code: string(err.Code), Message: err.Message}
	if err.HasTok {
		e.File = err.Token.File
		e.Line = err.Token.Line
		e.Column = err.Token.Column
	}
	return e
}

// MarshalDeterministic encodes a batch of errors as a JSON array sorted
// by (file, line, column, code), then by json.Marshal — which, for the
// fixed-field Encoded struct above, always emits keys in declaration
// order. No general-purpose logger is involved; this mirrors the
// compiler's own hand-rolled schema encoder.
func MarshalDeterministic(errs []*Error) ([]byte, error) {
	encoded := make([]Encoded, len(errs))
	for i, e := range errs {
		encoded[i] = Encode(e)
	}
	sort.Slice(encoded, func(i, j int) bool {
		a, b := encoded[i], encoded[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Code < b.Code
	})
	return json.MarshalIndent(encoded, "", "  ")
}

// Package errors implements the compiler's diagnostic taxonomy. Every
// error produced by internal/parser, internal/moduletree,
// internal/typerealm and internal/elaborate is a *Error carrying a
// stable code in the XXX### convention, the lexer.Token that provoked
// it (when one exists), and a human message. Diagnostics are reported
// to the CLI in color via github.com/fatih/color, or encoded
// deterministically to JSON for tool consumption.
package errors

import (
	"fmt"

	"github.com/jakubDoka/prometh/internal/lexer"
)

// Code is one of the stable XXX### identifiers below. Codes are never
// renumbered once shipped — tools key off them.
type Code string

const (
	// Parser (PAR###)
	ParUnexpectedToken   Code = "PAR001"
	ParExpectedColon     Code = "PAR002"
	ParExpectedIndent    Code = "PAR003"
	ParUnterminatedGroup Code = "PAR004"
	ParInvalidLiteral    Code = "PAR005"

	// Module graph (LDR###)
	LdrFileNotFound  Code = "LDR001"
	LdrCyclicImport  Code = "LDR002"
	LdrIOError       Code = "LDR003"
	LdrNonUTF8Path   Code = "LDR004"
	LdrNoFileStem    Code = "LDR005"
	LdrDuplicateUse  Code = "LDR006"

	// Type/symbol resolution (RES###)
	ResUnknownType     Code = "RES001"
	ResUnknownFunction Code = "RES002"
	ResUnknownVariable Code = "RES003"
	ResDuplicateType   Code = "RES004"
	ResDuplicateFunc   Code = "RES005"
	ResDuplicateModule Code = "RES006"
	ResArityMismatch   Code = "RES007"
	ResTypeMismatch    Code = "RES008"

	// Elaboration (ELB###)
	ElbMissingElse         Code = "ELB001"
	ElbMissingValueInElse  Code = "ELB002"
	ElbBreakOutsideLoop    Code = "ELB003"
	ElbUnknownLabel        Code = "ELB004"
	ElbConflictingBreakVal Code = "ELB005"
	ElbNoOperatorOverload  Code = "ELB006"
	ElbAutoLeaked          Code = "ELB007"
	ElbInvalidAssignTarget Code = "ELB008"

	// Attribute parsing (ATR###)
	AtrUnbalancedPush  Code = "ATR001"
	AtrInvalidLinkage  Code = "ATR002"
	AtrInvalidCallConv Code = "ATR003"
	AtrInvalidInline   Code = "ATR004"
	AtrMissingArgument Code = "ATR005"
)

// Error is the concrete type every diagnostic in the compiler uses.
// It implements the standard error interface and supports errors.As
// via its own type (there is nothing to unwrap; Error is always the
// leaf).
type Error struct {
	Code    Code
	Message string
	Token   lexer.Token
	HasTok  bool
}

func (e *Error) Error() string {
	if e.HasTok {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Token.Position(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// At builds an Error anchored to tok.
func At(code Code, tok lexer.Token, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Token: tok, HasTok: true}
}

// New builds an Error with no source location (e.g. a missing root
// file, before any token exists).
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

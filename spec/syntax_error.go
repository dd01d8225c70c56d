package spec

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

// PositionedError is a syntax error found at a position of a rule source.
type PositionedError struct {
	Cause error
	Pos   Position
}

func (e *PositionedError) Error() string {
	return fmt.Sprintf("%v:%v: %v", e.Pos.Row, e.Pos.Col, e.Cause)
}

func (e *PositionedError) Unwrap() error {
	return e.Cause
}

var (
	// lexical errors
	synErrInvalidChar = newSyntaxError("invalid character")

	// syntax errors
	synErrNoProduction     = newSyntaxError("a rule source must have at least one production")
	synErrTooManyRules     = newSyntaxError("only one rule is allowed")
	synErrNoProductionName = newSyntaxError("a production name is missing")
	synErrNoColon          = newSyntaxError("the colon must precede alternatives")
	synErrNoSemicolon      = newSyntaxError("productions must be separated by semicolons")
	synErrNoDirectiveName  = newSyntaxError("a directive needs a name")
	synErrUnknownDirective = newSyntaxError("unknown directive")
	synErrNoPrecedenceName = newSyntaxError("the #prec directive needs a terminal name")
	synErrDuplicatePrec    = newSyntaxError("an alternative can have only one #prec directive")
	synErrElemAfterPrec    = newSyntaxError("the #prec directive must be at the end of an alternative")
)

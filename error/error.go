package error

import (
	"fmt"
	"strings"

	"github.com/nihei9/gply/driver/token"
)

// Error is implemented only by the error types of this package. Callers can switch over the concrete types
// or use errors.As to pick out the one they are interested in.
type Error interface {
	error
	gplyError()
}

var (
	_ Error = &ConstructionError{}
	_ Error = &LexingError{}
	_ Error = &ParsingError{}
	_ Error = &DescriptionError{}
)

// ConstructionError means a grammar cannot be turned into a parsing table. It is always fatal.
type ConstructionError struct {
	Cause  error
	Detail string
}

func (e *ConstructionError) gplyError() {}

func (e *ConstructionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "construction error: %v", e.Cause)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %v", e.Detail)
	}
	return b.String()
}

func (e *ConstructionError) Unwrap() error {
	return e.Cause
}

// LexingError means no lexical rule matches the input at Pos.
type LexingError struct {
	Pos  token.SourcePos
	Text string
}

func (e *LexingError) gplyError() {}

func (e *LexingError) Error() string {
	return fmt.Sprintf("%v: lexing error: no rule matches %q (offset %v)", e.Pos, e.Text, e.Pos.Idx)
}

// ParsingError means the parsing table has no action for the current state and token. Pos and Token are
// nil when the input ended unexpectedly.
type ParsingError struct {
	Pos      *token.SourcePos
	Token    *token.Token
	Expected []string
	Cause    error
}

func (e *ParsingError) gplyError() {}

func (e *ParsingError) Error() string {
	var b strings.Builder
	if e.Pos != nil {
		fmt.Fprintf(&b, "%v: ", e.Pos)
	}
	fmt.Fprintf(&b, "parsing error: ")
	if e.Cause != nil {
		fmt.Fprintf(&b, "%v: ", e.Cause)
	}
	if e.Token != nil {
		fmt.Fprintf(&b, "unexpected token %v", e.Token)
	} else {
		fmt.Fprintf(&b, "unexpected end of input")
	}
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, "; expected: %v", strings.Join(e.Expected, ", "))
	}
	return b.String()
}

func (e *ParsingError) Unwrap() error {
	return e.Cause
}

// DescriptionError is an error found in a grammar description file.
type DescriptionError struct {
	Cause      error
	FilePath   string
	SourceName string
	Entry      string
}

func (e *DescriptionError) gplyError() {}

func (e *DescriptionError) Error() string {
	var b strings.Builder
	if e.SourceName != "" {
		fmt.Fprintf(&b, "%v: ", e.SourceName)
	} else if e.FilePath != "" {
		fmt.Fprintf(&b, "%v: ", e.FilePath)
	}
	fmt.Fprintf(&b, "error: %v", e.Cause)
	if e.Entry != "" {
		fmt.Fprintf(&b, "\n    %v", e.Entry)
	}
	return b.String()
}

func (e *DescriptionError) Unwrap() error {
	return e.Cause
}

type DescriptionErrors []*DescriptionError

func (e DescriptionErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%v", e[0])
	for _, err := range e[1:] {
		fmt.Fprintf(&b, "\n%v", err)
	}
	return b.String()
}

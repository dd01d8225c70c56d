package grammar

import (
	"fmt"
)

type symbolKind string

const (
	symbolKindNonTerminal = symbolKind("non-terminal")
	symbolKindTerminal    = symbolKind("terminal")
)

func (t symbolKind) String() string {
	return string(t)
}

type symbolNum int

func (n symbolNum) Int() int {
	return int(n)
}

// symbol packs a kind and a number. Terminal numbers and non-terminal numbers are independent sequences
// starting from 0, so the kind bit keeps them apart.
type symbol int

const (
	maskTerminal   = 1 << 24
	maskNumberPart = maskTerminal - 1

	symbolNil = symbol(-1)

	symbolNumEOF   = symbolNum(0)
	symbolNumError = symbolNum(1)
	symbolNumStart = symbolNum(0)

	// The names contain characters users cannot write in a rule, so they never conflict with user symbols.
	symbolNameEOF   = "$end"
	symbolNameEmpty = "<empty>"
	symbolNameStart = "S'"

	// symbolNameError is the name of the terminal that is always registered, even if the user never mentions it.
	symbolNameError = "error"

	symbolNumMax = symbolNum(maskNumberPart)
)

var (
	symbolEOF   = newTerminalSymbol(symbolNumEOF)
	symbolError = newTerminalSymbol(symbolNumError)
	symbolStart = newNonTerminalSymbol(symbolNumStart)
)

func newTerminalSymbol(num symbolNum) symbol {
	return symbol(maskTerminal | int(num))
}

func newNonTerminalSymbol(num symbolNum) symbol {
	return symbol(num)
}

func (s symbol) String() string {
	switch {
	case s.isNil():
		return "nil"
	case s.isTerminal():
		return fmt.Sprintf("t%v", s.num())
	default:
		return fmt.Sprintf("n%v", s.num())
	}
}

func (s symbol) num() symbolNum {
	return symbolNum(int(s) & maskNumberPart)
}

func (s symbol) isNil() bool {
	return s == symbolNil
}

func (s symbol) isTerminal() bool {
	return !s.isNil() && int(s)&maskTerminal != 0
}

func (s symbol) isNonTerminal() bool {
	return !s.isNil() && int(s)&maskTerminal == 0
}

func (s symbol) isStart() bool {
	return s == symbolStart
}

func (s symbol) isEOF() bool {
	return s == symbolEOF
}

func (s symbol) kind() symbolKind {
	if s.isTerminal() {
		return symbolKindTerminal
	}
	return symbolKindNonTerminal
}

type symbolTable struct {
	text2Sym     map[string]symbol
	termTexts    []string
	nonTermTexts []string
}

func newSymbolTable() *symbolTable {
	return &symbolTable{
		text2Sym: map[string]symbol{
			symbolNameEOF:   symbolEOF,
			symbolNameError: symbolError,
			symbolNameStart: symbolStart,
		},
		termTexts:    []string{symbolNameEOF, symbolNameError},
		nonTermTexts: []string{symbolNameStart},
	}
}

func (t *symbolTable) registerTerminalSymbol(text string) (symbol, error) {
	if sym, ok := t.text2Sym[text]; ok {
		if sym.isTerminal() {
			return sym, nil
		}
		return symbolNil, fmt.Errorf("%v is already registered as a %v", text, sym.kind())
	}
	num := symbolNum(len(t.termTexts))
	if num > symbolNumMax {
		return symbolNil, fmt.Errorf("too many terminal symbols; limit: %v", symbolNumMax)
	}
	sym := newTerminalSymbol(num)
	t.text2Sym[text] = sym
	t.termTexts = append(t.termTexts, text)
	return sym, nil
}

func (t *symbolTable) registerNonTerminalSymbol(text string) (symbol, error) {
	if sym, ok := t.text2Sym[text]; ok {
		if sym.isNonTerminal() {
			return sym, nil
		}
		return symbolNil, fmt.Errorf("%v is already registered as a %v", text, sym.kind())
	}
	num := symbolNum(len(t.nonTermTexts))
	if num > symbolNumMax {
		return symbolNil, fmt.Errorf("too many non-terminal symbols; limit: %v", symbolNumMax)
	}
	sym := newNonTerminalSymbol(num)
	t.text2Sym[text] = sym
	t.nonTermTexts = append(t.nonTermTexts, text)
	return sym, nil
}

func (t *symbolTable) toSymbol(text string) (symbol, bool) {
	sym, ok := t.text2Sym[text]
	return sym, ok
}

func (t *symbolTable) toText(sym symbol) (string, bool) {
	num := sym.num().Int()
	switch {
	case sym.isTerminal():
		if num >= len(t.termTexts) {
			return "", false
		}
		return t.termTexts[num], true
	case sym.isNonTerminal():
		if num >= len(t.nonTermTexts) {
			return "", false
		}
		return t.nonTermTexts[num], true
	}
	return "", false
}

func (t *symbolTable) terminalSymbols() []symbol {
	syms := make([]symbol, len(t.termTexts))
	for i := range t.termTexts {
		syms[i] = newTerminalSymbol(symbolNum(i))
	}
	return syms
}

func (t *symbolTable) nonTerminalSymbols() []symbol {
	syms := make([]symbol, len(t.nonTermTexts))
	for i := range t.nonTermTexts {
		syms[i] = newNonTerminalSymbol(symbolNum(i))
	}
	return syms
}

func (t *symbolTable) terminalTexts() []string {
	return append([]string{}, t.termTexts...)
}

func (t *symbolTable) nonTerminalTexts() []string {
	return append([]string{}, t.nonTermTexts...)
}

func (t *symbolTable) terminalCount() int {
	return len(t.termTexts)
}

func (t *symbolTable) nonTerminalCount() int {
	return len(t.nonTermTexts)
}

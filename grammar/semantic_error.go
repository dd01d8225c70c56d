package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	SemErrRuleNameIsTerminal    = newSemanticError("a rule name collides with a terminal name")
	SemErrDuplicateTerminal     = newSemanticError("duplicate terminal")
	SemErrReservedName          = newSemanticError("reserved symbol name")
	SemErrDuplicatePrecedence   = newSemanticError("precedence is already specified")
	SemErrUnknownAssociativity  = newSemanticError("unknown associativity")
	SemErrUndefinedPrecedence   = newSemanticError("precedence doesn't exist")
	SemErrPrecedenceNotTerminal = newSemanticError("precedence can be given only to terminals")
	SemErrUndefinedSym          = newSemanticError("undefined symbol")
	SemErrNoProduction          = newSemanticError("a grammar needs at least one production")
	SemErrStartAlreadySet       = newSemanticError("the start symbol is already set")
	SemErrStartNotSet           = newSemanticError("the start symbol is not set")
	SemErrShiftShiftConflict    = newSemanticError("shift/shift conflict")
	SemErrUnknownConflict       = newSemanticError("unknown conflict")
)

package engine

import "fmt"

// ValidationError reports a bad request caught before any engine work runs:
// empty key selection, empty schema text, empty filtered set. Callers show
// these as "fix your input" messages.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// EvalKind classifies a schema evaluation failure.
type EvalKind int

const (
	EvalCompile EvalKind = iota // schema or rule text did not parse
	EvalRuntime                 // a rule failed while executing
	EvalTimeout                 // evaluation exceeded its step or time budget
)

func (k EvalKind) String() string {
	switch k {
	case EvalCompile:
		return "compile"
	case EvalRuntime:
		return "runtime"
	case EvalTimeout:
		return "timeout"
	}
	return "unknown"
}

// EvaluationError is any failure at the schema evaluator boundary. It carries
// the underlying cause and never escapes as a panic. Callers distinguish it
// from ValidationError ("fix your schema" vs "pick at least one field").
type EvaluationError struct {
	Kind EvalKind
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("schema evaluation (%s): %v", e.Kind, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// Evalf builds an EvaluationError.
func Evalf(kind EvalKind, format string, args ...any) error {
	return &EvaluationError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

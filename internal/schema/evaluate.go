package schema

import (
	"errors"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"catalogctl/internal/engine"
	"catalogctl/internal/model"
	"catalogctl/internal/rule"
)

// Evaluation budget defaults. A mapping schema costs a handful of steps per
// field per record, so a million steps covers catalogs far larger than any
// real feed while still stopping a runaway rule quickly.
const (
	DefaultMaxSteps = 1_000_000
	DefaultTimeout  = 2 * time.Second
)

// Options bound a single evaluation.
type Options struct {
	MaxSteps int
	Timeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxSteps <= 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Evaluate compiles schema source and runs it against the record set.
// The input records are never modified; all failures come back as
// ValidationError or EvaluationError, never as a panic.
//
// A whole-set schema runs exactly once with `records` bound to the full set.
// A non-array result is wrapped as a one-element result: that matches how a
// single stats() object is most useful downstream, and the policy is pinned
// by tests.
func Evaluate(records []model.Record, src string, opts Options) ([]engine.Row, error) {
	sch, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return sch.Eval(records, opts)
}

// Eval runs a compiled schema against the record set.
func (s *Schema) Eval(records []model.Record, opts Options) ([]engine.Row, error) {
	opts = opts.withDefaults()
	ev := &rule.Evaluator{
		MaxSteps: opts.MaxSteps,
		Deadline: time.Now().Add(opts.Timeout),
	}

	base := &rule.Env{
		Vars:  map[string]any{"records": RecordSet(records)},
		Funcs: builtins(),
	}

	if s.WholeSet != nil {
		v, err := ev.Eval(s.WholeSet, base)
		if err != nil {
			return nil, evalError(err)
		}
		return resultRows(v), nil
	}

	rows := make([]engine.Row, 0, len(records))
	for _, rec := range records {
		env := &rule.Env{
			Vars: map[string]any{
				"records": RecordSet(records),
				"rec":     engine.RecordRow(rec),
			},
			Fields: rec.Field,
			Funcs:  base.Funcs,
		}

		row := engine.NewRow()
		for _, f := range s.Fields {
			if f.Expr == nil {
				// Field reference: a missing source field yields null so
				// the declared output shape stays stable.
				v, _ := rec.Field(f.Ref)
				row.Set(f.Name, v)
				continue
			}
			v, err := ev.Eval(f.Expr, env)
			if err != nil {
				return nil, evalError(err)
			}
			row.Set(f.Name, v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func evalError(err error) error {
	kind := engine.EvalRuntime
	if errors.Is(err, rule.ErrBudget) {
		kind = engine.EvalTimeout
	}
	return &engine.EvaluationError{Kind: kind, Err: err}
}

// resultRows normalizes a whole-set result to a row sequence.
func resultRows(v any) []engine.Row {
	switch v := v.(type) {
	case RecordSet:
		rows := make([]engine.Row, len(v))
		for i, rec := range v {
			rows[i] = engine.RecordRow(rec)
		}
		return rows
	case []any:
		rows := make([]engine.Row, 0, len(v))
		for _, elem := range v {
			rows = append(rows, asRow(elem))
		}
		return rows
	case *orderedmap.OrderedMap[string, any]:
		return []engine.Row{v}
	}
	return []engine.Row{asRow(v)}
}

func asRow(v any) engine.Row {
	if row, ok := v.(*orderedmap.OrderedMap[string, any]); ok {
		return row
	}
	row := engine.NewRow()
	row.Set("value", v)
	return row
}

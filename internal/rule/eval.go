package rule

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrBudget is returned when evaluation exceeds its step budget or deadline.
// Callers treat it as a timeout, distinct from ordinary rule failures.
var ErrBudget = errors.New("rule evaluation budget exceeded")

// Func is a built-in function exposed to rules.
type Func func(args []any) (any, error)

// Indexer lets host values participate in x[i] expressions.
type Indexer interface {
	RuleIndex(i int) (any, bool)
}

// Sizer lets host values report a length to len() and truthiness checks.
type Sizer interface {
	RuleLen() int
}

// Env is the complete world a rule can see: named variables, an optional
// dynamic field lookup (the current record's fields), and built-ins.
type Env struct {
	Vars   map[string]any
	Fields func(name string) (any, bool)
	Funcs  map[string]Func
}

// Evaluator runs parsed rules under a step budget and deadline.
type Evaluator struct {
	MaxSteps int
	Deadline time.Time

	steps int
}

// Eval evaluates a node against an environment. All failures come back as
// errors; the evaluator never panics on rule input.
func (ev *Evaluator) Eval(n Node, env *Env) (any, error) {
	if err := ev.step(); err != nil {
		return nil, err
	}

	switch n := n.(type) {
	case Lit:
		return n.Val, nil

	case ListLit:
		out := make([]any, 0, len(n.Elems))
		for _, e := range n.Elems {
			v, err := ev.Eval(e, env)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case Ident:
		if v, ok := env.Vars[n.Name]; ok {
			return v, nil
		}
		if env.Fields != nil {
			if v, ok := env.Fields(n.Name); ok {
				return v, nil
			}
		}
		return nil, fmt.Errorf("unknown name %q", n.Name)

	case Select:
		x, err := ev.Eval(n.X, env)
		if err != nil {
			return nil, err
		}
		return selectField(x, n.Name)

	case Index:
		x, err := ev.Eval(n.X, env)
		if err != nil {
			return nil, err
		}
		i, err := ev.Eval(n.I, env)
		if err != nil {
			return nil, err
		}
		return indexValue(x, i)

	case Call:
		fn, ok := env.Funcs[n.Name]
		if !ok {
			return nil, fmt.Errorf("unknown function %q", n.Name)
		}
		args := make([]any, 0, len(n.Args))
		for _, a := range n.Args {
			v, err := ev.Eval(a, env)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return fn(args)

	case Unary:
		x, err := ev.Eval(n.X, env)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "!":
			return !Truthy(x), nil
		case "-":
			f, ok := toNumber(x)
			if !ok {
				return nil, fmt.Errorf("cannot negate %s", typeName(x))
			}
			return -f, nil
		}
		return nil, fmt.Errorf("unknown unary operator %q", n.Op)

	case Binary:
		return ev.evalBinary(n, env)

	case Cond:
		c, err := ev.Eval(n.If, env)
		if err != nil {
			return nil, err
		}
		if Truthy(c) {
			return ev.Eval(n.Then, env)
		}
		return ev.Eval(n.Else, env)
	}

	return nil, fmt.Errorf("unknown node %T", n)
}

func (ev *Evaluator) evalBinary(n Binary, env *Env) (any, error) {
	l, err := ev.Eval(n.L, env)
	if err != nil {
		return nil, err
	}

	// || and && short-circuit and return an operand, not a bool, so
	// `categories[0] || 'Uncategorized'` works as a default.
	switch n.Op {
	case "||":
		if Truthy(l) {
			return l, nil
		}
		return ev.Eval(n.R, env)
	case "&&":
		if !Truthy(l) {
			return l, nil
		}
		return ev.Eval(n.R, env)
	}

	r, err := ev.Eval(n.R, env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "==":
		return looseEqual(l, r), nil
	case "!=":
		return !looseEqual(l, r), nil
	case "<", "<=", ">", ">=":
		return compare(n.Op, l, r)
	case "+":
		return add(l, r)
	case "-", "*", "/", "%":
		return arithmetic(n.Op, l, r)
	}
	return nil, fmt.Errorf("unknown operator %q", n.Op)
}

func (ev *Evaluator) step() error {
	ev.steps++
	if ev.MaxSteps > 0 && ev.steps > ev.MaxSteps {
		return fmt.Errorf("%w: more than %d steps", ErrBudget, ev.MaxSteps)
	}
	// Checking the clock every step would dominate evaluation cost.
	if ev.steps%1024 == 0 && !ev.Deadline.IsZero() && time.Now().After(ev.Deadline) {
		return fmt.Errorf("%w: deadline passed", ErrBudget)
	}
	return nil
}

// Truthy follows the schema language's notion of emptiness: null, false,
// empty string, zero, and empty collections are false.
func Truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case Sizer:
		return v.RuleLen() > 0
	}
	return true
}

func selectField(x any, name string) (any, error) {
	switch x := x.(type) {
	case nil:
		return nil, fmt.Errorf("cannot read field %q of null", name)
	case map[string]any:
		return x[name], nil
	case *orderedmap.OrderedMap[string, any]:
		v, _ := x.Get(name)
		return v, nil
	}
	return nil, fmt.Errorf("cannot read field %q of %s", name, typeName(x))
}

func indexValue(x, i any) (any, error) {
	if key, ok := i.(string); ok {
		return selectField(x, key)
	}
	f, ok := toNumber(i)
	if !ok {
		return nil, fmt.Errorf("index must be a number or string, got %s", typeName(i))
	}
	idx := int(f)

	// Out-of-range indexing yields null rather than failing, so rules can
	// write `categories[0] || 'Uncategorized'` against empty lists.
	switch x := x.(type) {
	case []any:
		if idx < 0 || idx >= len(x) {
			return nil, nil
		}
		return x[idx], nil
	case []string:
		if idx < 0 || idx >= len(x) {
			return nil, nil
		}
		return x[idx], nil
	case Indexer:
		v, ok := x.RuleIndex(idx)
		if !ok {
			return nil, nil
		}
		return v, nil
	case nil:
		return nil, fmt.Errorf("cannot index null")
	}
	return nil, fmt.Errorf("cannot index %s", typeName(x))
}

func looseEqual(l, r any) bool {
	if l == nil || r == nil {
		return l == nil && r == nil
	}
	if lf, ok := toNumber(l); ok {
		if rf, ok := toNumber(r); ok {
			return lf == rf
		}
	}
	if ls, ok := l.(string); ok {
		if rs, ok := r.(string); ok {
			return ls == rs
		}
	}
	if lb, ok := l.(bool); ok {
		if rb, ok := r.(bool); ok {
			return lb == rb
		}
	}
	return reflect.DeepEqual(l, r)
}

func compare(op string, l, r any) (any, error) {
	var c int
	if lf, lok := toNumber(l); lok {
		rf, rok := toNumber(r)
		if !rok {
			return nil, fmt.Errorf("cannot compare number with %s", typeName(r))
		}
		switch {
		case lf < rf:
			c = -1
		case lf > rf:
			c = 1
		}
	} else if ls, lok := l.(string); lok {
		rs, rok := r.(string)
		if !rok {
			return nil, fmt.Errorf("cannot compare string with %s", typeName(r))
		}
		c = strings.Compare(ls, rs)
	} else {
		return nil, fmt.Errorf("cannot order %s values", typeName(l))
	}

	switch op {
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	}
	return nil, fmt.Errorf("unknown comparison %q", op)
}

// add is numeric addition, or string concatenation when either side is a
// string.
func add(l, r any) (any, error) {
	if lf, ok := toNumber(l); ok {
		if rf, ok := toNumber(r); ok {
			return lf + rf, nil
		}
	}
	if _, ok := l.(string); ok {
		return Stringify(l) + Stringify(r), nil
	}
	if _, ok := r.(string); ok {
		return Stringify(l) + Stringify(r), nil
	}
	return nil, fmt.Errorf("cannot add %s and %s", typeName(l), typeName(r))
}

func arithmetic(op string, l, r any) (any, error) {
	lf, lok := toNumber(l)
	rf, rok := toNumber(r)
	if !lok || !rok {
		return nil, fmt.Errorf("operator %q needs numbers, got %s and %s", op, typeName(l), typeName(r))
	}
	switch op {
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return lf / rf, nil
	case "%":
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return float64(int64(lf) % int64(rf)), nil
	}
	return nil, fmt.Errorf("unknown operator %q", op)
}

func toNumber(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Stringify renders a rule value the way it would appear in output: numbers
// without a trailing ".0" when integral, lists joined with ", ".
func Stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = Stringify(e)
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int:
		return "number"
	case []any, []string:
		return "list"
	case map[string]any, *orderedmap.OrderedMap[string, any]:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

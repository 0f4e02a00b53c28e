package rule

import (
	"errors"
	"testing"
	"time"
)

func eval(t *testing.T, src string, env *Env) any {
	t.Helper()
	n, err := Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	ev := &Evaluator{MaxSteps: 10_000}
	v, err := ev.Eval(n, env)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v
}

func TestEval_Literals(t *testing.T) {
	env := &Env{}
	tests := []struct {
		src  string
		want any
	}{
		{"42", float64(42)},
		{"1.5", 1.5},
		{"'hello'", "hello"},
		{`"world"`, "world"},
		{"true", true},
		{"false", false},
		{"null", nil},
	}
	for _, tt := range tests {
		if got := eval(t, tt.src, env); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.src, tt.want, got)
		}
	}
}

func TestEval_Arithmetic(t *testing.T) {
	env := &Env{}
	tests := []struct {
		src  string
		want any
	}{
		{"1 + 2 * 3", float64(7)},
		{"(1 + 2) * 3", float64(9)},
		{"10 / 4", 2.5},
		{"7 % 3", float64(1)},
		{"-2 + 5", float64(3)},
		{"'a' + 'b'", "ab"},
		{"'n=' + 2", "n=2"},
	}
	for _, tt := range tests {
		if got := eval(t, tt.src, env); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.src, tt.want, got)
		}
	}
}

func TestEval_ComparisonAndLogic(t *testing.T) {
	env := &Env{}
	tests := []struct {
		src  string
		want any
	}{
		{"1 < 2", true},
		{"2 <= 2", true},
		{"'a' < 'b'", true},
		{"1 == 1", true},
		{"1 != 2", true},
		{"'x' == 'x'", true},
		{"!false", true},
		{"true && false", false},
		{"1 < 2 ? 'yes' : 'no'", "yes"},
		{"1 > 2 ? 'yes' : 'no'", "no"},
	}
	for _, tt := range tests {
		if got := eval(t, tt.src, env); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.src, tt.want, got)
		}
	}
}

func TestEval_OrReturnsOperand(t *testing.T) {
	env := &Env{Vars: map[string]any{"empty": []any{}, "cats": []any{"Tax"}}}

	if got := eval(t, "empty[0] || 'Uncategorized'", env); got != "Uncategorized" {
		t.Errorf("expected default, got %v", got)
	}
	if got := eval(t, "cats[0] || 'Uncategorized'", env); got != "Tax" {
		t.Errorf("expected Tax, got %v", got)
	}
	if got := eval(t, "'' || null || 'fallback'", env); got != "fallback" {
		t.Errorf("expected fallback, got %v", got)
	}
}

func TestEval_IndexOutOfRangeIsNull(t *testing.T) {
	env := &Env{Vars: map[string]any{"xs": []string{"a"}}}

	if got := eval(t, "xs[5]", env); got != nil {
		t.Errorf("expected null, got %v", got)
	}
	if got := eval(t, "xs[0]", env); got != "a" {
		t.Errorf("expected a, got %v", got)
	}
}

func TestEval_FieldsAndSelect(t *testing.T) {
	env := &Env{
		Vars: map[string]any{"obj": map[string]any{"inner": "v"}},
		Fields: func(name string) (any, bool) {
			if name == "name" {
				return "Tax Refund", true
			}
			return nil, false
		},
	}

	if got := eval(t, "name", env); got != "Tax Refund" {
		t.Errorf("expected field lookup, got %v", got)
	}
	if got := eval(t, "obj.inner", env); got != "v" {
		t.Errorf("expected v, got %v", got)
	}
	if got := eval(t, "obj['inner']", env); got != "v" {
		t.Errorf("expected v via string index, got %v", got)
	}
}

func TestEval_Calls(t *testing.T) {
	env := &Env{Funcs: map[string]Func{
		"double": func(args []any) (any, error) { return args[0].(float64) * 2, nil },
	}}

	if got := eval(t, "double(21)", env); got != float64(42) {
		t.Errorf("expected 42, got %v", got)
	}
}

func TestEval_Errors(t *testing.T) {
	env := &Env{}
	tests := []string{
		"unknownName",
		"missing(1)",
		"1 / 0",
		"null.field",
		"'a' * 2",
		"-'x'",
	}
	for _, src := range tests {
		n, err := Parse(src)
		if err != nil {
			t.Fatalf("parse %q: %v", src, err)
		}
		ev := &Evaluator{MaxSteps: 1000}
		if _, err := ev.Eval(n, env); err == nil {
			t.Errorf("%s: expected error", src)
		}
	}
}

func TestEval_StepBudget(t *testing.T) {
	n, err := Parse("1 + 2 + 3 + 4 + 5 + 6 + 7 + 8")
	if err != nil {
		t.Fatal(err)
	}
	ev := &Evaluator{MaxSteps: 3}
	_, err = ev.Eval(n, &Env{})
	if !errors.Is(err, ErrBudget) {
		t.Fatalf("expected budget error, got %v", err)
	}
}

func TestEval_NeverPanics(t *testing.T) {
	// A grab-bag of hostile inputs; every one must come back as an error
	// or value, never a panic.
	inputs := []string{
		"", "(", ")", "[", "]", "?", "a ? b", "1 +", "'unterminated",
		"@", "a..b", "f(,)", "((((((((((1))))))))))",
	}
	for _, src := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("%q panicked: %v", src, r)
				}
			}()
			n, err := Parse(src)
			if err != nil {
				return
			}
			ev := &Evaluator{MaxSteps: 1000, Deadline: time.Now().Add(time.Second)}
			ev.Eval(n, &Env{})
		}()
	}
}

func TestParse_Precedence(t *testing.T) {
	// 1 + 2 == 3 && true → ((1+2) == 3) && true
	if got := eval(t, "1 + 2 == 3 && true", &Env{}); got != true {
		t.Errorf("expected true, got %v", got)
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{true, "true"},
		{float64(3), "3"},
		{3.5, "3.5"},
		{[]string{"a", "b"}, "a, b"},
		{[]any{"a", float64(1)}, "a, 1"},
	}
	for _, tt := range tests {
		if got := Stringify(tt.in); got != tt.want {
			t.Errorf("Stringify(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

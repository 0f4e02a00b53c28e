// Package schema parses and evaluates user-supplied transformation schemas.
//
// A schema is YAML (JSON works too): either a mapping from output field name
// to a selector, or a single expression evaluated once against the whole
// record set. A selector is a plain source field name, or an expression
// prefixed with "=" evaluated per record.
//
//	title: name
//	primary: "= categories[0] || 'Uncategorized'"
//
// Expressions use the closed rule language from internal/rule; they can see
// the record's fields, `rec`, `records`, and the utility built-ins
// (project, filterCategory, search, groupByCategory, stats).
package schema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"catalogctl/internal/engine"
	"catalogctl/internal/rule"
)

// Field is one schema entry: an output name bound to a source field
// reference or a compiled derivation rule. Exactly one of Ref/Expr is set.
type Field struct {
	Name string
	Ref  string
	Expr rule.Node
	Src  string // original expression text, for error messages
}

// Schema is a compiled transformation schema. Either WholeSet is set (single
// expression over the full record set) or Fields is non-empty (per-record
// mapping, in declaration order).
type Schema struct {
	WholeSet rule.Node
	WholeSrc string
	Fields   []Field
}

// Parse compiles schema source. Empty source is a validation error; any
// parse failure is an EvaluationError with kind compile.
func Parse(src string) (*Schema, error) {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return nil, engine.Validationf("schema text is empty")
	}

	// A leading "=" marks the whole source as a single expression. Bypass
	// YAML for it: expressions legally contain ": " and would misparse as a
	// mapping.
	if strings.HasPrefix(trimmed, "=") {
		return parseWholeSet(trimmed)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil, &engine.EvaluationError{Kind: engine.EvalCompile, Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, engine.Evalf(engine.EvalCompile, "schema has no content")
	}
	root := doc.Content[0]

	switch root.Kind {
	case yaml.ScalarNode:
		return parseWholeSet(root.Value)
	case yaml.MappingNode:
		return parseMapping(root)
	}
	return nil, engine.Evalf(engine.EvalCompile, "schema must be a field mapping or a single expression")
}

func parseWholeSet(text string) (*Schema, error) {
	expr := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "="))
	if expr == "" {
		return nil, engine.Validationf("schema text is empty")
	}
	n, err := rule.Parse(expr)
	if err != nil {
		return nil, &engine.EvaluationError{Kind: engine.EvalCompile, Err: err}
	}
	return &Schema{WholeSet: n, WholeSrc: expr}, nil
}

// parseMapping walks the YAML mapping node directly so output field order
// matches declaration order, which map decoding would lose.
func parseMapping(root *yaml.Node) (*Schema, error) {
	sch := &Schema{}
	seen := make(map[string]bool)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		name := keyNode.Value
		if name == "" {
			return nil, engine.Evalf(engine.EvalCompile, "schema entry %d has an empty name", i/2+1)
		}
		if seen[name] {
			return nil, engine.Evalf(engine.EvalCompile, "duplicate output field %q", name)
		}
		seen[name] = true

		if valNode.Kind != yaml.ScalarNode {
			return nil, engine.Evalf(engine.EvalCompile, "field %q: selector must be a string", name)
		}
		val := strings.TrimSpace(valNode.Value)

		if rest, ok := strings.CutPrefix(val, "="); ok {
			expr := strings.TrimSpace(rest)
			n, err := rule.Parse(expr)
			if err != nil {
				return nil, engine.Evalf(engine.EvalCompile, "field %q: %v", name, err)
			}
			sch.Fields = append(sch.Fields, Field{Name: name, Expr: n, Src: expr})
			continue
		}
		if val == "" {
			return nil, engine.Evalf(engine.EvalCompile, "field %q: empty selector", name)
		}
		sch.Fields = append(sch.Fields, Field{Name: name, Ref: val})
	}
	if len(sch.Fields) == 0 {
		return nil, engine.Validationf("schema has no fields")
	}
	return sch, nil
}

// OutputFields returns the declared output field names in order. Only
// meaningful for mapping-form schemas.
func (s *Schema) OutputFields() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

func (s *Schema) String() string {
	if s.WholeSet != nil {
		return fmt.Sprintf("whole-set schema: %s", s.WholeSrc)
	}
	return fmt.Sprintf("field schema: %s", strings.Join(s.OutputFields(), ", "))
}

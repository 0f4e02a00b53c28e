package schema

import (
	"fmt"
	"strings"

	"catalogctl/internal/engine"
	"catalogctl/internal/model"
	"catalogctl/internal/rule"
)

// RecordSet is the record-set value rules operate on. It supports indexing
// (records[0] yields the record as a row) and len(), and flows unchanged
// through the set-level built-ins so they compose:
//
//	search(filterCategory(records, ['Tax']), 'refund')
type RecordSet []model.Record

func (s RecordSet) RuleLen() int { return len(s) }

func (s RecordSet) RuleIndex(i int) (any, bool) {
	if i < 0 || i >= len(s) {
		return nil, false
	}
	return engine.RecordRow(s[i]), true
}

// builtins is the fixed namespace exposed to every rule. The five set
// operations mirror the engine exactly; the rest are scalar conveniences.
func builtins() map[string]rule.Func {
	return map[string]rule.Func{
		"project":         biProject,
		"filterCategory":  biFilterCategory,
		"search":          biSearch,
		"groupByCategory": biGroupByCategory,
		"stats":           biStats,

		"lower":    biLower,
		"upper":    biUpper,
		"join":     biJoin,
		"len":      biLen,
		"contains": biContains,
		"str":      biStr,
	}
}

func biProject(args []any) (any, error) {
	set, err := argSet("project", args, 0)
	if err != nil {
		return nil, err
	}
	keys, err := argStrings("project", args, 1)
	if err != nil {
		return nil, err
	}
	rows := engine.Project(set, keys)
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out, nil
}

func biFilterCategory(args []any) (any, error) {
	set, err := argSet("filterCategory", args, 0)
	if err != nil {
		return nil, err
	}
	cats, err := argStrings("filterCategory", args, 1)
	if err != nil {
		return nil, err
	}
	return RecordSet(engine.Filter(set, engine.Criteria{Categories: cats})), nil
}

func biSearch(args []any) (any, error) {
	set, err := argSet("search", args, 0)
	if err != nil {
		return nil, err
	}
	query, err := argString("search", args, 1)
	if err != nil {
		return nil, err
	}
	return RecordSet(engine.Filter(set, engine.Criteria{Search: query})), nil
}

func biGroupByCategory(args []any) (any, error) {
	set, err := argSet("groupByCategory", args, 0)
	if err != nil {
		return nil, err
	}
	groups := engine.GroupByCategory(set)
	out := make([]any, len(groups))
	for i, g := range groups {
		row := engine.NewRow()
		row.Set("category", g.Category)
		row.Set("count", float64(len(g.Records)))
		row.Set("records", RecordSet(g.Records))
		out[i] = row
	}
	return out, nil
}

func biStats(args []any) (any, error) {
	set, err := argSet("stats", args, 0)
	if err != nil {
		return nil, err
	}
	st := engine.ComputeStats(set)
	row := engine.NewRow()
	row.Set("total", float64(st.Total))
	row.Set("active", float64(st.Active))
	row.Set("withUrl", float64(st.WithURL))
	row.Set("distinctCategoryCount", float64(st.DistinctCategories))
	return row, nil
}

func biLower(args []any) (any, error) {
	s, err := argString("lower", args, 0)
	if err != nil {
		return nil, err
	}
	return strings.ToLower(s), nil
}

func biUpper(args []any) (any, error) {
	s, err := argString("upper", args, 0)
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(s), nil
}

func biJoin(args []any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("join expects (list, separator)")
	}
	items, err := argStrings("join", args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := argString("join", args, 1)
	if err != nil {
		return nil, err
	}
	return strings.Join(items, sep), nil
}

func biLen(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("len expects one argument")
	}
	switch v := args[0].(type) {
	case nil:
		return float64(0), nil
	case string:
		return float64(len(v)), nil
	case []any:
		return float64(len(v)), nil
	case []string:
		return float64(len(v)), nil
	case rule.Sizer:
		return float64(v.RuleLen()), nil
	}
	return nil, fmt.Errorf("len: cannot measure %T", args[0])
}

func biContains(args []any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("contains expects (value, needle)")
	}
	switch v := args[0].(type) {
	case string:
		needle, err := argString("contains", args, 1)
		if err != nil {
			return nil, err
		}
		return strings.Contains(strings.ToLower(v), strings.ToLower(needle)), nil
	case []string:
		needle, err := argString("contains", args, 1)
		if err != nil {
			return nil, err
		}
		for _, item := range v {
			if strings.EqualFold(item, needle) {
				return true, nil
			}
		}
		return false, nil
	case []any:
		for _, item := range v {
			if rule.Stringify(item) == rule.Stringify(args[1]) {
				return true, nil
			}
		}
		return false, nil
	case nil:
		return false, nil
	}
	return nil, fmt.Errorf("contains: cannot search %T", args[0])
}

func biStr(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("str expects one argument")
	}
	return rule.Stringify(args[0]), nil
}

func argSet(fn string, args []any, i int) ([]model.Record, error) {
	if i >= len(args) {
		return nil, fmt.Errorf("%s: missing record set argument", fn)
	}
	set, ok := args[i].(RecordSet)
	if !ok {
		return nil, fmt.Errorf("%s: argument %d must be a record set", fn, i+1)
	}
	return []model.Record(set), nil
}

func argString(fn string, args []any, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%s: missing string argument", fn)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%s: argument %d must be a string", fn, i+1)
	}
	return s, nil
}

// argStrings accepts a list of strings or a single string.
func argStrings(fn string, args []any, i int) ([]string, error) {
	if i >= len(args) {
		return nil, fmt.Errorf("%s: missing list argument", fn)
	}
	switch v := args[i].(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, len(v))
		for j, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: list element %d must be a string", fn, j+1)
			}
			out[j] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s: argument %d must be a string list", fn, i+1)
}

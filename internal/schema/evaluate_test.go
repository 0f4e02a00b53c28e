package schema

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"catalogctl/internal/engine"
	"catalogctl/internal/model"
)

func testRecords() []model.Record {
	return []model.Record{
		{Name: "Tax Refund", ID: "1", Categories: []string{"Tax"}, Description: "Claim a refund", Status: model.StatusActive, IsActive: true, URL: "http://tax.example"},
		{Name: "Vaccination", ID: "2", Categories: []string{"Health"}, Status: model.StatusActive, IsActive: true},
		{Name: "Unfiled", ID: "3", Status: model.StatusInactive, IsActive: false},
	}
}

func TestEvaluate_MappingForm(t *testing.T) {
	src := `
title: name
ident: id
primary: "= categories[0] || 'Uncategorized'"
`
	rows, err := Evaluate(testRecords(), src, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	want := []string{"title", "ident", "primary"}
	if !reflect.DeepEqual(engine.RowKeys(rows[0]), want) {
		t.Errorf("expected keys %v, got %v", want, engine.RowKeys(rows[0]))
	}

	title, _ := rows[0].Get("title")
	if title != "Tax Refund" {
		t.Errorf("expected title Tax Refund, got %v", title)
	}

	// Whole-set visibility edge case: empty categories default.
	primary, _ := rows[2].Get("primary")
	if primary != "Uncategorized" {
		t.Errorf("expected Uncategorized default, got %v", primary)
	}
	primary, _ = rows[0].Get("primary")
	if primary != "Tax" {
		t.Errorf("expected Tax, got %v", primary)
	}
}

func TestEvaluate_MissingFieldRefIsNull(t *testing.T) {
	rows, err := Evaluate(testRecords(), "title: name\ngone: notAField", Options{})
	if err != nil {
		t.Fatal(err)
	}
	v, ok := rows[0].Get("gone")
	if !ok || v != nil {
		t.Errorf("expected declared null field, got %v (present=%v)", v, ok)
	}
}

func TestEvaluate_WholeSetProject(t *testing.T) {
	rows, err := Evaluate(testRecords(), `= project(records, ['name', 'id'])`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if !reflect.DeepEqual(engine.RowKeys(rows[0]), []string{"name", "id"}) {
		t.Errorf("unexpected keys %v", engine.RowKeys(rows[0]))
	}
}

func TestEvaluate_WholeSetComposition(t *testing.T) {
	rows, err := Evaluate(testRecords(), `= project(search(filterCategory(records, ['Tax']), 'refund'), ['id'])`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	id, _ := rows[0].Get("id")
	if id != "1" {
		t.Errorf("expected id 1, got %v", id)
	}
}

func TestEvaluate_NonArrayWrappedAsSingleResult(t *testing.T) {
	// Pinned policy: a non-array whole-set result becomes a one-element
	// result rather than an error.
	rows, err := Evaluate(testRecords(), `= stats(records)`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	total, _ := rows[0].Get("total")
	if total != float64(3) {
		t.Errorf("expected total 3, got %v", total)
	}

	// A bare scalar is wrapped under "value".
	rows, err = Evaluate(testRecords(), `= 1 + 1`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	v, _ := rows[0].Get("value")
	if v != float64(2) {
		t.Errorf("expected 2, got %v", v)
	}
}

func TestEvaluate_GroupByCategory(t *testing.T) {
	rows, err := Evaluate(testRecords(), `= groupByCategory(records)`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(rows))
	}
	cat, _ := rows[0].Get("category")
	if cat != "Tax" {
		t.Errorf("expected first group Tax, got %v", cat)
	}
	count, _ := rows[0].Get("count")
	if count != float64(1) {
		t.Errorf("expected count 1, got %v", count)
	}
}

func TestEvaluate_RuntimeErrorDoesNotMutateRecords(t *testing.T) {
	records := testRecords()
	before := make([]model.Record, len(records))
	copy(before, records)

	_, err := Evaluate(records, `bad: "= missingFn(name)"`, Options{})
	var eerr *engine.EvaluationError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if eerr.Kind != engine.EvalRuntime {
		t.Errorf("expected runtime kind, got %v", eerr.Kind)
	}
	if !reflect.DeepEqual(records, before) {
		t.Error("evaluation mutated the source records")
	}
}

func TestEvaluate_TimeoutKind(t *testing.T) {
	_, err := Evaluate(testRecords(), `= project(records, ['name'])`, Options{MaxSteps: 2, Timeout: time.Second})
	var eerr *engine.EvaluationError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if eerr.Kind != engine.EvalTimeout {
		t.Errorf("expected timeout kind, got %v", eerr.Kind)
	}
}

func TestEvaluate_PerRecordRecBinding(t *testing.T) {
	rows, err := Evaluate(testRecords(), `label: "= rec.name + ' (' + rec.id + ')'"`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	label, _ := rows[0].Get("label")
	if label != "Tax Refund (1)" {
		t.Errorf("expected composed label, got %v", label)
	}
}

func TestEvaluate_RecordsIndexing(t *testing.T) {
	rows, err := Evaluate(testRecords(), `= records[0]`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	name, _ := rows[0].Get("name")
	if name != "Tax Refund" {
		t.Errorf("expected first record, got %v", name)
	}
}

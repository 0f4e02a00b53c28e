package engine

import (
	"reflect"
	"testing"

	"catalogctl/internal/model"
)

func TestProject_Identity(t *testing.T) {
	records := sampleRecords()
	rows := Project(records, model.FieldNames)

	if len(rows) != len(records) {
		t.Fatalf("expected %d rows, got %d", len(records), len(rows))
	}
	for i, row := range rows {
		want := RecordRow(records[i])
		if !reflect.DeepEqual(RowKeys(row), RowKeys(want)) {
			t.Fatalf("row %d keys: %v vs %v", i, RowKeys(row), RowKeys(want))
		}
		for pair := want.Oldest(); pair != nil; pair = pair.Next() {
			got, _ := row.Get(pair.Key)
			if !reflect.DeepEqual(got, pair.Value) {
				t.Errorf("row %d field %q: %v vs %v", i, pair.Key, got, pair.Value)
			}
		}
	}
}

func TestProject_KeyOrder(t *testing.T) {
	records := sampleRecords()[:1]
	rows := Project(records, []string{"id", "name"})

	want := []string{"id", "name"}
	if !reflect.DeepEqual(RowKeys(rows[0]), want) {
		t.Errorf("expected key order %v, got %v", want, RowKeys(rows[0]))
	}
}

func TestProject_UnknownKeysSkipped(t *testing.T) {
	records := sampleRecords()[:1]
	rows := Project(records, []string{"name", "bogus", "id"})

	want := []string{"name", "id"}
	if !reflect.DeepEqual(RowKeys(rows[0]), want) {
		t.Errorf("expected %v, got %v", want, RowKeys(rows[0]))
	}
}

func TestProject_SharesSliceValues(t *testing.T) {
	records := sampleRecords()
	rows := Project(records, []string{"categories"})

	v, _ := rows[0].Get("categories")
	cats, ok := v.([]string)
	if !ok {
		t.Fatalf("expected []string, got %T", v)
	}
	if len(records[0].Categories) > 0 && &cats[0] != &records[0].Categories[0] {
		t.Error("expected categories slice to be shared, not copied")
	}
}

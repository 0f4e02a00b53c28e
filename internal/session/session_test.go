package session

import (
	"errors"
	"testing"

	"catalogctl/internal/engine"
	"catalogctl/internal/model"
	"catalogctl/internal/schema"
)

func testCatalog() *model.Catalog {
	return &model.Catalog{
		Services: []model.Record{
			{Name: "Tax Refund", ID: "1", Categories: []string{"Tax"}, Status: model.StatusActive, IsActive: true},
			{Name: "Vaccination", ID: "2", Categories: []string{"Health"}, Status: model.StatusActive, IsActive: true},
		},
		Categories: []string{"Tax", "Health"},
	}
}

func TestSession_TransformKeepsLastGoodResult(t *testing.T) {
	sess := New()
	sess.SetCatalog(testCatalog())

	good, err := sess.Transform(`= project(records, ['name'])`, schema.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(good) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(good))
	}

	// A failing schema must not discard the previous result.
	_, err = sess.Transform(`bad: "= nope(name)"`, schema.Options{})
	var eerr *engine.EvaluationError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}

	last := sess.LastResult()
	if len(last) != 2 {
		t.Fatalf("last good result lost: got %d rows", len(last))
	}
	name, _ := last[0].Get("name")
	if name != "Tax Refund" {
		t.Errorf("stale result corrupted: %v", name)
	}

	// The catalog itself is also untouched.
	if len(sess.Catalog().Services) != 2 {
		t.Error("catalog mutated by failed transform")
	}
}

func TestSession_EmptyFilteredSetIsValidation(t *testing.T) {
	sess := New()
	sess.SetCatalog(testCatalog())
	sess.SetCriteria(engine.Criteria{Search: "no such service"})

	_, err := sess.Transform(`= project(records, ['name'])`, schema.Options{})
	var verr *engine.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSession_ProjectValidation(t *testing.T) {
	sess := New()
	sess.SetCatalog(testCatalog())

	_, err := sess.Project(nil)
	var verr *engine.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for empty keys, got %v", err)
	}

	rows, err := sess.Project([]string{"id", "name"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestSession_FilteredRespectsCriteria(t *testing.T) {
	sess := New()
	sess.SetCatalog(testCatalog())
	sess.SetCriteria(engine.Criteria{Categories: []string{"Health"}})

	got := sess.Filtered()
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("expected record 2, got %v", got)
	}
}

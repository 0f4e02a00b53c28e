package model

import "testing"

func TestParseCatalog_Envelope(t *testing.T) {
	data := []byte(`{
		"services": [
			{"name": "Tax Refund", "id": "s1", "categories": ["Tax"], "status": "Active", "isActive": true, "institutionId": "i1"}
		],
		"categories": ["Tax", "Health"]
	}`)

	cat, err := ParseCatalog(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Services) != 1 {
		t.Fatalf("expected 1 service, got %d", len(cat.Services))
	}
	if cat.Services[0].Name != "Tax Refund" {
		t.Errorf("expected name Tax Refund, got %q", cat.Services[0].Name)
	}
	if len(cat.Categories) != 2 || cat.Categories[0] != "Tax" {
		t.Errorf("expected declared vocabulary, got %v", cat.Categories)
	}
}

func TestParseCatalog_BareArray(t *testing.T) {
	data := []byte(`[
		{"name": "A", "id": "1", "categories": ["Health", "Tax"]},
		{"name": "B", "id": "2", "categories": ["Tax", "Finance"]}
	]`)

	cat, err := ParseCatalog(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Services) != 2 {
		t.Fatalf("expected 2 services, got %d", len(cat.Services))
	}

	// Vocabulary is derived in first-seen order.
	want := []string{"Health", "Tax", "Finance"}
	if len(cat.Categories) != len(want) {
		t.Fatalf("expected %v, got %v", want, cat.Categories)
	}
	for i, c := range want {
		if cat.Categories[i] != c {
			t.Errorf("category %d: expected %q, got %q", i, c, cat.Categories[i])
		}
	}
}

func TestParseCatalog_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not json", "hello"},
		{"wrong shape", `"just a string"`},
		{"object without services", `{"categories": ["Tax"]}`},
		{"truncated", `{"services": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCatalog([]byte(tt.data)); err == nil {
				t.Fatalf("expected error for %q", tt.data)
			}
		})
	}
}

func TestParseCatalog_StatusFieldsIndependent(t *testing.T) {
	// The feed publishes both status and isActive; they are known to
	// disagree for some records and must both survive verbatim.
	data := []byte(`[{"name": "A", "id": "1", "status": "Inactive", "isActive": true}]`)

	cat, err := ParseCatalog(data)
	if err != nil {
		t.Fatal(err)
	}
	r := cat.Services[0]
	if r.Status != StatusInactive {
		t.Errorf("expected status Inactive, got %q", r.Status)
	}
	if !r.IsActive {
		t.Error("expected isActive true to be preserved")
	}
}

func TestRecord_Field(t *testing.T) {
	r := Record{Name: "A", ID: "1", Categories: []string{"Tax"}, URL: "http://x"}

	for _, name := range FieldNames {
		if _, ok := r.Field(name); !ok {
			t.Errorf("field %q not resolvable", name)
		}
	}
	if _, ok := r.Field("nope"); ok {
		t.Error("unknown field should not resolve")
	}

	v, _ := r.Field("categories")
	cats, ok := v.([]string)
	if !ok || len(cats) != 1 || cats[0] != "Tax" {
		t.Errorf("categories field mismatch: %v", v)
	}
}

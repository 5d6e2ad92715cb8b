package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/example/techtracker/internal/export"
	"github.com/example/techtracker/internal/storage"
	"github.com/example/techtracker/internal/store"
	"github.com/example/techtracker/pkg/models"
)

var importNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func validDocJSON(technologies string) []byte {
	return []byte(`{"version":"2.0","exportedAt":"2026-03-01T12:00:00Z","technologies":` + technologies + `}`)
}

func mustParse(t *testing.T, raw []byte) *Document {
	t.Helper()
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte("{broken")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestValidateNilDocument(t *testing.T) {
	result := Validate(nil)
	if result.IsValid {
		t.Fatal("nil document must be invalid")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "file is empty or contains invalid JSON" {
		t.Errorf("errors = %v", result.Errors)
	}
	if result.Data != nil {
		t.Error("invalid result must not carry data")
	}
}

func TestValidateMissingVersion(t *testing.T) {
	doc := mustParse(t, []byte(`{"technologies":[]}`))
	result := Validate(doc)
	if result.IsValid {
		t.Fatal("document without a version must be invalid")
	}
	found := false
	for _, e := range result.Errors {
		if e == "missing data format version" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing version not reported: %v", result.Errors)
	}
}

func TestValidateEmptyCollection(t *testing.T) {
	doc := mustParse(t, validDocJSON(`[]`))
	result := Validate(doc)
	if !result.IsValid {
		t.Errorf("empty collection with version should be valid, errors: %v", result.Errors)
	}
	if result.Data != doc {
		t.Error("valid result should carry the document")
	}
}

func TestValidateTechnologiesNotArray(t *testing.T) {
	doc := mustParse(t, validDocJSON(`"not-an-array"`))
	result := Validate(doc)
	if result.IsValid {
		t.Fatal("non-array technologies must be invalid")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "missing or invalid technologies array" {
		t.Errorf("errors = %v, want exactly the array error", result.Errors)
	}
}

func TestValidateRecordErrors(t *testing.T) {
	longTitle := strings.Repeat("x", models.MaxTitleLength+1)

	tests := []struct {
		name       string
		record     string
		wantSubstr string
	}{
		{
			"missing id",
			`{"title":"Go","description":"desc"}`,
			"technology #1: missing id",
		},
		{
			"missing title",
			`{"id":1,"description":"desc"}`,
			"technology #1: missing title",
		},
		{
			"missing description",
			`{"id":1,"title":"Go"}`,
			"technology #1: missing description",
		},
		{
			"title too long",
			`{"id":1,"title":"` + longTitle + `","description":"desc"}`,
			"title too long (max 100 characters)",
		},
		{
			"bad deadline",
			`{"id":1,"title":"Go","description":"desc","deadline":"soon"}`,
			`technology "Go": invalid deadline date format`,
		},
		{
			"progress too high",
			`{"id":1,"title":"Go","description":"desc","progress":150}`,
			`technology "Go": progress must be between 0 and 100`,
		},
		{
			"negative progress",
			`{"id":1,"title":"Go","description":"desc","progress":-1}`,
			"progress must be between 0 and 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, validDocJSON(`[`+tt.record+`]`))
			result := Validate(doc)
			if result.IsValid {
				t.Fatal("expected invalid document")
			}
			found := false
			for _, e := range result.Errors {
				if strings.Contains(e, tt.wantSubstr) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not contain %q", result.Errors, tt.wantSubstr)
			}
		})
	}
}

func TestValidateAccumulatesAllErrors(t *testing.T) {
	doc := mustParse(t, validDocJSON(`[{"progress":200},{"id":2,"title":"OK","description":"fine"}]`))
	result := Validate(doc)
	if result.IsValid {
		t.Fatal("expected invalid document")
	}
	// First record: missing id, title, description and out-of-range progress
	if len(result.Errors) != 4 {
		t.Errorf("got %d errors, want 4: %v", len(result.Errors), result.Errors)
	}
}

func TestValidateAcceptsStringIDAndProgress(t *testing.T) {
	doc := mustParse(t, validDocJSON(`[{"id":"abc-123","title":"Go","description":"desc","progress":"75"}]`))
	result := Validate(doc)
	if !result.IsValid {
		t.Errorf("string id and numeric-string progress should pass: %v", result.Errors)
	}
}

func newImportStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(storage.NewMemStorage())
	s.Load()
	return s
}

func TestApplyFillsDefaults(t *testing.T) {
	s := newImportStore(t)
	before := len(s.Items())

	doc := mustParse(t, validDocJSON(`[{"id":7,"title":"GraphQL","description":"query language","status":"weird"}]`))
	summary, err := Apply(doc, s, importNow)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Imported != 1 {
		t.Fatalf("imported = %d, want 1", summary.Imported)
	}

	items := s.Items()
	if len(items) != before+1 {
		t.Fatalf("collection size = %d, want %d", len(items), before+1)
	}
	got := items[len(items)-1]
	if got.Category != "other" {
		t.Errorf("category = %q, want default \"other\"", got.Category)
	}
	if got.Difficulty != "beginner" {
		t.Errorf("difficulty = %q, want default \"beginner\"", got.Difficulty)
	}
	if got.Status != models.StatusNotStarted {
		t.Errorf("unknown status should coerce to not-started, got %q", got.Status)
	}
	if got.Resources == nil {
		t.Error("resources should default to an empty slice")
	}
	if got.OriginalID != "7" {
		t.Errorf("originalId = %q, want \"7\"", got.OriginalID)
	}
	if !got.IsExternal {
		t.Error("imported records must be flagged external")
	}
	if got.ID == 7 {
		t.Error("imported record must get a fresh id, not the inbound one")
	}
	if !got.CreatedAt.Equal(importNow) {
		t.Errorf("missing createdAt should default to now, got %v", got.CreatedAt)
	}
}

func TestApplyRejectsInvalidDocument(t *testing.T) {
	s := newImportStore(t)
	before := len(s.Items())

	doc := mustParse(t, validDocJSON(`[{"id":1,"description":"no title"}]`))
	if _, err := Apply(doc, s, importNow); err == nil {
		t.Fatal("expected error for invalid document")
	}
	if got := len(s.Items()); got != before {
		t.Errorf("store changed on rejected import: %d items, want %d", got, before)
	}
}

func TestApplySummary(t *testing.T) {
	s := newImportStore(t)

	doc := mustParse(t, validDocJSON(`[
		{"id":1,"title":"A","description":"d","status":"completed","progress":50},
		{"id":2,"title":"B","description":"d","deadline":"2026-06-01"},
		{"id":3,"title":"C","description":"d","notes":"remember this"}
	]`))
	summary, err := Apply(doc, s, importNow)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Imported != 3 || summary.Completed != 1 || summary.WithDeadlines != 1 || summary.WithNotes != 1 {
		t.Errorf("summary = %+v, want 3 imported, 1 each of completed/deadlines/notes", summary)
	}

	// Completing on import forces full progress
	for _, tech := range s.Items() {
		if tech.OriginalID == "1" && tech.Progress != 100 {
			t.Errorf("completed import progress = %d, want 100", tech.Progress)
		}
	}
}

func TestExportRoundTrip(t *testing.T) {
	s := newImportStore(t)
	exported := export.BuildDocument(s.Items(), importNow, export.DefaultOptions())
	raw, err := export.MarshalJSON(exported)
	if err != nil {
		t.Fatal(err)
	}

	doc := mustParse(t, raw)
	result := Validate(doc)
	if !result.IsValid {
		t.Fatalf("our own export fails our own validation: %v", result.Errors)
	}

	fresh := newImportStore(t)
	summary, err := Apply(doc, fresh, importNow)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Imported != len(s.Items()) {
		t.Errorf("round trip imported %d of %d items", summary.Imported, len(s.Items()))
	}
}

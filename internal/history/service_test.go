package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestRecordAndListRevisions(t *testing.T) {
	svc := New(t.TempDir())

	first, err := svc.Record("draft-1", json.RawMessage(`{"id":"draft-1","status":"draft"}`), "autosave")
	if err != nil {
		t.Fatalf("first Record failed: %v", err)
	}
	if first.Hash == "" {
		t.Fatal("expected non-empty revision hash")
	}

	second, err := svc.Record("draft-1", json.RawMessage(`{"id":"draft-1","status":"submitted"}`), "submit")
	if err != nil {
		t.Fatalf("second Record failed: %v", err)
	}

	revisions, err := svc.Revisions("draft-1", 10)
	if err != nil {
		t.Fatalf("Revisions failed: %v", err)
	}
	if len(revisions) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(revisions))
	}
	if revisions[0].Hash != second.Hash {
		t.Errorf("expected newest revision first, got %s", revisions[0].Hash)
	}
	if revisions[1].Hash != first.Hash {
		t.Errorf("expected oldest revision last, got %s", revisions[1].Hash)
	}
}

func TestRevisionsLimit(t *testing.T) {
	svc := New(t.TempDir())

	for i := 0; i < 5; i++ {
		doc := json.RawMessage(fmt.Sprintf(`{"id":"draft-1","rev":%d}`, i))
		if _, err := svc.Record("draft-1", doc, "autosave"); err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	revisions, err := svc.Revisions("draft-1", 3)
	if err != nil {
		t.Fatalf("Revisions failed: %v", err)
	}
	if len(revisions) != 3 {
		t.Fatalf("expected 3 revisions, got %d", len(revisions))
	}
}

func TestDocAtRevision(t *testing.T) {
	svc := New(t.TempDir())

	old := json.RawMessage(`{"id":"draft-1","city":"Vilnius"}`)
	rev, err := svc.Record("draft-1", old, "autosave")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := svc.Record("draft-1", json.RawMessage(`{"id":"draft-1","city":"Kaunas"}`), "autosave"); err != nil {
		t.Fatalf("second Record failed: %v", err)
	}

	doc, err := svc.DocAt("draft-1", rev.Hash)
	if err != nil {
		t.Fatalf("DocAt failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(doc, &decoded); err != nil {
		t.Fatalf("decode historical doc: %v", err)
	}
	if decoded["city"] != "Vilnius" {
		t.Errorf("expected historical city Vilnius, got %v", decoded["city"])
	}
}

func TestRevisionsNoHistory(t *testing.T) {
	svc := New(t.TempDir())
	if _, err := svc.Revisions("unknown", 10); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}
	if _, err := svc.DocAt("unknown", "abc1234"); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}
}

func TestDraftsIsolated(t *testing.T) {
	svc := New(t.TempDir())

	if _, err := svc.Record("draft-a", json.RawMessage(`{"id":"draft-a"}`), "autosave"); err != nil {
		t.Fatalf("Record draft-a failed: %v", err)
	}
	if _, err := svc.Record("draft-b", json.RawMessage(`{"id":"draft-b"}`), "autosave"); err != nil {
		t.Fatalf("Record draft-b failed: %v", err)
	}

	a, err := svc.Revisions("draft-a", 0)
	if err != nil {
		t.Fatalf("Revisions draft-a failed: %v", err)
	}
	b, err := svc.Revisions("draft-b", 0)
	if err != nil {
		t.Fatalf("Revisions draft-b failed: %v", err)
	}
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected isolated histories, got %d and %d", len(a), len(b))
	}
}

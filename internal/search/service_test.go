package search

import (
	"context"
	"errors"
	"testing"

	"hearth/api/internal/store"

	"go.uber.org/zap"
)

type fakeFallback struct {
	projects []store.Project
	err      error
}

func (f *fakeFallback) SearchProjects(_ context.Context, query string) ([]store.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.projects, nil
}

func (f *fakeFallback) ListProjects(_ context.Context) ([]store.Project, error) {
	return f.projects, f.err
}

func TestSearchFallsBackToStore(t *testing.T) {
	fallback := &fakeFallback{projects: []store.Project{
		{ID: "prj_1", DraftID: "d1", Title: "Apartment in Vilnius", City: "Vilnius", PropertyType: "apartment", Styles: []string{"scandinavian"}},
	}}
	svc := NewService(nil, fallback, zap.NewNop())

	resp := svc.Search(context.Background(), Query{Text: "vilnius"})
	if resp.Total != 1 {
		t.Fatalf("expected 1 result, got %d", resp.Total)
	}
	if resp.Results[0].ID != "prj_1" {
		t.Errorf("unexpected result: %+v", resp.Results[0])
	}
	if resp.Query != "vilnius" {
		t.Errorf("expected query echoed back, got %q", resp.Query)
	}
}

func TestSearchFallbackErrorYieldsEmptyResponse(t *testing.T) {
	svc := NewService(nil, &fakeFallback{err: errors.New("store down")}, zap.NewNop())

	resp := svc.Search(context.Background(), Query{Text: "anything"})
	if resp.Results == nil {
		t.Fatal("results must be non-nil for JSON encoding")
	}
	if len(resp.Results) != 0 || resp.Total != 0 {
		t.Fatalf("expected empty response, got %+v", resp)
	}
}

func TestRecordFromProject(t *testing.T) {
	p := store.Project{
		ID: "prj_2", DraftID: "d2", Title: "House in Kaunas", City: "Kaunas",
		PropertyType: "house", Styles: []string{"industrial"}, Moods: []string{"bold_dramatic"},
		Palette: "monochrome",
	}
	record := RecordFromProject(p)
	if record.ID != "prj_2" || record.DraftID != "d2" || record.Palette != "monochrome" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if len(record.Styles) != 1 || record.Styles[0] != "industrial" {
		t.Fatalf("styles not carried over: %+v", record.Styles)
	}
}

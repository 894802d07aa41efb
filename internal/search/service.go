package search

import (
	"context"

	"hearth/api/internal/store"

	"go.uber.org/zap"
)

// Fallback is the store-backed substring search used when Meilisearch is
// down or not configured.
type Fallback interface {
	SearchProjects(ctx context.Context, query string) ([]store.Project, error)
	ListProjects(ctx context.Context) ([]store.Project, error)
}

// Service is the facade that tries Meilisearch first and falls back to the
// project store.
type Service struct {
	meili    *Meili
	fallback Fallback
	log      *zap.Logger
}

// NewService creates a search service. meili may be nil if Meilisearch is
// not configured.
func NewService(meili *Meili, fallback Fallback, log *zap.Logger) *Service {
	return &Service{meili: meili, fallback: fallback, log: log}
}

// Search tries Meilisearch if healthy, otherwise the store fallback.
func (s *Service) Search(ctx context.Context, q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		s.log.Warn("meilisearch error, falling back to store", zap.Error(err))
	}

	projects, err := s.fallback.SearchProjects(ctx, q.Text)
	if err != nil {
		s.log.Error("fallback project search failed", zap.Error(err))
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	results := make([]Result, 0, len(projects))
	for _, p := range projects {
		results = append(results, projectToResult(p))
	}
	return Response{Results: results, Total: len(results), Query: q.Text}
}

// IndexProject pushes a submitted project to Meilisearch, fire-and-forget.
func (s *Service) IndexProject(record ProjectRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexProject(record); err != nil {
			s.log.Warn("index project failed", zap.String("id", record.ID), zap.Error(err))
		}
	}()
}

// ReindexAll reads every project from the store and pushes them to
// Meilisearch. Called at startup when Meilisearch is healthy.
func (s *Service) ReindexAll(ctx context.Context) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	projects, err := s.fallback.ListProjects(ctx)
	if err != nil {
		s.log.Warn("reindex load failed", zap.Error(err))
		return
	}
	records := make([]ProjectRecord, 0, len(projects))
	for _, p := range projects {
		records = append(records, RecordFromProject(p))
	}
	if err := s.meili.IndexProjects(records); err != nil {
		s.log.Warn("reindex projects failed", zap.Error(err))
	}
}

// RecordFromProject maps a stored project onto its indexed shape.
func RecordFromProject(p store.Project) ProjectRecord {
	return ProjectRecord{
		ID:           p.ID,
		DraftID:      p.DraftID,
		Title:        p.Title,
		City:         p.City,
		PropertyType: p.PropertyType,
		Styles:       p.Styles,
		Moods:        p.Moods,
		Palette:      p.Palette,
	}
}

func projectToResult(p store.Project) Result {
	return Result{
		ID:           p.ID,
		DraftID:      p.DraftID,
		Title:        p.Title,
		City:         p.City,
		PropertyType: p.PropertyType,
		Styles:       p.Styles,
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}

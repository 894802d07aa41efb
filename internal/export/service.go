package export

import (
	"context"
	"encoding/json"
	"fmt"

	"hearth/api/internal/intake"
	"hearth/api/internal/store"
)

// ProjectStore loads a submitted project and its full draft document.
type ProjectStore interface {
	GetProject(ctx context.Context, id string) (store.Project, []byte, error)
}

// Service renders submitted briefs as PDF.
type Service struct {
	store ProjectStore
}

// NewService creates a new export service
func NewService(store ProjectStore) *Service {
	return &Service{store: store}
}

// ExportBrief renders the brief for a project (or draft) ID as a PDF.
func (s *Service) ExportBrief(ctx context.Context, projectID string) (*Result, error) {
	project, doc, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("decode project doc: %w", err)
	}
	draft := intake.Normalize(raw)

	html, err := RenderBriefHTML(BuildTemplateData(project, draft))
	if err != nil {
		return nil, fmt.Errorf("render brief template: %w", err)
	}

	return exportPDF(ctx, html, project.Title)
}

// BuildTemplateData flattens a project and its draft into the template shape.
func BuildTemplateData(project store.Project, draft intake.Draft) TemplateData {
	data := TemplateData{
		Title:          project.Title,
		City:           project.City,
		PropertyType:   project.PropertyType,
		TotalM2:        project.TotalM2,
		SubmittedAt:    project.SubmittedAt,
		Styles:         draft.Style.SelectedStyles,
		Moods:          draft.Mood.SelectedMoods,
		Palette:        draft.Color.Palette,
		WallColor:      draft.Color.WallColor,
		Preset:         draft.Lighting.Preset,
		QualityTier:    draft.Furniture.QualityTier,
		BudgetMin:      draft.Budget.MinTotal,
		BudgetMax:      draft.Budget.MaxTotal,
		Contradictions: project.Contradictions,
	}

	density := make(map[string]string, len(draft.RoomPreferences))
	for _, pref := range draft.RoomPreferences {
		density[pref.RoomType] = pref.DecorDensity
	}
	for _, m := range draft.Floorplan.RoomMeasurements {
		data.Rooms = append(data.Rooms, RoomRow{
			Room:         m.RoomType,
			WidthMM:      m.WidthMM,
			LengthMM:     m.LengthMM,
			CeilingMM:    m.CeilingMM,
			Confidence:   m.Confidence,
			UsedDefaults: m.UsedDefaults,
			DecorDensity: density[m.RoomType],
		})
	}

	data.Allocation = weightRows(draft.Budget.Allocation, intake.AllocationKeys())
	data.Tradeoffs = weightRows(draft.Tradeoffs, intake.TradeoffKeys())
	return data
}

func weightRows(weights map[string]int, keys []string) []WeightRow {
	rows := make([]WeightRow, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, WeightRow{Label: labelize(key), Weight: weights[key]})
	}
	return rows
}

func labelize(id string) string {
	out := []rune{}
	upper := true
	for _, r := range id {
		if r == '_' {
			out = append(out, ' ')
			upper = true
			continue
		}
		if upper {
			if r >= 'a' && r <= 'z' {
				r = r - 'a' + 'A'
			}
			upper = false
		}
		out = append(out, r)
	}
	return string(out)
}

package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned by both backends when a draft or project does not
// exist, so callers never have to know which backend is behind the interface.
var ErrNotFound = errors.New("store: not found")

// Project is the denormalized summary written at submission time. The full
// draft document rides along as raw JSON for export and detail views.
type Project struct {
	ID             string    `json:"id"`
	DraftID        string    `json:"draftId"`
	Title          string    `json:"title"`
	City           string    `json:"city"`
	PropertyType   string    `json:"propertyType"`
	TotalM2        float64   `json:"totalM2"`
	Styles         []string  `json:"styles"`
	Moods          []string  `json:"moods"`
	Palette        string    `json:"palette"`
	BudgetMin      float64   `json:"budgetMin"`
	BudgetMax      float64   `json:"budgetMax"`
	Rooms          []string  `json:"rooms"`
	Contradictions []string  `json:"contradictions"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// Lead is a captured price-reveal email. Source distinguishes the reveal
// gate from future capture points.
type Lead struct {
	Email     string    `json:"email"`
	DraftID   string    `json:"draftId"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

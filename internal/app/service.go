package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"hearth/api/internal/assets"
	"hearth/api/internal/auth"
	"hearth/api/internal/email"
	"hearth/api/internal/export"
	"hearth/api/internal/history"
	"hearth/api/internal/intake"
	"hearth/api/internal/promo"
	"hearth/api/internal/search"
	"hearth/api/internal/store"
	"hearth/api/internal/util"
)

// PriceFrom is the concept package starting price shown after the email gate.
const PriceFrom = 490

// DraftStore is the persistence surface the service needs. PostgresStore
// and FileStore both satisfy it.
type DraftStore interface {
	SaveDraft(ctx context.Context, id, status string, doc []byte) error
	GetDraft(ctx context.Context, id string) ([]byte, error)
	SaveProject(ctx context.Context, project store.Project, doc []byte) error
	GetProject(ctx context.Context, id string) (store.Project, []byte, error)
	ListProjects(ctx context.Context) ([]store.Project, error)
	SearchProjects(ctx context.Context, query string) ([]store.Project, error)
	SaveLead(ctx context.Context, lead store.Lead) error
	ListLeads(ctx context.Context) ([]store.Lead, error)
	Ping(ctx context.Context) error
}

// PromoStore holds the Redis-backed landing page counters.
type PromoStore interface {
	Slots(ctx context.Context) (int, error)
	ClaimSlot(ctx context.Context) (int, error)
	RecordEvent(ctx context.Context, name string) error
	EventCounts(ctx context.Context) (map[string]int64, error)
	Ping(ctx context.Context) error
}

type Deps struct {
	Store   DraftStore
	Promo   PromoStore
	Auth    *auth.Service
	History *history.Service
	Search  *search.Service
	Export  *export.Service
	Assets  *assets.Service
	Email   *email.Service
	Log     *zap.Logger
}

type Service struct {
	store   DraftStore
	promo   PromoStore
	auth    *auth.Service
	history *history.Service
	search  *search.Service
	export  *export.Service
	assets  *assets.Service
	email   *email.Service
	log     *zap.Logger
	now     func() time.Time
}

func New(deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:   deps.Store,
		promo:   deps.Promo,
		auth:    deps.Auth,
		history: deps.History,
		search:  deps.Search,
		export:  deps.Export,
		assets:  deps.Assets,
		email:   deps.Email,
		log:     log,
		now:     time.Now,
	}
}

// StartIntake creates a fresh normalized draft and persists it.
func (s *Service) StartIntake(ctx context.Context) (intake.Draft, error) {
	draft := intake.Normalize(nil)
	draft.ID = util.NewDraftID()
	if err := s.persistDraft(ctx, draft); err != nil {
		return intake.Draft{}, err
	}
	s.recordHistory(draft, "intake started")
	s.countEvent(ctx, "intake_started")
	return draft, nil
}

// GetIntake returns the draft, plus the project summary once submitted.
func (s *Service) GetIntake(ctx context.Context, id string) (map[string]any, error) {
	draft, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{"draft": draft}
	if draft.Status == intake.StatusSubmitted {
		if project, _, err := s.store.GetProject(ctx, id); err == nil {
			payload["project"] = project
		}
	}
	return payload, nil
}

// PatchDraft merges an autosave patch into the stored draft.
func (s *Service) PatchDraft(ctx context.Context, id string, patch map[string]any) (intake.Draft, error) {
	current, err := s.loadDraft(ctx, id)
	if err != nil {
		return intake.Draft{}, err
	}
	if current.Status == intake.StatusSubmitted {
		return intake.Draft{}, domainError(http.StatusConflict, "ALREADY_SUBMITTED", "Submitted drafts are read-only", nil)
	}
	merged := intake.Merge(current, patch, s.now())
	if err := s.persistDraft(ctx, merged); err != nil {
		return intake.Draft{}, err
	}
	s.recordHistory(merged, "autosave")
	return merged, nil
}

// Submit runs the strict gate: validation failures reject outright,
// unacknowledged contradictions park the draft until the client confirms.
// Nothing is persisted unless the submission goes through.
func (s *Service) Submit(ctx context.Context, id string, confirmContradictions bool) (map[string]any, error) {
	draft, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status == intake.StatusSubmitted {
		payload := map[string]any{"draft": draft}
		if project, _, err := s.store.GetProject(ctx, id); err == nil {
			payload["project"] = project
		}
		return payload, nil
	}

	if err := intake.Validate(draft); err != nil {
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_FAILED",
				"Draft is not ready to submit", map[string]any{"violations": verr.Violations})
		}
		return nil, err
	}

	warnings := intake.DetectContradictions(draft)
	if len(warnings) > 0 && !confirmContradictions {
		return nil, domainError(http.StatusConflict, "NEEDS_CONFIRMATION",
			"Confirm the flagged tensions to submit", map[string]any{"warnings": warnings})
	}

	now := s.now().UTC()
	draft.Status = intake.StatusSubmitted
	draft.ContradictionsConfirmed = len(warnings) > 0
	draft.UpdatedAt = now

	project := store.Project{
		ID:             util.NewID("prj"),
		DraftID:        draft.ID,
		Title:          projectTitle(draft),
		City:           draft.Basics.City,
		PropertyType:   draft.Basics.PropertyType,
		TotalM2:        draft.Basics.TotalM2,
		Styles:         draft.Style.SelectedStyles,
		Moods:          draft.Mood.SelectedMoods,
		Palette:        draft.Color.Palette,
		BudgetMin:      draft.Budget.MinTotal,
		BudgetMax:      draft.Budget.MaxTotal,
		Rooms:          draft.Basics.RoomsInScope,
		Contradictions: warnings,
		SubmittedAt:    now,
	}

	doc, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	if err := s.store.SaveDraft(ctx, draft.ID, draft.Status, doc); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	if err := s.store.SaveProject(ctx, project, doc); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}

	if s.promo != nil {
		if left, err := s.promo.ClaimSlot(ctx); err != nil {
			s.log.Warn("claim slot failed", zap.Error(err))
		} else {
			s.log.Info("slot claimed", zap.Int("slotsLeft", left))
		}
	}
	if s.search != nil {
		s.search.IndexProject(search.RecordFromProject(project))
	}
	s.notifySubmission(project, warnings)
	s.recordHistory(draft, "submitted")
	s.countEvent(ctx, "intake_submitted")

	return map[string]any{"draft": draft, "project": project}, nil
}

// UploadAsset stores the file and attaches its record to the draft.
func (s *Service) UploadAsset(ctx context.Context, id, kind, roomType, mimeType string, size int64, r io.Reader) (map[string]any, error) {
	if s.assets == nil {
		return nil, domainError(http.StatusServiceUnavailable, "UPLOADS_UNAVAILABLE", "Uploads are not configured", nil)
	}
	draft, err := s.loadDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status == intake.StatusSubmitted {
		return nil, domainError(http.StatusConflict, "ALREADY_SUBMITTED", "Submitted drafts are read-only", nil)
	}

	asset, err := s.assets.Upload(ctx, id, kind, roomType, mimeType, size, r)
	if err != nil {
		return nil, err
	}

	draft.Assets = append(draft.Assets, asset)
	switch kind {
	case intake.AssetPlan:
		draft.Floorplan.HasPlan = true
		draft.Floorplan.PlanAssetIDs = append(draft.Floorplan.PlanAssetIDs, asset.ID)
	case intake.AssetInspiration:
		draft.Inspirations.AssetIDs = append(draft.Inspirations.AssetIDs, asset.ID)
	case intake.AssetAvoid:
		draft.Inspirations.AvoidAssetIDs = append(draft.Inspirations.AvoidAssetIDs, asset.ID)
	}
	draft.UpdatedAt = s.now().UTC()
	if err := s.persistDraft(ctx, draft); err != nil {
		return nil, err
	}
	s.recordHistory(draft, "asset uploaded")

	return map[string]any{"asset": asset, "draft": draft}, nil
}

// DraftHistory lists autosave revisions, newest first.
func (s *Service) DraftHistory(ctx context.Context, id string, limit int) (map[string]any, error) {
	if _, err := s.loadDraft(ctx, id); err != nil {
		return nil, err
	}
	revisions := []history.Revision{}
	if s.history != nil {
		revs, err := s.history.Revisions(id, limit)
		if err != nil && !errors.Is(err, history.ErrNoHistory) {
			return nil, fmt.Errorf("list revisions: %w", err)
		}
		if revs != nil {
			revisions = revs
		}
	}
	return map[string]any{"revisions": revisions}, nil
}

// DraftRevision returns the draft document as it was at an autosave commit.
func (s *Service) DraftRevision(ctx context.Context, id, hash string) (map[string]any, error) {
	if _, err := s.loadDraft(ctx, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Revision not found", nil)
	}
	doc, err := s.history.DocAt(id, hash)
	if err != nil {
		if errors.Is(err, history.ErrNoHistory) || errors.Is(err, history.ErrUnknownRevision) {
			return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Revision not found", nil)
		}
		return nil, fmt.Errorf("load revision: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("decode revision: %w", err)
	}
	draft := intake.Normalize(raw)
	draft.ID = id
	return map[string]any{"hash": hash, "draft": draft}, nil
}

func (s *Service) PromoSlots(ctx context.Context) (map[string]any, error) {
	if s.promo == nil {
		return nil, domainError(http.StatusServiceUnavailable, "PROMO_UNAVAILABLE", "Promo counters are not configured", nil)
	}
	slots, err := s.promo.Slots(ctx)
	if err != nil {
		return nil, fmt.Errorf("read slots: %w", err)
	}
	return map[string]any{"slotsLeft": slots}, nil
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// RevealPrice captures the lead email and returns the package price.
func (s *Service) RevealPrice(ctx context.Context, emailAddr, draftID string) (map[string]any, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if !emailPattern.MatchString(emailAddr) {
		return nil, domainError(http.StatusUnprocessableEntity, "INVALID_EMAIL", "A valid email address is required", nil)
	}

	if err := s.store.SaveLead(ctx, store.Lead{
		Email:     emailAddr,
		DraftID:   draftID,
		Source:    "price_reveal",
		CreatedAt: s.now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("save lead: %w", err)
	}
	s.countEvent(ctx, "price_reveal")

	slotsLeft := 0
	if s.promo != nil {
		if slots, err := s.promo.Slots(ctx); err == nil {
			slotsLeft = slots
		}
	}
	if s.email != nil && s.email.IsConfigured() {
		go func(to string, slots int64) {
			if err := s.email.SendPriceReveal(to, slots); err != nil {
				s.log.Warn("price reveal email failed", zap.Error(err))
			}
		}(emailAddr, int64(slotsLeft))
	}

	return map[string]any{"priceFrom": PriceFrom, "currency": "EUR", "slotsLeft": slotsLeft}, nil
}

// CountEvent increments a named analytics counter.
func (s *Service) CountEvent(ctx context.Context, name string) error {
	if s.promo == nil {
		return domainError(http.StatusServiceUnavailable, "PROMO_UNAVAILABLE", "Promo counters are not configured", nil)
	}
	if err := s.promo.RecordEvent(ctx, name); err != nil {
		if errors.Is(err, promo.ErrInvalidEventName) {
			return domainError(http.StatusUnprocessableEntity, "INVALID_EVENT", "Event name not accepted", nil)
		}
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

func (s *Service) AdminLogin(ctx context.Context, password string) (string, error) {
	if s.auth == nil || !s.auth.Enabled() {
		return "", domainError(http.StatusServiceUnavailable, "ADMIN_DISABLED", "Admin login is not configured", nil)
	}
	token, err := s.auth.Login(ctx, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return "", domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid password", nil)
		}
		return "", fmt.Errorf("admin login: %w", err)
	}
	s.countEvent(ctx, "admin_login")
	return token, nil
}

func (s *Service) AdminAuthenticate(ctx context.Context, token string) (bool, error) {
	if s.auth == nil {
		return false, nil
	}
	return s.auth.Authenticate(ctx, token)
}

func (s *Service) AdminLogout(ctx context.Context, token string) error {
	if s.auth == nil {
		return nil
	}
	return s.auth.Logout(ctx, token)
}

func (s *Service) AdminProjects(ctx context.Context) (map[string]any, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if projects == nil {
		projects = []store.Project{}
	}
	return map[string]any{"projects": projects}, nil
}

func (s *Service) AdminSearch(ctx context.Context, query string, limit, offset int) (map[string]any, error) {
	if s.search == nil {
		return nil, domainError(http.StatusServiceUnavailable, "SEARCH_UNAVAILABLE", "Search is not configured", nil)
	}
	resp := s.search.Search(ctx, search.Query{Text: query, Limit: limit, Offset: offset})
	return map[string]any{"results": resp.Results, "total": resp.Total, "query": resp.Query}, nil
}

func (s *Service) AdminEvents(ctx context.Context) (map[string]any, error) {
	if s.promo == nil {
		return nil, domainError(http.StatusServiceUnavailable, "PROMO_UNAVAILABLE", "Promo counters are not configured", nil)
	}
	counts, err := s.promo.EventCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return map[string]any{"events": counts}, nil
}

func (s *Service) AdminLeads(ctx context.Context) (map[string]any, error) {
	leads, err := s.store.ListLeads(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	if leads == nil {
		leads = []store.Lead{}
	}
	return map[string]any{"leads": leads}, nil
}

// ExportProject renders the submitted brief as a PDF.
func (s *Service) ExportProject(ctx context.Context, projectID string) (*export.Result, error) {
	if s.export == nil {
		return nil, domainError(http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "PDF export is not configured", nil)
	}
	return s.export.ExportBrief(ctx, projectID)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) PingPromo(ctx context.Context) error {
	if s.promo == nil {
		return nil
	}
	return s.promo.Ping(ctx)
}

func (s *Service) loadDraft(ctx context.Context, id string) (intake.Draft, error) {
	doc, err := s.store.GetDraft(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return intake.Draft{}, domainError(http.StatusNotFound, "NOT_FOUND", "Draft not found", nil)
		}
		return intake.Draft{}, fmt.Errorf("load draft %s: %w", id, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(doc, &raw); err != nil {
		return intake.Draft{}, fmt.Errorf("decode draft %s: %w", id, err)
	}
	draft := intake.Normalize(raw)
	draft.ID = id
	return draft, nil
}

func (s *Service) persistDraft(ctx context.Context, draft intake.Draft) error {
	doc, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.store.SaveDraft(ctx, draft.ID, draft.Status, doc); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// recordHistory is best-effort: a history failure never fails the request.
func (s *Service) recordHistory(draft intake.Draft, message string) {
	if s.history == nil {
		return
	}
	doc, err := json.Marshal(draft)
	if err != nil {
		return
	}
	if _, err := s.history.Record(draft.ID, doc, message); err != nil {
		s.log.Warn("record history failed", zap.String("draftId", draft.ID), zap.Error(err))
	}
}

func (s *Service) countEvent(ctx context.Context, name string) {
	if s.promo == nil {
		return
	}
	if err := s.promo.RecordEvent(ctx, name); err != nil {
		s.log.Warn("record event failed", zap.String("event", name), zap.Error(err))
	}
}

func (s *Service) notifySubmission(project store.Project, warnings []string) {
	if s.email == nil || !s.email.IsConfigured() {
		return
	}
	go func() {
		err := s.email.SendSubmissionNotification(email.SubmissionData{
			Title:        project.Title,
			City:         project.City,
			PropertyType: project.PropertyType,
			TotalM2:      project.TotalM2,
			BudgetMin:    project.BudgetMin,
			BudgetMax:    project.BudgetMax,
			Warnings:     warnings,
		})
		if err != nil {
			s.log.Warn("submission email failed", zap.String("projectId", project.ID), zap.Error(err))
		}
	}()
}

func projectTitle(d intake.Draft) string {
	label := strings.ToUpper(d.Basics.PropertyType[:1]) + strings.ReplaceAll(d.Basics.PropertyType[1:], "_", " ")
	if d.Basics.City == "" {
		return label
	}
	return label + " in " + d.Basics.City
}

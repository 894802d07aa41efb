package app

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"hearth/api/internal/auth"
	"hearth/api/internal/history"
	"hearth/api/internal/promo"
	"hearth/api/internal/search"
	"hearth/api/internal/store"
)

const testAdminPassword = "studio-secret"

type fakeStore struct {
	drafts   map[string][]byte
	statuses map[string]string
	projects map[string]store.Project
	docs     map[string][]byte
	leads    []store.Lead
	pingErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		drafts:   map[string][]byte{},
		statuses: map[string]string{},
		projects: map[string]store.Project{},
		docs:     map[string][]byte{},
	}
}

func (f *fakeStore) SaveDraft(_ context.Context, id, status string, doc []byte) error {
	f.drafts[id] = append([]byte(nil), doc...)
	f.statuses[id] = status
	return nil
}

func (f *fakeStore) GetDraft(_ context.Context, id string) ([]byte, error) {
	doc, ok := f.drafts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return doc, nil
}

func (f *fakeStore) SaveProject(_ context.Context, project store.Project, doc []byte) error {
	f.projects[project.DraftID] = project
	f.docs[project.DraftID] = append([]byte(nil), doc...)
	return nil
}

func (f *fakeStore) GetProject(_ context.Context, id string) (store.Project, []byte, error) {
	if project, ok := f.projects[id]; ok {
		return project, f.docs[id], nil
	}
	for draftID, project := range f.projects {
		if project.ID == id {
			return project, f.docs[draftID], nil
		}
	}
	return store.Project{}, nil, store.ErrNotFound
}

func (f *fakeStore) ListProjects(_ context.Context) ([]store.Project, error) {
	out := make([]store.Project, 0, len(f.projects))
	for _, project := range f.projects {
		out = append(out, project)
	}
	return out, nil
}

func (f *fakeStore) SearchProjects(_ context.Context, query string) ([]store.Project, error) {
	query = strings.ToLower(query)
	var out []store.Project
	for _, project := range f.projects {
		if strings.Contains(strings.ToLower(project.Title), query) ||
			strings.Contains(strings.ToLower(project.City), query) {
			out = append(out, project)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveLead(_ context.Context, lead store.Lead) error {
	f.leads = append(f.leads, lead)
	return nil
}

func (f *fakeStore) ListLeads(_ context.Context) ([]store.Lead, error) {
	return f.leads, nil
}

func (f *fakeStore) Ping(_ context.Context) error {
	return f.pingErr
}

var testEventName = regexp.MustCompile(`^[a-z][a-z0-9_]{0,47}$`)

type fakePromo struct {
	slots  int
	claims int
	events map[string]int64
}

func newFakePromo(slots int) *fakePromo {
	return &fakePromo{slots: slots, events: map[string]int64{}}
}

func (f *fakePromo) Slots(_ context.Context) (int, error) {
	return f.slots, nil
}

func (f *fakePromo) ClaimSlot(_ context.Context) (int, error) {
	f.claims++
	if f.slots > 0 {
		f.slots--
	}
	return f.slots, nil
}

func (f *fakePromo) RecordEvent(_ context.Context, name string) error {
	if !testEventName.MatchString(name) {
		return fmt.Errorf("%w: %q", promo.ErrInvalidEventName, name)
	}
	f.events[name]++
	return nil
}

func (f *fakePromo) EventCounts(_ context.Context) (map[string]int64, error) {
	return f.events, nil
}

func (f *fakePromo) Ping(_ context.Context) error {
	return nil
}

type fakeTokenStore struct {
	tokens map[string]bool
}

func (f *fakeTokenStore) SaveAdminToken(_ context.Context, token string) error {
	f.tokens[token] = true
	return nil
}

func (f *fakeTokenStore) CheckAdminToken(_ context.Context, token string) (bool, error) {
	return f.tokens[token], nil
}

func (f *fakeTokenStore) RevokeAdminToken(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *fakePromo) {
	t.Helper()
	st := newFakeStore()
	promoStore := newFakePromo(5)

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	authSvc := auth.NewService(string(hash), &fakeTokenStore{tokens: map[string]bool{}})

	svc := New(Deps{
		Store:   st,
		Promo:   promoStore,
		Auth:    authSvc,
		History: history.New(t.TempDir()),
		Search:  search.NewService(nil, st, zap.NewNop()),
		Log:     zap.NewNop(),
	})
	return svc, st, promoStore
}

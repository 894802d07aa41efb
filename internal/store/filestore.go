package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileStore is the zero-dependency backend for local development: one JSON
// file per draft and project under a data directory. Writes are guarded by
// a single mutex; last write wins, matching the Postgres backend.
type FileStore struct {
	root string
	mu   sync.Mutex
}

type projectFile struct {
	Project projectJSON     `json:"project"`
	Doc     json.RawMessage `json:"doc"`
}

type projectJSON struct {
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

type leadJSON struct {
	Email     string    `json:"email"`
	DraftID   string    `json:"draftId"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewFileStore(root string) (*FileStore, error) {
	for _, dir := range []string{root, filepath.Join(root, "drafts"), filepath.Join(root, "projects")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir %s: %w", dir, err)
		}
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) SaveDraft(_ context.Context, id, _ string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.draftPath(id), doc)
}

func (s *FileStore) GetDraft(_ context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := os.ReadFile(s.draftPath(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	return doc, nil
}

func (s *FileStore) SaveProject(_ context.Context, project Project, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.MarshalIndent(projectFile{Project: toProjectJSON(project), Doc: doc}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	return writeFileAtomic(s.projectPath(project.DraftID), raw)
}

func (s *FileStore) GetProject(_ context.Context, id string) (Project, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Projects are filed by draft ID; fall back to scanning for project ID.
	file, err := s.readProjectFile(s.projectPath(id))
	if err == nil {
		return fromProjectJSON(file.Project), file.Doc, nil
	}
	files, listErr := s.projectFiles()
	if listErr != nil {
		return Project{}, nil, listErr
	}
	for _, path := range files {
		file, err := s.readProjectFile(path)
		if err != nil {
			return Project{}, nil, err
		}
		if file.Project.ID == id {
			return fromProjectJSON(file.Project), file.Doc, nil
		}
	}
	return Project{}, nil, ErrNotFound
}

func (s *FileStore) ListProjects(_ context.Context) ([]Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := s.projectFiles()
	if err != nil {
		return nil, err
	}
	items := make([]Project, 0, len(files))
	for _, path := range files {
		file, err := s.readProjectFile(path)
		if err != nil {
			return nil, err
		}
		items = append(items, fromProjectJSON(file.Project))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].SubmittedAt.After(items[j].SubmittedAt)
	})
	return items, nil
}

func (s *FileStore) SearchProjects(ctx context.Context, query string) ([]Project, error) {
	items, err := s.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	matched := make([]Project, 0)
	for _, item := range items {
		haystack := strings.ToLower(strings.Join(append([]string{
			item.Title, item.City, item.PropertyType,
		}, item.Styles...), " "))
		if strings.Contains(haystack, needle) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func (s *FileStore) SaveLead(_ context.Context, lead Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	leads, err := s.readLeads()
	if err != nil {
		return err
	}
	for _, existing := range leads {
		if existing.Email == lead.Email && existing.Source == lead.Source {
			return nil
		}
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	leads = append(leads, leadJSON(lead))
	raw, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal leads: %w", err)
	}
	return writeFileAtomic(s.leadsPath(), raw)
}

func (s *FileStore) ListLeads(_ context.Context) ([]Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	leads, err := s.readLeads()
	if err != nil {
		return nil, err
	}
	items := make([]Lead, 0, len(leads))
	for i := len(leads) - 1; i >= 0; i-- {
		items = append(items, Lead(leads[i]))
	}
	return items, nil
}

func (s *FileStore) Ping(_ context.Context) error {
	_, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("data dir unavailable: %w", err)
	}
	return nil
}

func (s *FileStore) draftPath(id string) string {
	return filepath.Join(s.root, "drafts", id+".json")
}

func (s *FileStore) projectPath(draftID string) string {
	return filepath.Join(s.root, "projects", draftID+".json")
}

func (s *FileStore) leadsPath() string {
	return filepath.Join(s.root, "leads.json")
}

func (s *FileStore) projectFiles() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "projects"))
	if err != nil {
		return nil, fmt.Errorf("read projects dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(s.root, "projects", entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (s *FileStore) readProjectFile(path string) (projectFile, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return projectFile{}, ErrNotFound
	}
	if err != nil {
		return projectFile{}, fmt.Errorf("read project: %w", err)
	}
	var file projectFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return projectFile{}, fmt.Errorf("decode project %s: %w", filepath.Base(path), err)
	}
	return file, nil
}

func (s *FileStore) readLeads() ([]leadJSON, error) {
	raw, err := os.ReadFile(s.leadsPath())
	if os.IsNotExist(err) {
		return []leadJSON{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read leads: %w", err)
	}
	var leads []leadJSON
	if err := json.Unmarshal(raw, &leads); err != nil {
		return nil, fmt.Errorf("decode leads: %w", err)
	}
	return leads, nil
}

func toProjectJSON(p Project) projectJSON {
	return projectJSON{
		ID: p.ID, DraftID: p.DraftID, Title: p.Title, City: p.City,
		PropertyType: p.PropertyType, TotalM2: p.TotalM2,
		Styles: orEmpty(p.Styles), Moods: orEmpty(p.Moods), Palette: p.Palette,
		BudgetMin: p.BudgetMin, BudgetMax: p.BudgetMax,
		Rooms: orEmpty(p.Rooms), Contradictions: orEmpty(p.Contradictions),
		SubmittedAt: p.SubmittedAt,
	}
}

func fromProjectJSON(p projectJSON) Project {
	return Project{
		ID: p.ID, DraftID: p.DraftID, Title: p.Title, City: p.City,
		PropertyType: p.PropertyType, TotalM2: p.TotalM2,
		Styles: p.Styles, Moods: p.Moods, Palette: p.Palette,
		BudgetMin: p.BudgetMin, BudgetMax: p.BudgetMax,
		Rooms: p.Rooms, Contradictions: p.Contradictions,
		SubmittedAt: p.SubmittedAt,
	}
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

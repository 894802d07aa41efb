// Package history keeps an autosave trail per draft: a tiny git repository
// whose single tracked file, draft.json, is committed on every save.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const draftFile = "draft.json"

// Revision is one autosave commit.
type Revision struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrNoHistory is returned when a draft has no repository yet.
var ErrNoHistory = errors.New("history: no revisions for draft")

// ErrUnknownRevision is returned when a hash does not resolve to a commit.
var ErrUnknownRevision = errors.New("history: unknown revision")

// Service manages one repository per draft ID under baseDir. Commits to the
// same draft are serialized with a per-draft lock; different drafts commit
// concurrently.
type Service struct {
	baseDir string
	lockMu  sync.Mutex
	locks   map[string]*sync.Mutex
}

func New(baseDir string) *Service {
	return &Service{
		baseDir: baseDir,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Record commits the draft document, initializing the repository on first
// use. It returns the short hash of the new commit.
func (s *Service) Record(draftID string, doc json.RawMessage, message string) (Revision, error) {
	lock := s.draftLock(draftID)
	lock.Lock()
	defer lock.Unlock()

	repo, err := s.openOrInit(draftID)
	if err != nil {
		return Revision{}, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return Revision{}, fmt.Errorf("open worktree: %w", err)
	}

	pretty, err := indentJSON(doc)
	if err != nil {
		return Revision{}, err
	}
	if err := os.WriteFile(filepath.Join(s.repoPath(draftID), draftFile), pretty, 0o644); err != nil {
		return Revision{}, fmt.Errorf("write %s: %w", draftFile, err)
	}
	if _, err := worktree.Add(draftFile); err != nil {
		return Revision{}, fmt.Errorf("git add %s: %w", draftFile, err)
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  "hearth",
			Email: "autosave@hearth.local",
			When:  time.Now(),
		},
	})
	if err != nil {
		return Revision{}, fmt.Errorf("commit %s: %w", draftFile, err)
	}

	commitObj, err := repo.CommitObject(hash)
	if err != nil {
		return Revision{}, fmt.Errorf("read commit object: %w", err)
	}
	return toRevision(commitObj), nil
}

// Revisions lists the autosave trail, newest first, capped at limit.
func (s *Service) Revisions(draftID string, limit int) ([]Revision, error) {
	lock := s.draftLock(draftID)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.repoPath(draftID))
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	headRef, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: headRef.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	items := make([]Revision, 0, limit)
	count := 0
	err = iter.ForEach(func(commitObj *object.Commit) error {
		items = append(items, toRevision(commitObj))
		count++
		if limit > 0 && count >= limit {
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return items, nil
}

// DocAt returns the draft document at a revision hash.
func (s *Service) DocAt(draftID, hash string) (json.RawMessage, error) {
	lock := s.draftLock(draftID)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.repoPath(draftID))
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	resolvedHash, err := resolveHash(repo, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRevision, hash)
	}
	commitObj, err := repo.CommitObject(resolvedHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRevision, hash)
	}

	file, err := commitObj.File(draftFile)
	if err != nil {
		return nil, fmt.Errorf("load %s from commit: %w", draftFile, err)
	}
	reader, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("open draft reader: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read draft bytes: %w", err)
	}
	return raw, nil
}

func (s *Service) openOrInit(draftID string) (*git.Repository, error) {
	path := s.repoPath(draftID)
	repo, err := git.PlainOpen(path)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create repo dir: %w", err)
	}
	repo, err = git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}
	return repo, nil
}

func (s *Service) repoPath(draftID string) string {
	return filepath.Join(s.baseDir, draftID)
}

func (s *Service) draftLock(draftID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[draftID]
	if ok {
		return lock
	}
	lock = &sync.Mutex{}
	s.locks[draftID] = lock
	return lock
}

func toRevision(commitObj *object.Commit) Revision {
	return Revision{
		Hash:      commitObj.Hash.String()[:7],
		Message:   commitObj.Message,
		CreatedAt: commitObj.Author.When,
	}
}

func indentJSON(doc json.RawMessage) ([]byte, error) {
	var parsed any
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, fmt.Errorf("decode draft doc: %w", err)
	}
	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode draft doc: %w", err)
	}
	return append(pretty, '\n'), nil
}

func resolveHash(repo *git.Repository, hash string) (plumbing.Hash, error) {
	if len(hash) == 40 {
		return plumbing.NewHash(hash), nil
	}
	resolved, err := repo.ResolveRevision(plumbing.Revision(hash))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve hash %s: %w", hash, err)
	}
	return *resolved, nil
}

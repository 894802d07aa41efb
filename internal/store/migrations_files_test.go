package store

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestMigrationsHaveMatchingUpAndDownFiles(t *testing.T) {
	migrationsDir := filepath.Join("..", "..", "db", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	pattern := regexp.MustCompile(`^(\d+)_.*\.(up|down)\.sql$`)
	byVersion := map[string]map[string]bool{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		match := pattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		version := match[1]
		direction := match[2]
		if byVersion[version] == nil {
			byVersion[version] = map[string]bool{}
		}
		if byVersion[version][direction] {
			t.Fatalf("duplicate %s migration file for version %s", direction, version)
		}
		byVersion[version][direction] = true
	}

	if len(byVersion) == 0 {
		t.Fatal("no migrations discovered")
	}

	for version, dirs := range byVersion {
		if !dirs["up"] || !dirs["down"] {
			t.Fatalf("version %s must include both up and down files", version)
		}
	}
}

func TestInitMigrationCreatesCoreTables(t *testing.T) {
	contents, err := os.ReadFile(filepath.Join("..", "..", "db", "migrations", "0001_init.up.sql"))
	if err != nil {
		t.Fatalf("read init migration: %v", err)
	}
	sql := strings.ToLower(string(contents))

	for _, table := range []string{"drafts", "projects", "leads"} {
		if !strings.Contains(sql, "create table if not exists "+table) {
			t.Errorf("init migration missing table %q", table)
		}
	}
}

func TestPendingStepsSkipsAppliedAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"0002_leads.up.sql",
		"0002_leads.down.sql",
		"0001_init.up.sql",
		"0001_init.down.sql",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	steps, err := pendingSteps(dir, map[string]bool{"0001_init": true})
	if err != nil {
		t.Fatalf("pendingSteps failed: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("expected 1 pending step, got %d", len(steps))
	}
	if steps[0].version != "0002_leads" {
		t.Errorf("expected version 0002_leads, got %q", steps[0].version)
	}

	steps, err = pendingSteps(dir, nil)
	if err != nil {
		t.Fatalf("pendingSteps failed: %v", err)
	}
	if len(steps) != 2 || steps[0].version != "0001_init" || steps[1].version != "0002_leads" {
		t.Errorf("expected sorted versions 0001_init, 0002_leads, got %+v", steps)
	}
}

package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/xvierd/pomo/internal/ports"
)

// initRepo creates a repository with one committed file.
func initRepo(t *testing.T) (string, *git.Repository, plumbing.Hash) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "pomo-sandbox")
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("Failed to init git repo: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("focus"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}
	if _, err := worktree.Add("notes.txt"); err != nil {
		t.Fatalf("Failed to add file: %v", err)
	}
	commit, err := worktree.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com"},
	})
	if err != nil {
		t.Fatalf("Failed to create commit: %v", err)
	}
	return dir, repo, commit
}

func TestDetector_Detect(t *testing.T) {
	dir, _, commit := initRepo(t)

	info, err := NewDetector().Detect(context.Background(), dir)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if info.Commit != commit.String() {
		t.Errorf("Commit = %s, want %s", info.Commit, commit.String())
	}
	if info.Branch != "master" && info.Branch != "main" {
		t.Errorf("Branch = %s, want master or main", info.Branch)
	}
	if info.Repository != "pomo-sandbox" {
		t.Errorf("Repository = %q, want directory name fallback", info.Repository)
	}
	if !info.IsClean {
		t.Error("Expected clean worktree after commit")
	}
}

func TestDetector_Detect_FromSubdirWithRemote(t *testing.T) {
	dir, repo, _ := initRepo(t)
	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:xvierd/pomo.git"},
	}); err != nil {
		t.Fatalf("Failed to add remote: %v", err)
	}
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("changed"), 0644); err != nil {
		t.Fatalf("Failed to modify file: %v", err)
	}

	info, err := NewDetector().Detect(context.Background(), sub)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if info.Repository != "xvierd/pomo" {
		t.Errorf("Repository = %q, want xvierd/pomo", info.Repository)
	}
	if info.IsClean {
		t.Error("Expected dirty worktree")
	}
}

func TestDetector_Detect_EmptyRepo(t *testing.T) {
	dir := t.TempDir()
	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatalf("Failed to init git repo: %v", err)
	}

	info, err := NewDetector().Detect(context.Background(), dir)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if info.Commit != "" {
		t.Errorf("Commit = %q, want empty", info.Commit)
	}
	if info.Branch == "" {
		t.Error("Branch should come from the unborn HEAD")
	}
}

func TestDetector_Detect_NoGitRepo(t *testing.T) {
	_, err := NewDetector().Detect(context.Background(), t.TempDir())
	if !errors.Is(err, ErrNoRepository) {
		t.Errorf("Detect() error = %v, want ErrNoRepository", err)
	}
}

func TestSelection(t *testing.T) {
	task, project := Selection(&ports.GitInfo{Branch: "feature/timer", Repository: "xvierd/pomo"})
	if task == nil || *task != "feature/timer" {
		t.Errorf("task = %v, want feature/timer", task)
	}
	if project == nil || *project != "xvierd/pomo" {
		t.Errorf("project = %v, want xvierd/pomo", project)
	}

	task, project = Selection(&ports.GitInfo{Repository: "pomo"})
	if task != nil {
		t.Errorf("detached HEAD task = %v, want nil", *task)
	}
	if project == nil {
		t.Error("project should still be set")
	}

	if task, project := Selection(nil); task != nil || project != nil {
		t.Error("Selection(nil) should return nils")
	}
}

func TestFindGitRepo(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "level1", "level2")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}
	if _, err := git.PlainInit(tmpDir, false); err != nil {
		t.Fatalf("Failed to init git repo: %v", err)
	}

	found, err := findGitRepo(subDir)
	if err != nil {
		t.Fatalf("findGitRepo() error = %v", err)
	}
	if found != tmpDir {
		t.Errorf("findGitRepo() = %s, want %s", found, tmpDir)
	}
}

func TestExtractRepoName(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"git@github.com:user/repo.git", "user/repo"},
		{"https://github.com/user/repo.git", "user/repo"},
		{"https://gitlab.com/org/project/", "org/project"},
		{"/path/to/repo", "/path/to/repo"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := extractRepoName(tt.url); got != tt.expected {
				t.Errorf("extractRepoName(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestShortCommit(t *testing.T) {
	if got := ShortCommit("abcdef1234567890"); got != "abcdef1" {
		t.Errorf("ShortCommit() = %q, want abcdef1", got)
	}
	if got := ShortCommit("abc"); got != "abc" {
		t.Errorf("ShortCommit() = %q, want abc", got)
	}
}

// Package git derives task and project references from the enclosing
// repository using go-git.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/xvierd/pomo/internal/ports"
)

// ErrNoRepository is returned when no enclosing repository exists.
var ErrNoRepository = errors.New("git repository not found")

// Detector implements the ports.GitDetector interface using go-git.
type Detector struct{}

// NewDetector creates a new git detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Ensure Detector implements ports.GitDetector.
var _ ports.GitDetector = (*Detector)(nil)

// Detect scans workingDir (or the current directory) for repository context.
func (d *Detector) Detect(ctx context.Context, workingDir string) (*ports.GitInfo, error) {
	if workingDir == "" {
		var err error
		workingDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	repoPath, err := findGitRepo(workingDir)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	info := &ports.GitInfo{
		Repository: repositoryName(repo, repoPath),
		IsClean:    true,
	}

	head, err := repo.Head()
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		// Fresh repository without commits: HEAD still names the branch.
		ref, refErr := repo.Storer.Reference(plumbing.HEAD)
		if refErr == nil && ref.Type() == plumbing.SymbolicReference {
			info.Branch = ref.Target().Short()
		}
		return info, nil
	case err != nil:
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	info.Branch = head.Name().Short()
	if !head.Name().IsBranch() {
		info.Branch = ""
	}
	info.Commit = head.Hash().String()

	if worktree, err := repo.Worktree(); err == nil {
		if status, err := worktree.Status(); err == nil {
			info.IsClean = status.IsClean()
		}
	}

	return info, nil
}

// IsAvailable checks if the current directory is inside a repository.
func (d *Detector) IsAvailable() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	_, err = findGitRepo(cwd)
	return err == nil
}

// Selection maps repository context to timer references: the current branch
// names the task and the repository names the project. A detached HEAD
// yields no task.
func Selection(info *ports.GitInfo) (taskID, projectID *string) {
	if info == nil {
		return nil, nil
	}
	if info.Branch != "" {
		b := info.Branch
		taskID = &b
	}
	if info.Repository != "" {
		r := info.Repository
		projectID = &r
	}
	return taskID, projectID
}

// repositoryName prefers the origin remote and falls back to the directory name.
func repositoryName(repo *git.Repository, repoPath string) string {
	remotes, err := repo.Remotes()
	if err == nil {
		for _, name := range []string{"origin", ""} {
			for _, r := range remotes {
				if name != "" && r.Config().Name != name {
					continue
				}
				if urls := r.Config().URLs; len(urls) > 0 {
					return extractRepoName(urls[0])
				}
			}
		}
	}
	return filepath.Base(repoPath)
}

// findGitRepo traverses up the directory tree to find a .git directory.
func findGitRepo(startPath string) (string, error) {
	currentPath := startPath

	for {
		gitPath := filepath.Join(currentPath, ".git")
		info, err := os.Stat(gitPath)
		if err == nil && info.IsDir() {
			return currentPath, nil
		}

		// A .git file points at a linked worktree.
		if err == nil && !info.IsDir() {
			content, err := os.ReadFile(gitPath)
			if err == nil && strings.HasPrefix(string(content), "gitdir: ") {
				return currentPath, nil
			}
		}

		parent := filepath.Dir(currentPath)
		if parent == currentPath {
			break
		}
		currentPath = parent
	}

	return "", ErrNoRepository
}

// extractRepoName extracts owner/name from a git URL.
func extractRepoName(url string) string {
	// SSH URLs like git@github.com:user/repo.git
	if strings.HasPrefix(url, "git@") {
		parts := strings.Split(url, ":")
		if len(parts) >= 2 {
			return strings.TrimSuffix(parts[len(parts)-1], ".git")
		}
	}

	// HTTPS URLs like https://github.com/user/repo.git
	if strings.HasPrefix(url, "http") {
		parts := strings.Split(strings.TrimSuffix(url, "/"), "/")
		if len(parts) >= 2 {
			repo := strings.TrimSuffix(parts[len(parts)-1], ".git")
			return parts[len(parts)-2] + "/" + repo
		}
	}

	return url
}

// ShortCommit returns a shortened commit hash.
func ShortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

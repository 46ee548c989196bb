package ports

import (
	"context"
)

// GitInfo holds the repository context used to pick a task and project.
type GitInfo struct {
	Branch     string
	Commit     string
	Repository string
	IsClean    bool
}

// GitDetector defines the interface for git context detection.
// This is a driven port (implemented by adapters).
type GitDetector interface {
	// Detect scans the given directory for git context.
	Detect(ctx context.Context, workingDir string) (*GitInfo, error)

	// IsAvailable checks if the current directory is inside a repository.
	IsAvailable() bool
}

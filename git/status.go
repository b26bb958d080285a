package git

import (
	"context"
	"fmt"
	"strings"
)

// Status represents the state of uncommitted changes in the working tree.
type Status struct {
	HasChanges bool
	Summary    string   // Short summary like "3 files changed"
	Files      []string // List of changed files
}

// GetStatus returns the status of uncommitted changes in repoPath.
func (s *GitService) GetStatus(ctx context.Context, repoPath string) (*Status, error) {
	status := &Status{}

	output, err := s.executor.Output(ctx, repoPath, "git", "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("git status failed: %w", err)
	}

	// Only trim trailing whitespace - leading space is significant in
	// porcelain format (" M file" means modified in worktree only).
	lines := strings.Split(strings.TrimRight(string(output), "\n\r\t "), "\n")
	if len(lines) == 1 && lines[0] == "" {
		status.Summary = "No changes"
		return status, nil
	}

	status.HasChanges = true
	for _, line := range lines {
		if len(line) > 3 {
			status.Files = append(status.Files, strings.TrimSpace(line[3:]))
		}
	}

	if len(status.Files) == 1 {
		status.Summary = "1 file changed"
	} else {
		status.Summary = fmt.Sprintf("%d files changed", len(status.Files))
	}
	return status, nil
}

// CurrentBranch returns the name of the currently checked out branch.
func (s *GitService) CurrentBranch(ctx context.Context, repoPath string) (string, error) {
	output, err := s.executor.Output(ctx, repoPath, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// HasRemoteOrigin checks if the repository has a remote named "origin".
func (s *GitService) HasRemoteOrigin(ctx context.Context, repoPath string) bool {
	_, _, err := s.executor.Run(ctx, repoPath, "git", "remote", "get-url", "origin")
	return err == nil
}

// RemoteOriginURL returns the URL of the "origin" remote.
func (s *GitService) RemoteOriginURL(ctx context.Context, repoPath string) (string, error) {
	output, err := s.executor.Output(ctx, repoPath, "git", "remote", "get-url", "origin")
	if err != nil {
		return "", fmt.Errorf("failed to get remote origin URL: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// SetRemoteOriginURL rewrites the "origin" remote URL.
func (s *GitService) SetRemoteOriginURL(ctx context.Context, repoPath, url string) error {
	if output, err := s.executor.CombinedOutput(ctx, repoPath, "git", "remote", "set-url", "origin", url); err != nil {
		return fmt.Errorf("git remote set-url failed: %s - %w", string(output), err)
	}
	return nil
}

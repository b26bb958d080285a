package git

import (
	"context"
	"fmt"

	"github.com/rootCircle/bgit/logger"
)

// AddAll stages all changes in the working tree.
func (s *GitService) AddAll(ctx context.Context, repoPath string) error {
	if output, err := s.executor.CombinedOutput(ctx, repoPath, "git", "add", "-A"); err != nil {
		return fmt.Errorf("git add failed: %s - %w", string(output), err)
	}
	return nil
}

// Add stages specific paths.
func (s *GitService) Add(ctx context.Context, repoPath string, paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	if output, err := s.executor.CombinedOutput(ctx, repoPath, "git", args...); err != nil {
		return fmt.Errorf("git add failed: %s - %w", string(output), err)
	}
	return nil
}

// Commit commits staged changes with the given message.
func (s *GitService) Commit(ctx context.Context, repoPath, message string) error {
	logger.WithComponent("git").Info("committing staged changes", "repo", repoPath)

	if output, err := s.executor.CombinedOutput(ctx, repoPath, "git", "commit", "-m", message); err != nil {
		return fmt.Errorf("git commit failed: %s - %w", string(output), err)
	}
	return nil
}

// CommitAll stages all changes and commits them with the given message.
func (s *GitService) CommitAll(ctx context.Context, repoPath, message string) error {
	if err := s.AddAll(ctx, repoPath); err != nil {
		return err
	}
	return s.Commit(ctx, repoPath, message)
}

// StashPush stashes the working tree, including untracked files.
func (s *GitService) StashPush(ctx context.Context, repoPath, message string) error {
	args := []string{"stash", "push", "--include-untracked"}
	if message != "" {
		args = append(args, "-m", message)
	}
	if output, err := s.executor.CombinedOutput(ctx, repoPath, "git", args...); err != nil {
		return fmt.Errorf("git stash failed: %s - %w", string(output), err)
	}
	return nil
}

// StashPop restores the most recent stash entry.
func (s *GitService) StashPop(ctx context.Context, repoPath string) error {
	if output, err := s.executor.CombinedOutput(ctx, repoPath, "git", "stash", "pop"); err != nil {
		return fmt.Errorf("git stash pop failed: %s - %w", string(output), err)
	}
	return nil
}

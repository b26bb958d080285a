package workflow

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunHooks_ExposesContextEnv(t *testing.T) {
	repo := t.TempDir()
	out := filepath.Join(repo, "hook.out")

	hooks := []HookConfig{
		{Run: "echo \"$BGIT_REPO_PATH|$BGIT_BRANCH|$BGIT_STEP|$BGIT_WORKFLOW\" > hook.out"},
	}
	hookCtx := HookContext{
		RepoPath: repo,
		Branch:   "main",
		Step:     "push",
		Workflow: "commit-and-push",
	}

	RunHooks(context.Background(), hooks, hookCtx, testLogger())

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("hook output missing: %v", err)
	}
	got := strings.TrimSpace(string(data))
	want := repo + "|main|push|commit-and-push"
	if got != want {
		t.Errorf("hook env = %q, want %q", got, want)
	}
}

func TestRunHooks_FailureDoesNotStopRemaining(t *testing.T) {
	repo := t.TempDir()

	hooks := []HookConfig{
		{Run: "exit 1"},
		{Run: "touch second.out"},
	}

	RunHooks(context.Background(), hooks, HookContext{RepoPath: repo}, testLogger())

	if _, err := os.Stat(filepath.Join(repo, "second.out")); err != nil {
		t.Error("second hook should run after the first fails")
	}
}

func TestRunHooks_SkipsEmptyCommands(t *testing.T) {
	// Only checks that an empty Run entry is a no-op rather than an error.
	RunHooks(context.Background(), []HookConfig{{Run: ""}}, HookContext{RepoPath: t.TempDir()}, testLogger())
}

func TestRunHooks_RunsInRepoDir(t *testing.T) {
	repo := t.TempDir()

	RunHooks(context.Background(), []HookConfig{{Run: "pwd > cwd.out"}}, HookContext{RepoPath: repo}, testLogger())

	data, err := os.ReadFile(filepath.Join(repo, "cwd.out"))
	if err != nil {
		t.Fatalf("hook output missing: %v", err)
	}
	got := strings.TrimSpace(string(data))
	real, _ := filepath.EvalSymlinks(repo)
	if got != repo && got != real {
		t.Errorf("hook ran in %q, want %q", got, repo)
	}
}

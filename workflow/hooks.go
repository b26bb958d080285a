package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// HookContext provides environment variables for hook execution.
type HookContext struct {
	RepoPath string
	Branch   string
	Step     string
	Workflow string
}

// envVars returns the hook context as environment variable pairs.
func (hc HookContext) envVars() []string {
	return []string{
		fmt.Sprintf("BGIT_REPO_PATH=%s", hc.RepoPath),
		fmt.Sprintf("BGIT_BRANCH=%s", hc.Branch),
		fmt.Sprintf("BGIT_STEP=%s", hc.Step),
		fmt.Sprintf("BGIT_WORKFLOW=%s", hc.Workflow),
	}
}

// RunHooks executes hooks sequentially. Errors are logged but do not block the workflow.
func RunHooks(ctx context.Context, hooks []HookConfig, hookCtx HookContext, logger *slog.Logger) {
	for _, hook := range hooks {
		if hook.Run == "" {
			continue
		}

		cmd := exec.CommandContext(ctx, "sh", "-c", hook.Run)
		cmd.Dir = hookCtx.RepoPath
		cmd.Env = append(os.Environ(), hookCtx.envVars()...)

		output, err := cmd.CombinedOutput()
		if err != nil {
			logger.Warn("hook failed",
				"command", hook.Run,
				"error", err,
				"output", string(output),
			)
			continue
		}

		logger.Debug("hook completed",
			"command", hook.Run,
			"output", string(output),
		)
	}
}

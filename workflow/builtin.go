package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/rootCircle/bgit/git"
	"github.com/rootCircle/bgit/prompt"
)

// DefaultRegistry wires the built-in actions over the git service, the
// auth preflight, and the interactive prompt. Every name in ValidActions
// is registered here.
func DefaultRegistry(svc *git.GitService, pf git.Preflight, ui prompt.Interactor) *ActionRegistry {
	r := NewActionRegistry()

	r.Register("git.status", ActionFunc(func(ctx context.Context, ac *ActionContext) ActionResult {
		status, err := svc.GetStatus(ctx, ac.RepoPath)
		if err != nil {
			return ActionResult{Error: err}
		}
		prompt.Status("%s", status.Summary)
		return ActionResult{
			Success: true,
			Data: map[string]any{
				"has_changes": status.HasChanges,
				"summary":     status.Summary,
			},
		}
	}))

	r.Register("git.stage", ActionFunc(func(ctx context.Context, ac *ActionContext) ActionResult {
		if err := svc.AddAll(ctx, ac.RepoPath); err != nil {
			return ActionResult{Error: err}
		}
		return ActionResult{Success: true}
	}))

	r.Register("git.commit", ActionFunc(func(ctx context.Context, ac *ActionContext) ActionResult {
		message, err := commitMessage(ac, ui)
		if err != nil {
			return ActionResult{Error: err}
		}
		if err := svc.Commit(ctx, ac.RepoPath, message); err != nil {
			return ActionResult{Error: err}
		}
		prompt.Status("Committed: %s", message)
		return ActionResult{Success: true, Data: map[string]any{"message": message}}
	}))

	r.Register("git.pull", ActionFunc(func(ctx context.Context, ac *ActionContext) ActionResult {
		rebase := ac.Params.Bool("rebase", true)
		if err := svc.Pull(ctx, ac.RepoPath, pf, rebase); err != nil {
			return ActionResult{Error: err}
		}
		return ActionResult{Success: true}
	}))

	r.Register("git.push", ActionFunc(func(ctx context.Context, ac *ActionContext) ActionResult {
		force := ac.Params.Bool("force", false)
		upstream := ac.Params.Bool("set_upstream", true)
		if err := svc.Push(ctx, ac.RepoPath, pf, force, upstream); err != nil {
			return ActionResult{Error: err}
		}
		prompt.Status("Pushed to origin.")
		return ActionResult{Success: true}
	}))

	r.Register("auth.setup", ActionFunc(func(ctx context.Context, ac *ActionContext) ActionResult {
		if !svc.HasRemoteOrigin(ctx, ac.RepoPath) {
			ac.Logger.Debug("no origin remote, skipping auth setup")
			return ActionResult{Success: true}
		}
		if err := svc.PrepareRemote(ctx, ac.RepoPath, pf); err != nil {
			return ActionResult{Error: err}
		}
		return ActionResult{Success: true}
	}))

	return r
}

// commitMessage resolves the commit message for git.commit: an explicit
// message param wins, then a template param, then an interactive ask.
func commitMessage(ac *ActionContext, ui prompt.Interactor) (string, error) {
	if msg := ac.Params.String("message", ""); msg != "" {
		return msg, nil
	}

	prefill := ""
	if tmpl := ac.Params.String("template", ""); tmpl != "" {
		resolved, err := ResolveMessageTemplate(tmpl, ac.RepoPath)
		if err != nil {
			return "", err
		}
		prefill = resolved
	}

	msg, err := ui.Input("Commit message", prefill)
	if err != nil {
		return "", fmt.Errorf("failed to read commit message: %w", err)
	}
	if msg == "" {
		return "", errors.New("empty commit message")
	}
	return msg, nil
}

package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rootCircle/bgit/logger"
)

// Preflight prepares authentication for a network operation against a
// remote. Implementations rewrite the URL to match the user's preference
// and guarantee that whatever credentials the operation needs (a live,
// populated ssh-agent in particular) are discoverable by the git binary.
// The auth package provides the production implementation.
type Preflight interface {
	Prepare(ctx context.Context, remoteURL string) (effectiveURL string, err error)
}

// AuthRunner is a Preflight that can also drive the retry loop for
// operations needing per-attempt credential material (HTTPS remotes,
// where the agent cannot answer for git). The attempt closure runs the
// operation once with the environment carrying the offered credential.
// The transport package provides the production implementation.
type AuthRunner interface {
	RunAuthenticated(ctx context.Context, remoteURL string, attempt func(extraEnv []string) error) error
}

// ErrRemoteAuthRejected marks a push/pull failure caused by the remote
// refusing the offered credentials, as opposed to a conflict, a network
// fault, or a local error. The retry driver renegotiates only on this.
var ErrRemoteAuthRejected = errors.New("remote rejected authentication")

// authRejectionMarkers are the stderr fragments the git binary emits when
// a remote refuses credentials over HTTPS.
var authRejectionMarkers = []string{
	"authentication failed",
	"could not read username",
	"could not read password",
	"invalid username or token",
	"http basic: access denied",
	"the requested url returned error: 403",
}

func classifyRemoteError(op, output string, err error) error {
	lower := strings.ToLower(output)
	for _, marker := range authRejectionMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("git %s failed: %s - %w", op, strings.TrimSpace(output), ErrRemoteAuthRejected)
		}
	}
	return fmt.Errorf("git %s failed: %s - %w", op, strings.TrimSpace(output), err)
}

// PrepareRemote runs the preflight and rewrites origin when the effective
// URL differs from the recorded one. Push and Pull call it implicitly; it
// is exported so a flow can run the auth setup as its own step.
func (s *GitService) PrepareRemote(ctx context.Context, repoPath string, pf Preflight) error {
	if pf == nil {
		return nil
	}

	url, err := s.RemoteOriginURL(ctx, repoPath)
	if err != nil {
		return err
	}

	effective, err := pf.Prepare(ctx, url)
	if err != nil {
		return fmt.Errorf("authentication preflight failed: %w", err)
	}
	if effective != "" && effective != url {
		logger.WithComponent("git").Info("rewriting origin to match auth preference", "url", effective)
		if err := s.SetRemoteOriginURL(ctx, repoPath, effective); err != nil {
			return err
		}
	}
	return nil
}

// runRemoteOp executes one remote git operation. When the preflight can
// drive authenticated attempts, the operation runs inside its credential
// loop against the post-rewrite origin URL; otherwise it runs once with
// the inherited environment.
func (s *GitService) runRemoteOp(ctx context.Context, repoPath, op string, pf Preflight, args []string) error {
	attempt := func(extraEnv []string) error {
		stdout, stderr, err := s.executor.RunEnv(ctx, repoPath, extraEnv, "git", args...)
		if err != nil {
			return classifyRemoteError(op, string(stdout)+string(stderr), err)
		}
		return nil
	}

	if runner, ok := pf.(AuthRunner); ok {
		url, err := s.RemoteOriginURL(ctx, repoPath)
		if err != nil {
			return err
		}
		return runner.RunAuthenticated(ctx, url, attempt)
	}
	return attempt(nil)
}

// Push pushes the current branch to origin.
func (s *GitService) Push(ctx context.Context, repoPath string, pf Preflight, force, setUpstream bool) error {
	if err := s.PrepareRemote(ctx, repoPath, pf); err != nil {
		return err
	}

	branch, err := s.CurrentBranch(ctx, repoPath)
	if err != nil {
		return err
	}

	args := []string{"push"}
	if force {
		args = append(args, "--force-with-lease")
	}
	if setUpstream {
		args = append(args, "-u")
	}
	args = append(args, "origin", branch)

	return s.runRemoteOp(ctx, repoPath, "push", pf, args)
}

// Pull fetches and integrates changes from origin into the current branch.
func (s *GitService) Pull(ctx context.Context, repoPath string, pf Preflight, rebase bool) error {
	if err := s.PrepareRemote(ctx, repoPath, pf); err != nil {
		return err
	}

	args := []string{"pull"}
	if rebase {
		args = append(args, "--rebase")
	}

	return s.runRemoteOp(ctx, repoPath, "pull", pf, args)
}

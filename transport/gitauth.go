package transport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rootCircle/bgit/auth"
	"github.com/rootCircle/bgit/git"
	"github.com/rootCircle/bgit/logger"
)

// Authenticator pairs the agent preflight with the credential negotiation
// loop so a git operation gets both: URL rewriting plus agent readiness
// up front, and per-attempt credential resolution for remotes the agent
// cannot answer for. It implements git.Preflight and git.AuthRunner.
type Authenticator struct {
	pf *auth.Preflight
	cb *Callbacks
}

// NewAuthenticator wires a preflight and a negotiator together.
func NewAuthenticator(pf *auth.Preflight, negotiator *auth.Negotiator) *Authenticator {
	return &Authenticator{pf: pf, cb: SetupCallbacks(negotiator)}
}

// Prepare delegates to the underlying preflight.
func (a *Authenticator) Prepare(ctx context.Context, remoteURL string) (string, error) {
	return a.pf.Prepare(ctx, remoteURL)
}

// RunAuthenticated executes attempt inside the credential loop. SSH
// remotes authenticate through the agent the preflight already prepared,
// so the attempt runs once with the inherited environment. HTTPS remotes
// run under Run: each negotiated user/pass credential is fed to the git
// binary through an askpass bridge, and a rejection by the remote asks
// the negotiator for the next credential.
func (a *Authenticator) RunAuthenticated(ctx context.Context, url string, attempt func(extraEnv []string) error) error {
	if !isHTTP(url) {
		return attempt(nil)
	}

	helper, cleanup, err := writeAskpassHelper()
	if err != nil {
		return err
	}
	defer cleanup()

	return Run(ctx, url, a.cb, func(ctx context.Context, cred *auth.Credential) error {
		err := attempt(credentialEnv(helper, cred))
		if err == nil {
			return nil
		}
		if errors.Is(err, git.ErrRemoteAuthRejected) {
			return fmt.Errorf("%w: %v", ErrAuthRejected, err)
		}
		return err
	})
}

// askpassScript answers git's credential questions from environment
// variables scoped to the single attempt. The secret itself never
// touches the script file.
const askpassScript = `#!/bin/sh
case "$1" in
  [Uu]sername*) printf '%s\n' "$BGIT_ASKPASS_USERNAME" ;;
  *) printf '%s\n' "$BGIT_ASKPASS_PASSWORD" ;;
esac
`

// writeAskpassHelper materializes the askpass script in a private temp
// directory. The caller removes it when the operation ends.
func writeAskpassHelper() (path string, cleanup func(), err error) {
	dir, err := os.MkdirTemp("", "bgit-askpass-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create askpass helper: %w", err)
	}
	path = filepath.Join(dir, "askpass.sh")
	if err := os.WriteFile(path, []byte(askpassScript), 0o700); err != nil {
		os.RemoveAll(dir)
		return "", nil, fmt.Errorf("failed to write askpass helper: %w", err)
	}
	return path, func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.WithComponent("transport").Warn("failed to remove askpass helper", "error", err)
		}
	}, nil
}

// credentialEnv builds the per-attempt environment for a credential.
// Only user/pass material needs to travel; SSH credentials are already
// reachable through the published agent socket.
func credentialEnv(helper string, cred *auth.Credential) []string {
	if cred == nil || cred.Kind() != auth.CredentialUserPass {
		return nil
	}
	return []string{
		"GIT_ASKPASS=" + helper,
		"GIT_TERMINAL_PROMPT=0",
		"BGIT_ASKPASS_USERNAME=" + cred.Username(),
		"BGIT_ASKPASS_PASSWORD=" + cred.Secret(),
	}
}

var (
	_ git.Preflight  = (*Authenticator)(nil)
	_ git.AuthRunner = (*Authenticator)(nil)
)

package auth

import (
	"context"
	"log/slog"

	"github.com/rootCircle/bgit/config"
	"github.com/rootCircle/bgit/logger"
)

// Preflight prepares authentication ahead of a network git operation. It
// rewrites the remote URL to match the user's preference and, for SSH
// remotes, guarantees a live agent with at least the conventional keys
// offered for enrollment. After Prepare returns nil the git binary can be
// invoked directly; it discovers the agent through the finalized
// environment.
type Preflight struct {
	cfg        *config.Config
	supervisor *Supervisor
	enroll     *Enrollment
	log        *slog.Logger
}

// NewPreflight wires a preflight over the given collaborators.
func NewPreflight(cfg *config.Config, supervisor *Supervisor, enroll *Enrollment) *Preflight {
	return &Preflight{
		cfg:        cfg,
		supervisor: supervisor,
		enroll:     enroll,
		log:        logger.WithComponent("auth.preflight"),
	}
}

// Prepare returns the URL the operation should use. When the preference
// calls for a rewrite of a known host the rewritten URL is returned,
// otherwise remoteURL comes back unchanged. If the effective URL is an
// SSH remote, the agent lifecycle runs before returning: ensure a live
// agent, then enroll conventional keys so the operation does not fail on
// an empty agent.
func (p *Preflight) Prepare(ctx context.Context, remoteURL string) (string, error) {
	effective := remoteURL
	if rewritten, ok := TransformURL(remoteURL, p.cfg.Preferred()); ok {
		p.log.Info("remote URL rewritten per auth preference",
			"preferred", p.cfg.Preferred(), "url", rewritten)
		effective = rewritten
	}

	if !isSSHLike(effective) {
		return effective, nil
	}

	if err := p.supervisor.EnsureAgentReady(ctx); err != nil {
		return "", err
	}

	store := p.supervisor.Store()
	sock, pid := store.ResolveEffectiveAuth(ctx)
	if sock == "" {
		return "", ErrAgentUnreachable
	}

	n, err := identityCount(ctx, store.exec, sock, pid)
	if err != nil {
		return "", err
	}
	if n == 0 {
		if _, added, err := p.enroll.AddAllKeys(ctx, sock, pid); err != nil {
			return "", err
		} else if added == 0 {
			return "", ErrNoUsableKey
		}
	}
	return effective, nil
}

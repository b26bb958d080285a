package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	pexec "github.com/rootCircle/bgit/exec"
	"github.com/rootCircle/bgit/logger"
)

const (
	// socketPollAttempts and socketPollInterval bound the busy-wait for a
	// freshly spawned agent's socket: 30 polls at 100 ms is a 3 s ceiling.
	// A timeout is ordinary failure, not a crash.
	socketPollAttempts = 30
	socketPollInterval = 100 * time.Millisecond

	// staleSocketSettleDelay is slept after removing a stale socket and
	// before respawning, so a half-torn-down socket is not misread as
	// freshly available.
	staleSocketSettleDelay = 200 * time.Millisecond
)

// Supervisor guarantees a usable ssh-agent is reachable before any
// authentication attempt. The algorithm is platform-specific; each
// platform file implements the two capability primitives
// (ensureAgentReady, startAgentDetached) selected at build time.
//
// All agent-state file access goes through the Store; the supervisor
// never touches the files directly.
type Supervisor struct {
	store *Store
	exec  pexec.CommandExecutor
	log   *slog.Logger
}

// NewSupervisor returns a Supervisor over the given store.
func NewSupervisor(store *Store, ex pexec.CommandExecutor) *Supervisor {
	return &Supervisor{
		store: store,
		exec:  ex,
		log:   logger.WithComponent("auth.agent"),
	}
}

// Store returns the agent-state store the supervisor operates on.
func (s *Supervisor) Store() *Store { return s.store }

// EnsureAgentReady guarantees a live agent is reachable and published to
// the process environment, or returns a typed error. Safe to call
// repeatedly; an already-live agent is adopted without respawning.
func (s *Supervisor) EnsureAgentReady(ctx context.Context) error {
	return s.ensureAgentReady(ctx)
}

// finalize recomputes the effective auth through the store and publishes
// it to the process environment. Every successful ensure path ends here;
// it is the single writer of the agent environment variables.
func (s *Supervisor) finalize(ctx context.Context) error {
	sock, pid := s.store.ResolveEffectiveAuth(ctx)
	if sock == "" {
		return fmt.Errorf("%w: no live agent after setup", ErrAgentUnreachable)
	}
	s.store.FinalizeEnv(sock, pid)
	s.log.Debug("agent ready", "socket", sock, "pid", pid)
	return nil
}

// parseAgentOutput extracts SSH_AUTH_SOCK and SSH_AGENT_PID from the
// shell-eval output ssh-agent prints when started without -D:
//
//	SSH_AUTH_SOCK=/tmp/ssh-XXXX/agent.123; export SSH_AUTH_SOCK;
//	SSH_AGENT_PID=124; export SSH_AGENT_PID;
func parseAgentOutput(out string) (socket, pid string, err error) {
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "SSH_AUTH_SOCK="); ok {
			socket = strings.SplitN(rest, ";", 2)[0]
		}
		if _, rest, ok := strings.Cut(line, "SSH_AGENT_PID="); ok {
			pid = strings.SplitN(rest, ";", 2)[0]
		}
	}
	if socket == "" {
		return "", "", fmt.Errorf("%w: no SSH_AUTH_SOCK in ssh-agent output", ErrAgentUnreachable)
	}
	if pid == "" {
		return "", "", fmt.Errorf("%w: no SSH_AGENT_PID in ssh-agent output", ErrAgentUnreachable)
	}
	return socket, pid, nil
}

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	pexec "github.com/rootCircle/bgit/exec"
	"github.com/rootCircle/bgit/logger"
	"github.com/rootCircle/bgit/paths"
)

// AgentSocketBasename is the fixed name of the bgit-managed agent socket
// under the SSH directory. The sibling pid record is the socket name plus
// ".pid".
const AgentSocketBasename = "bgit-agent.sock"

// AgentState is the addressable identity of a bgit-managed agent: the
// socket it listens on and, when known, the decimal pid of the agent
// process. The pid may be absent for agents adopted from the environment.
type AgentState struct {
	SocketPath string
	Pid        string
}

// Store owns the on-disk agent state (socket path plus pid record) and is
// the only component allowed to touch those files or the process
// environment variables naming the active agent. Keeping staleness and
// cleanup logic in one place is the point: every other component reads
// effective auth through ResolveEffectiveAuth.
type Store struct {
	sshDir string
	exec   pexec.CommandExecutor
	log    *slog.Logger
}

// NewStore returns a Store rooted at the user's SSH directory.
func NewStore() (*Store, error) {
	dir, err := paths.SSHDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ssh directory: %w", err)
	}
	return NewStoreAt(dir, pexec.GetDefaultExecutor()), nil
}

// NewStoreAt returns a Store rooted at an explicit directory with an
// explicit executor. Used by tests and by the supervisor.
func NewStoreAt(sshDir string, ex pexec.CommandExecutor) *Store {
	return &Store{
		sshDir: sshDir,
		exec:   ex,
		log:    logger.WithComponent("auth.state"),
	}
}

// SSHDir returns the directory the store is rooted at.
func (s *Store) SSHDir() string { return s.sshDir }

// SocketPath returns the fixed bgit agent socket path.
func (s *Store) SocketPath() string {
	return s.sshDir + string(os.PathSeparator) + AgentSocketBasename
}

// PidPath returns the path of the pid record next to the socket.
func (s *Store) PidPath() string {
	return s.SocketPath() + ".pid"
}

// Load returns the saved agent state, or nil when the record is absent or
// malformed. Both the socket and the pid file must exist, and on Unix the
// socket path must actually be a socket special file: a stale regular
// file left behind by a crash does not count. Load does not check whether
// the agent is alive; that is the supervisor's job.
func (s *Store) Load() *AgentState {
	socketPath := s.SocketPath()
	pidPath := s.PidPath()

	info, err := os.Stat(socketPath)
	if err != nil {
		return nil
	}
	if !isSocketFile(info) {
		s.log.Debug("recorded socket path is not a socket", "path", socketPath)
		return nil
	}

	pidRaw, err := os.ReadFile(pidPath)
	if err != nil {
		return nil
	}
	pid := strings.TrimSpace(string(pidRaw))
	if pid == "" {
		return nil
	}

	return &AgentState{SocketPath: socketPath, Pid: pid}
}

// Save writes the pid record for a freshly bound agent. The socket itself
// is created by the agent process, not by the store.
func (s *Store) Save(socketPath, pid string) error {
	if err := os.WriteFile(s.PidPath(), []byte(pid+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write agent pid record: %w", err)
	}
	s.log.Debug("agent state saved", "socket", socketPath, "pid", pid)
	return nil
}

// Cleanup removes the socket and pid files, best effort. Removal failures
// are logged and swallowed: cleanup of a degraded state must never itself
// block shutdown or abort a negotiation.
func (s *Store) Cleanup() {
	for _, path := range []string{s.SocketPath(), s.PidPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove agent state file", "path", path, "error", err)
		}
	}
}

// ResolveEffectiveAuth determines which agent, if any, authentication
// should use. Preference order:
//
//  1. The saved bgit agent state, verified live by the identity-listing
//     probe. A stale record is cleaned up and falls through.
//  2. The process environment's SSH_AUTH_SOCK/SSH_AGENT_PID, validated
//     the same way (including the Unix socket-file check).
//
// Returns ("", "") when neither source yields a live agent.
func (s *Store) ResolveEffectiveAuth(ctx context.Context) (socket, pid string) {
	if st := s.Load(); st != nil {
		if agentAlive(ctx, s.exec, st.SocketPath, st.Pid) {
			return st.SocketPath, st.Pid
		}
		s.log.Debug("saved agent state is stale, cleaning up", "socket", st.SocketPath)
		s.Cleanup()
	}

	envSock := os.Getenv("SSH_AUTH_SOCK")
	envPid := os.Getenv("SSH_AGENT_PID")
	if envSock == "" {
		return "", ""
	}
	if info, err := os.Stat(envSock); err != nil || !isSocketFile(info) {
		return "", ""
	}
	if !agentAlive(ctx, s.exec, envSock, envPid) {
		return "", ""
	}
	return envSock, envPid
}

// FinalizeEnv publishes the effective agent to the process environment so
// the transport layer (and any child process) discovers it. This is the
// single deliberate write of process-wide state in the subsystem; nothing
// else may set these variables.
func (s *Store) FinalizeEnv(socket, pid string) {
	if socket != "" {
		os.Setenv("SSH_AUTH_SOCK", socket)
	}
	if pid != "" {
		os.Setenv("SSH_AGENT_PID", pid)
	}
	s.log.Debug("agent environment finalized", "socket", socket, "pid", pid)
}

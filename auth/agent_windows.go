//go:build windows

package auth

import (
	"context"
	"os"
)

// ensureAgentReady on Windows trusts the platform's own agent story: the
// OpenSSH agent service or a Pageant bridge usually already owns key
// management. bgit only best-effort spawns an agent when the environment
// names none at all.
func (s *Supervisor) ensureAgentReady(ctx context.Context) error {
	if os.Getenv("SSH_AUTH_SOCK") == "" {
		if _, err := s.startAgentDetached(""); err != nil {
			return err
		}
	}
	return nil
}

// startAgentDetached best-effort spawns ssh-agent. Fixed socket binding
// is not used on Windows; the agent chooses its own endpoint.
func (s *Supervisor) startAgentDetached(socketPath string) (pid int, err error) {
	return s.exec.StartDetached("", nil, "ssh-agent")
}

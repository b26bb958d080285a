//go:build !unix && !windows

package auth

import "context"

// ensureAgentReady fails immediately: this platform has no ssh-agent
// concept bgit knows how to drive, and attempting a spawn would only
// produce a confusing downstream failure.
func (s *Supervisor) ensureAgentReady(ctx context.Context) error {
	return ErrUnsupportedPlatform
}

func (s *Supervisor) startAgentDetached(socketPath string) (pid int, err error) {
	return 0, ErrUnsupportedPlatform
}

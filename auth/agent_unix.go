//go:build unix

package auth

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ensureAgentReady implements the Unix agent strategy. Steps, in strict
// order, each attempted only when the previous one failed:
//
//  1. Adopt persistent: a live saved agent, or a live unrecorded socket
//     already bound at the fixed bgit path.
//  2. Create persistent: spawn a detached agent on the fixed socket and
//     poll for readiness; retry once without -a for older agent binaries.
//  3. Adopt environment: a working agent named by SSH_AUTH_SOCK.
//  4. Spawn and parse: run ssh-agent, parse its eval output, publish it.
//
// Every successful path ends in finalize, which recomputes effective auth
// and publishes it to the process environment.
func (s *Supervisor) ensureAgentReady(ctx context.Context) error {
	if err := os.MkdirAll(s.store.SSHDir(), 0o700); err != nil {
		s.log.Warn("failed to ensure ssh directory", "error", err)
	}

	// Step 1: adopt a persistent agent.
	socketPath := s.store.SocketPath()
	if st := s.store.Load(); st != nil && agentAlive(ctx, s.exec, st.SocketPath, st.Pid) {
		s.log.Debug("adopted saved agent", "socket", st.SocketPath)
		return s.finalize(ctx)
	}
	if info, err := os.Stat(socketPath); err == nil {
		if isSocketFile(info) && agentAlive(ctx, s.exec, socketPath, "") {
			s.log.Debug("adopted unrecorded agent at fixed socket", "socket", socketPath)
			// No pid record exists for this agent, so publish the socket
			// now; finalize resolves it through the environment.
			s.store.FinalizeEnv(socketPath, "")
			return s.finalize(ctx)
		}
		// Dead or bogus file at the fixed path: clear it and let the
		// socket state settle before binding a new agent there.
		s.log.Debug("removing stale agent socket", "socket", socketPath)
		s.store.Cleanup()
		time.Sleep(staleSocketSettleDelay)
	}

	// Step 2: create a persistent agent bound to the fixed socket.
	if err := s.createPersistentAgent(ctx, socketPath); err == nil {
		return s.finalize(ctx)
	} else {
		s.log.Debug("persistent agent creation failed", "error", err)
	}

	// Step 3: adopt whatever agent the environment names.
	if envSock := os.Getenv("SSH_AUTH_SOCK"); envSock != "" && envSock != socketPath {
		if agentAlive(ctx, s.exec, envSock, os.Getenv("SSH_AGENT_PID")) {
			s.log.Debug("adopted agent from environment", "socket", envSock)
			return s.finalize(ctx)
		}
	}

	// Step 4: spawn an unbound agent and parse its output.
	if err := s.spawnAndParse(ctx); err != nil {
		// Last resort: the environment socket again, even if it matched
		// the fixed path we just failed to bind.
		if envSock := os.Getenv("SSH_AUTH_SOCK"); envSock != "" && agentAlive(ctx, s.exec, envSock, os.Getenv("SSH_AGENT_PID")) {
			return s.finalize(ctx)
		}
		return err
	}
	return s.finalize(ctx)
}

// createPersistentAgent spawns a detached agent bound to socketPath and
// waits for the socket to appear and answer the liveness check.
func (s *Supervisor) createPersistentAgent(ctx context.Context, socketPath string) error {
	pid, err := s.startAgentDetached(socketPath)
	if err != nil {
		// Older agent binaries reject -a; retry once unbound. Its socket
		// lands elsewhere, so steps 3/4 will have to find it.
		s.log.Debug("spawn with fixed socket failed, retrying unbound", "error", err)
		if _, err2 := s.startAgentDetached(""); err2 != nil {
			return err2
		}
		return err
	}

	for i := 0; i < socketPollAttempts; i++ {
		if info, statErr := os.Stat(socketPath); statErr == nil && isSocketFile(info) {
			if agentAlive(ctx, s.exec, socketPath, strconv.Itoa(pid)) {
				if saveErr := s.store.Save(socketPath, strconv.Itoa(pid)); saveErr != nil {
					s.log.Warn("failed to record agent pid", "error", saveErr)
				}
				return nil
			}
		}
		time.Sleep(socketPollInterval)
	}
	return ErrAgentUnreachable
}

// startAgentDetached spawns ssh-agent so it outlives bgit. The executor
// starts the child in its own session, so -D keeps the agent in the
// foreground of that session and the returned pid is the agent's own,
// fit for the pid record. A wrapper launcher (setsid, nohup) must not be
// used here: it would fork, exit, and leave its dead pid in the record.
// An empty socketPath spawns unbound.
func (s *Supervisor) startAgentDetached(socketPath string) (pid int, err error) {
	args := []string{}
	if socketPath != "" {
		args = append(args, "-a", socketPath)
	}
	args = append(args, "-D")

	return s.exec.StartDetached("", nil, "ssh-agent", args...)
}

// spawnAndParse runs ssh-agent in its default daemonizing mode, parses
// the socket assignment from its output, and publishes it.
func (s *Supervisor) spawnAndParse(ctx context.Context) error {
	stdout, _, err := s.exec.Run(ctx, "", "ssh-agent")
	if err != nil {
		return fmt.Errorf("%w: spawn ssh-agent: %v", ErrAgentUnreachable, err)
	}

	sock, pid, err := parseAgentOutput(string(stdout))
	if err != nil {
		return err
	}

	// Explicit set-for-compatibility write so the liveness check in
	// finalize can see the new agent through the environment.
	s.store.FinalizeEnv(sock, pid)
	s.log.Debug("spawned agent from parsed output", "socket", sock, "pid", pid)
	return nil
}

package auth

import (
	"context"
	"fmt"
	"strings"

	pexec "github.com/rootCircle/bgit/exec"
)

// noIdentitiesMsg is printed by ssh-add -l when the agent is alive but
// empty. Zero identities is a valid state, not an error.
const noIdentitiesMsg = "The agent has no identities"

// agentEnv builds the per-invocation environment entries that pin an
// ssh-add/ssh-agent subprocess to a specific agent. The process-wide
// environment is never mutated here; only Store.FinalizeEnv does that.
func agentEnv(socketPath, pid string) []string {
	var env []string
	if socketPath != "" {
		env = append(env, "SSH_AUTH_SOCK="+socketPath)
	}
	if pid != "" {
		env = append(env, "SSH_AGENT_PID="+pid)
	}
	return env
}

// identityCount probes the agent at socketPath by listing its identities
// with `ssh-add -l`. It returns the number of loaded identities; an
// unreachable agent returns ErrAgentUnreachable. This is the single
// liveness probe used by the store, the supervisor, and enrollment.
func identityCount(ctx context.Context, ex pexec.CommandExecutor, socketPath, pid string) (int, error) {
	stdout, stderr, err := ex.RunEnv(ctx, "", agentEnv(socketPath, pid), "ssh-add", "-l")
	if err != nil {
		out := string(stderr)
		// ssh-add exits 1 with this message when the agent is fine but
		// holds nothing; some builds print it on stdout.
		if strings.Contains(out, noIdentitiesMsg) || strings.Contains(string(stdout), noIdentitiesMsg) {
			return 0, nil
		}
		if strings.Contains(out, "Could not open a connection to your authentication agent") {
			return 0, fmt.Errorf("%w: %s", ErrAgentUnreachable, socketPath)
		}
		return 0, fmt.Errorf("%w: ssh-add -l: %v", ErrAgentUnreachable, err)
	}

	count := 0
	for _, line := range strings.Split(string(stdout), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, noIdentitiesMsg) {
			continue
		}
		count++
	}
	return count, nil
}

// agentAlive reports whether the agent at socketPath answers the probe.
func agentAlive(ctx context.Context, ex pexec.CommandExecutor, socketPath, pid string) bool {
	_, err := identityCount(ctx, ex, socketPath, pid)
	return err == nil
}

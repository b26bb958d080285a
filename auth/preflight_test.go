package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootCircle/bgit/config"
	"github.com/rootCircle/bgit/prompt"
)

func newTestPreflight(t *testing.T, cfg *config.Config) (*Preflight, *Supervisor) {
	t.Helper()
	ex := failingAgentExecutor()
	sshDir := t.TempDir()
	store := NewStoreAt(sshDir, ex)
	sup := NewSupervisor(store, ex)
	enroll := NewEnrollment(sshDir, "", ex, &prompt.Script{})
	return NewPreflight(cfg, sup, enroll), sup
}

func TestPreflightKeepsHTTPSURLWithoutAgent(t *testing.T) {
	cfg := testConfig(t)
	pf, _ := newTestPreflight(t, cfg)

	url, err := pf.Prepare(context.Background(), "https://github.com/o/r.git")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/o/r.git", url, "HTTPS remotes need no agent work")
}

func TestPreflightRewritesSSHToHTTPS(t *testing.T) {
	cfg := testConfig(t)
	cfg.SetPreferred(config.PreferredAuthHTTPS)
	pf, _ := newTestPreflight(t, cfg)

	url, err := pf.Prepare(context.Background(), "git@github.com:o/r.git")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/o/r.git", url)
}

func TestPreflightSSHRemoteFailsWithoutAgent(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	t.Setenv("SSH_AGENT_PID", "")

	pf, _ := newTestPreflight(t, testConfig(t))

	_, err := pf.Prepare(context.Background(), "git@github.com:o/r.git")
	assert.ErrorIs(t, err, ErrAgentUnreachable)
}

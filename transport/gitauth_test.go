package transport

import (
	"context"
	"errors"
	"fmt"
	"os"
	osexec "os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootCircle/bgit/auth"
	"github.com/rootCircle/bgit/config"
	pexec "github.com/rootCircle/bgit/exec"
	"github.com/rootCircle/bgit/git"
	"github.com/rootCircle/bgit/prompt"
)

// newTestAuthenticator wires an Authenticator whose negotiator resolves
// the configured HTTPS credentials. The mock executor records every call
// so tests can assert the agent supervisor stays untouched.
func newTestAuthenticator(t *testing.T) (*Authenticator, *pexec.MockExecutor) {
	t.Helper()

	cfg := config.Default()
	cfg.SetHTTPSCredentials("alice", "tok-123")

	mock := pexec.NewMockExecutor(nil)
	store := auth.NewStoreAt(t.TempDir(), mock)
	sup := auth.NewSupervisor(store, mock)
	enroll := auth.NewEnrollment(store.SSHDir(), cfg.SSHKeyFile(), mock, prompt.NonInteractive{})
	negotiator := auth.NewNegotiator(cfg, sup, enroll, prompt.NonInteractive{})
	pf := auth.NewPreflight(cfg, sup, enroll)
	return NewAuthenticator(pf, negotiator), mock
}

func TestRunAuthenticatedSSHSingleAttempt(t *testing.T) {
	a, mock := newTestAuthenticator(t)

	var envs [][]string
	err := a.RunAuthenticated(context.Background(), "git@github.com:o/r.git", func(extraEnv []string) error {
		envs = append(envs, extraEnv)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, envs, 1)
	assert.Nil(t, envs[0], "ssh attempts run with the inherited environment")
	assert.Empty(t, mock.GetCalls())
}

func TestRunAuthenticatedHTTPSRetriesOnRejection(t *testing.T) {
	a, mock := newTestAuthenticator(t)

	var envs [][]string
	err := a.RunAuthenticated(context.Background(), "https://github.com/o/r.git", func(extraEnv []string) error {
		envs = append(envs, extraEnv)
		if len(envs) == 1 {
			return fmt.Errorf("git push failed: %w", git.ErrRemoteAuthRejected)
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, envs, 2, "a rejection must renegotiate and retry")

	for _, env := range envs {
		assert.Contains(t, env, "GIT_TERMINAL_PROMPT=0")
		assert.Contains(t, env, "BGIT_ASKPASS_USERNAME=alice")
		assert.Contains(t, env, "BGIT_ASKPASS_PASSWORD=tok-123")
	}
	assert.Empty(t, mock.GetCalls(), "user/pass negotiation must not touch the agent")
}

func TestRunAuthenticatedHTTPSNonAuthErrorAborts(t *testing.T) {
	a, _ := newTestAuthenticator(t)

	boom := errors.New("network unreachable")
	var attempts int
	err := a.RunAuthenticated(context.Background(), "https://github.com/o/r.git", func(extraEnv []string) error {
		attempts++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}

func TestRunAuthenticatedHTTPSStopsAtAttemptCeiling(t *testing.T) {
	a, _ := newTestAuthenticator(t)

	var attempts int
	err := a.RunAuthenticated(context.Background(), "https://github.com/o/r.git", func(extraEnv []string) error {
		attempts++
		return fmt.Errorf("git push failed: %w", git.ErrRemoteAuthRejected)
	})
	assert.ErrorIs(t, err, auth.ErrTooManyAttempts)
	assert.Equal(t, auth.MaxAuthAttempts, attempts)
}

func TestRunAuthenticatedAskpassHelperLifecycle(t *testing.T) {
	a, _ := newTestAuthenticator(t)

	var helper string
	err := a.RunAuthenticated(context.Background(), "https://github.com/o/r.git", func(extraEnv []string) error {
		for _, kv := range extraEnv {
			if v, ok := strings.CutPrefix(kv, "GIT_ASKPASS="); ok {
				helper = v
			}
		}
		require.NotEmpty(t, helper)
		info, err := os.Stat(helper)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

		data, err := os.ReadFile(helper)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "tok-123", "the secret must never be written to disk")
		return nil
	})
	require.NoError(t, err)

	_, statErr := os.Stat(helper)
	assert.True(t, os.IsNotExist(statErr), "the helper must be removed when the operation ends")
}

func TestAskpassScriptAnswersFromEnvironment(t *testing.T) {
	helper, cleanup, err := writeAskpassHelper()
	require.NoError(t, err)
	defer cleanup()

	env := append(os.Environ(),
		"BGIT_ASKPASS_USERNAME=alice",
		"BGIT_ASKPASS_PASSWORD=tok-123",
	)
	answers := map[string]string{
		"Username for 'https://github.com':":       "alice\n",
		"Password for 'https://alice@github.com':": "tok-123\n",
	}
	for question, want := range answers {
		cmd := osexec.Command(helper, question)
		cmd.Env = env
		out, err := cmd.Output()
		require.NoError(t, err)
		assert.Equal(t, want, string(out))
	}
}

func TestCredentialEnvOnlyForUserPass(t *testing.T) {
	cred, err := auth.NewUserPassCredential("alice", "tok-123")
	require.NoError(t, err)
	assert.NotEmpty(t, credentialEnv("/tmp/helper", cred))

	assert.Nil(t, credentialEnv("/tmp/helper", nil))
}

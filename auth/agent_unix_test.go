//go:build unix

package auth

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pexec "github.com/rootCircle/bgit/exec"
)

func TestEnsureAgentReadyAdoptsSavedAgent(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	t.Setenv("SSH_AGENT_PID", "")

	store := NewStoreAt(t.TempDir(), emptyAgentExecutor())
	listenUnix(t, store.SocketPath())
	require.NoError(t, store.Save(store.SocketPath(), "4321"))

	sup := NewSupervisor(store, store.exec)
	require.NoError(t, sup.EnsureAgentReady(context.Background()))

	assert.Equal(t, store.SocketPath(), os.Getenv("SSH_AUTH_SOCK"))
	assert.Equal(t, "4321", os.Getenv("SSH_AGENT_PID"))
}

func TestEnsureAgentReadyAdoptsUnrecordedSocket(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	t.Setenv("SSH_AGENT_PID", "")

	// A socket at the fixed path with no pid record, as left by a crash
	// that lost the record but not the agent.
	store := NewStoreAt(t.TempDir(), emptyAgentExecutor())
	listenUnix(t, store.SocketPath())

	sup := NewSupervisor(store, store.exec)
	require.NoError(t, sup.EnsureAgentReady(context.Background()))

	assert.Equal(t, store.SocketPath(), os.Getenv("SSH_AUTH_SOCK"))
}

func TestEnsureAgentReadyFreshMachine(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	t.Setenv("SSH_AGENT_PID", "")

	mock := emptyAgentExecutor()
	store := NewStoreAt(t.TempDir(), mock)

	// No saved state, no socket, no environment. The spawn rule stands in
	// for a real agent: when the supervisor starts the detached process,
	// a socket appears at the requested path, exactly as ssh-agent -a
	// would bind it.
	var spawned bool
	mock.AddRule(func(dir, name string, args []string) bool {
		if name != "ssh-agent" {
			return false
		}
		if !spawned {
			spawned = true
			listenUnix(t, store.SocketPath())
		}
		return true
	}, pexec.MockResponse{Pid: 4242})

	sup := NewSupervisor(store, mock)
	require.NoError(t, sup.EnsureAgentReady(context.Background()))

	// The record must name the agent process itself, because cleanup
	// spares the recorded pid only while that pid is alive.
	state := store.Load()
	require.NotNil(t, state)
	assert.Equal(t, store.SocketPath(), state.SocketPath)
	assert.Equal(t, "4242", state.Pid)
	assert.Equal(t, store.SocketPath(), os.Getenv("SSH_AUTH_SOCK"))
	assert.Equal(t, "4242", os.Getenv("SSH_AGENT_PID"))

	var detached *pexec.MockCall
	for _, call := range mock.GetCalls() {
		if call.Detached {
			c := call
			detached = &c
			break
		}
	}
	require.NotNil(t, detached, "agent must be spawned detached")
	assert.Equal(t, "ssh-agent", detached.Name, "no wrapper launcher: its pid would be recorded instead of the agent's")
	assert.Equal(t, []string{"-a", store.SocketPath(), "-D"}, detached.Args)
}

func TestEnsureAgentReadyAdoptsEnvironmentAgent(t *testing.T) {
	dir := t.TempDir()
	envSock := dir + "/env-agent.sock"
	listenUnix(t, envSock)
	t.Setenv("SSH_AUTH_SOCK", envSock)
	t.Setenv("SSH_AGENT_PID", "7777")

	// Spawning is mocked to fail so the supervisor has to fall through to
	// the environment adoption step.
	mock := emptyAgentExecutor()
	mock.AddRule(func(dir, name string, args []string) bool {
		return name == "ssh-agent"
	}, pexec.MockResponse{Err: errors.New("spawn disabled")})
	store := NewStoreAt(t.TempDir(), mock)

	sup := NewSupervisor(store, mock)
	require.NoError(t, sup.EnsureAgentReady(context.Background()))

	assert.Equal(t, envSock, os.Getenv("SSH_AUTH_SOCK"))
}

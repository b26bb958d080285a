package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundSocket(t *testing.T) {
	assert.Equal(t, "/home/u/.ssh/bgit-agent.sock",
		BoundSocket("ssh-agent -a /home/u/.ssh/bgit-agent.sock -D"))
	assert.Equal(t, "/tmp/x.sock",
		BoundSocket("setsid ssh-agent -a /tmp/x.sock -D"))
	assert.Empty(t, BoundSocket("ssh-agent -D"))
	assert.Empty(t, BoundSocket("ssh-agent"))
}

func TestOrphansAmong(t *testing.T) {
	procs := []AgentProcess{
		{PID: 100, Command: "ssh-agent -a /home/u/.ssh/bgit-agent.sock -D"},
		{PID: 200, Command: "ssh-agent -a /home/u/.ssh/bgit-agent.sock -D"},
		{PID: 300, Command: "ssh-agent"},
	}

	orphans := orphansAmong(procs, "bgit-agent.sock", 100)
	assert.Len(t, orphans, 1)
	assert.Equal(t, 200, orphans[0].PID)
}

func TestOrphansAmongNoRecordedAgent(t *testing.T) {
	procs := []AgentProcess{
		{PID: 100, Command: "ssh-agent -a /home/u/.ssh/bgit-agent.sock -D"},
		{PID: 300, Command: "ssh-agent"},
	}

	// With no recorded agent every bgit-bound agent is an orphan; plain
	// user agents are never touched.
	orphans := orphansAmong(procs, "bgit-agent.sock", 0)
	assert.Len(t, orphans, 1)
	assert.Equal(t, 100, orphans[0].PID)
}

func TestAliveRejectsBogusPids(t *testing.T) {
	assert.False(t, Alive(0))
	assert.False(t, Alive(-1))
}

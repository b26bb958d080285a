// Package process finds and cleans up ssh-agent processes that bgit
// spawned. Agents are launched detached so they survive bgit exiting;
// the flip side is that a crash can leave an agent running with no state
// record pointing at it. Discovery goes by command line: a bgit agent is
// always bound to the fixed socket name, which makes it identifiable.
package process

import (
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/rootCircle/bgit/logger"
)

// AgentProcess is one running ssh-agent found on the system.
type AgentProcess struct {
	PID     int
	Command string // full command line
}

// FindAgentProcesses lists every running ssh-agent with its command line.
func FindAgentProcesses() ([]AgentProcess, error) {
	var processes []AgentProcess
	log := logger.WithComponent("process")

	switch runtime.GOOS {
	case "darwin", "linux":
		cmd := exec.Command("pgrep", "-f", "ssh-agent")
		output, err := cmd.Output()
		if err != nil {
			// pgrep exits 1 when nothing matched
			if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
				return processes, nil
			}
			return nil, err
		}

		for _, pidStr := range strings.Fields(string(output)) {
			pid, err := strconv.Atoi(strings.TrimSpace(pidStr))
			if err != nil {
				continue
			}

			psCmd := exec.Command("ps", "-p", pidStr, "-o", "args=")
			psOutput, err := psCmd.Output()
			if err != nil {
				continue
			}

			processes = append(processes, AgentProcess{
				PID:     pid,
				Command: strings.TrimSpace(string(psOutput)),
			})
		}

	case "windows":
		cmd := exec.Command("tasklist", "/FI", "IMAGENAME eq ssh-agent*", "/FO", "CSV", "/NH")
		output, err := cmd.Output()
		if err != nil {
			return nil, err
		}

		for _, line := range strings.Split(string(output), "\n") {
			fields := strings.Split(line, ",")
			if len(fields) >= 2 {
				pidStr := strings.Trim(strings.TrimSpace(fields[1]), "\"")
				pid, err := strconv.Atoi(pidStr)
				if err != nil {
					continue
				}
				processes = append(processes, AgentProcess{
					PID:     pid,
					Command: strings.Trim(fields[0], "\""),
				})
			}
		}
	}

	log.Debug("found ssh-agent processes", "count", len(processes))
	return processes, nil
}

// BoundSocket extracts the socket path from an ssh-agent command line, or
// "" when the agent was started without an explicit -a binding. The flag
// must stand alone as a token; a substring match would hit the "-a" in
// the word "ssh-agent" itself.
func BoundSocket(cmdLine string) string {
	fields := strings.Fields(cmdLine)
	for i, field := range fields {
		if field == "-a" && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return ""
}

// orphansAmong filters procs down to bgit-managed agents that are not the
// one currently recorded. A bgit agent is recognized by socketBasename in
// its command line; keepPID is the live recorded agent (0 when none).
func orphansAmong(procs []AgentProcess, socketBasename string, keepPID int) []AgentProcess {
	var orphans []AgentProcess
	for _, proc := range procs {
		if !strings.Contains(proc.Command, socketBasename) {
			continue
		}
		if keepPID != 0 && proc.PID == keepPID {
			continue
		}
		orphans = append(orphans, proc)
	}
	return orphans
}

// FindOrphanedAgents finds bgit-spawned agents whose pid does not match
// the recorded one. These are leftovers from crashed runs; each holds a
// dead or duplicate socket.
func FindOrphanedAgents(socketBasename string, keepPID int) ([]AgentProcess, error) {
	procs, err := FindAgentProcesses()
	if err != nil {
		return nil, err
	}

	log := logger.WithComponent("process")
	orphans := orphansAmong(procs, socketBasename, keepPID)
	for _, proc := range orphans {
		log.Info("found orphaned bgit agent", "pid", proc.PID, "command", proc.Command)
	}
	return orphans, nil
}

// CleanupOrphanedAgents terminates every orphaned bgit agent. Returns the
// number of processes killed; individual failures are logged and skipped.
func CleanupOrphanedAgents(socketBasename string, keepPID int) (int, error) {
	orphans, err := FindOrphanedAgents(socketBasename, keepPID)
	if err != nil {
		return 0, err
	}

	log := logger.WithComponent("process")
	killed := 0
	for _, proc := range orphans {
		log.Info("terminating orphaned bgit agent", "pid", proc.PID)
		if err := Terminate(proc.PID); err != nil {
			log.Error("failed to terminate agent", "pid", proc.PID, "error", err)
			continue
		}
		killed++
	}
	return killed, nil
}

// Package cli checks that the external tools bgit shells out to are
// actually installed before a workflow run starts, so a missing ssh-add
// surfaces as one clear message up front instead of a mid-flow failure.
package cli

import (
	"fmt"
	"os/exec"
	"strings"
)

// Prerequisite describes one external tool bgit depends on.
type Prerequisite struct {
	Name        string
	Required    bool
	Description string
	InstallURL  string
}

// DefaultPrerequisites lists the tools bgit invokes. git and the agent
// tools are hard requirements; ssh-keygen is only needed by create-creds.
func DefaultPrerequisites() []Prerequisite {
	return []Prerequisite{
		{
			Name:        "git",
			Required:    true,
			Description: "Git version control",
			InstallURL:  "https://git-scm.com/downloads",
		},
		{
			Name:        "ssh-agent",
			Required:    true,
			Description: "OpenSSH authentication agent",
			InstallURL:  "https://www.openssh.com",
		},
		{
			Name:        "ssh-add",
			Required:    true,
			Description: "OpenSSH agent key management",
			InstallURL:  "https://www.openssh.com",
		},
		{
			Name:        "ssh-keygen",
			Required:    false,
			Description: "OpenSSH key generation (only for creating keys)",
			InstallURL:  "https://www.openssh.com",
		},
	}
}

// CheckResult is the outcome of probing one prerequisite.
type CheckResult struct {
	Prerequisite Prerequisite
	Found        bool
	Path         string
	Version      string
	Error        error
}

// Check probes PATH for one tool and, when found, asks it for a version.
func Check(prereq Prerequisite) CheckResult {
	path, err := exec.LookPath(prereq.Name)
	if err != nil {
		return CheckResult{
			Prerequisite: prereq,
			Error:        fmt.Errorf("%s not found in PATH", prereq.Name),
		}
	}
	return CheckResult{
		Prerequisite: prereq,
		Found:        true,
		Path:         path,
		Version:      probeVersion(prereq.Name),
	}
}

// CheckAll probes every prerequisite in order.
func CheckAll(prereqs []Prerequisite) []CheckResult {
	results := make([]CheckResult, len(prereqs))
	for i, prereq := range prereqs {
		results[i] = Check(prereq)
	}
	return results
}

// ValidateRequired returns an error naming every missing required tool,
// with install pointers, or nil when all required tools are present.
func ValidateRequired(prereqs []Prerequisite) error {
	var missing []string
	for _, prereq := range prereqs {
		if !prereq.Required {
			continue
		}
		if result := Check(prereq); !result.Found {
			missing = append(missing, fmt.Sprintf("  - %s (%s)\n    Install: %s",
				prereq.Name, prereq.Description, prereq.InstallURL))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required CLI tools:\n%s", strings.Join(missing, "\n"))
	}
	return nil
}

// probeVersion asks a tool for its version. Tools disagree on the flag,
// and the OpenSSH agent tools print usage rather than a version, so an
// empty result is normal.
func probeVersion(name string) string {
	for _, flag := range []string{"--version", "-V", "version"} {
		out, err := exec.Command(name, flag).Output()
		if err != nil {
			continue
		}
		first, _, _ := strings.Cut(string(out), "\n")
		first = strings.TrimSpace(first)
		if len(first) > 100 {
			first = first[:100] + "..."
		}
		if first != "" {
			return first
		}
	}
	return ""
}

// FormatCheckResults renders the check results as a short report.
func FormatCheckResults(results []CheckResult) string {
	var sb strings.Builder
	sb.WriteString("CLI Prerequisites:\n")
	for _, r := range results {
		switch {
		case r.Found && r.Version != "":
			fmt.Fprintf(&sb, "  ✓ %s (%s)\n", r.Prerequisite.Name, r.Version)
		case r.Found:
			fmt.Fprintf(&sb, "  ✓ %s\n", r.Prerequisite.Name)
		case r.Prerequisite.Required:
			fmt.Fprintf(&sb, "  ✗ %s [REQUIRED]\n", r.Prerequisite.Name)
		default:
			fmt.Fprintf(&sb, "  ○ %s [optional]\n", r.Prerequisite.Name)
		}
	}
	return sb.String()
}

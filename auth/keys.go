package auth

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"

	pexec "github.com/rootCircle/bgit/exec"
	"github.com/rootCircle/bgit/logger"
	"github.com/rootCircle/bgit/prompt"
)

// conventionalKeyNames are the private key basenames probed under the SSH
// directory, in preference order.
var conventionalKeyNames = []string{"id_ed25519", "id_rsa", "id_ecdsa", "id_dsa"}

// KeyCandidate is one private key file considered for enrollment.
type KeyCandidate struct {
	Path        string
	DisplayName string
}

// Enrollment adds candidate private keys to the active agent. For each
// key it first tries a silent non-interactive add; when the agent demands
// a passphrase it asks the user before retrying with the terminal
// attached. A declined prompt skips the key and moves on.
type Enrollment struct {
	sshDir        string
	configuredKey string
	exec          pexec.CommandExecutor
	ui            prompt.Interactor
	log           *slog.Logger
}

// NewEnrollment returns an Enrollment over sshDir. configuredKey, when
// non-empty, is the user's preferred key from config and is tried first.
func NewEnrollment(sshDir, configuredKey string, ex pexec.CommandExecutor, ui prompt.Interactor) *Enrollment {
	return &Enrollment{
		sshDir:        sshDir,
		configuredKey: configuredKey,
		exec:          ex,
		ui:            ui,
		log:           logger.WithComponent("auth.keys"),
	}
}

// Candidates builds the ordered candidate list: the configured key first,
// then the conventional basenames, de-duplicated by resolved path. The
// list is recomputed on every call and never persisted.
func (e *Enrollment) Candidates() []KeyCandidate {
	seen := make(map[string]bool)
	var out []KeyCandidate

	add := func(path string) {
		resolved := path
		if r, err := filepath.EvalSymlinks(path); err == nil {
			resolved = r
		}
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		name := filepath.Base(path)
		if name == "" || name == "." {
			name = "ssh_key"
		}
		out = append(out, KeyCandidate{Path: path, DisplayName: name})
	}

	if e.configuredKey != "" {
		add(e.configuredKey)
	}
	for _, name := range conventionalKeyNames {
		add(filepath.Join(e.sshDir, name))
	}
	return out
}

// AddAllKeys enrolls every eligible candidate into the agent at
// socketPath. It returns the path of the first newly added key ("" when
// nothing was added, which is not an error; the caller decides whether an empty
// enrollment matters) and the number of keys added.
func (e *Enrollment) AddAllKeys(ctx context.Context, socketPath, pid string) (firstAdded string, added int, err error) {
	loaded := e.loadedFingerprints(ctx, socketPath, pid)

	for _, cand := range e.Candidates() {
		info, statErr := os.Stat(cand.Path)
		if statErr != nil {
			e.log.Debug("candidate key not found", "path", cand.Path)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if strings.HasSuffix(cand.Path, ".pub") {
			continue
		}
		if fp := publicKeyFingerprint(cand.Path + ".pub"); fp != "" && loaded[fp] {
			e.log.Debug("key already loaded in agent", "key", cand.DisplayName)
			continue
		}

		ok := e.addKey(ctx, cand, socketPath, pid)
		if ok {
			added++
			if firstAdded == "" {
				firstAdded = cand.Path
			}
		}
	}

	if added == 0 {
		prompt.Warn("No SSH keys were added to ssh-agent.")
	} else {
		prompt.Status("Added %d SSH key(s) to ssh-agent.", added)
	}
	e.log.Debug("key enrollment finished", "added", added)
	return firstAdded, added, nil
}

// addKey runs the two-phase add for one candidate: silent first, then
// interactive with explicit user confirmation when a passphrase is
// needed. Returns true when the key ended up in the agent.
func (e *Enrollment) addKey(ctx context.Context, cand KeyCandidate, socketPath, pid string) bool {
	_, stderr, err := e.exec.RunEnv(ctx, "", agentEnv(socketPath, pid), "ssh-add", cand.Path)
	if err == nil {
		e.log.Debug("key added without interaction", "key", cand.DisplayName)
		return true
	}

	if !passphraseNeeded(string(stderr)) {
		e.log.Debug("quick add failed", "key", cand.DisplayName, "stderr", strings.TrimSpace(string(stderr)))
		return false
	}

	if !e.ui.Confirm("Add SSH key '"+cand.DisplayName+"' to ssh-agent? (you may be prompted for passphrase)", true) {
		// A decline is a skip, not a failure.
		e.log.Debug("user declined interactive add", "key", cand.DisplayName)
		return false
	}

	prompt.Warn("Adding SSH key %s; enter its passphrase if prompted.", cand.DisplayName)
	if err := e.exec.RunInteractive(ctx, "", agentEnv(socketPath, pid), "ssh-add", cand.Path); err != nil {
		prompt.Fail("Failed to add SSH key %s", cand.DisplayName)
		return false
	}
	prompt.Status("SSH key %s added.", cand.DisplayName)
	return true
}

// loadedFingerprints returns the SHA256 fingerprints currently held by
// the agent, keyed for already-loaded detection. A probe failure yields
// an empty set; enrollment then simply attempts every candidate.
func (e *Enrollment) loadedFingerprints(ctx context.Context, socketPath, pid string) map[string]bool {
	out := make(map[string]bool)
	stdout, _, err := e.exec.RunEnv(ctx, "", agentEnv(socketPath, pid), "ssh-add", "-l")
	if err != nil {
		return out
	}
	for _, line := range strings.Split(string(stdout), "\n") {
		fields := strings.Fields(line)
		// "<bits> SHA256:... comment (type)"
		if len(fields) >= 2 && strings.HasPrefix(fields[1], "SHA256:") {
			out[fields[1]] = true
		}
	}
	return out
}

// publicKeyFingerprint computes the SHA256 fingerprint of the public key
// at pubPath, or "" when the file is missing or unparsable.
func publicKeyFingerprint(pubPath string) string {
	data, err := os.ReadFile(pubPath)
	if err != nil {
		return ""
	}
	pub, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return ""
	}
	return ssh.FingerprintSHA256(pub)
}

// passphraseNeeded inspects a failed silent ssh-add's stderr and reports
// whether an interactive retry could succeed. Connection failures cannot
// be fixed by a passphrase; everything else is worth offering to the
// user, matching ssh-add's vague error surface.
func passphraseNeeded(stderr string) bool {
	if strings.Contains(stderr, "Could not open a connection to your authentication agent") {
		return false
	}
	if strings.Contains(stderr, "No such file or directory") {
		return false
	}
	return true
}

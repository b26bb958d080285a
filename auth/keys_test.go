package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pexec "github.com/rootCircle/bgit/exec"
	"github.com/rootCircle/bgit/prompt"
)

func TestCandidatesConfiguredKeyFirst(t *testing.T) {
	sshDir := t.TempDir()
	configured := filepath.Join(t.TempDir(), "work_key")

	e := NewEnrollment(sshDir, configured, pexec.NewMockExecutor(nil), &prompt.Script{})
	cands := e.Candidates()

	require.Len(t, cands, 5)
	assert.Equal(t, configured, cands[0].Path)
	assert.Equal(t, "work_key", cands[0].DisplayName)
	assert.Equal(t, filepath.Join(sshDir, "id_ed25519"), cands[1].Path)
	assert.Equal(t, filepath.Join(sshDir, "id_rsa"), cands[2].Path)
	assert.Equal(t, filepath.Join(sshDir, "id_ecdsa"), cands[3].Path)
	assert.Equal(t, filepath.Join(sshDir, "id_dsa"), cands[4].Path)
}

func TestCandidatesDedupesConfiguredConventionalKey(t *testing.T) {
	sshDir := t.TempDir()
	configured := filepath.Join(sshDir, "id_ed25519")

	e := NewEnrollment(sshDir, configured, pexec.NewMockExecutor(nil), &prompt.Script{})
	cands := e.Candidates()

	require.Len(t, cands, 4)
	assert.Equal(t, configured, cands[0].Path)
}

func TestAddAllKeysQuickAdd(t *testing.T) {
	sshDir := t.TempDir()
	keyPath := writeTestKeyPair(t, sshDir, "id_ed25519")

	mock := pexec.NewMockExecutor(nil)
	// ssh-add -l fails as empty agent; the bare add succeeds silently.
	mock.AddExactMatch("ssh-add", []string{"-l"}, pexec.MockResponse{
		Stderr: []byte("The agent has no identities.\n"),
		Err:    errors.New("exit status 1"),
	})

	e := NewEnrollment(sshDir, "", mock, &prompt.Script{})
	first, added, err := e.AddAllKeys(context.Background(), "/tmp/sock", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, keyPath, first)
}

func TestAddAllKeysSkipsAlreadyLoaded(t *testing.T) {
	sshDir := t.TempDir()
	keyPath := writeTestKeyPair(t, sshDir, "id_ed25519")
	fp := publicKeyFingerprint(keyPath + ".pub")
	require.NotEmpty(t, fp)

	mock := pexec.NewMockExecutor(nil)
	mock.AddExactMatch("ssh-add", []string{"-l"}, pexec.MockResponse{
		Stdout: []byte("256 " + fp + " test key (ED25519)\n"),
	})

	e := NewEnrollment(sshDir, "", mock, &prompt.Script{})
	_, added, err := e.AddAllKeys(context.Background(), "/tmp/sock", "1")
	require.NoError(t, err)
	assert.Zero(t, added, "a loaded key must not be re-added")

	for _, call := range mock.GetCalls() {
		if call.Name == "ssh-add" {
			assert.Equal(t, []string{"-l"}, call.Args, "only the listing probe may run")
		}
	}
}

func TestAddKeyDeclinedPassphraseSkips(t *testing.T) {
	sshDir := t.TempDir()
	keyPath := writeTestKeyPair(t, sshDir, "id_ed25519")

	mock := pexec.NewMockExecutor(nil)
	mock.AddExactMatch("ssh-add", []string{keyPath}, pexec.MockResponse{
		Stderr: []byte("Enter passphrase for " + keyPath + ":\n"),
		Err:    errors.New("exit status 1"),
	})

	ui := &prompt.Script{Confirms: []bool{false}}
	e := NewEnrollment(sshDir, "", mock, ui)
	_, added, err := e.AddAllKeys(context.Background(), "/tmp/sock", "1")
	require.NoError(t, err, "a declined key is skipped, not an error")
	assert.Zero(t, added)

	for _, call := range mock.GetCalls() {
		assert.False(t, call.Interactive, "declining must prevent the interactive retry")
	}
}

func TestAddKeyConfirmedPassphraseGoesInteractive(t *testing.T) {
	sshDir := t.TempDir()
	keyPath := writeTestKeyPair(t, sshDir, "id_ed25519")

	quickAddFailed := false
	mock := pexec.NewMockExecutor(nil)
	mock.AddRule(func(dir, name string, args []string) bool {
		if name != "ssh-add" || len(args) != 1 || args[0] != keyPath || quickAddFailed {
			return false
		}
		quickAddFailed = true
		return true
	}, pexec.MockResponse{
		Stderr: []byte("Enter passphrase for " + keyPath + ":\n"),
		Err:    errors.New("exit status 1"),
	})

	ui := &prompt.Script{Confirms: []bool{true}}
	e := NewEnrollment(sshDir, "", mock, ui)
	_, added, err := e.AddAllKeys(context.Background(), "/tmp/sock", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	var sawInteractive bool
	for _, call := range mock.GetCalls() {
		if call.Interactive {
			sawInteractive = true
			assert.Equal(t, []string{keyPath}, call.Args)
			assert.Contains(t, call.ExtraEnv, "SSH_AUTH_SOCK=/tmp/sock")
		}
	}
	assert.True(t, sawInteractive)
}

func TestAddKeyConnectionFailureDoesNotPrompt(t *testing.T) {
	sshDir := t.TempDir()
	keyPath := writeTestKeyPair(t, sshDir, "id_ed25519")

	mock := pexec.NewMockExecutor(nil)
	mock.AddExactMatch("ssh-add", []string{keyPath}, pexec.MockResponse{
		Stderr: []byte("Could not open a connection to your authentication agent.\n"),
		Err:    errors.New("exit status 2"),
	})

	ui := &prompt.Script{}
	e := NewEnrollment(sshDir, "", mock, ui)
	_, added, err := e.AddAllKeys(context.Background(), "/tmp/sock", "1")
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Empty(t, ui.Asked, "connection failures are not fixable by a passphrase")
}

func TestAddAllKeysIgnoresMissingCandidates(t *testing.T) {
	e := NewEnrollment(t.TempDir(), "", pexec.NewMockExecutor(nil), &prompt.Script{})
	first, added, err := e.AddAllKeys(context.Background(), "/tmp/sock", "1")
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Empty(t, first)
}

func TestPassphraseNeeded(t *testing.T) {
	assert.True(t, passphraseNeeded("Enter passphrase for /home/u/.ssh/id_rsa:"))
	assert.False(t, passphraseNeeded("Could not open a connection to your authentication agent."))
	assert.False(t, passphraseNeeded("/home/u/.ssh/id_rsa: No such file or directory"))
}

func TestPublicKeyFingerprint(t *testing.T) {
	sshDir := t.TempDir()
	keyPath := writeTestKeyPair(t, sshDir, "id_ed25519")

	fp := publicKeyFingerprint(keyPath + ".pub")
	assert.Contains(t, fp, "SHA256:")

	assert.Empty(t, publicKeyFingerprint(filepath.Join(sshDir, "missing.pub")))

	junk := filepath.Join(sshDir, "junk.pub")
	require.NoError(t, os.WriteFile(junk, []byte("not a key"), 0o644))
	assert.Empty(t, publicKeyFingerprint(junk))
}

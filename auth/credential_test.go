package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialTypeBitset(t *testing.T) {
	allowed := CredTypeSSHKey | CredTypeDefault
	assert.True(t, allowed.Has(CredTypeSSHKey))
	assert.True(t, allowed.Has(CredTypeDefault))
	assert.False(t, allowed.Has(CredTypeUserPassPlaintext))

	assert.Equal(t, "none", CredentialType(0).String())
	assert.Equal(t, "ssh-key|default", allowed.String())
	assert.Equal(t, "user-pass", CredTypeUserPassPlaintext.String())
}

func TestNewUserPassCredential(t *testing.T) {
	cred, err := NewUserPassCredential("alice", "tok")
	require.NoError(t, err)
	assert.Equal(t, CredentialUserPass, cred.Kind())
	assert.Equal(t, "alice", cred.Username())
	assert.Equal(t, "tok", cred.Secret())
}

func TestNewUserPassCredentialRejectsEmptyFields(t *testing.T) {
	_, err := NewUserPassCredential("", "tok")
	assert.ErrorIs(t, err, ErrInvalidCredentialsInput)

	_, err = NewUserPassCredential("alice", "")
	assert.ErrorIs(t, err, ErrInvalidCredentialsInput)
}

func TestCredentialStringHidesSecret(t *testing.T) {
	cred, err := NewUserPassCredential("alice", "super-secret-token")
	require.NoError(t, err)
	assert.NotContains(t, cred.String(), "super-secret-token")
	assert.Contains(t, cred.String(), "alice")
}

func TestNewKeyFileCredential(t *testing.T) {
	keyPath := writeTestKeyPair(t, t.TempDir(), "id_ed25519")

	cred, err := NewKeyFileCredential("git", keyPath)
	require.NoError(t, err)
	assert.Equal(t, CredentialSSHKeyFile, cred.Kind())
	assert.Equal(t, keyPath, cred.KeyPath())
	assert.Len(t, cred.Signers(), 1)
}

func TestNewKeyFileCredentialMissingFile(t *testing.T) {
	_, err := NewKeyFileCredential("git", filepath.Join(t.TempDir(), "absent"))
	assert.ErrorIs(t, err, ErrNoUsableKey)
}

func TestNewAgentCredentialUnreachableSocket(t *testing.T) {
	_, err := NewAgentCredential("git", filepath.Join(t.TempDir(), "no-agent.sock"))
	assert.ErrorIs(t, err, ErrAgentUnreachable)
}

package auth

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// CredentialType is the bitset of credential kinds a transport will
// accept for a given attempt.
type CredentialType uint

const (
	// CredTypeSSHKey allows SSH key credentials (agent-backed or from
	// key files).
	CredTypeSSHKey CredentialType = 1 << iota
	// CredTypeUserPassPlaintext allows plaintext username/secret pairs.
	CredTypeUserPassPlaintext
	// CredTypeDefault allows whatever the platform considers ambient
	// authentication.
	CredTypeDefault
)

// Has reports whether t includes kind.
func (t CredentialType) Has(kind CredentialType) bool {
	return t&kind != 0
}

func (t CredentialType) String() string {
	switch {
	case t == 0:
		return "none"
	}
	var parts []byte
	add := func(s string) {
		if len(parts) > 0 {
			parts = append(parts, '|')
		}
		parts = append(parts, s...)
	}
	if t.Has(CredTypeSSHKey) {
		add("ssh-key")
	}
	if t.Has(CredTypeUserPassPlaintext) {
		add("user-pass")
	}
	if t.Has(CredTypeDefault) {
		add("default")
	}
	return string(parts)
}

// CredentialKind identifies how a Credential authenticates.
type CredentialKind int

const (
	// CredentialSSHAgent signs with identities held by a live agent.
	CredentialSSHAgent CredentialKind = iota
	// CredentialSSHKeyFile signs with a private key read from disk.
	CredentialSSHKeyFile
	// CredentialUserPass authenticates with a username and secret.
	CredentialUserPass
)

// Credential is the opaque authentication material handed back to the
// transport layer. Its String form never exposes secrets, and it is never
// persisted.
type Credential struct {
	kind     CredentialKind
	username string

	// SSH material: signers for agent- or file-backed credentials.
	signers []ssh.Signer
	keyPath string

	// HTTPS material.
	secret string
}

// Kind returns how this credential authenticates.
func (c *Credential) Kind() CredentialKind { return c.kind }

// Username returns the username the credential authenticates as.
func (c *Credential) Username() string { return c.username }

// KeyPath returns the private key path for file-backed credentials, or "".
func (c *Credential) KeyPath() string { return c.keyPath }

// Signers returns the SSH signers for SSH-class credentials.
func (c *Credential) Signers() []ssh.Signer { return c.signers }

// Secret returns the secret for user/pass credentials. Callers must not
// log the returned value.
func (c *Credential) Secret() string { return c.secret }

// String describes the credential without exposing secret material.
func (c *Credential) String() string {
	switch c.kind {
	case CredentialSSHAgent:
		return fmt.Sprintf("ssh-agent credential for %q (%d identities)", c.username, len(c.signers))
	case CredentialSSHKeyFile:
		return fmt.Sprintf("ssh-key credential for %q from %s", c.username, c.keyPath)
	case CredentialUserPass:
		return fmt.Sprintf("user/pass credential for %q", c.username)
	}
	return "credential"
}

// NewAgentCredential builds an agent-backed SSH credential by listing the
// signers available on the agent socket. An agent with zero identities
// yields ErrNoUsableKey: the transport would have nothing to offer.
func NewAgentCredential(username, socketPath string) (*Credential, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrAgentUnreachable, socketPath, err)
	}
	defer conn.Close()

	signers, err := agent.NewClient(conn).Signers()
	if err != nil {
		return nil, fmt.Errorf("%w: list signers: %v", ErrAgentUnreachable, err)
	}
	if len(signers) == 0 {
		return nil, fmt.Errorf("%w: agent holds no identities", ErrNoUsableKey)
	}

	return &Credential{
		kind:     CredentialSSHAgent,
		username: username,
		signers:  signers,
	}, nil
}

// NewKeyFileCredential builds an SSH credential directly from a private
// key file, without an agent. Passphrase-protected keys fail here; those
// are only usable through the agent after interactive enrollment.
func NewKeyFileCredential(username, keyPath string) (*Credential, error) {
	pem, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrNoUsableKey, keyPath, err)
	}

	signer, err := ssh.ParsePrivateKey(pem)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrNoUsableKey, keyPath, err)
	}

	return &Credential{
		kind:     CredentialSSHKeyFile,
		username: username,
		signers:  []ssh.Signer{signer},
		keyPath:  keyPath,
	}, nil
}

// NewUserPassCredential builds a plaintext username/secret credential.
// Empty fields are rejected as a local precondition before any network
// attempt.
func NewUserPassCredential(username, secret string) (*Credential, error) {
	if username == "" || secret == "" {
		return nil, ErrInvalidCredentialsInput
	}
	return &Credential{
		kind:     CredentialUserPass,
		username: username,
		secret:   secret,
	}, nil
}

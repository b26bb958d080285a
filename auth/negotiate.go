package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/rootCircle/bgit/config"
	"github.com/rootCircle/bgit/logger"
	"github.com/rootCircle/bgit/prompt"
)

// MaxAuthAttempts is the attempt ceiling: once a network operation has
// invoked the credential callback more than this many times, negotiation
// fails outright. The bound exists purely to stop infinite callback loops
// against a server that keeps rejecting.
const MaxAuthAttempts = 3

// AttemptContext is the shared attempt counter for one network operation.
// The transport layer may invoke the credential callback from a different
// internal goroutine per retry, so the counter is atomic rather than a
// captured local. The operation ID ties log lines of one operation
// together.
type AttemptContext struct {
	OperationID uuid.UUID
	count       atomic.Int32
}

// NewAttemptContext returns a fresh context with a zero counter.
func NewAttemptContext() *AttemptContext {
	return &AttemptContext{OperationID: uuid.New()}
}

// Next increments the counter and returns the new attempt number,
// starting at 1.
func (a *AttemptContext) Next() int {
	return int(a.count.Add(1))
}

// Count returns the number of attempts made so far.
func (a *AttemptContext) Count() int {
	return int(a.count.Load())
}

// Negotiator resolves credentials for the transport layer. It is invoked
// once per authentication attempt and works through the available
// strategies in order: agent-backed SSH, direct key files, then
// username/password for HTTPS-class remotes.
//
// The user's preferred auth method deliberately does not reorder the
// strategies here; preference acts on the URL before the operation starts
// (TransformURL), never on the negotiation order.
type Negotiator struct {
	cfg        *config.Config
	supervisor *Supervisor
	enroll     *Enrollment
	ui         prompt.Interactor
	log        *slog.Logger
}

// NewNegotiator wires a Negotiator from its collaborators.
func NewNegotiator(cfg *config.Config, supervisor *Supervisor, enroll *Enrollment, ui prompt.Interactor) *Negotiator {
	return &Negotiator{
		cfg:        cfg,
		supervisor: supervisor,
		enroll:     enroll,
		ui:         ui,
		log:        logger.WithComponent("auth.negotiate"),
	}
}

// Negotiate is the credential callback. The transport re-invokes it once
// per failed attempt, carrying the same AttemptContext.
func (n *Negotiator) Negotiate(ctx context.Context, at *AttemptContext, url, username string, allowed CredentialType) (*Credential, error) {
	attempt := at.Next()
	log := n.log.With("op", at.OperationID, "attempt", attempt)
	log.Debug("credential attempt", "url", url, "username", username, "allowed", allowed.String())

	if attempt > MaxAuthAttempts {
		log.Debug("attempt ceiling exceeded")
		return nil, fmt.Errorf("%w (attempt %d)", ErrTooManyAttempts, attempt)
	}

	if allowed.Has(CredTypeUserPassPlaintext) {
		return n.tryUserPass(username)
	}
	return n.trySSH(ctx, attempt, username, allowed, log)
}

// trySSH works through the SSH strategies: agent first, key files second.
// Strategy failures are recovered locally by falling through; only the
// exhaustion of both surfaces to the transport.
func (n *Negotiator) trySSH(ctx context.Context, attempt int, username string, allowed CredentialType, log *slog.Logger) (*Credential, error) {
	if !allowed.Has(CredTypeSSHKey) {
		return nil, fmt.Errorf("%w: transport accepts no supported credential type", ErrNoUsableKey)
	}
	if username == "" {
		return nil, fmt.Errorf("%w: no username in remote URL", ErrNoUsableKey)
	}

	if err := n.supervisor.EnsureAgentReady(ctx); err != nil {
		log.Debug("agent unavailable, falling back to key files", "error", err)
		return n.tryKeyFiles(username, log)
	}

	socket, pid := n.supervisor.Store().ResolveEffectiveAuth(ctx)
	if socket == "" {
		return n.tryKeyFiles(username, log)
	}

	// A freshly spawned agent is empty; on the second attempt enroll
	// candidate keys proactively before asking the agent to sign.
	if attempt == 2 {
		if first, added, err := n.enroll.AddAllKeys(ctx, socket, pid); err == nil && added > 0 {
			log.Debug("proactive enrollment added keys", "count", added)
			n.offerPersistKeyFile(first)
		}
	}

	cred, err := NewAgentCredential(username, socket)
	if err != nil {
		log.Debug("agent credential failed, falling back to key files", "error", err)
		return n.tryKeyFiles(username, log)
	}

	n.offerPersistPreferred(config.PreferredAuthSSH)
	return cred, nil
}

// tryKeyFiles iterates the candidate ordering and returns a credential
// built from the first private/public key pair that parses. No agent is
// involved; passphrase-protected keys cannot succeed here.
func (n *Negotiator) tryKeyFiles(username string, log *slog.Logger) (*Credential, error) {
	for _, cand := range n.enroll.Candidates() {
		if _, err := os.Stat(cand.Path); err != nil {
			continue
		}
		if _, err := os.Stat(cand.Path + ".pub"); err != nil {
			continue
		}
		cred, err := NewKeyFileCredential(username, cand.Path)
		if err != nil {
			log.Debug("key file unusable", "key", cand.DisplayName, "error", err)
			continue
		}
		log.Debug("using key file credential", "key", cand.DisplayName)
		return cred, nil
	}
	return nil, fmt.Errorf("%w: no key pair on disk authenticated", ErrNoUsableKey)
}

// tryUserPass resolves an HTTPS credential: configured values first, then
// an interactive prompt with the URL's username pre-filled.
func (n *Negotiator) tryUserPass(usernameFromURL string) (*Credential, error) {
	if user, token, ok := n.cfg.HTTPSCredentials(); ok {
		n.log.Debug("using HTTPS credentials from global config")
		return NewUserPassCredential(user, token)
	}

	username, err := n.ui.Input("Enter your username", usernameFromURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentialsInput, err)
	}
	token, err := n.ui.Password("Enter your personal access token")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentialsInput, err)
	}

	cred, err := NewUserPassCredential(username, token)
	if err != nil {
		return nil, err
	}

	n.offerPersistHTTPSCredentials(username, token)
	n.offerPersistPreferred(config.PreferredAuthHTTPS)
	return cred, nil
}

// offerPersistPreferred asks the user to record method as the preferred
// auth in the global config. No-op when it already matches; persistence
// failures are logged, never surfaced.
func (n *Negotiator) offerPersistPreferred(method config.PreferredAuth) {
	if n.cfg.Preferred() == method {
		return
	}
	label := "SSH"
	if method == config.PreferredAuthHTTPS {
		label = "HTTPS"
	}
	if !n.ui.Confirm("Set preferred auth to "+label+" for future operations?", true) {
		return
	}
	n.cfg.SetPreferred(method)
	if err := n.cfg.Save(); err != nil {
		n.log.Warn("failed to persist preferred auth", "error", err)
		return
	}
	prompt.Status("Saved preferred auth to %s.", label)
}

// offerPersistKeyFile asks the user to record path as the default SSH key.
func (n *Negotiator) offerPersistKeyFile(path string) {
	if path == "" || n.cfg.SSHKeyFile() == path {
		return
	}
	if !n.ui.Confirm("Use '"+path+"' as your default SSH key and save it to global config?", true) {
		return
	}
	n.cfg.SetSSHKeyFile(path)
	if err := n.cfg.Save(); err != nil {
		n.log.Warn("failed to persist ssh key file", "error", err)
		return
	}
	prompt.Status("Saved default SSH key to global config: %s", path)
}

// offerPersistHTTPSCredentials asks the user to store the username and
// token in the global config (token stored base64-encoded).
func (n *Negotiator) offerPersistHTTPSCredentials(username, token string) {
	if u, t, ok := n.cfg.HTTPSCredentials(); ok && u == username && t == token {
		return
	}
	if !n.ui.Confirm("Save HTTPS credentials for '"+username+"' to global config? (token stored base64-encoded)", false) {
		return
	}
	n.cfg.SetHTTPSCredentials(username, token)
	if err := n.cfg.Save(); err != nil {
		n.log.Warn("failed to persist HTTPS credentials", "error", err)
		return
	}
	prompt.Status("Saved HTTPS credentials for '%s'.", username)
}

// IsFatal reports whether a negotiation error should abort the operation
// rather than allow another transport retry.
func IsFatal(err error) bool {
	return errors.Is(err, ErrTooManyAttempts) || errors.Is(err, ErrUnsupportedPlatform)
}

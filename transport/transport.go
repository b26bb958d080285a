// Package transport is bgit's boundary to the network layer that moves
// git data. It does not implement a wire protocol; it defines the
// credential-resolution contract a remote operation drives: per failed
// attempt the operation re-invokes the credential callback with the
// target URL, the username embedded in it (if any), and the bitset of
// credential kinds it will accept, carrying one shared attempt context
// for the life of the operation.
package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rootCircle/bgit/auth"
	"github.com/rootCircle/bgit/logger"
)

// CredentialsFunc resolves authentication material for one attempt.
type CredentialsFunc func(ctx context.Context, at *auth.AttemptContext, url, username string, allowed auth.CredentialType) (*auth.Credential, error)

// CertificateCheckFunc vets a host's certificate before any credential is
// offered. Returning an error aborts the operation.
type CertificateCheckFunc func(host string) error

// Callbacks bundles the hooks a remote operation invokes.
type Callbacks struct {
	Credentials      CredentialsFunc
	CertificateCheck CertificateCheckFunc
}

// SetupCallbacks wires a Negotiator into transport callbacks. The
// certificate check currently accepts every certificate with a debug log.
// TODO(rootCircle): make certificate verification configurable and strict.
func SetupCallbacks(negotiator *auth.Negotiator) *Callbacks {
	log := logger.WithComponent("transport")
	return &Callbacks{
		Credentials: negotiator.Negotiate,
		CertificateCheck: func(host string) error {
			log.Debug("skipping certificate verification (INSECURE)", "host", host)
			return nil
		},
	}
}

// AttemptFunc performs one network attempt with the supplied credential.
// Returning ErrAuthRejected asks the driver for another credential;
// any other error aborts the operation.
type AttemptFunc func(ctx context.Context, cred *auth.Credential) error

// ErrAuthRejected is returned by an AttemptFunc when the remote refused
// the offered credential and another attempt may succeed.
var ErrAuthRejected = errors.New("remote rejected credential")

// Run drives one remote operation against url: certificate check first,
// then a credential-resolution/attempt loop sharing a single
// AttemptContext. The loop ends when the attempt succeeds, the credential
// callback fails fatally (attempt ceiling included), or the attempt fails
// with a non-auth error.
func Run(ctx context.Context, url string, cb *Callbacks, attempt AttemptFunc) error {
	log := logger.WithComponent("transport")

	if cb.CertificateCheck != nil && isHTTP(url) {
		if err := cb.CertificateCheck(HostFromURL(url)); err != nil {
			return fmt.Errorf("certificate check failed for %s: %w", HostFromURL(url), err)
		}
	}

	at := auth.NewAttemptContext()
	username := UsernameFromURL(url)
	allowed := AllowedFor(url)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		cred, err := cb.Credentials(ctx, at, url, username, allowed)
		if err != nil {
			if auth.IsFatal(err) {
				return err
			}
			// A failed strategy run still counts against the ceiling;
			// the negotiator enforces it on the next invocation.
			log.Debug("credential resolution failed, retrying", "op", at.OperationID, "error", err)
			continue
		}

		err = attempt(ctx, cred)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrAuthRejected) {
			return err
		}
		log.Debug("credential rejected by remote", "op", at.OperationID, "attempt", at.Count())
	}
}

// AllowedFor derives the acceptable credential kinds from the URL shape,
// the way a git transport advertises them: http(s) remotes take plaintext
// user/pass, ssh-like remotes take SSH keys.
func AllowedFor(url string) auth.CredentialType {
	if isHTTP(url) {
		return auth.CredTypeUserPassPlaintext | auth.CredTypeDefault
	}
	return auth.CredTypeSSHKey | auth.CredTypeDefault
}

func isHTTP(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// UsernameFromURL extracts the username embedded in a remote URL, or "".
// "git@host:path" → "git"; "ssh://user@host/path" → "user";
// "https://user@host/path" → "user".
func UsernameFromURL(url string) string {
	rest := url
	if _, after, found := strings.Cut(url, "://"); found {
		rest = after
	}
	userinfo, _, found := strings.Cut(rest, "@")
	if !found {
		return ""
	}
	// Guard against '@' appearing after the host/path split.
	if strings.ContainsAny(userinfo, "/:") {
		return ""
	}
	user, _, _ := strings.Cut(userinfo, ":")
	return user
}

// HostFromURL extracts the host component of a remote URL, or "".
func HostFromURL(url string) string {
	rest := url
	if _, after, found := strings.Cut(url, "://"); found {
		rest = after
	} else if _, after, found := strings.Cut(url, "@"); found {
		// scp-like: git@host:path
		host, _, _ := strings.Cut(after, ":")
		return host
	}
	if _, after, found := strings.Cut(rest, "@"); found {
		rest = after
	}
	host, _, _ := strings.Cut(rest, "/")
	host, _, _ = strings.Cut(host, ":")
	return host
}

package auth

import "errors"

// Sentinel errors for the credential negotiation subsystem. Callers
// classify failures with errors.Is; everything else wraps one of these
// with fmt.Errorf and %w.
var (
	// ErrAgentUnreachable indicates an agent could not be spawned or an
	// existing agent did not answer the liveness probe.
	ErrAgentUnreachable = errors.New("ssh-agent unreachable")

	// ErrNoUsableKey indicates no candidate key files exist, or every
	// candidate failed.
	ErrNoUsableKey = errors.New("no usable ssh key")

	// ErrPassphraseDeclined indicates the user declined an interactive
	// key add. It is not fatal; enrollment continues with the next key.
	ErrPassphraseDeclined = errors.New("passphrase entry declined")

	// ErrTooManyAttempts indicates the negotiation attempt ceiling was
	// exceeded. It is fatal and terminates the network operation.
	ErrTooManyAttempts = errors.New("too many authentication attempts")

	// ErrInvalidCredentialsInput indicates an empty username or secret
	// was supplied for HTTPS authentication.
	ErrInvalidCredentialsInput = errors.New("username or token cannot be empty")

	// ErrUnsupportedPlatform indicates this OS has no ssh-agent concept
	// bgit knows how to drive.
	ErrUnsupportedPlatform = errors.New("ssh-agent not supported on this platform")
)

package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pexec "github.com/rootCircle/bgit/exec"
	"github.com/rootCircle/bgit/logger"
)

// KeygenOptions configures a new key pair. Zero values mean ed25519 with
// no explicit bit size.
type KeygenOptions struct {
	Algorithm string // "ed25519" (default), "rsa", "ecdsa"
	Bits      int    // only meaningful for rsa/ecdsa
	Comment   string
	Path      string // private key path; public key lands at Path+".pub"
}

// GenerateKey creates a new SSH key pair with ssh-keygen. The passphrase
// is empty: keys bgit creates are meant for immediate agent enrollment,
// and the user can re-key with a passphrase at any time. Refuses to
// overwrite an existing key.
func GenerateKey(ctx context.Context, ex pexec.CommandExecutor, opts KeygenOptions) error {
	log := logger.WithComponent("auth.keygen")

	if opts.Path == "" {
		return fmt.Errorf("key path is required")
	}
	if _, err := os.Stat(opts.Path); err == nil {
		return fmt.Errorf("key already exists at %s", opts.Path)
	}

	algo := opts.Algorithm
	if algo == "" {
		algo = "ed25519"
	}
	switch algo {
	case "ed25519", "rsa", "ecdsa":
	default:
		return fmt.Errorf("unsupported key algorithm %q", algo)
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}

	args := []string{"-t", algo}
	if opts.Bits > 0 && algo != "ed25519" {
		args = append(args, "-b", strconv.Itoa(opts.Bits))
	}
	comment := opts.Comment
	if comment == "" {
		comment = "bgit-generated"
	}
	args = append(args, "-C", comment, "-f", opts.Path, "-N", "")

	_, stderr, err := ex.Run(ctx, "", "ssh-keygen", args...)
	if err != nil {
		return fmt.Errorf("ssh-keygen failed: %v: %s", err, strings.TrimSpace(string(stderr)))
	}

	log.Debug("generated key pair", "algorithm", algo, "path", opts.Path)
	return nil
}

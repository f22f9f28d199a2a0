package keyring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/capsulecli/capsule/internal/configs"
	cerrors "github.com/capsulecli/capsule/internal/errors"
	logger "github.com/capsulecli/capsule/internal/logging"
)

// Bridge runs the system GPG binary as a subprocess. Every invocation runs
// under a hard deadline; a hung agent or pinentry gets killed instead of
// hanging the CLI.
type Bridge struct {
	Command string
	Timeout time.Duration
	Logger  logger.Logger
}

// NewBridge builds a Bridge from the loaded configuration.
func NewBridge(config *configs.Config, log logger.Logger) *Bridge {
	return &Bridge{
		Command: config.Keyring.Command,
		Timeout: config.KeyringTimeout(),
		Logger:  log,
	}
}

// Status describes whether the keyring tool is usable on this system.
type Status struct {
	Installed bool
	Version   string
}

// Probe checks for the configured binary and reports its version line. A
// missing binary is a normal answer, not an error; only a timeout or an
// unexpected execution failure comes back as one.
func (b *Bridge) Probe(ctx context.Context) (*Status, error) {
	stdout, err := b.run(ctx, "--version")
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return &Status{Installed: false}, nil
		}
		return nil, err
	}

	version := ""
	if line, _, found := strings.Cut(string(stdout), "\n"); found || line != "" {
		version = strings.TrimSpace(line)
	}
	return &Status{Installed: true, Version: version}, nil
}

// ListKeys returns the public keys the keyring holds, parsed from the
// machine-readable colon listing.
func (b *Bridge) ListKeys(ctx context.Context) ([]Key, error) {
	stdout, err := b.run(ctx, "--list-keys", "--with-colons")
	if err != nil {
		return nil, err
	}
	return parseColons(string(stdout)), nil
}

// ExportPublicKey exports one key as an armored public bundle, suitable for
// registering under the pgp origin.
func (b *Bridge) ExportPublicKey(ctx context.Context, keyID string) ([]byte, error) {
	stdout, err := b.run(ctx, "--armor", "--export", keyID)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(stdout)) == 0 {
		return nil, fmt.Errorf("%w: keyring has no key matching %q", cerrors.ErrKeyNotFound, keyID)
	}
	return stdout, nil
}

// ExportSecretKey exports one key's armored private bundle. This is how the
// operator's own keyring identity becomes decryptable material in the
// registry.
func (b *Bridge) ExportSecretKey(ctx context.Context, keyID string) ([]byte, error) {
	stdout, err := b.run(ctx, "--armor", "--export-secret-keys", keyID)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(stdout)) == 0 {
		return nil, fmt.Errorf("%w: keyring has no secret key matching %q", cerrors.ErrKeyNotFound, keyID)
	}
	return stdout, nil
}

// run executes the binary with the given arguments under the bridge's
// deadline. When the deadline fires the subprocess is killed and the call
// reports a timeout instead of whatever partial output the tool produced.
func (b *Bridge) run(ctx context.Context, args ...string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	b.Logger.Debugf("Running %s %s", b.Command, strings.Join(args, " "))

	cmd := exec.CommandContext(runCtx, b.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Killing only the direct child is not enough: gpg spawns agent helpers,
	// and any surviving descendant holds the stdout pipe open, leaving Wait
	// blocked past the deadline. Run the tool in its own process group, kill
	// the whole group on cancellation, and let Wait abandon the pipes shortly
	// after rather than waiting for every descendant to exit.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%w: %s did not finish within %s",
			cerrors.ErrKeyringTimedOut, b.Command, b.Timeout)
	}
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			// Binary not found or not runnable; keep the exec.Error visible
			// for callers that treat "not installed" as a normal answer.
			return nil, fmt.Errorf("%w: %w", cerrors.ErrKeyringUnavailable, err)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("%w: %s: %s", cerrors.ErrKeyringUnavailable, b.Command, detail)
	}

	return stdout.Bytes(), nil
}

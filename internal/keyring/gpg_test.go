package keyring

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	cerrors "github.com/capsulecli/capsule/internal/errors"
	logger "github.com/capsulecli/capsule/internal/logging"
)

// fakeGPG writes an executable shell script standing in for the gpg binary.
func fakeGPG(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fake-gpg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("writing fake gpg: %v", err)
	}
	return path
}

func newTestBridge(command string, timeout time.Duration) *Bridge {
	return &Bridge{Command: command, Timeout: timeout, Logger: logger.Logger{}}
}

func TestProbeMissingBinary(t *testing.T) {
	b := newTestBridge("capsule-test-no-such-binary", time.Second)

	status, err := b.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if status.Installed {
		t.Error("Expected a missing binary to report not installed")
	}
}

func TestProbeReportsVersion(t *testing.T) {
	command := fakeGPG(t, `echo "gpg (GnuPG) 2.4.4"
echo "libgcrypt 1.10.3"`)
	b := newTestBridge(command, time.Second)

	status, err := b.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if !status.Installed {
		t.Fatal("Expected installed")
	}
	if status.Version != "gpg (GnuPG) 2.4.4" {
		t.Errorf("Unexpected version %q", status.Version)
	}
}

func TestRunKillsOnTimeout(t *testing.T) {
	// The fake tool spawns a long-lived grandchild that inherits the stdout
	// pipe, the worst case for deadline handling: the grandchild must be
	// killed along with the tool, not merely abandoned.
	pidFile := filepath.Join(t.TempDir(), "grandchild.pid")
	command := fakeGPG(t, `sleep 10 &
echo $! > `+pidFile+`
wait`)
	b := newTestBridge(command, 200*time.Millisecond)

	start := time.Now()
	_, err := b.ListKeys(context.Background())
	elapsed := time.Since(start)

	if !errors.Is(err, cerrors.ErrKeyringTimedOut) {
		t.Fatalf("Expected ErrKeyringTimedOut, got %v", err)
	}
	// The call must return at the deadline, not when the sleep finishes.
	if elapsed > 3*time.Second {
		t.Errorf("Expected the call to return promptly, took %s", elapsed)
	}

	pid := readPID(t, pidFile)
	if !waitForExit(pid, 2*time.Second) {
		t.Errorf("Expected the grandchild (pid %d) to be terminated", pid)
	}
}

// readPID parses the PID the fake tool wrote before blocking.
func readPID(t *testing.T, pidFile string) int {
	t.Helper()

	data, err := os.ReadFile(pidFile)
	if err != nil {
		t.Fatalf("reading pid file: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("parsing pid %q: %v", data, err)
	}
	return pid
}

// waitForExit polls until signal 0 reports the process gone or the deadline
// passes.
func waitForExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := syscall.Kill(pid, 0); err != nil {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

func TestListKeysParsesOutput(t *testing.T) {
	command := fakeGPG(t, `cat <<'EOF'
pub:u:4096:1:89ABCDEF01234567:1600000000:::u:::scESC::::::23::0:
fpr:::::::::0123456789ABCDEF0123456789ABCDEF01234567:
uid:u::::1600000000::AAAA::Alice <alice@example.com>::::::::::0:
EOF`)
	b := newTestBridge(command, time.Second)

	keys, err := b.ListKeys(context.Background())
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("Expected 1 key, got %d", len(keys))
	}
	if keys[0].KeyID != "89ABCDEF01234567" {
		t.Errorf("Unexpected key ID %q", keys[0].KeyID)
	}
	if len(keys[0].UIDs) != 1 || keys[0].UIDs[0].Email != "alice@example.com" {
		t.Errorf("Unexpected uids %+v", keys[0].UIDs)
	}
}

func TestExportPublicKey(t *testing.T) {
	command := fakeGPG(t, `echo "-----BEGIN PGP PUBLIC KEY BLOCK-----"
echo "..."
echo "-----END PGP PUBLIC KEY BLOCK-----"`)
	b := newTestBridge(command, time.Second)

	bundle, err := b.ExportPublicKey(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("ExportPublicKey failed: %v", err)
	}
	if len(bundle) == 0 {
		t.Error("Expected bundle bytes")
	}
}

func TestExportUnknownKey(t *testing.T) {
	// gpg exits 0 with empty output when the export matches nothing.
	command := fakeGPG(t, "exit 0")
	b := newTestBridge(command, time.Second)

	_, err := b.ExportPublicKey(context.Background(), "nobody")
	if !errors.Is(err, cerrors.ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound, got %v", err)
	}
}

func TestRunSurfacesStderrOnFailure(t *testing.T) {
	command := fakeGPG(t, `echo "gpg: keyblock resource error" >&2
exit 2`)
	b := newTestBridge(command, time.Second)

	_, err := b.ListKeys(context.Background())
	if !errors.Is(err, cerrors.ErrKeyringUnavailable) {
		t.Fatalf("Expected ErrKeyringUnavailable, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "keyblock resource error") {
		t.Errorf("Expected stderr detail in error, got %q", got)
	}
}

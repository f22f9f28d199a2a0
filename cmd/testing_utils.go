// Package cmd contains testing utilities shared between integration tests.
// This file provides common functions for setting up test environments and
// capturing output.
package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"testing"

	"github.com/capsulecli/capsule/internal/configs"
	logger "github.com/capsulecli/capsule/internal/logging"
)

// setupTestEnvironment points the user settings at temporary directories and
// resets command state, restoring everything when the test ends.
func setupTestEnvironment(t *testing.T) {
	t.Helper()

	original := configs.UserCapsuleSettings
	configs.UserCapsuleSettings = &configs.UserSettings{
		UserDataPath:    t.TempDir(),
		UserConfigsPath: t.TempDir(),
		Username:        "testuser",
	}

	ResetGlobalState()
	SetLogger(logger.Logger{})

	t.Cleanup(func() {
		configs.UserCapsuleSettings = original
		ResetGlobalState()
	})
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	outputChan := make(chan string, 2)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to copy stdout: %s", err)
		}
		outputChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to copy stderr: %s", err)
		}
		outputChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	output := <-outputChan
	output += <-outputChan

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return output, err
}

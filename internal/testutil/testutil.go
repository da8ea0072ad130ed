// Package testutil provides testing utilities for gsefetch packages.
// It includes E-utilities response fixtures and a mock E-utilities server.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TempFile creates a file with the given content in a test temp directory.
func TempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// ReadFile reads a file or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

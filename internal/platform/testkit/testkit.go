// Package testkit provides testing helpers
package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// MustPanic fails t unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

// MustContain fails t unless haystack contains needle. The full haystack is
// written under t.TempDir for inspection
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		return
	}
	out := filepath.Join(t.TempDir(), "output.txt")
	_ = os.WriteFile(out, []byte(haystack), 0o600)
	t.Fatalf("expected output to contain %q, full output in %s", needle, out)
}

var seamMu sync.Mutex

// Swap replaces a package level variable until the test ends
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}

// Serial holds a process wide lock for the rest of the test, for tests that
// swap shared seams
func Serial(t *testing.T) {
	t.Helper()
	seamMu.Lock()
	t.Cleanup(seamMu.Unlock)
}

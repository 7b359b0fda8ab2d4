package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	md2cv "github.com/alnah/go-md2cv"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment and fixtures
// ---------------------------------------------------------------------------

const testResume = `---
name: Jane Doe
header:
  - text: Backend Engineer
  - text: jane@example.com
    link: mailto:jane@example.com
---

# Experience

## Acme Corp

- Built the billing service
- Ran the on-call rotation

# Education

Some university, 2015.
`

// testEnv returns an Environment writing to buffers.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:       func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdout:    &stdout,
		Stderr:    &stderr,
		NewEngine: md2cv.NewEngine,
	}
	return env, &stdout, &stderr
}

// writeFile writes content under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// metricsArgs prefixes args with the flags that keep a pass browser-free.
func metricsArgs(args ...string) []string {
	return append([]string{"--engine", "metrics", "--quiet"}, args...)
}

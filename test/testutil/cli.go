// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package testutil

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// Exit codes of sirseer-profile.
const (
	ExitOK        = 0
	ExitGeneral   = 1
	ExitUserError = 2 // bad token, unknown user, rate limit
	ExitNetwork   = 3
)

// BuildVersion is stamped into the test binary so tests can tell it from a
// stale binary on PATH.
const BuildVersion = "v0.0.0-integration"

var (
	binaryOnce sync.Once
	binaryPath string
	buildErr   error
)

// BuildBinary compiles cmd/profile once per test run with BuildVersion
// stamped in.
func BuildBinary(t *testing.T) string {
	t.Helper()

	binaryOnce.Do(func() {
		root, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}
		// Outlives any single test; the OS reclaims it.
		dir, err := os.MkdirTemp("", "sirseer-profile-bin")
		if err != nil {
			buildErr = err
			return
		}
		binaryPath = filepath.Join(dir, "sirseer-profile")

		ldflags := "-X github.com/sirseerhq/sirseer-profile/pkg/version.Version=" + BuildVersion
		cmd := exec.Command("go", "build", "-ldflags", ldflags, "-o", binaryPath, "./cmd/profile")
		cmd.Dir = root
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = errors.New(err.Error() + ": " + string(out))
		}
	})

	if buildErr != nil {
		t.Fatalf("Failed to build sirseer-profile: %v", buildErr)
	}
	return binaryPath
}

// CLIResult is the outcome of one sirseer-profile run.
type CLIResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// Records decodes stdout as NDJSON and returns the records of recordType,
// or every record when recordType is empty.
func (r CLIResult) Records(t *testing.T, recordType string) []map[string]interface{} {
	t.Helper()

	var records []map[string]interface{}
	scanner := bufio.NewScanner(strings.NewReader(r.Stdout))
	for scanner.Scan() {
		var rec map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", scanner.Text(), err)
		}
		if _, ok := rec["type"].(string); !ok {
			t.Fatalf("NDJSON line without a type: %q", scanner.Text())
		}
		if recordType == "" || rec["type"] == recordType {
			records = append(records, rec)
		}
	}
	return records
}

// Sandbox is an isolated environment for the binary: an empty working
// directory doubling as HOME, so no .env, .sirseer-profile.yaml or
// ~/.sirseer/profile.yaml from the developer's machine is picked up.
type Sandbox struct {
	Dir string
	Env map[string]string
}

// NewSandbox creates a sandbox. Logging is limited to errors so stderr only
// carries the command's own messages.
func NewSandbox(t *testing.T) *Sandbox {
	t.Helper()
	return &Sandbox{
		Dir: t.TempDir(),
		Env: map[string]string{"SIRSEER_PROFILE_LOG_LEVEL": "error"},
	}
}

// WithServer points the sandbox at server with a test token.
func (s *Sandbox) WithServer(server *MockServer) *Sandbox {
	s.Env["GITHUB_TOKEN"] = "test-token"
	s.Env["GITHUB_GRAPHQL_ENDPOINT"] = server.Endpoint()
	return s
}

// WriteFile writes a file relative to the sandbox directory and returns its path.
func (s *Sandbox) WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(s.Dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// Command prepares the binary to run in the sandbox.
func (s *Sandbox) Command(t *testing.T, args ...string) *exec.Cmd {
	t.Helper()
	cmd := exec.Command(BuildBinary(t), args...)
	cmd.Dir = s.Dir
	cmd.Env = []string{"HOME=" + s.Dir, "PATH=" + os.Getenv("PATH")}
	for k, v := range s.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	return cmd
}

// Run executes the binary in the sandbox and waits for it.
func (s *Sandbox) Run(t *testing.T, args ...string) CLIResult {
	t.Helper()
	cmd := s.Command(t, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	exitCode := ExitOK
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		exitCode = -1
	}

	return CLIResult{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Err:      err,
	}
}

// RunCLI runs the binary in a fresh sandbox with env added.
func RunCLI(t *testing.T, args []string, env map[string]string) CLIResult {
	t.Helper()
	s := NewSandbox(t)
	for k, v := range env {
		s.Env[k] = v
	}
	return s.Run(t, args...)
}

// RunWithMockServer runs a command against server in a fresh sandbox.
func RunWithMockServer(t *testing.T, server *MockServer, args ...string) CLIResult {
	t.Helper()
	return NewSandbox(t).WithServer(server).Run(t, args...)
}

// AssertCLISuccess checks that the command exited cleanly.
func AssertCLISuccess(t *testing.T, result CLIResult) {
	t.Helper()
	if result.Err != nil {
		t.Fatalf("Command failed: %v\nStderr: %s", result.Err, result.Stderr)
	}
}

// AssertCLIError checks that the command failed and printed wantErr.
func AssertCLIError(t *testing.T, result CLIResult, wantErr string) {
	t.Helper()
	if result.Err == nil {
		t.Fatalf("Expected command to fail, but it succeeded\nStdout: %s", result.Stdout)
	}
	if !strings.Contains(result.Stderr, "Error: ") {
		t.Errorf("Expected an \"Error: \" line on stderr, got: %s", result.Stderr)
	}
	if wantErr != "" && !strings.Contains(result.Stderr, wantErr) {
		t.Errorf("Expected error containing %q, got: %s", wantErr, result.Stderr)
	}
}

// AssertExitCode checks the exit code.
func AssertExitCode(t *testing.T, result CLIResult, want int) {
	t.Helper()
	if result.ExitCode != want {
		t.Errorf("Expected exit code %d, got %d\nStderr: %s", want, result.ExitCode, result.Stderr)
	}
}

// findModuleRoot walks up from the working directory to go.mod.
func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found above " + dir)
		}
		dir = parent
	}
}

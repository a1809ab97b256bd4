// Package integration drives the built survey binary end to end.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var (
	// surveyBin is the path to the built survey binary.
	surveyBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
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
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// TestEnv provides an isolated config directory and storage file.
type TestEnv struct {
	t           *testing.T
	TempDir     string
	ConfigDir   string
	StorageFile string
}

// NewTestEnv creates a new isolated test environment.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build survey: %v", buildErr)
	}
	if surveyBin == "" {
		t.Fatal("survey binary not built (surveyBin is empty)")
	}

	tempDir := t.TempDir()
	return &TestEnv{
		t:           t,
		TempDir:     tempDir,
		ConfigDir:   filepath.Join(tempDir, "config"),
		StorageFile: filepath.Join(tempDir, "bucket", "responses.json"),
	}
}

// CmdResult holds the result of a survey command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// command builds an exec.Cmd with the env's directories and a scrubbed
// environment so host PORT or NAME values do not leak in.
func (e *TestEnv) command(extraEnv []string, args ...string) *exec.Cmd {
	allArgs := append(args, "--config-dir", e.ConfigDir, "--storage-file", e.StorageFile)
	cmd := exec.Command(surveyBin, allArgs...)

	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "PORT=") || strings.HasPrefix(kv, "NAME=") || strings.HasPrefix(kv, "SURVEY_") {
			continue
		}
		env = append(env, kv)
	}
	cmd.Env = append(env, extraEnv...)
	return cmd
}

// RunSurvey executes the survey CLI with the given arguments.
func (e *TestEnv) RunSurvey(args ...string) CmdResult {
	e.t.Helper()

	cmd := e.command(nil, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("failed to run survey: %v", err)
		}
	}

	return CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustRunSurvey executes the survey CLI and fails the test if it returns non-zero.
func (e *TestEnv) MustRunSurvey(args ...string) CmdResult {
	e.t.Helper()
	result := e.RunSurvey(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("survey %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// Server is a running "survey serve" process.
type Server struct {
	Cmd    *exec.Cmd
	URL    string
	Stderr *bytes.Buffer
}

// StartServer launches "survey serve" on a free port and waits until the
// health check answers.
func (e *TestEnv) StartServer(extraEnv ...string) *Server {
	e.t.Helper()

	port := freePort(e.t)
	cmd := e.command(extraEnv, "serve", "--host", "127.0.0.1", "--port", fmt.Sprint(port))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		e.t.Fatalf("failed to start survey serve: %v", err)
	}

	srv := &Server{Cmd: cmd, URL: fmt.Sprintf("http://127.0.0.1:%d", port), Stderr: &stderr}
	e.t.Cleanup(func() {
		if cmd.ProcessState == nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}
	})

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(srv.URL + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return srv
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	e.t.Fatalf("survey serve did not become healthy; stderr:\n%s", stderr.String())
	return nil
}

// freePort asks the kernel for an unused TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}

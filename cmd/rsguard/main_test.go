package main

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// clearEnv unsets every variable the configuration reads so the host
// environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_ADDR", "SERVER_BASE_URL", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
		"SERVER_IDLE_TIMEOUT", "SERVER_CORS_ORIGINS",
		"INTROSPECTION_ENDPOINT", "OAUTH_ISSUER", "INTROSPECTION_DISABLE_CERT_CHECK",
		"INTROSPECTION_METHOD", "INTROSPECTION_TIMEOUT", "INTROSPECTION_AUTH_METHOD",
		"INTROSPECTION_CLIENT_ID", "INTROSPECTION_CLIENT_SECRET", "INTROSPECTION_PRIVATE_KEY_FILE",
		"INTROSPECTION_KEY_ID", "INTROSPECTION_TOKEN_URL", "INTROSPECTION_TOKEN_SCOPES",
		"OAUTH_REALM", "OAUTH_SCOPES_SUPPORTED", "OAUTH_REQUIRED_SCOPES",
		"OAUTH_REQUIRED_ENTITLEMENTS", "OAUTH_ENTITLEMENT_CLAIM",
	} {
		t.Setenv(key, "")
	}
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output does not contain %q:\n%s", want, got)
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return -1
}

func TestExitError(t *testing.T) {
	err := error(&exitError{code: 2})
	if err.Error() != "exit status 2" {
		t.Errorf("Error() = %q", err.Error())
	}
	if exitCode(err) != 2 {
		t.Errorf("exitCode() = %d, want 2", exitCode(err))
	}
}

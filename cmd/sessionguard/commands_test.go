package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
server:
  port: 8181
jwt:
  secret: cmd-test-secret-cmd-test-secret-0123456789
auth:
  password:
    bcrypt_cost: 4
`

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckConfig_FileAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "sessionguard.yaml", baseYAML)

	out, err := runRoot(t, "check-config", "-c", path, "--env", "staging")
	require.NoError(t, err)
	assert.Contains(t, out, "env=staging")
	assert.Contains(t, out, "addr=:8181")
	assert.Contains(t, out, "revocation=memory")

	out, err = runRoot(t, "check-config", "-c", path, "-e", "staging", "--port", "9191", "--host", "127.0.0.1")
	require.NoError(t, err)
	assert.Contains(t, out, "addr=127.0.0.1:9191")
}

func TestCheckConfig_EnvironmentOverlayAndVariables(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "sessionguard.yaml", baseYAML)
	writeConfig(t, dir, "production.yaml", "server:\n  port: 9443\n")

	t.Setenv("SG_REVOCATION__STORAGE", "memory")
	t.Setenv("SG_SERVER__HOST", "0.0.0.0")

	out, err := runRoot(t, "check-config", "-c", path, "-e", "production")
	require.NoError(t, err)
	assert.Contains(t, out, "env=production")
	assert.Contains(t, out, "addr=0.0.0.0:9443")
}

func TestCheckConfig_MissingSecret(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "sessionguard.yaml", "server:\n  port: 8080\n")

	_, err := runRoot(t, "check-config", "-c", path, "-e", "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestCheckConfig_InvalidPortFlag(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "sessionguard.yaml", baseYAML)

	_, err := runRoot(t, "check-config", "-c", path, "-e", "test", "--port", "70000")
	assert.Error(t, err)
}

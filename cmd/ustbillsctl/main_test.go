package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "ctl.db"))
	t.Setenv("JWT_SECRET", "ctl-secret")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "token", "alice", "--ttl", "5m")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (interface{}, error) {
		return []byte("ctl-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestSweepAndConfigCommands(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "sweep")
	require.NoError(t, err)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.EqualValues(t, 0, result["matured"])

	out, err = execute(t, "config", "show")
	require.NoError(t, err)
	var cfg map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.EqualValues(t, 10000, cfg["maximum_investment"])
}

func TestAdminsCommands(t *testing.T) {
	useSQLite(t)
	t.Setenv("ADMIN_IDENTITIES", "root")

	_, err := execute(t, "admins", "grant", "ops")
	require.NoError(t, err)

	out, err := execute(t, "admins", "list")
	require.NoError(t, err)
	assert.Equal(t, "ops\nroot\n", out)

	_, err = execute(t, "admins", "grant", "2vxsx-fae")
	assert.Error(t, err)
}

func TestKYCCommandRequiresProfile(t *testing.T) {
	useSQLite(t)

	_, err := execute(t, "kyc", "nobody", "verified")
	assert.Error(t, err)
}

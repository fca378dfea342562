package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/adapters/handler/middleware"
	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const payload = `{"reference":"PAY-1741597200000-42","status":"SUCCESS","amount":"5000.00","currency":"NGN"}`

func TestSignWebhook(t *testing.T) {
	t.Run("prints the signature", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "payload.json")
		require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

		out, err := run(t, "", "sign-webhook", path, "--secret", "sk_test")
		require.NoError(t, err)

		decoded, err := signature.Decode([]byte(payload))
		require.NoError(t, err)
		want, err := signature.Sign(decoded, "sk_test")
		require.NoError(t, err)
		assert.Equal(t, want, strings.TrimSpace(out))
	})

	t.Run("embedded signature verifies", func(t *testing.T) {
		out, err := run(t, payload, "sign-webhook", "-", "--secret", "sk_test", "--embed")
		require.NoError(t, err)

		signed, err := signature.Decode([]byte(out))
		require.NoError(t, err)
		assert.True(t, signature.Verify(signed, "sk_test"))
		assert.False(t, signature.Verify(signed, "sk_other"))
	})

	t.Run("requires a secret", func(t *testing.T) {
		t.Setenv("RESULTPAY_GATEWAY__SECRET_KEY", "")

		_, err := run(t, payload, "sign-webhook", "-")
		assert.Error(t, err)
	})

	t.Run("rejects a non-object payload", func(t *testing.T) {
		_, err := run(t, "[1,2]", "sign-webhook", "-", "--secret", "sk_test")
		assert.Error(t, err)
	})
}

func TestToken(t *testing.T) {
	out, err := run(t, "", "token", "--sub", "u-17", "--role", "admin", "--secret", "jwt-secret", "--ttl", "1h")
	require.NoError(t, err)

	actor, err := middleware.NewAuthenticator("jwt-secret", time.Hour, false).Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u-17", actor.UserID)
	assert.Equal(t, domain.RoleAdmin, actor.Role)

	_, err = run(t, "", "token", "--sub", "u-17", "--role", "janitor", "--secret", "jwt-secret")
	assert.Error(t, err)
}

func TestSignWebhook_OutputIsJSON(t *testing.T) {
	out, err := run(t, payload, "sign-webhook", "-", "-s", "sk_test", "-e")
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.NotEmpty(t, m[signature.Field])
}

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--quiet"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestShareCommands(t *testing.T) {
	t.Setenv("SHARE_SECRET", "0123456789abcdef0123")
	t.Setenv("PUBLIC_BASE_URL", "https://reports.example.com")
	t.Setenv("DATABASE_URI", "sqlite://"+t.TempDir()+"/admin.db")

	out, err := execute(t, "share", "issue", "--customer", "42", "--days", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "https://reports.example.com/s/")
	assert.Contains(t, out, "(3 days)")

	var token string
	for _, line := range strings.Split(out, "\n") {
		if v, found := strings.CutPrefix(strings.TrimSpace(line), "token:"); found {
			token = strings.TrimSpace(v)
		}
	}
	require.NotEmpty(t, token)

	out, err = execute(t, "share", "verify", token)
	require.NoError(t, err)
	assert.Contains(t, out, "customer: 42")

	_, err = execute(t, "share", "verify", "not-a-token")
	assert.Error(t, err)
}

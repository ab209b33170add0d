package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demo-data-loader/internal/config"
	"demo-data-loader/internal/hook"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRulesNames(t *testing.T) {
	out, err := run(t, "rules", "--format", "names")
	require.NoError(t, err)
	names := strings.Fields(out)
	assert.Len(t, names, 10)
	assert.Contains(t, names, "demo-suspicious-dns")
	assert.True(t, sort.StringsAreSorted(names), names)
}

func TestWebhookURLCommand(t *testing.T) {
	out, err := run(t, "webhook-url", "--oid", "org-1", "--hook-domain", "hooks.example.io")
	require.NoError(t, err)
	want := "https://hooks.example.io/org-1/demo-data-webhook/" + hook.Secret("ext-demo-data", "org-1")
	assert.Equal(t, want, strings.TrimSpace(out))
}

func TestNewLoggerFormats(t *testing.T) {
	l := newLogger(config.AppConfig{LogLevel: "debug", LogFormat: "json"})
	assert.True(t, l.Handler().Enabled(context.Background(), slog.LevelDebug))

	l = newLogger(config.AppConfig{LogLevel: "nonsense"})
	assert.False(t, l.Handler().Enabled(context.Background(), slog.LevelDebug))
}

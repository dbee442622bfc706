package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	log := "[09:00] <bob> morning\n[09:01] * alice waves\n"
	require.NoError(t, os.WriteFile(filepath.Join(in, "dev_20130615.log"), []byte(log), 0644))

	config := filepath.Join(t.TempDir(), "ircstat.yaml")
	require.NoError(t, os.WriteFile(config, []byte("logger:\n  level: error\noutput:\n  compress: false\n"), 0644))

	stdout, err := execute(t, "run", in, "--config", config, "--output", out)
	require.NoError(t, err)

	assert.Contains(t, stdout, "conversations: 1, events: 2")
	assert.Contains(t, stdout, "plugins: Activity, Highbrow, Totals (0 failed)")

	for _, name := range []string{"Activity.json", "Highbrow.json", "Totals.json"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
}

func TestRunCommand_RequiresPaths(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)
}

func TestRunCommand_BadConfig(t *testing.T) {
	config := filepath.Join(t.TempDir(), "ircstat.yaml")
	require.NoError(t, os.WriteFile(config, []byte("workers:\n  parse: 0\n"), 0644))

	_, err := execute(t, "run", t.TempDir(), "--config", config)
	assert.Error(t, err)
}

func TestServeCommand_RequiresSource(t *testing.T) {
	_, err := execute(t, "serve")
	assert.Error(t, err)
}

func TestServeCommand_MissingReportDir(t *testing.T) {
	_, err := execute(t, "serve", "--from", filepath.Join(t.TempDir(), "missing"), "--listen", "127.0.0.1:0")
	assert.Error(t, err)
}

func TestRunCommand_EnvFile(t *testing.T) {
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "dev_20130615.log"), []byte("[09:00] <bob> morning\n"), 0644))

	out := filepath.Join(t.TempDir(), "from-env")
	env := filepath.Join(t.TempDir(), "ircstat.env")
	require.NoError(t, os.WriteFile(env, []byte("IRCSTAT_OUTPUT_DIR="+out+"\nIRCSTAT_LOG_LEVEL=error\n"), 0644))
	t.Setenv("IRCSTAT_OUTPUT_DIR", "")
	t.Setenv("IRCSTAT_LOG_LEVEL", "")
	os.Unsetenv("IRCSTAT_OUTPUT_DIR")
	os.Unsetenv("IRCSTAT_LOG_LEVEL")

	_, err := execute(t, "run", in, "--env-file", env)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(out, "Totals.json.zst"))
	assert.NoError(t, err)
}

func TestRunCommand_MissingEnvFile(t *testing.T) {
	_, err := execute(t, "run", t.TempDir(), "--env-file", filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "env file")
}

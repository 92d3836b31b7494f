package main

import (
	"bytes"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie0129/cellentry/pkg/client"
	"github.com/charlie0129/cellentry/pkg/config"
	"github.com/charlie0129/cellentry/pkg/daemon"
	"github.com/charlie0129/cellentry/pkg/utils/ptr"
)

// startDaemon serves the daemon API on a unix socket in a temp dir and
// returns the socket path.
func startDaemon(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	sock := filepath.Join(dir, "d.sock")

	l, err := net.Listen("unix", sock)
	require.NoError(t, err)

	conf := config.NewFileFromConfig(nil, filepath.Join(dir, "cellentry.json"))
	srv := &http.Server{Handler: daemon.NewServer(conf).Handler()}
	go func() { _ = srv.Serve(l) }()
	t.Cleanup(func() { _ = srv.Close() })

	return sock
}

// execute runs the root command. The session is always passed explicitly
// because flag defaults are taken from package variables.
func execute(t *testing.T, sock, session string, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--daemon-socket", sock, "--session", session, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSessionsCommands(t *testing.T) {
	sock := startDaemon(t)

	out, err := execute(t, sock, "default", "sessions", "new")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, err = execute(t, sock, "default", "sessions")
	require.NoError(t, err)
	assert.Equal(t, []string{id}, strings.Fields(out))

	_, err = execute(t, sock, id, "register", "lfp")
	require.NoError(t, err)

	_, err = execute(t, sock, "default", "sessions", "delete", id)
	require.NoError(t, err)

	out, err = execute(t, sock, "default", "sessions", "list")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))

	_, err = execute(t, sock, "default", "sessions", "delete", id)
	assert.ErrorIs(t, err, client.ErrNotFound)

	_, err = execute(t, sock, "default", "sessions", "delete")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	sock := startDaemon(t)

	out, err := execute(t, sock, "default", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "Daemon configuration:")
	assert.Contains(t, out, "Default number of cells:")
	assert.Equal(t, 0, strings.Count(out, "✔"))
	assert.Equal(t, 2, strings.Count(out, "✘"))

	_, err = execute(t, sock, "default", "carry-over", "enable")
	require.NoError(t, err)
	_, err = execute(t, sock, "default", "default-count", "4")
	require.NoError(t, err)

	out, err = execute(t, sock, "default", "config")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "✔"))
	assert.Contains(t, out, "4")
}

func TestCarryOverEnabledAfterFirstRegistration(t *testing.T) {
	sock := startDaemon(t)

	_, err := execute(t, sock, "bench", "register", "lfp", "nmc")
	require.NoError(t, err)
	_, err = execute(t, sock, "bench", "set-current", "cell_1_lfp", "2.0")
	require.NoError(t, err)

	_, err = execute(t, sock, "bench", "carry-over", "enable")
	require.NoError(t, err)
	_, err = execute(t, sock, "bench", "register", "lfp", "lfp")
	require.NoError(t, err)

	out, err := execute(t, sock, "bench", "export", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "cell_1_lfp,3.2,2.0,")
	assert.Contains(t, out, "cell_2_lfp,3.2,0.0,")
}

func TestPrintConfig(t *testing.T) {
	conf := config.NewFileFromConfig(&config.RawFileConfig{
		CarryOverCurrents:         ptr.To(true),
		SessionIdleTimeoutMinutes: ptr.To(0),
	}, "")

	var out bytes.Buffer
	printConfig(&out, conf)

	assert.Contains(t, out.String(), "25.0-40.0 °C")
	assert.Contains(t, out.String(), "never")
	assert.Equal(t, 1, strings.Count(out.String(), "✔"))
}

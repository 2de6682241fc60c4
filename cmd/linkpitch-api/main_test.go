package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LINKPITCH_LLM_PROVIDER", "mock")
	t.Setenv("LINKPITCH_STORAGE_BACKEND", "sqlite")
	t.Setenv("LINKPITCH_DB_PATH", filepath.Join(t.TempDir(), "api.db"))
	t.Setenv("LINKPITCH_DEBUG", "0")
}

func TestRunReturnsConfigError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [not, a, map"), 0o644))

	err := run(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestRunReturnsListenErrorInsteadOfExiting(t *testing.T) {
	testEnv(t)

	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	t.Setenv("LINKPITCH_PORT", strconv.Itoa(busy.Addr().(*net.TCPAddr).Port))

	err = run(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")
}

func TestRunStopsOnCancel(t *testing.T) {
	testEnv(t)

	free, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := free.Addr().(*net.TCPAddr).Port
	require.NoError(t, free.Close())
	t.Setenv("LINKPITCH_PORT", strconv.Itoa(port))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, "") }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

const watcherConfigV1 = `
server:
  port: 8080
routes:
  - name: users
    template: /users/{id}
    methods: [GET]
`

const watcherConfigV2 = `
server:
  port: 9090
routes:
  - name: users
    template: /users/{id}
    methods: [GET]
  - name: items
    template: /items/{name}
    methods: [GET, POST]
`

const watcherConfigBroken = `
server:
  port: 8080
routes:
  - name: users
    template: /users/{id
    methods: [GET]
`

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestWatcherInitialLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.yaml")
	require.NoError(t, writeFile(path, watcherConfigV1))

	w, err := NewWatcher(path, nil, WithDebounceDelay(20*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop() }()

	cfg := w.GetLastConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestWatcherReloadOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.yaml")
	require.NoError(t, writeFile(path, watcherConfigV1))

	var reloads atomic.Int64
	w, err := NewWatcher(path, func(cfg *Config) {
		reloads.Add(1)
	}, WithDebounceDelay(20*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop() }()

	require.NoError(t, writeFile(path, watcherConfigV2))

	waitFor(t, func() bool { return reloads.Load() >= 1 }, "reload callback never fired")

	cfg := w.GetLastConfig()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Len(t, cfg.Routes, 2)
}

func TestWatcherKeepsLastConfigOnInvalidChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.yaml")
	require.NoError(t, writeFile(path, watcherConfigV1))

	var errs atomic.Int64
	w, err := NewWatcher(path, nil,
		WithDebounceDelay(20*time.Millisecond),
		WithErrorCallback(func(error) { errs.Add(1) }),
	)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop() }()

	require.NoError(t, writeFile(path, watcherConfigBroken))

	waitFor(t, func() bool { return errs.Load() >= 1 }, "error callback never fired")

	// The broken file must not replace the last good configuration.
	cfg := w.GetLastConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dispatch.yaml")
	require.NoError(t, writeFile(path, watcherConfigV1))

	var reloads atomic.Int64
	w, err := NewWatcher(path, func(*Config) {
		reloads.Add(1)
	}, WithDebounceDelay(20*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop() }()

	require.NoError(t, writeFile(filepath.Join(dir, "other.yaml"), "unrelated: true"))

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int64(0), reloads.Load())
}

func TestWatcherStartFailsOnInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.yaml")
	require.NoError(t, writeFile(path, watcherConfigBroken))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	assert.Error(t, w.Start(context.Background()))
}

func TestWatcherStopIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.yaml")
	require.NoError(t, writeFile(path, watcherConfigV1))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

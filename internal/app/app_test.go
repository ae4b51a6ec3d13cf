package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/addongraph/internal/resolver"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Config{Paths: []string{"."}}},
		{name: "no paths", cfg: Config{}, wantErr: "at least one manifest path"},
		{name: "empty path", cfg: Config{Paths: []string{""}}, wantErr: "cannot be empty"},
		{name: "bad level", cfg: Config{Paths: []string{"."}, LogLevel: "loud"}, wantErr: "invalid log-level"},
		{name: "bad format", cfg: Config{Paths: []string{"."}, LogFormat: "xml"}, wantErr: "invalid log-format"},
		{name: "bad port", cfg: Config{Paths: []string{"."}, MetricsPort: 70000}, wantErr: "invalid metrics-port"},
		{name: "negative workers", cfg: Config{Paths: []string{"."}, WorkerCount: -1}, wantErr: "invalid workers"},
		{name: "negative reads", cfg: Config{Paths: []string{"."}, ReadConcurrency: -2}, wantErr: "invalid read-concurrency"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "info", cfg.LogLevel)
			assert.Equal(t, "text", cfg.LogFormat)
		})
	}
}

func TestNewApp_RunIDIsLogged(t *testing.T) {
	a, logs := setupAppTest(t, Config{Paths: []string{t.TempDir()}})
	require.NotEmpty(t, a.RunID())

	_, err := a.Resolve(context.Background())
	assert.ErrorIs(t, err, resolver.ErrEmptyGraph)
	assert.Contains(t, logs.String(), "run_id="+a.RunID())
}

func TestApp_Resolve(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "core", `addon "core" { version = "1.0.0" }`)
	writeManifest(t, root, "ui", `addon "ui" { dependencies = { core = "^1.0.0" } }`)

	a, _ := setupAppTest(t, Config{Paths: []string{root}})
	res, err := a.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"core", "ui"}, res.Order)
}

func TestApp_Load(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "a", `addon "a" { dependencies = { b = "" } }`)
	writeManifest(t, root, "b", `addon "b" { dependencies = { c = "" } }`)
	writeManifest(t, root, "c", `addon "c" {}`)

	a, logs := setupAppTest(t, Config{Paths: []string{root}, WorkerCount: 3})
	res, report, err := a.Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, res.Order)
	assert.Equal(t, []string{"c", "b", "a"}, report.Loaded)
	assert.Contains(t, logs.String(), "Addon activated.")
}

func TestApp_LoadSkipsCyclicAndUndeclaredAddons(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "x", `addon "x" { dependencies = { y = "" } }`)
	writeManifest(t, root, "y", `addon "y" { dependencies = { x = "" } }`)
	writeManifest(t, root, "z", `addon "z" { dependencies = { ghost = "" } }`)

	var mu sync.Mutex
	var loaded []string
	a, _ := setupAppTest(t, Config{Paths: []string{root}})
	res, report, err := a.Load(context.Background(), func(_ context.Context, id string) error {
		mu.Lock()
		defer mu.Unlock()
		loaded = append(loaded, id)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, res.HasErrors())
	assert.Equal(t, []string{"z"}, loaded)
	assert.Equal(t, []string{"z"}, report.Loaded)
}

func TestApp_LoadStrict(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "x", `addon "x" { dependencies = { x = "" } }`)

	a, _ := setupAppTest(t, Config{Paths: []string{root}, Strict: true})
	_, report, err := a.Load(context.Background(), func(context.Context, string) error {
		t.Fatal("load must not be called")
		return nil
	})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "resolution reported 1 error(s)")
}

func TestApp_LoadPropagatesLoadErrors(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "a", `addon "a" {}`)
	boom := errors.New("activation refused")

	a, _ := setupAppTest(t, Config{Paths: []string{root}})
	_, report, err := a.Load(context.Background(), func(context.Context, string) error { return boom })
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, report)
	assert.Equal(t, []string{"a"}, report.Failed)
}

func TestActivator_DetectsChangedManifest(t *testing.T) {
	root := t.TempDir()
	dir := writeManifest(t, root, "a", `addon "a" { version = "1.0.0" }`)

	a, _ := setupAppTest(t, Config{Paths: []string{root}})
	res, err := a.Resolve(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.hcl"), []byte(`addon "a" { version = "2.0.0" }`), 0o644))
	err = a.activator(res)(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "changed during the run")

	err = a.activator(res)(context.Background(), "unknown")
	assert.Error(t, err)
}

func TestLoadGraph(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "app", `addon "app" { dependencies = { core = "^1.0.0", ghost = "" } }`)
	writeManifest(t, root, "core", `addon "core" { version = "1.1.0" }`)

	a, _ := setupAppTest(t, Config{Paths: []string{root}})
	res, err := a.Resolve(context.Background())
	require.NoError(t, err)

	g, err := LoadGraph(res)
	require.NoError(t, err)
	assert.Equal(t, []string{"core", "app"}, g.Nodes())
	assert.Equal(t, []string{"core"}, g.Dependencies("app"))
	c, ok := g.RequiredVersion("app", "core")
	require.True(t, ok)
	assert.Equal(t, "^1.0.0", c)
}

func TestHandler(t *testing.T) {
	a, _ := setupAppTest(t, Config{Paths: []string{t.TempDir()}})
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK\n", string(body))

	// Resolving once populates the addongraph series.
	_, _ = a.Resolve(context.Background())
	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "addongraph_resolutions_total")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestStartServer(t *testing.T) {
	a, _ := setupAppTest(t, Config{Paths: []string{"."}})
	addr, err := a.StartServer(context.Background())
	require.NoError(t, err)
	assert.Empty(t, addr, "disabled without a port")
	assert.NoError(t, a.Close(context.Background()))
}

func TestWatch_ReResolvesOnChange(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "core", `addon "core" {}`)

	a, _ := setupAppTest(t, Config{Paths: []string{root}})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan *resolver.Result, 8)
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, 100*time.Millisecond, func(res *resolver.Result, err error) {
			if err == nil {
				results <- res
			}
		})
	}()

	waitFor := func(want []string) {
		t.Helper()
		deadline := time.After(10 * time.Second)
		for {
			select {
			case res := <-results:
				if fmt.Sprint(res.Order) == fmt.Sprint(want) {
					return
				}
			case <-deadline:
				t.Fatalf("timed out waiting for order %v", want)
			}
		}
	}

	waitFor([]string{"core"})
	writeManifest(t, root, "ui", `addon "ui" { dependencies = { core = "" } }`)
	waitFor([]string{"core", "ui"})

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/addongraph/internal/app"
	"github.com/specialistvlad/addongraph/internal/executor"
	"github.com/specialistvlad/addongraph/internal/resolver"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	Result    *resolver.Result
	Report    *executor.Report
}

// WriteTree writes files, keyed by slash-separated paths, below a fresh
// temporary directory and returns it.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// RunIntegrationTest resolves and loads files with load, using four workers
// and a background context. A nil load uses the app's activator.
func RunIntegrationTest(t *testing.T, files map[string]string, load executor.LoadFunc) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithConfig(context.Background(), t, files, app.Config{WorkerCount: 4}, load)
}

// RunIntegrationTestWithConfig is RunIntegrationTest with a caller-supplied
// context and configuration. cfg.Paths is replaced by the written tree.
func RunIntegrationTestWithConfig(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config, load executor.LoadFunc) *HarnessResult {
	t.Helper()

	cfg.Paths = []string{WriteTree(t, files)}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	validated, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	testApp := app.NewApp(logBuffer, validated, nil)
	res, report, runErr := testApp.Load(ctx, load)

	if os.Getenv("ADDONGRAPH_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
		Result:    res,
		Report:    report,
	}
}

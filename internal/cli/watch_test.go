package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the watcher goroutine to write
// while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCommand_ReportsExternalEdits(t *testing.T) {
	dir := t.TempDir()
	writeTrack(t, dir, "walk.yaml", walkYAML)

	out := &syncBuffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--config", testConfig(t), "watch", "--dir", dir, "--interval", "20ms"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()

	// The command may not be watching yet, so keep flipping the document
	// until a change is reported.
	path := filepath.Join(dir, "walk.yaml")
	edits := []string{strings.Replace(walkYAML, "float: 0.5}", "float: 0.75}", 1), walkYAML}
	n := 0
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(edits[n%2]), 0o644)
		n++
		return strings.Contains(out.String(), "track walk: changed externally")
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchCommand_MissingDir(t *testing.T) {
	out, err := execute(t, "watch", "--dir", "/nonexistent/tracks", "--interval", "20ms")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

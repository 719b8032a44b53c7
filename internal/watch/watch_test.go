package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWaitForExistingFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "cat_RIGHT_000_done.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	w := New(20*time.Millisecond, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, w.WaitFor(ctx, path))
}

func TestWaitForCreatedFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "cat_RIGHT_000_done.png")

	w := New(50*time.Millisecond, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- w.WaitFor(ctx, path) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("WaitFor did not return")
	}
}

func TestWaitForCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := New(0, nil)
	assert.Equal(t, DefaultSettle, w.settle)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := w.WaitFor(ctx, filepath.Join(t.TempDir(), "never.png"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitForMissingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := New(10*time.Millisecond, nil)
	err := w.WaitFor(context.Background(), filepath.Join(t.TempDir(), "nope", "x.png"))
	assert.Error(t, err)
}

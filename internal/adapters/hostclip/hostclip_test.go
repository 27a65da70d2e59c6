package hostclip

import (
	"context"
	"errors"
	"testing"

	"github.com/atotto/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReadClipboard(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("no clipboard utility on this host")
	}
	r := New(zap.NewNop())

	r.read = func() (string, error) { return "  1 Ore 2 3\n", nil }
	text, err := r.ReadClipboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1 Ore 2 3", text)

	r.read = func() (string, error) { return "", errors.New("exit status 1") }
	text, err = r.ReadClipboard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestReadClipboardCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(zap.NewNop()).ReadClipboard(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// Package hostclip reads the clipboard of the machine running the worker,
// which screen mirroring tools keep in sync with the device.
package hostclip

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

type Reader struct {
	read func() (string, error)
	log  *zap.Logger
}

func New(log *zap.Logger) *Reader {
	return &Reader{read: clipboard.ReadAll, log: log.Named("hostclip")}
}

// ReadClipboard returns the trimmed host clipboard. Hosts without a
// clipboard utility read as empty.
func (r *Reader) ReadClipboard(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if clipboard.Unsupported {
		return "", nil
	}
	text, err := r.read()
	if err != nil {
		r.log.Debug("host clipboard unavailable", zap.Error(err))
		return "", nil
	}
	text = strings.TrimSpace(text)
	if text != "" {
		r.log.Debug("obtained host clipboard text", zap.Int("chars", len(text)))
	}
	return text, nil
}

// Package artifacts stores OCR crops and contract screenshots for review.
package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path"
	"path/filepath"

	"contractbot/internal/ports"
)

// ContractKey is the object key of an artifact of one contract, e.g.
// contracts/000123/system.png.
func ContractKey(contractID int64, name string) string {
	return path.Join("contracts", fmt.Sprintf("%06d", contractID), name+".png")
}

// ScreenshotName is the artifact name of the full contract card capture.
const ScreenshotName = "contract"

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// FS writes artifacts below a local root directory.
type FS struct {
	root string
}

var _ ports.ArtifactStore = (*FS)(nil)

func NewFS(root string) *FS { return &FS{root: root} }

// SaveImage writes img as PNG and returns its file path.
func (s *FS) SaveImage(ctx context.Context, key string, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return dst, nil
}

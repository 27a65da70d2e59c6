package ports

import (
	"context"
	"image"

	"contractbot/internal/domain"
)

// Recognizer extracts text from named screen regions.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, region string, psm int) (string, error)
	HasText(ctx context.Context, img image.Image, region string) (bool, error)
	Crop(img image.Image, region string) (image.Image, bool)
	Box(region string) (domain.Box, bool)
	AddTrainingWords(words []string) error
}

// ArtifactStore keeps OCR crops and screenshots for later review.
type ArtifactStore interface {
	SaveImage(ctx context.Context, key string, img image.Image) (ref string, err error)
}

// Notifier delivers contract notifications to one external sink.
type Notifier interface {
	Notify(ctx context.Context, n domain.ContractNotification) error
}

// ClipboardReader reads clipboard text; empty string means nothing usable.
type ClipboardReader interface {
	ReadClipboard(ctx context.Context) (string, error)
}

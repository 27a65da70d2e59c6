package ingest

import (
	"context"
	"image"

	"go.uber.org/zap"

	"contractbot/internal/adapters/artifacts"
	"contractbot/internal/domain"
	"contractbot/internal/recognition"
	"contractbot/internal/services/composition"
)

type extraction struct {
	items  []domain.ContractItem
	source composition.Source

	// set when the OCR fallback ran
	tableShot image.Image
	tableText string
}

// extractor tries one channel and reports the items it found, if any.
type extractor struct {
	name    string
	enabled bool
	run     func(ctx context.Context, log *zap.Logger, ex *extraction)
}

// extract tries the clipboard, when a copy sequence put something there, and
// then OCR of the composition table. The first channel with items wins.
func (c *Controller) extract(ctx context.Context, log *zap.Logger, copyConfigured bool) extraction {
	chain := []extractor{
		{name: "clipboard", enabled: copyConfigured, run: c.fromClipboard},
		{name: "ocr", enabled: true, run: c.fromOCR},
	}
	var ex extraction
	for _, e := range chain {
		if !e.enabled {
			continue
		}
		e.run(ctx, log, &ex)
		if len(ex.items) > 0 {
			return ex
		}
		log.Debug("extractor yielded no items", zap.String("extractor", e.name))
	}
	return ex
}

func (c *Controller) fromClipboard(ctx context.Context, log *zap.Logger, ex *extraction) {
	var host string
	if c.hostClip != nil {
		text, err := c.hostClip.ReadClipboard(ctx)
		if err != nil {
			log.Warn("read host clipboard failed", zap.Error(err))
		}
		host = text
	}
	deviceText, err := c.device.Clipboard(ctx)
	if err != nil {
		log.Warn("read device clipboard failed", zap.Error(err))
	}
	ex.items, ex.source = c.parser.ParseClipboards(deviceText, host)
}

func (c *Controller) fromOCR(ctx context.Context, log *zap.Logger, ex *extraction) {
	shot, err := c.device.Capture(ctx)
	if err != nil {
		log.Warn("composition capture failed", zap.Error(err))
		return
	}
	text, err := c.recognizer.Recognize(ctx, shot, recognition.RegionComposition, tablePSM)
	if err != nil {
		log.Warn("composition OCR failed", zap.Error(err))
		return
	}
	if text != "" {
		ex.tableShot = shot
		ex.tableText = text
	}
	if items := c.parser.ParseFromOCR(text); len(items) > 0 {
		ex.items, ex.source = items, composition.SourceOCR
	}
}

// persistArtifacts saves region crops, the card screenshot and OCR sample
// rows for review. Failures are logged and never undo the contract.
func (c *Controller) persistArtifacts(ctx context.Context, log *zap.Logger, contractID int64, card image.Image, cardTexts map[string]string, ex extraction) ([]domain.OcrArtifact, string) {
	var arts []domain.OcrArtifact
	save := func(shot image.Image, region, text string) {
		box, ok := c.recognizer.Box(region)
		if !ok {
			log.Warn("skipping OCR artifact for unconfigured region", zap.String("region", region))
			return
		}
		var ref string
		if crop, ok := c.recognizer.Crop(shot, region); ok && c.artifacts != nil {
			r, err := c.artifacts.SaveImage(ctx, artifacts.ContractKey(contractID, region), crop)
			if err != nil {
				log.Error("failed to save OCR crop", zap.String("region", region), zap.Error(err))
			} else {
				ref = r
			}
		}
		if err := c.store.StoreOcrSample(ctx, domain.OcrSample{
			ContractID:     contractID,
			Region:         region,
			Box:            box,
			RecognizedText: text,
			ImageRef:       ref,
		}); err != nil {
			log.Error("failed to store OCR sample", zap.String("region", region), zap.Error(err))
		}
		arts = append(arts, domain.OcrArtifact{Region: region, Box: box, RecognizedText: text, ImageRef: ref})
	}

	for _, region := range cardRegions {
		save(card, region, cardTexts[region])
	}
	if ex.tableShot != nil {
		save(ex.tableShot, recognition.RegionComposition, ex.tableText)
	}

	var screenshotRef string
	if c.artifacts != nil {
		ref, err := c.artifacts.SaveImage(ctx, artifacts.ContractKey(contractID, artifacts.ScreenshotName), card)
		if err != nil {
			log.Error("failed to save contract screenshot", zap.Error(err))
		} else {
			screenshotRef = ref
		}
	}
	return arts, screenshotRef
}

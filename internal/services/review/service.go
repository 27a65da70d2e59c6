package review

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"contractbot/internal/ports"
)

// Store is the part of the ledger the review workflow touches.
type Store interface {
	ports.OcrSampleRepository
	ports.TrainingQueue
}

type Service struct {
	store Store
	log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log.Named("review")}
}

// Result reports what a review action changed.
type Result struct {
	Texts  map[string]string `json:"texts,omitempty"`
	Words  []string          `json:"words"`
	Queued int               `json:"queued"`
}

// ConfirmContract accepts the recognized text of every sample of a contract
// that has not been corrected and queues its words for training.
func (s *Service) ConfirmContract(ctx context.Context, contractID int64, reviewer string) (Result, error) {
	texts, err := s.store.ConfirmOcrContract(ctx, contractID, reviewer)
	if err != nil {
		return Result{}, fmt.Errorf("confirm contract %d: %w", contractID, err)
	}
	regions := make([]string, 0, len(texts))
	for region := range texts {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	var all []string
	for _, region := range regions {
		all = append(all, texts[region])
	}
	res, err := s.queue(ctx, all...)
	if err != nil {
		return Result{}, err
	}
	res.Texts = texts
	s.log.Info("contract OCR confirmed",
		zap.Int64("contract_id", contractID),
		zap.String("reviewer", reviewer),
		zap.Int("regions", len(texts)),
		zap.Int("queued_words", res.Queued))
	return res, nil
}

// CorrectSample replaces one region's text, marks it corrected and queues
// the corrected words.
func (s *Service) CorrectSample(ctx context.Context, contractID int64, region, text, reviewer string) (Result, error) {
	if strings.TrimSpace(region) == "" {
		return Result{}, fmt.Errorf("%w: region is required", ports.ErrInvalidInput)
	}
	if err := s.store.CorrectOcrSample(ctx, contractID, region, text, reviewer); err != nil {
		return Result{}, fmt.Errorf("correct sample %d/%s: %w", contractID, region, err)
	}
	res, err := s.queue(ctx, text)
	if err != nil {
		return Result{}, err
	}
	res.Texts = map[string]string{region: text}
	s.log.Info("OCR sample corrected",
		zap.Int64("contract_id", contractID),
		zap.String("region", region),
		zap.String("reviewer", reviewer),
		zap.Int("queued_words", res.Queued))
	return res, nil
}

func (s *Service) queue(ctx context.Context, texts ...string) (Result, error) {
	words := ExtractWords(texts...)
	if len(words) == 0 {
		return Result{Words: []string{}}, nil
	}
	n, err := s.store.QueueTrainingWords(ctx, words)
	if err != nil {
		return Result{}, fmt.Errorf("queue training words: %w", err)
	}
	return Result{Words: words, Queued: n}, nil
}

// ExtractWords splits texts into training words in first-seen order. A word
// is a run of letters and digits that may contain inner hyphens or
// apostrophes; it must be at least two characters long and hold a letter.
func ExtractWords(texts ...string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, text := range texts {
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\''
		})
		for _, f := range fields {
			w := strings.Trim(f, "-'")
			if len([]rune(w)) < 2 || !strings.ContainsFunc(w, unicode.IsLetter) {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}

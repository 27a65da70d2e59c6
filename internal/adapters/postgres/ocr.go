package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"contractbot/internal/domain"
	"contractbot/internal/ports"
)

const sampleColumns = `contract_id, region, box_left, box_top, box_right, box_bottom,
	recognized_text, confirmed_text, status, image_ref, reviewed_by, reviewed_at, created_at`

// StoreOcrSample upserts the sample for (contract, region) without touching
// review fields of an existing row.
func (db *DB) StoreOcrSample(ctx context.Context, s domain.OcrSample) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO ocr_samples (contract_id, region, box_left, box_top, box_right, box_bottom,
			recognized_text, status, image_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8)
		ON CONFLICT (contract_id, region) DO UPDATE SET
			box_left = EXCLUDED.box_left,
			box_top = EXCLUDED.box_top,
			box_right = EXCLUDED.box_right,
			box_bottom = EXCLUDED.box_bottom,
			recognized_text = EXCLUDED.recognized_text,
			image_ref = EXCLUDED.image_ref
	`, s.ContractID, s.Region, s.Box[0], s.Box[1], s.Box[2], s.Box[3], s.RecognizedText, s.ImageRef)
	if err != nil {
		return fmt.Errorf("store OCR sample %d/%s: %w", s.ContractID, s.Region, err)
	}
	return nil
}

func (db *DB) GetOcrSample(ctx context.Context, contractID int64, region string) (domain.OcrSample, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+sampleColumns+` FROM ocr_samples WHERE contract_id = $1 AND region = $2`,
		contractID, region)
	s, err := scanSample(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, fmt.Errorf("OCR sample %d/%s: %w", contractID, region, ports.ErrNotFound)
	}
	return s, err
}

func (db *DB) ListOcrSamples(ctx context.Context, contractID int64) ([]domain.OcrSample, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+sampleColumns+` FROM ocr_samples WHERE contract_id = $1 ORDER BY region`,
		contractID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OcrSample, error) {
		return scanSample(row)
	})
}

// ConfirmOcrContract confirms all non-corrected samples of a contract and
// returns the final text per region.
func (db *DB) ConfirmOcrContract(ctx context.Context, contractID int64, reviewer string) (texts map[string]string, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err == nil {
			err = tx.Commit(ctx)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			texts = nil
		}
	}()

	if _, err = tx.Exec(ctx, `
		UPDATE ocr_samples SET
			status = 'confirmed',
			confirmed_text = COALESCE(confirmed_text, recognized_text),
			reviewed_by = $2,
			reviewed_at = now()
		WHERE contract_id = $1 AND status <> 'corrected'
	`, contractID, reviewer); err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT region, COALESCE(confirmed_text, recognized_text)
		FROM ocr_samples WHERE contract_id = $1
	`, contractID)
	if err != nil {
		return nil, err
	}
	texts = map[string]string{}
	var region, text string
	_, err = pgx.ForEachRow(rows, []any{&region, &text}, func() error {
		texts[region] = text
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		err = fmt.Errorf("OCR samples of contract %d: %w", contractID, ports.ErrNotFound)
		return nil, err
	}
	return texts, nil
}

func (db *DB) CorrectOcrSample(ctx context.Context, contractID int64, region, text, reviewer string) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE ocr_samples SET
			confirmed_text = $3,
			status = 'corrected',
			reviewed_by = $4,
			reviewed_at = now()
		WHERE contract_id = $1 AND region = $2
	`, contractID, region, text, reviewer)
	if err != nil {
		return fmt.Errorf("correct OCR sample %d/%s: %w", contractID, region, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("OCR sample %d/%s: %w", contractID, region, ports.ErrNotFound)
	}
	return nil
}

// QueueTrainingWords upserts words as pending in one batch.
func (db *DB) QueueTrainingWords(ctx context.Context, words []string) (int, error) {
	seen := map[string]struct{}{}
	batch := &pgx.Batch{}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		batch.Queue(`
			INSERT INTO training_words (word, trained, queued_at) VALUES ($1, false, now())
			ON CONFLICT (word) DO UPDATE SET trained = false, queued_at = now(), trained_at = NULL
		`, w)
	}
	if batch.Len() == 0 {
		return 0, nil
	}
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("queue training words: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return batch.Len(), nil
}

// ConsumeTrainingWords claims every pending word with SKIP LOCKED so two
// concurrent consumers never receive the same word.
func (db *DB) ConsumeTrainingWords(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		WITH pending AS (
			SELECT word FROM training_words
			WHERE NOT trained
			FOR UPDATE SKIP LOCKED
		)
		UPDATE training_words t SET trained = true, trained_at = now()
		FROM pending
		WHERE t.word = pending.word
		RETURNING t.word
	`)
	if err != nil {
		return nil, fmt.Errorf("consume training words: %w", err)
	}
	words, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("consume training words: %w", err)
	}
	sort.Strings(words)
	return words, nil
}

func scanSample(row pgx.Row) (domain.OcrSample, error) {
	var (
		s                        domain.OcrSample
		left, top, right, bottom *int32
		imageRef, reviewedBy     *string
		status                   string
	)
	if err := row.Scan(&s.ContractID, &s.Region, &left, &top, &right, &bottom,
		&s.RecognizedText, &s.ConfirmedText, &status, &imageRef, &reviewedBy, &s.ReviewedAt, &s.CreatedAt); err != nil {
		return s, err
	}
	s.Box = domain.Box{intOf(left), intOf(top), intOf(right), intOf(bottom)}
	s.Status = domain.SampleStatus(status)
	if imageRef != nil {
		s.ImageRef = *imageRef
	}
	if reviewedBy != nil {
		s.ReviewedBy = *reviewedBy
	}
	return s, nil
}

func intOf(v *int32) int {
	if v == nil {
		return 0
	}
	return int(*v)
}

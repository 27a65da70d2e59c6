package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"contractbot/internal/domain"
	"contractbot/internal/ports"
)

const sampleColumns = `contract_id, region, box_left, box_top, box_right, box_bottom,
	recognized_text, confirmed_text, status, image_ref, reviewed_by, reviewed_at, created_at`

// StoreOcrSample upserts the sample for (contract, region). Review fields of
// an existing row are left untouched.
func (d *DB) StoreOcrSample(ctx context.Context, s domain.OcrSample) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO ocr_samples (contract_id, region, box_left, box_top, box_right, box_bottom,
			recognized_text, status, image_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 'pending', ?, ?)
		ON CONFLICT (contract_id, region) DO UPDATE SET
			box_left = excluded.box_left,
			box_top = excluded.box_top,
			box_right = excluded.box_right,
			box_bottom = excluded.box_bottom,
			recognized_text = excluded.recognized_text,
			image_ref = excluded.image_ref
	`, s.ContractID, s.Region, s.Box[0], s.Box[1], s.Box[2], s.Box[3], s.RecognizedText, s.ImageRef, d.now())
	if err != nil {
		return fmt.Errorf("store OCR sample %d/%s: %w", s.ContractID, s.Region, err)
	}
	return nil
}

func (d *DB) GetOcrSample(ctx context.Context, contractID int64, region string) (domain.OcrSample, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+sampleColumns+` FROM ocr_samples WHERE contract_id = ? AND region = ?`,
		contractID, region)
	s, err := scanSample(row)
	if isNoRows(err) {
		return s, fmt.Errorf("OCR sample %d/%s: %w", contractID, region, ports.ErrNotFound)
	}
	return s, err
}

func (d *DB) ListOcrSamples(ctx context.Context, contractID int64) ([]domain.OcrSample, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+sampleColumns+` FROM ocr_samples WHERE contract_id = ? ORDER BY region`,
		contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.OcrSample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ConfirmOcrContract confirms every sample of the contract that has not been
// corrected and returns the final text of all its regions.
func (d *DB) ConfirmOcrContract(ctx context.Context, contractID int64, reviewer string) (map[string]string, error) {
	texts := map[string]string{}
	err := d.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE ocr_samples SET
				status = 'confirmed',
				confirmed_text = COALESCE(confirmed_text, recognized_text),
				reviewed_by = ?,
				reviewed_at = ?
			WHERE contract_id = ? AND status <> 'corrected'
		`, reviewer, d.now(), contractID); err != nil {
			return err
		}
		rows, err := tx.QueryContext(ctx, `
			SELECT region, COALESCE(confirmed_text, recognized_text)
			FROM ocr_samples WHERE contract_id = ?
		`, contractID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var region, text string
			if err := rows.Scan(&region, &text); err != nil {
				return err
			}
			texts[region] = text
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if len(texts) == 0 {
			return fmt.Errorf("OCR samples of contract %d: %w", contractID, ports.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return texts, nil
}

func (d *DB) CorrectOcrSample(ctx context.Context, contractID int64, region, text, reviewer string) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE ocr_samples SET
			confirmed_text = ?,
			status = 'corrected',
			reviewed_by = ?,
			reviewed_at = ?
		WHERE contract_id = ? AND region = ?
	`, text, reviewer, d.now(), contractID, region)
	if err != nil {
		return fmt.Errorf("correct OCR sample %d/%s: %w", contractID, region, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("OCR sample %d/%s: %w", contractID, region, ports.ErrNotFound)
	}
	return nil
}

// QueueTrainingWords upserts words as untrained. Re-queueing a trained word
// makes it pending again.
func (d *DB) QueueTrainingWords(ctx context.Context, words []string) (int, error) {
	queued := 0
	err := d.inTx(ctx, func(tx *sql.Tx) error {
		seen := map[string]struct{}{}
		now := d.now()
		for _, w := range words {
			w = strings.TrimSpace(w)
			if w == "" {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO training_words (word, trained, queued_at) VALUES (?, 0, ?)
				ON CONFLICT (word) DO UPDATE SET trained = 0, queued_at = excluded.queued_at, trained_at = NULL
			`, w, now); err != nil {
				return err
			}
			queued++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("queue training words: %w", err)
	}
	return queued, nil
}

// ConsumeTrainingWords marks every pending word trained and returns them,
// in one statement.
func (d *DB) ConsumeTrainingWords(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		UPDATE training_words SET trained = 1, trained_at = ?
		WHERE trained = 0
		RETURNING word
	`, d.now())
	if err != nil {
		return nil, fmt.Errorf("consume training words: %w", err)
	}
	defer rows.Close()
	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(words)
	return words, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSample(row scanner) (domain.OcrSample, error) {
	var (
		s                        domain.OcrSample
		left, top, right, bottom sql.NullInt64
		confirmed                sql.NullString
		status                   string
		imageRef, reviewedBy     sql.NullString
		reviewedAt, createdAt    any
	)
	if err := row.Scan(&s.ContractID, &s.Region, &left, &top, &right, &bottom,
		&s.RecognizedText, &confirmed, &status, &imageRef, &reviewedBy, &reviewedAt, &createdAt); err != nil {
		return s, err
	}
	s.Box = domain.Box{int(left.Int64), int(top.Int64), int(right.Int64), int(bottom.Int64)}
	if confirmed.Valid {
		s.ConfirmedText = &confirmed.String
	}
	s.Status = domain.SampleStatus(status)
	s.ImageRef = imageRef.String
	s.ReviewedBy = reviewedBy.String
	s.ReviewedAt = toTimePtr(reviewedAt)
	s.CreatedAt = toTime(createdAt)
	return s, nil
}

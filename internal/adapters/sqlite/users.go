package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"contractbot/internal/ports"
)

func (d *DB) GetOrCreateUser(ctx context.Context, externalID int64, displayName string) (int64, error) {
	var id int64
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO users (external_id, display_name)
		VALUES (?, ?)
		ON CONFLICT (external_id) DO UPDATE SET external_id = excluded.external_id
		RETURNING id
	`, externalID, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("get or create user %d: %w", externalID, err)
	}
	return id, nil
}

func (d *DB) LinkCharacter(ctx context.Context, userID int64, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return fmt.Errorf("%w: nickname is required", ports.ErrInvalidInput)
	}
	var backfilled int64
	err := d.inTx(ctx, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&one); err != nil {
			if isNoRows(err) {
				return fmt.Errorf("user %d: %w", userID, ports.ErrNotFound)
			}
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO characters (user_id, nickname) VALUES (?, ?)
			ON CONFLICT (nickname) DO UPDATE SET user_id = excluded.user_id
		`, userID, nickname); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE contracts SET user_id = ? WHERE player_name = ? AND user_id IS NULL`,
			userID, nickname)
		if err != nil {
			return err
		}
		backfilled, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("link character %q: %w", nickname, err)
	}
	d.log.Info("character linked",
		zap.Int64("user_id", userID),
		zap.String("nickname", nickname),
		zap.Int64("backfilled_contracts", backfilled))
	return nil
}

func (d *DB) GetUserByCharacter(ctx context.Context, nickname string) (int64, bool, error) {
	var userID sql.NullInt64
	err := d.db.QueryRowContext(ctx, `SELECT user_id FROM characters WHERE nickname = ?`, nickname).Scan(&userID)
	if isNoRows(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return userID.Int64, userID.Valid, nil
}

func (d *DB) ExternalIDForUser(ctx context.Context, userID int64) (int64, bool, error) {
	var ext int64
	err := d.db.QueryRowContext(ctx, `SELECT external_id FROM users WHERE id = ?`, userID).Scan(&ext)
	if isNoRows(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return ext, true, nil
}

// CalculateBalance is credited contracts minus payouts for the user.
func (d *DB) CalculateBalance(ctx context.Context, userID int64) (float64, error) {
	var balance float64
	err := d.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COALESCE(SUM(credited_amount), 0) FROM contracts WHERE user_id = ?)
			- (SELECT COALESCE(SUM(amount), 0) FROM payouts WHERE user_id = ?)
	`, userID, userID).Scan(&balance)
	return balance, err
}

func (d *DB) RecordPayout(ctx context.Context, userID int64, amount float64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: payout amount must be positive", ports.ErrInvalidInput)
	}
	var id int64
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO payouts (user_id, amount, reason, created_at) VALUES (?, ?, ?, ?)
		RETURNING id
	`, userID, amount, reason, d.now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("record payout: %w", err)
	}
	return id, nil
}

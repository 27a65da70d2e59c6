package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"contractbot/internal/domain"
	"contractbot/internal/ports"
)

// UserRepository
func (db *DB) GetOrCreateUser(ctx context.Context, externalID int64, displayName string) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (external_id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
		RETURNING id
	`, externalID, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("get or create user %d: %w", externalID, err)
	}
	return id, nil
}

func (db *DB) LinkCharacter(ctx context.Context, userID int64, nickname string) (err error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return fmt.Errorf("%w: nickname is required", ports.ErrInvalidInput)
	}
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var exists bool
	if err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user %d: %w", userID, ports.ErrNotFound)
	}
	if _, err = tx.Exec(ctx, `
		INSERT INTO characters (user_id, nickname) VALUES ($1, $2)
		ON CONFLICT (nickname) DO UPDATE SET user_id = EXCLUDED.user_id
	`, userID, nickname); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx,
		`UPDATE contracts SET user_id = $1 WHERE player_name = $2 AND user_id IS NULL`,
		userID, nickname)
	if err != nil {
		return err
	}
	db.log.Info("character linked",
		zap.Int64("user_id", userID),
		zap.String("nickname", nickname),
		zap.Int64("backfilled_contracts", tag.RowsAffected()))
	return nil
}

func (db *DB) GetUserByCharacter(ctx context.Context, nickname string) (int64, bool, error) {
	var userID *int64
	err := db.Pool.QueryRow(ctx, `SELECT user_id FROM characters WHERE nickname = $1`, nickname).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && userID == nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return *userID, true, nil
}

func (db *DB) ExternalIDForUser(ctx context.Context, userID int64) (int64, bool, error) {
	var ext int64
	err := db.Pool.QueryRow(ctx, `SELECT external_id FROM users WHERE id = $1`, userID).Scan(&ext)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return ext, true, nil
}

func (db *DB) CalculateBalance(ctx context.Context, userID int64) (float64, error) {
	var balance float64
	err := db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COALESCE(SUM(credited_amount), 0) FROM contracts WHERE user_id = $1)
			- (SELECT COALESCE(SUM(amount), 0) FROM payouts WHERE user_id = $1)
	`, userID).Scan(&balance)
	return balance, err
}

func (db *DB) RecordPayout(ctx context.Context, userID int64, amount float64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: payout amount must be positive", ports.ErrInvalidInput)
	}
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO payouts (user_id, amount, reason) VALUES ($1, $2, $3)
		RETURNING id
	`, userID, amount, reason).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("record payout: %w", err)
	}
	return id, nil
}

// ContractRepository
func (db *DB) RecordContract(ctx context.Context, draft domain.ContractDraft) (out domain.RecordedContract, err error) {
	estimated, credited := draft.Totals()
	out = domain.RecordedContract{EstimatedTotal: estimated, CreditedAmount: credited}

	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.RecordedContract{}, err
	}
	defer func() {
		if err == nil {
			err = tx.Commit(ctx)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			out = domain.RecordedContract{}
		}
	}()

	if err = tx.QueryRow(ctx, `
		INSERT INTO contracts (system, player_name, user_id, buyback_percent, estimated_total, credited_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, draft.System, draft.PlayerName, draft.UserID, draft.BuybackPercent, estimated, credited).Scan(&out.ID); err != nil {
		return out, fmt.Errorf("record contract: %w", err)
	}
	for _, it := range draft.Items {
		if _, err = tx.Exec(ctx, `
			INSERT INTO contract_items (contract_id, item_name, quantity, est_value)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (contract_id, item_name) DO UPDATE SET
				quantity = EXCLUDED.quantity,
				est_value = EXCLUDED.est_value
		`, out.ID, it.Name, it.Quantity, it.EstimatedValue); err != nil {
			return out, fmt.Errorf("record contract item %q: %w", it.Name, err)
		}
		if _, err = tx.Exec(ctx, `
			INSERT INTO inventory (system, item_name, quantity)
			VALUES ($1, $2, $3)
			ON CONFLICT (system, item_name) DO UPDATE SET
				quantity = inventory.quantity + EXCLUDED.quantity
		`, draft.System, it.Name, it.Quantity); err != nil {
			return out, fmt.Errorf("update inventory %q: %w", it.Name, err)
		}
	}
	db.log.Info("contract recorded",
		zap.Int64("contract_id", out.ID),
		zap.String("player", draft.PlayerName),
		zap.String("system", draft.System),
		zap.Float64("estimated_total", estimated),
		zap.Float64("credited", credited))
	return out, nil
}

func (db *DB) GetContract(ctx context.Context, contractID int64) (domain.Contract, []domain.ContractItem, error) {
	var (
		c                            domain.Contract
		percent, estimated, credited *float64
	)
	err := db.Pool.QueryRow(ctx, `
		SELECT id, created_at, system, player_name, user_id, buyback_percent, estimated_total, credited_amount
		FROM contracts WHERE id = $1
	`, contractID).Scan(&c.ID, &c.CreatedAt, &c.System, &c.PlayerName, &c.LinkedUserID, &percent, &estimated, &credited)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, nil, fmt.Errorf("contract %d: %w", contractID, ports.ErrNotFound)
	}
	if err != nil {
		return c, nil, err
	}
	c.BuybackPercent = deref(percent)
	c.EstimatedTotal = deref(estimated)
	c.CreditedAmount = deref(credited)

	rows, err := db.Pool.Query(ctx, `
		SELECT item_name, quantity, est_value FROM contract_items
		WHERE contract_id = $1 ORDER BY id
	`, contractID)
	if err != nil {
		return c, nil, err
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ContractItem, error) {
		var it domain.ContractItem
		err := row.Scan(&it.Name, &it.Quantity, &it.EstimatedValue)
		return it, err
	})
	return c, items, err
}

func (db *DB) Inventory(ctx context.Context, system string) ([]domain.InventoryEntry, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT system, item_name, quantity FROM inventory
		WHERE system = $1 ORDER BY item_name
	`, system)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.InventoryEntry, error) {
		var e domain.InventoryEntry
		err := row.Scan(&e.System, &e.ItemName, &e.Quantity)
		return e, err
	})
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

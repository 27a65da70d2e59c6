package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"contractbot/internal/domain"
	"contractbot/internal/ports"
)

var _ ports.Ledger = (*DB)(nil)

// RecordContract writes the contract row, its items and the inventory
// increments in one transaction.
func (d *DB) RecordContract(ctx context.Context, draft domain.ContractDraft) (domain.RecordedContract, error) {
	estimated, credited := draft.Totals()
	out := domain.RecordedContract{EstimatedTotal: estimated, CreditedAmount: credited}

	err := d.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO contracts (created_at, system, player_name, user_id, buyback_percent, estimated_total, credited_amount)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`, d.now(), draft.System, draft.PlayerName, draft.UserID, draft.BuybackPercent, estimated, credited).Scan(&out.ID); err != nil {
			return err
		}
		for _, it := range draft.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO contract_items (contract_id, item_name, quantity, est_value)
				VALUES (?, ?, ?, ?)
				ON CONFLICT (contract_id, item_name) DO UPDATE SET
					quantity = excluded.quantity,
					est_value = excluded.est_value
			`, out.ID, it.Name, it.Quantity, it.EstimatedValue); err != nil {
				return fmt.Errorf("item %q: %w", it.Name, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO inventory (system, item_name, quantity)
				VALUES (?, ?, ?)
				ON CONFLICT (system, item_name) DO UPDATE SET
					quantity = inventory.quantity + excluded.quantity
			`, draft.System, it.Name, it.Quantity); err != nil {
				return fmt.Errorf("inventory %q: %w", it.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.RecordedContract{}, fmt.Errorf("record contract: %w", err)
	}
	d.log.Info("contract recorded",
		zap.Int64("contract_id", out.ID),
		zap.String("player", draft.PlayerName),
		zap.String("system", draft.System),
		zap.Float64("estimated_total", estimated),
		zap.Float64("credited", credited))
	return out, nil
}

func (d *DB) GetContract(ctx context.Context, contractID int64) (domain.Contract, []domain.ContractItem, error) {
	var (
		c         domain.Contract
		createdAt any
		userID    sql.NullInt64
		percent   sql.NullFloat64
		estimated sql.NullFloat64
		credited  sql.NullFloat64
	)
	err := d.db.QueryRowContext(ctx, `
		SELECT id, created_at, system, player_name, user_id, buyback_percent, estimated_total, credited_amount
		FROM contracts WHERE id = ?
	`, contractID).Scan(&c.ID, &createdAt, &c.System, &c.PlayerName, &userID, &percent, &estimated, &credited)
	if isNoRows(err) {
		return c, nil, fmt.Errorf("contract %d: %w", contractID, ports.ErrNotFound)
	}
	if err != nil {
		return c, nil, err
	}
	c.CreatedAt = toTime(createdAt)
	if userID.Valid {
		c.LinkedUserID = &userID.Int64
	}
	c.BuybackPercent = percent.Float64
	c.EstimatedTotal = estimated.Float64
	c.CreditedAmount = credited.Float64

	rows, err := d.db.QueryContext(ctx, `
		SELECT item_name, quantity, est_value FROM contract_items
		WHERE contract_id = ? ORDER BY id
	`, contractID)
	if err != nil {
		return c, nil, err
	}
	defer rows.Close()
	var items []domain.ContractItem
	for rows.Next() {
		var it domain.ContractItem
		if err := rows.Scan(&it.Name, &it.Quantity, &it.EstimatedValue); err != nil {
			return c, nil, err
		}
		items = append(items, it)
	}
	return c, items, rows.Err()
}

func (d *DB) Inventory(ctx context.Context, system string) ([]domain.InventoryEntry, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT system, item_name, quantity FROM inventory
		WHERE system = ? ORDER BY item_name
	`, system)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.InventoryEntry
	for rows.Next() {
		var e domain.InventoryEntry
		if err := rows.Scan(&e.System, &e.ItemName, &e.Quantity); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

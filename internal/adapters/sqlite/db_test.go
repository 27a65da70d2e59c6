package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contractbot/internal/domain"
	"contractbot/internal/ports"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "ledger.sqlite"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func draft(system, player string, percent float64, userID *int64, items ...domain.ContractItem) domain.ContractDraft {
	return domain.ContractDraft{System: system, PlayerName: player, BuybackPercent: percent, Items: items, UserID: userID}
}

func item(name string, qty, value float64) domain.ContractItem {
	return domain.ContractItem{Name: name, Quantity: qty, EstimatedValue: value}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.sqlite")
	db, err := Open(context.Background(), path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(context.Background(), path, zap.NewNop())
	require.NoError(t, err)
	v, err := db.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
	require.NoError(t, db.Close())
}

func TestRecordContractTotals(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec, err := db.RecordContract(ctx, draft("Sol", "Vex", 80, nil,
		item("Ore", 10, 100), item("Gas", 2, 50.5), item("Ice", 1, 0.25)))
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	assert.InDelta(t, 150.75, rec.EstimatedTotal, 1e-9)
	assert.InDelta(t, 120.6, rec.CreditedAmount, 1e-9)

	c, items, err := db.GetContract(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sol", c.System)
	assert.Equal(t, "Vex", c.PlayerName)
	assert.Nil(t, c.LinkedUserID)
	assert.Equal(t, 80.0, c.BuybackPercent)
	assert.InDelta(t, c.EstimatedTotal*c.BuybackPercent/100, c.CreditedAmount, 1e-9)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Len(t, items, 3)
}

func TestRecordContractRollsBackOnFailure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.db.ExecContext(ctx, `
		CREATE TRIGGER reject_poison BEFORE INSERT ON inventory
		WHEN NEW.item_name = 'Poison'
		BEGIN
			SELECT RAISE(ABORT, 'poisoned item');
		END`)
	require.NoError(t, err)

	_, err = db.RecordContract(ctx, draft("Sol", "Vex", 80, nil, item("Ore", 10, 100), item("Poison", 1, 5)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poisoned item")

	for _, table := range []string{"contracts", "contract_items", "inventory"} {
		var n int
		require.NoError(t, db.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}

func TestRecordContractItemUpsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec, err := db.RecordContract(ctx, draft("Sol", "Vex", 100, nil, item("Ore", 1, 10), item("Ore", 4, 40)))
	require.NoError(t, err)
	assert.InDelta(t, 50, rec.EstimatedTotal, 1e-9)

	_, items, err := db.GetContract(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.ContractItem{item("Ore", 4, 40)}, items)
}

func TestInventoryIsAdditive(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.RecordContract(ctx, draft("Sol", "Vex", 100, nil, item("Ore", 3, 30), item("Gas", 1, 5)))
	require.NoError(t, err)
	_, err = db.RecordContract(ctx, draft("Sol", "Kai", 50, nil, item("Ore", 4.5, 45)))
	require.NoError(t, err)
	_, err = db.RecordContract(ctx, draft("Vega", "Kai", 50, nil, item("Ore", 100, 1)))
	require.NoError(t, err)

	inv, err := db.Inventory(ctx, "Sol")
	require.NoError(t, err)
	assert.Equal(t, []domain.InventoryEntry{
		{System: "Sol", ItemName: "Gas", Quantity: 1},
		{System: "Sol", ItemName: "Ore", Quantity: 7.5},
	}, inv)
}

func TestGetContractNotFound(t *testing.T) {
	_, _, err := openTestDB(t).GetContract(context.Background(), 42)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestLinkCharacterBackfills(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	var userID int64
	for ext := int64(1001); ext <= 1007; ext++ {
		id, err := db.GetOrCreateUser(ctx, ext, "user")
		require.NoError(t, err)
		userID = id
	}
	require.Equal(t, int64(7), userID)

	first, err := db.RecordContract(ctx, draft("Sol", "Vex", 100, nil, item("Ore", 1, 10)))
	require.NoError(t, err)
	second, err := db.RecordContract(ctx, draft("Vega", "Vex", 100, nil, item("Gas", 1, 20)))
	require.NoError(t, err)
	other, err := db.RecordContract(ctx, draft("Sol", "Kai", 100, nil, item("Ore", 1, 10)))
	require.NoError(t, err)

	require.NoError(t, db.LinkCharacter(ctx, 7, "Vex"))

	for _, id := range []int64{first.ID, second.ID} {
		c, _, err := db.GetContract(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, c.LinkedUserID)
		assert.Equal(t, int64(7), *c.LinkedUserID)
	}
	c, _, err := db.GetContract(ctx, other.ID)
	require.NoError(t, err)
	assert.Nil(t, c.LinkedUserID)

	uid, found, err := db.GetUserByCharacter(ctx, "Vex")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(7), uid)

	_, found, err = db.GetUserByCharacter(ctx, "Nobody")
	require.NoError(t, err)
	assert.False(t, found)

	assert.ErrorIs(t, db.LinkCharacter(ctx, 99, "Ghost"), ports.ErrNotFound)
	assert.ErrorIs(t, db.LinkCharacter(ctx, 7, "  "), ports.ErrInvalidInput)
}

func TestRelinkMovesCharacterButKeepsHistory(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	a, err := db.GetOrCreateUser(ctx, 1, "a")
	require.NoError(t, err)
	b, err := db.GetOrCreateUser(ctx, 2, "b")
	require.NoError(t, err)

	require.NoError(t, db.LinkCharacter(ctx, a, "Vex"))
	rec, err := db.RecordContract(ctx, draft("Sol", "Vex", 100, &a, item("Ore", 1, 10)))
	require.NoError(t, err)
	require.NoError(t, db.LinkCharacter(ctx, b, "Vex"))

	uid, _, err := db.GetUserByCharacter(ctx, "Vex")
	require.NoError(t, err)
	assert.Equal(t, b, uid)

	c, _, err := db.GetContract(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, a, *c.LinkedUserID)
}

func TestGetOrCreateUserIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id1, err := db.GetOrCreateUser(ctx, 555, "first")
	require.NoError(t, err)
	id2, err := db.GetOrCreateUser(ctx, 555, "renamed")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	ext, found, err := db.ExternalIDForUser(ctx, id1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(555), ext)

	_, found, err = db.ExternalIDForUser(ctx, 999)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCalculateBalance(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u, err := db.GetOrCreateUser(ctx, 10, "vex")
	require.NoError(t, err)
	_, err = db.RecordContract(ctx, draft("Sol", "Vex", 100, &u, item("Ore", 1, 100)))
	require.NoError(t, err)
	_, err = db.RecordContract(ctx, draft("Sol", "Vex", 50, &u, item("Gas", 1, 100)))
	require.NoError(t, err)
	_, err = db.RecordPayout(ctx, u, 30, "weekly")
	require.NoError(t, err)

	balance, err := db.CalculateBalance(ctx, u)
	require.NoError(t, err)
	assert.InDelta(t, 120.0, balance, 1e-9)

	empty, err := db.CalculateBalance(ctx, 12345)
	require.NoError(t, err)
	assert.Zero(t, empty)

	_, err = db.RecordPayout(ctx, u, 0, "nothing")
	assert.ErrorIs(t, err, ports.ErrInvalidInput)
}

func TestOcrSampleReview(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec, err := db.RecordContract(ctx, draft("Sol", "Vex", 100, nil, item("Ore", 1, 10)))
	require.NoError(t, err)

	for region, text := range map[string]string{"system": "So1", "player_name": "Vex", "game_time": "12:00"} {
		require.NoError(t, db.StoreOcrSample(ctx, domain.OcrSample{
			ContractID:     rec.ID,
			Region:         region,
			Box:            domain.Box{1, 2, 3, 4},
			RecognizedText: text,
			ImageRef:       "contracts/000001/" + region + ".png",
		}))
	}

	s, err := db.GetOcrSample(ctx, rec.ID, "system")
	require.NoError(t, err)
	assert.Equal(t, domain.SamplePending, s.Status)
	assert.Equal(t, domain.Box{1, 2, 3, 4}, s.Box)
	assert.Nil(t, s.ConfirmedText)
	assert.Nil(t, s.ReviewedAt)

	require.NoError(t, db.CorrectOcrSample(ctx, rec.ID, "system", "Sol", "op"))

	texts, err := db.ConfirmOcrContract(ctx, rec.ID, "lead")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"system": "Sol", "player_name": "Vex", "game_time": "12:00"}, texts)

	s, err = db.GetOcrSample(ctx, rec.ID, "system")
	require.NoError(t, err)
	assert.Equal(t, domain.SampleCorrected, s.Status)
	assert.Equal(t, "op", s.ReviewedBy)
	assert.Equal(t, "Sol", s.FinalText())

	s, err = db.GetOcrSample(ctx, rec.ID, "player_name")
	require.NoError(t, err)
	assert.Equal(t, domain.SampleConfirmed, s.Status)
	assert.Equal(t, "lead", s.ReviewedBy)
	require.NotNil(t, s.ReviewedAt)

	// re-storing a recognition keeps the review state
	require.NoError(t, db.StoreOcrSample(ctx, domain.OcrSample{ContractID: rec.ID, Region: "system", RecognizedText: "S0l"}))
	s, err = db.GetOcrSample(ctx, rec.ID, "system")
	require.NoError(t, err)
	assert.Equal(t, domain.SampleCorrected, s.Status)
	assert.Equal(t, "S0l", s.RecognizedText)
	assert.Equal(t, "Sol", s.FinalText())

	list, err := db.ListOcrSamples(ctx, rec.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, "game_time", list[0].Region)
}

func TestOcrReviewNotFound(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.GetOcrSample(ctx, 1, "system")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = db.ConfirmOcrContract(ctx, 1, "op")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, db.CorrectOcrSample(ctx, 1, "system", "x", "op"), ports.ErrNotFound)
}

func TestTrainingQueue(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	n, err := db.QueueTrainingWords(ctx, []string{"Vex", "Sol", "Vex", " "})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = db.QueueTrainingWords(ctx, []string{"Sol"})
	require.NoError(t, err)

	words, err := db.ConsumeTrainingWords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sol", "Vex"}, words)

	words, err = db.ConsumeTrainingWords(ctx)
	require.NoError(t, err)
	assert.Empty(t, words)

	_, err = db.QueueTrainingWords(ctx, []string{"Vex"})
	require.NoError(t, err)
	words, err = db.ConsumeTrainingWords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Vex"}, words)
}

func TestContractDeleteCascadesSamples(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec, err := db.RecordContract(ctx, draft("Sol", "Vex", 100, nil, item("Ore", 1, 10)))
	require.NoError(t, err)
	require.NoError(t, db.StoreOcrSample(ctx, domain.OcrSample{ContractID: rec.ID, Region: "system", RecognizedText: "Sol"}))

	_, err = db.db.ExecContext(ctx, `DELETE FROM contracts WHERE id = ?`, rec.ID)
	require.NoError(t, err)

	list, err := db.ListOcrSamples(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

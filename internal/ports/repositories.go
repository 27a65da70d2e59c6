package ports

import (
	"context"
	"errors"

	"contractbot/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// UserRepository links external identities and in-game nicknames.
type UserRepository interface {
	GetOrCreateUser(ctx context.Context, externalID int64, displayName string) (userID int64, err error)
	// LinkCharacter points nickname at userID and assigns userID to every
	// earlier contract of that nickname that has no linked user yet.
	LinkCharacter(ctx context.Context, userID int64, nickname string) error
	GetUserByCharacter(ctx context.Context, nickname string) (userID int64, found bool, err error)
	ExternalIDForUser(ctx context.Context, userID int64) (externalID int64, found bool, err error)
	CalculateBalance(ctx context.Context, userID int64) (float64, error)
	RecordPayout(ctx context.Context, userID int64, amount float64, reason string) (payoutID int64, err error)
}

// ContractRepository records contracts together with their items and the
// per-system inventory aggregate as one atomic unit.
type ContractRepository interface {
	RecordContract(ctx context.Context, draft domain.ContractDraft) (domain.RecordedContract, error)
	GetContract(ctx context.Context, contractID int64) (domain.Contract, []domain.ContractItem, error)
	Inventory(ctx context.Context, system string) ([]domain.InventoryEntry, error)
}

// OcrSampleRepository backs the operator review workflow.
type OcrSampleRepository interface {
	StoreOcrSample(ctx context.Context, sample domain.OcrSample) error
	GetOcrSample(ctx context.Context, contractID int64, region string) (domain.OcrSample, error)
	ListOcrSamples(ctx context.Context, contractID int64) ([]domain.OcrSample, error)
	// ConfirmOcrContract marks every non-corrected sample of the contract as
	// confirmed and returns the final text per region.
	ConfirmOcrContract(ctx context.Context, contractID int64, reviewer string) (map[string]string, error)
	CorrectOcrSample(ctx context.Context, contractID int64, region, text, reviewer string) error
}

// TrainingQueue is the deduplicated training word queue.
type TrainingQueue interface {
	QueueTrainingWords(ctx context.Context, words []string) (queued int, err error)
	// ConsumeTrainingWords returns the pending words and marks them trained in
	// the same statement.
	ConsumeTrainingWords(ctx context.Context) ([]string, error)
}

// Ledger is the full durable store.
type Ledger interface {
	UserRepository
	ContractRepository
	OcrSampleRepository
	TrainingQueue
	Close() error
}

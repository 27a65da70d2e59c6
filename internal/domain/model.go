package domain

import "time"

// Core domain models shared by the ingestion worker, the ledger adapters and
// the command surface.

// ContractItem is one parsed line of a contract composition.
type ContractItem struct {
	Name           string
	Quantity       float64
	EstimatedValue float64
}

type Contract struct {
	ID             int64
	CreatedAt      time.Time
	System         string
	PlayerName     string
	LinkedUserID   *int64
	BuybackPercent float64
	EstimatedTotal float64
	CreditedAmount float64
}

// ContractDraft is everything the ingestion cycle knows about a contract
// before it is written.
type ContractDraft struct {
	System         string
	PlayerName     string
	BuybackPercent float64
	Items          []ContractItem
	UserID         *int64
}

// Totals returns the estimated total and the credited amount for the draft.
// The buyback percent is taken as a snapshot; later changes never touch a
// recorded contract.
func (d ContractDraft) Totals() (estimated, credited float64) {
	for _, it := range d.Items {
		estimated += it.EstimatedValue
	}
	return estimated, estimated * (d.BuybackPercent / 100.0)
}

type RecordedContract struct {
	ID             int64
	EstimatedTotal float64
	CreditedAmount float64
}

type InventoryEntry struct {
	System   string
	ItemName string
	Quantity float64
}

type User struct {
	ID          int64
	ExternalID  int64
	DisplayName string
}

type Character struct {
	Nickname string
	UserID   *int64
}

type Payout struct {
	ID        int64
	UserID    int64
	Amount    float64
	Reason    string
	CreatedAt time.Time
}

// Box is a screen rectangle as (left, top, right, bottom). Values come from
// operator configuration and may be unordered.
type Box [4]int

type SampleStatus string

const (
	SamplePending   SampleStatus = "pending"
	SampleConfirmed SampleStatus = "confirmed"
	SampleCorrected SampleStatus = "corrected"
)

type OcrSample struct {
	ContractID     int64
	Region         string
	Box            Box
	RecognizedText string
	ConfirmedText  *string
	Status         SampleStatus
	ImageRef       string
	ReviewedBy     string
	ReviewedAt     *time.Time
	CreatedAt      time.Time
}

// FinalText is the operator text when present, the recognized text otherwise.
func (s OcrSample) FinalText() string {
	if s.ConfirmedText != nil {
		return *s.ConfirmedText
	}
	return s.RecognizedText
}

type TrainingWord struct {
	Word    string
	Trained bool
}

// OcrArtifact references one stored crop attached to a contract notification.
type OcrArtifact struct {
	Region         string
	Box            Box
	RecognizedText string
	ImageRef       string
}

// ContractNotification is emitted once per recorded contract.
type ContractNotification struct {
	ContractID     int64
	PlayerName     string
	System         string
	EstimatedTotal float64
	CreditedAmount float64
	ExternalUserID *int64
	OcrArtifacts   []OcrArtifact
	ScreenshotRef  string
}

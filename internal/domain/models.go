package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ClientID uint16

type TxID uint32

type TransactionKind string

const (
	TransactionKindDeposit    TransactionKind = "deposit"
	TransactionKindWithdrawal TransactionKind = "withdrawal"
	TransactionKindDispute    TransactionKind = "dispute"
	TransactionKindResolve    TransactionKind = "resolve"
	TransactionKindChargeback TransactionKind = "chargeback"
)

// HasAmount reports whether records of this kind carry their own amount.
// Dispute-lifecycle records reference the amount of the original transaction
// instead.
func (k TransactionKind) HasAmount() bool {
	return k == TransactionKindDeposit || k == TransactionKindWithdrawal
}

// TransactionRecord is a single parsed input row. Amount is only meaningful
// when Kind.HasAmount() is true.
type TransactionRecord struct {
	Kind   TransactionKind `json:"type"`
	Client ClientID        `json:"client"`
	Tx     TxID            `json:"tx"`
	Amount decimal.Decimal `json:"amount"`
}

type DisputeStatus string

const (
	DisputeStatusNormal      DisputeStatus = "normal"
	DisputeStatusDisputed    DisputeStatus = "disputed"
	DisputeStatusResolved    DisputeStatus = "resolved"
	DisputeStatusChargedBack DisputeStatus = "charged_back"
)

// HistoryEntry records an applied deposit or withdrawal so that later
// dispute-lifecycle records can reference it by transaction id.
type HistoryEntry struct {
	Tx     TxID
	Client ClientID
	Kind   TransactionKind
	Amount decimal.Decimal
	Status DisputeStatus
}

// AccountSnapshot is the final projected state of one client account.
// Total is always Available + Held, never stored independently.
type AccountSnapshot struct {
	Client    ClientID        `json:"client"`
	Available decimal.Decimal `json:"available"`
	Held      decimal.Decimal `json:"held"`
	Total     decimal.Decimal `json:"total"`
	Locked    bool            `json:"locked"`
}

type UploadStatus string

const (
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
)

// Upload tracks one submitted transaction stream on the serving surface.
type Upload struct {
	ID            string       `json:"id"`
	Status        UploadStatus `json:"status"`
	ProcessedRows int          `json:"processed_rows"`
	SkippedRows   int          `json:"skipped_rows"`
	CreatedAt     time.Time    `json:"created_at"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
}

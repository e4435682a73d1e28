package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/grachmannico95/payment-engine/internal/domain"
)

// History is the arena of applied deposits and withdrawals, keyed by
// transaction id. Entries are owned exclusively by this map, referenced by
// id elsewhere, and never deleted. It does not enforce the dispute
// transition graph; the Ledger does, so the rules stay visible in one place.
type History struct {
	entries map[domain.TxID]*domain.HistoryEntry
}

func NewHistory() *History {
	return &History{
		entries: make(map[domain.TxID]*domain.HistoryEntry),
	}
}

// Record inserts a new entry in the normal state. A reused transaction id is
// rejected with ErrDuplicateTransaction and the existing entry is untouched;
// the caller must not apply the duplicate's balance effect.
func (h *History) Record(tx domain.TxID, client domain.ClientID, kind domain.TransactionKind, amount decimal.Decimal) error {
	if _, exists := h.entries[tx]; exists {
		return domain.ErrDuplicateTransaction
	}

	h.entries[tx] = &domain.HistoryEntry{
		Tx:     tx,
		Client: client,
		Kind:   kind,
		Amount: amount,
		Status: domain.DisputeStatusNormal,
	}

	return nil
}

func (h *History) Find(tx domain.TxID) (*domain.HistoryEntry, bool) {
	entry, ok := h.entries[tx]
	return entry, ok
}

// SetStatus mutates an entry's dispute status in place. Callers validate the
// current status before transitioning.
func (h *History) SetStatus(tx domain.TxID, status domain.DisputeStatus) error {
	entry, ok := h.entries[tx]
	if !ok {
		return domain.ErrUnknownTransaction
	}

	entry.Status = status
	return nil
}

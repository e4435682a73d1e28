package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/grachmannico95/payment-engine/internal/domain"
)

// Ledger folds an ordered stream of transaction records into per-client
// account state. It exclusively owns the account map and the transaction
// history; nothing else mutates them.
//
// Every rejection is a no-op on state and comes back as a typed sentinel
// error so collaborators can log it, but no rejection is ever fatal: one bad
// record never halts processing of the rest of the stream.
type Ledger struct {
	accounts map[domain.ClientID]*Account
	history  *History
}

func New() *Ledger {
	return &Ledger{
		accounts: make(map[domain.ClientID]*Account),
		history:  NewHistory(),
	}
}

// Process applies one record in stream order. The context carries logging
// metadata only; processing itself never blocks.
func (l *Ledger) Process(_ context.Context, record domain.TransactionRecord) error {
	switch record.Kind {
	case domain.TransactionKindDeposit:
		return l.deposit(record)
	case domain.TransactionKindWithdrawal:
		return l.withdraw(record)
	case domain.TransactionKindDispute:
		return l.dispute(record)
	case domain.TransactionKindResolve:
		return l.resolve(record)
	case domain.TransactionKindChargeback:
		return l.chargeback(record)
	default:
		return fmt.Errorf("unhandled transaction kind: %q", record.Kind)
	}
}

func (l *Ledger) deposit(record domain.TransactionRecord) error {
	account := l.account(record.Client)

	err := l.history.Record(record.Tx, record.Client, record.Kind, record.Amount)
	if err != nil {
		return fmt.Errorf("deposit tx %d: %w", record.Tx, err)
	}

	account.Deposit(record.Amount)
	return nil
}

func (l *Ledger) withdraw(record domain.TransactionRecord) error {
	account, ok := l.accounts[record.Client]
	if !ok {
		// Cannot withdraw from an account that never transacted.
		return fmt.Errorf("withdrawal tx %d: %w", record.Tx, domain.ErrUnknownAccount)
	}

	if _, exists := l.history.Find(record.Tx); exists {
		return fmt.Errorf("withdrawal tx %d: %w", record.Tx, domain.ErrDuplicateTransaction)
	}

	if err := account.Withdraw(record.Amount); err != nil {
		return fmt.Errorf("withdrawal tx %d: %w", record.Tx, err)
	}

	// Record the applied withdrawal so it can itself be disputed later.
	return l.history.Record(record.Tx, record.Client, record.Kind, record.Amount)
}

func (l *Ledger) dispute(record domain.TransactionRecord) error {
	entry, err := l.referencedEntry(record, domain.DisputeStatusNormal)
	if err != nil {
		return fmt.Errorf("dispute tx %d: %w", record.Tx, err)
	}

	l.account(entry.Client).BeginDispute(entry.Kind, entry.Amount)
	return l.history.SetStatus(entry.Tx, domain.DisputeStatusDisputed)
}

func (l *Ledger) resolve(record domain.TransactionRecord) error {
	entry, err := l.referencedEntry(record, domain.DisputeStatusDisputed)
	if err != nil {
		return fmt.Errorf("resolve tx %d: %w", record.Tx, err)
	}

	l.account(entry.Client).ResolveDispute(entry.Amount)

	// Resolved is terminal: the entry never returns to normal, so the audit
	// trail keeps resolved transactions distinguishable from never-disputed
	// ones, and no redispute is possible.
	return l.history.SetStatus(entry.Tx, domain.DisputeStatusResolved)
}

func (l *Ledger) chargeback(record domain.TransactionRecord) error {
	entry, err := l.referencedEntry(record, domain.DisputeStatusDisputed)
	if err != nil {
		return fmt.Errorf("chargeback tx %d: %w", record.Tx, err)
	}

	l.account(entry.Client).Chargeback(entry.Amount)
	return l.history.SetStatus(entry.Tx, domain.DisputeStatusChargedBack)
}

// referencedEntry resolves the history entry a dispute-lifecycle record
// points at and enforces the transition graph: a dispute requires a normal
// entry, resolve and chargeback require an open dispute, and a mismatched
// client rejects the record outright.
func (l *Ledger) referencedEntry(record domain.TransactionRecord, want domain.DisputeStatus) (*domain.HistoryEntry, error) {
	entry, ok := l.history.Find(record.Tx)
	if !ok {
		return nil, domain.ErrUnknownTransaction
	}

	if entry.Client != record.Client {
		return nil, domain.ErrClientMismatch
	}

	if entry.Status != want {
		if want == domain.DisputeStatusNormal {
			return nil, domain.ErrAlreadyDisputed
		}
		return nil, domain.ErrDisputeNotOpen
	}

	return entry, nil
}

// account returns the client's account, creating it on first reference.
func (l *Ledger) account(client domain.ClientID) *Account {
	account, ok := l.accounts[client]
	if !ok {
		account = NewAccount(client)
		l.accounts[client] = account
	}
	return account
}

// Snapshots projects every account that ever appeared in the stream, sorted
// by client id for deterministic output.
func (l *Ledger) Snapshots() []domain.AccountSnapshot {
	snapshots := make([]domain.AccountSnapshot, 0, len(l.accounts))
	for _, account := range l.accounts {
		snapshots = append(snapshots, account.Snapshot())
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Client < snapshots[j].Client
	})

	return snapshots
}

package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/grachmannico95/payment-engine/internal/domain"
)

// Account holds the mutable balance state of one client. Total is never
// stored; it is always Available + Held.
type Account struct {
	client    domain.ClientID
	available decimal.Decimal
	held      decimal.Decimal
	locked    bool
}

func NewAccount(client domain.ClientID) *Account {
	return &Account{
		client:    client,
		available: decimal.Zero,
		held:      decimal.Zero,
	}
}

// Deposit credits available funds. Locked accounts still accept deposits;
// only withdrawals are blocked by a chargeback.
func (a *Account) Deposit(amount decimal.Decimal) {
	a.available = a.available.Add(amount)
}

// Withdraw debits available funds. The reference behavior performs no
// funds check, so available may go negative; the only rejection is a
// locked account.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if a.locked {
		return domain.ErrAccountLocked
	}
	a.available = a.available.Sub(amount)
	return nil
}

// BeginDispute moves the disputed amount into held. Disputing a deposit
// debits available; disputing a withdrawal provisionally re-credits the
// debited amount into held, leaving available untouched. Neither path
// checks for underflow: a dispute larger than the current available
// balance drives it negative, mirroring real-world hold semantics.
func (a *Account) BeginDispute(kind domain.TransactionKind, amount decimal.Decimal) {
	if kind == domain.TransactionKindDeposit {
		a.available = a.available.Sub(amount)
	}
	a.held = a.held.Add(amount)
}

// ResolveDispute releases held funds back into available.
func (a *Account) ResolveDispute(amount decimal.Decimal) {
	a.held = a.held.Sub(amount)
	a.available = a.available.Add(amount)
}

// Chargeback withdraws the held funds and freezes the account. Total drops
// permanently by the charged-back amount, and the lock is terminal.
func (a *Account) Chargeback(amount decimal.Decimal) {
	a.held = a.held.Sub(amount)
	a.locked = true
}

func (a *Account) Locked() bool {
	return a.locked
}

func (a *Account) Snapshot() domain.AccountSnapshot {
	return domain.AccountSnapshot{
		Client:    a.client,
		Available: a.available,
		Held:      a.held,
		Total:     a.available.Add(a.held),
		Locked:    a.locked,
	}
}

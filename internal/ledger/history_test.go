package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grachmannico95/payment-engine/internal/domain"
)

func TestHistory_Record(t *testing.T) {
	history := NewHistory()

	err := history.Record(1, 2, domain.TransactionKindDeposit, dec("5.72"))
	require.NoError(t, err)

	entry, ok := history.Find(1)
	require.True(t, ok)
	assert.Equal(t, domain.TxID(1), entry.Tx)
	assert.Equal(t, domain.ClientID(2), entry.Client)
	assert.Equal(t, domain.TransactionKindDeposit, entry.Kind)
	assert.True(t, entry.Amount.Equal(dec("5.72")))
	assert.Equal(t, domain.DisputeStatusNormal, entry.Status)
}

func TestHistory_Record_DuplicateTx(t *testing.T) {
	history := NewHistory()

	err := history.Record(1, 2, domain.TransactionKindDeposit, dec("5"))
	require.NoError(t, err)

	err = history.Record(1, 3, domain.TransactionKindWithdrawal, dec("99"))
	assert.ErrorIs(t, err, domain.ErrDuplicateTransaction)

	// The original entry is untouched.
	entry, ok := history.Find(1)
	require.True(t, ok)
	assert.Equal(t, domain.ClientID(2), entry.Client)
	assert.True(t, entry.Amount.Equal(dec("5")))
}

func TestHistory_Find_Missing(t *testing.T) {
	history := NewHistory()

	_, ok := history.Find(42)
	assert.False(t, ok)
}

func TestHistory_SetStatus(t *testing.T) {
	history := NewHistory()

	err := history.Record(1, 2, domain.TransactionKindDeposit, dec("5"))
	require.NoError(t, err)

	err = history.SetStatus(1, domain.DisputeStatusDisputed)
	require.NoError(t, err)

	entry, ok := history.Find(1)
	require.True(t, ok)
	assert.Equal(t, domain.DisputeStatusDisputed, entry.Status)
}

func TestHistory_SetStatus_Unknown(t *testing.T) {
	history := NewHistory()

	err := history.SetStatus(42, domain.DisputeStatusDisputed)
	assert.ErrorIs(t, err, domain.ErrUnknownTransaction)
}

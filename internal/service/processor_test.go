package service

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grachmannico95/payment-engine/internal/domain"
	"github.com/grachmannico95/payment-engine/internal/ledger"
	"github.com/grachmannico95/payment-engine/pkg/logger"
)

const canonicalCSV = `type, client, tx, amount
deposit, 1, 1, 1.0
deposit, 2, 2, 2.0
deposit, 1, 3, 2.0
withdrawal, 1, 4, 1.5
dispute, 1, 4
resolve, 1, 4
dispute, 1, 3
withdrawal, 2, 5, 3.0
chargeback, 1, 3`

type captureSink struct {
	records []domain.TransactionRecord
	err     error
}

func (c *captureSink) Process(_ context.Context, record domain.TransactionRecord) error {
	if c.err != nil {
		return c.err
	}
	c.records = append(c.records, record)
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestProcessor_ParsesWhitespacePaddedRows(t *testing.T) {
	processor := NewProcessor(logger.NewNop())
	sink := &captureSink{}

	stats, err := processor.ProcessStream(context.Background(), strings.NewReader(canonicalCSV), sink)
	require.NoError(t, err)

	assert.Equal(t, 9, stats.Rows)
	assert.Equal(t, 9, stats.Accepted)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 0, stats.Ignored)

	require.Len(t, sink.records, 9)
	first := sink.records[0]
	assert.Equal(t, domain.TransactionKindDeposit, first.Kind)
	assert.Equal(t, domain.ClientID(1), first.Client)
	assert.Equal(t, domain.TxID(1), first.Tx)
	assert.True(t, first.Amount.Equal(dec("1.0")))

	// Dispute rows carry no amount of their own.
	disputeRecord := sink.records[4]
	assert.Equal(t, domain.TransactionKindDispute, disputeRecord.Kind)
	assert.True(t, disputeRecord.Amount.IsZero())
}

func TestProcessor_PreservesArrivalOrder(t *testing.T) {
	processor := NewProcessor(logger.NewNop())
	sink := &captureSink{}

	_, err := processor.ProcessStream(context.Background(), strings.NewReader(canonicalCSV), sink)
	require.NoError(t, err)

	wantTx := []domain.TxID{1, 2, 3, 4, 4, 4, 3, 5, 3}
	for i, record := range sink.records {
		assert.Equal(t, wantTx[i], record.Tx)
	}
}

func TestProcessor_SkipsMalformedRows(t *testing.T) {
	input := `type,client,tx,amount
deposit,1,1,1.0
transfer,1,2,1.0
deposit,abc,3,1.0
deposit,1,4
deposit,1,5,-2.0
deposit,1,notanumber,1.0
deposit,1,6,2.5`

	processor := NewProcessor(logger.NewNop())
	sink := &captureSink{}

	stats, err := processor.ProcessStream(context.Background(), strings.NewReader(input), sink)
	require.NoError(t, err)

	assert.Equal(t, 7, stats.Rows)
	assert.Equal(t, 2, stats.Accepted)
	assert.Equal(t, 5, stats.Skipped)

	require.Len(t, sink.records, 2)
	assert.Equal(t, domain.TxID(1), sink.records[0].Tx)
	assert.Equal(t, domain.TxID(6), sink.records[1].Tx)
}

func TestProcessor_CountsLedgerRejections(t *testing.T) {
	input := `type,client,tx,amount
deposit,1,1,5.0
deposit,1,1,5.0
withdrawal,2,2,1.0`

	processor := NewProcessor(logger.NewNop())
	led := ledger.New()

	stats, err := processor.ProcessStream(context.Background(), strings.NewReader(input), led)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 1, stats.Accepted)
	assert.Equal(t, 2, stats.Ignored)
	assert.Equal(t, 0, stats.Skipped)
}

func TestProcessor_CanonicalScenarioThroughLedger(t *testing.T) {
	processor := NewProcessor(logger.NewNop())
	led := ledger.New()

	stats, err := processor.ProcessStream(context.Background(), strings.NewReader(canonicalCSV), led)
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Accepted)

	snapshots := led.Snapshots()
	require.Len(t, snapshots, 2)

	assert.Equal(t, domain.ClientID(1), snapshots[0].Client)
	assert.True(t, snapshots[0].Available.Equal(dec("1.0")))
	assert.True(t, snapshots[0].Held.IsZero())
	assert.True(t, snapshots[0].Total.Equal(dec("1.0")))
	assert.True(t, snapshots[0].Locked)

	assert.Equal(t, domain.ClientID(2), snapshots[1].Client)
	assert.True(t, snapshots[1].Available.Equal(dec("-1")))
	assert.True(t, snapshots[1].Held.IsZero())
	assert.True(t, snapshots[1].Total.Equal(dec("-1")))
	assert.False(t, snapshots[1].Locked)
}

func TestProcessor_EmptyStream(t *testing.T) {
	processor := NewProcessor(logger.NewNop())
	sink := &captureSink{}

	stats, err := processor.ProcessStream(context.Background(), strings.NewReader(""), sink)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Rows)
	assert.Empty(t, sink.records)
}

func TestProcessor_HeaderOnly(t *testing.T) {
	processor := NewProcessor(logger.NewNop())
	sink := &captureSink{}

	stats, err := processor.ProcessStream(context.Background(), strings.NewReader("type,client,tx,amount\n"), sink)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Rows)
	assert.Empty(t, sink.records)
}

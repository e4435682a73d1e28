package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/grachmannico95/payment-engine/internal/domain"
	"github.com/grachmannico95/payment-engine/pkg/logger"
)

// TransactionSink consumes parsed records in arrival order. Both the Ledger
// and the sharded dispatcher satisfy it.
type TransactionSink interface {
	Process(ctx context.Context, record domain.TransactionRecord) error
}

// ProcessStats summarizes one stream run.
type ProcessStats struct {
	Rows     int // data rows read
	Accepted int // parsed and applied
	Skipped  int // structurally invalid rows, never reached the ledger
	Ignored  int // records the ledger rejected as no-ops
}

// Processor streams `type,client,tx,amount` CSV into a TransactionSink.
// Structurally invalid rows are logged and skipped; ledger rejections are
// logged and counted. Only an unreadable source is fatal.
type Processor struct {
	logger *logger.Logger
}

func NewProcessor(log *logger.Logger) *Processor {
	return &Processor{logger: log}
}

func (p *Processor) ProcessStream(ctx context.Context, reader io.Reader, sink TransactionSink) (ProcessStats, error) {
	csvReader := csv.NewReader(reader)
	csvReader.ReuseRecord = true
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1 // dispute rows legitimately omit the amount

	var stats ProcessStats

	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				// The source itself failed; this aborts the run.
				return stats, fmt.Errorf("reading transaction stream: %w", err)
			}
			p.logger.Warn(ctx, "Failed to read CSV line",
				"line", parseErr.Line,
				"error", err,
			)
			stats.Skipped++
			continue
		}

		if stats.Rows == 0 && stats.Skipped == 0 && isHeader(row) {
			continue
		}
		stats.Rows++

		record, err := parseRecord(row)
		if err != nil {
			p.logger.Warn(ctx, "Failed to parse transaction",
				"row", stats.Rows,
				"error", err,
			)
			stats.Skipped++
			continue
		}

		if err := sink.Process(ctx, record); err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			p.logger.Debug(ctx, "Transaction ignored",
				"kind", record.Kind,
				"client", record.Client,
				"tx", record.Tx,
				"reason", err,
			)
			stats.Ignored++
			continue
		}

		stats.Accepted++
	}

	p.logger.Info(ctx, "Transaction stream processed",
		"rows", stats.Rows,
		"accepted", stats.Accepted,
		"skipped", stats.Skipped,
		"ignored", stats.Ignored,
	)

	return stats, nil
}

func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "type")
}

func parseRecord(row []string) (domain.TransactionRecord, error) {
	if len(row) < 3 {
		return domain.TransactionRecord{}, fmt.Errorf("%w: expected at least 3 fields, got %d", domain.ErrInvalidCSVFormat, len(row))
	}

	kind := domain.TransactionKind(strings.ToLower(strings.TrimSpace(row[0])))
	switch kind {
	case domain.TransactionKindDeposit,
		domain.TransactionKindWithdrawal,
		domain.TransactionKindDispute,
		domain.TransactionKindResolve,
		domain.TransactionKindChargeback:
	default:
		return domain.TransactionRecord{}, fmt.Errorf("unknown transaction type: %q", row[0])
	}

	client, err := strconv.ParseUint(strings.TrimSpace(row[1]), 10, 16)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("invalid client id: %w", err)
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(row[2]), 10, 32)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("invalid transaction id: %w", err)
	}

	amount := decimal.Zero
	if kind.HasAmount() {
		if len(row) < 4 || strings.TrimSpace(row[3]) == "" {
			return domain.TransactionRecord{}, fmt.Errorf("missing amount for %s", kind)
		}

		amount, err = decimal.NewFromString(strings.TrimSpace(row[3]))
		if err != nil {
			return domain.TransactionRecord{}, fmt.Errorf("invalid amount: %w", err)
		}
		if amount.IsNegative() {
			return domain.TransactionRecord{}, fmt.Errorf("negative amount: %s", amount)
		}
	}

	return domain.TransactionRecord{
		Kind:   kind,
		Client: domain.ClientID(client),
		Tx:     domain.TxID(tx),
		Amount: amount,
	}, nil
}

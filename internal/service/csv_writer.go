package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/grachmannico95/payment-engine/internal/domain"
)

// snapshotPrecision is the fixed number of decimal places in rendered
// balances. Four places match the currency precision of the input format.
const snapshotPrecision = 4

// WriteSnapshots renders the final account set as
// `client,available,held,total,locked` CSV. Amounts use banker's rounding at
// fixed precision so no rounding loss is visible at the currency scale.
func WriteSnapshots(w io.Writer, snapshots []domain.AccountSnapshot) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("writing snapshot header: %w", err)
	}

	for _, s := range snapshots {
		row := []string{
			strconv.FormatUint(uint64(s.Client), 10),
			s.Available.StringFixedBank(snapshotPrecision),
			s.Held.StringFixedBank(snapshotPrecision),
			s.Total.StringFixedBank(snapshotPrecision),
			strconv.FormatBool(s.Locked),
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing snapshot for client %d: %w", s.Client, err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

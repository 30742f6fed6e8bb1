// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	positions *csv.Writer
	balances  *csv.Writer
	pf, bf    *os.File
}

func NewCSV(positionsPath, balancesPath string) (*CSVJournal, error) {
	pf, err := os.Create(positionsPath)
	if err != nil {
		return nil, err
	}
	bf, err := os.Create(balancesPath)
	if err != nil {
		pf.Close()
		return nil, err
	}

	pw := csv.NewWriter(pf)
	bw := csv.NewWriter(bf)

	if err := pw.Write([]string{"position_id", "venue", "symbol", "side", "amount", "leverage", "entry_price", "close_price", "open_time", "close_time", "fee", "realized_pl", "status"}); err != nil {
		return nil, err
	}
	if err := bw.Write([]string{"time", "venue", "balance"}); err != nil {
		return nil, err
	}

	pw.Flush()
	if err := pw.Error(); err != nil {
		return nil, err
	}
	bw.Flush()
	if err := bw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{pw, bw, pf, bf}, nil
}

func (j *CSVJournal) RecordPosition(r PositionRecord) error {
	err := j.positions.Write([]string{
		r.PositionID,
		r.Venue,
		r.Symbol,
		r.Side,
		formatFloat(r.Amount),
		strconv.Itoa(r.Leverage),
		formatFloat(r.EntryPrice),
		formatFloat(r.ClosePrice),
		r.OpenTime.UTC().Format(time.RFC3339),
		r.CloseTime.UTC().Format(time.RFC3339),
		formatFloat(r.Fee),
		formatFloat(r.RealizedPL),
		r.Status,
	})
	if err != nil {
		return err
	}
	j.positions.Flush()
	return j.positions.Error()
}

func (j *CSVJournal) RecordBalance(b BalanceSnapshot) error {
	err := j.balances.Write([]string{
		b.Time.UTC().Format(time.RFC3339),
		b.Venue,
		formatFloat(b.Balance),
	})
	if err != nil {
		return err
	}
	j.balances.Flush()
	return j.balances.Error()
}

func (j *CSVJournal) Close() error {
	j.positions.Flush()
	j.balances.Flush()
	if err := j.pf.Close(); err != nil {
		j.bf.Close()
		return err
	}
	return j.bf.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordPosition(r PositionRecord) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO positions
		(position_id, venue, symbol, side, amount, leverage, entry_price, close_price, open_time, close_time, fee, realized_pl, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PositionID, r.Venue, r.Symbol, r.Side, r.Amount, r.Leverage,
		r.EntryPrice, r.ClosePrice, r.OpenTime, r.CloseTime, r.Fee,
		r.RealizedPL, r.Status,
	)
	return err
}

func (j *SQLiteJournal) RecordBalance(b BalanceSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO balances (time, venue, balance)
		VALUES (?, ?, ?)`,
		b.Time, b.Venue, b.Balance,
	)
	return err
}

// ListPositions returns recorded rounds for a venue, oldest first.
func (j *SQLiteJournal) ListPositions(venue string) ([]PositionRecord, error) {
	rows, err := j.db.Query(`
		SELECT position_id, venue, symbol, side, amount, leverage, entry_price,
		       close_price, open_time, close_time, fee, realized_pl, status
		FROM positions WHERE venue = ? ORDER BY position_id`, venue)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PositionRecord
	for rows.Next() {
		var r PositionRecord
		if err := rows.Scan(&r.PositionID, &r.Venue, &r.Symbol, &r.Side,
			&r.Amount, &r.Leverage, &r.EntryPrice, &r.ClosePrice,
			&r.OpenTime, &r.CloseTime, &r.Fee, &r.RealizedPL, &r.Status); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

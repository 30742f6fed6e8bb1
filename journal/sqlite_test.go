package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLiteJournal, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func sampleRecord(id string) PositionRecord {
	open := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return PositionRecord{
		PositionID: id,
		Venue:      "simulation",
		Symbol:     "BTC",
		Side:       "BUY",
		Amount:     100,
		Leverage:   10,
		EntryPrice: 30000,
		ClosePrice: 31000,
		OpenTime:   open,
		CloseTime:  open.Add(time.Hour),
		Fee:        0.1,
		RealizedPL: 33.33,
		Status:     "CLOSED_MANUAL",
	}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('positions','balances')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["positions"])
	assert.True(t, found["balances"])
}

func TestSQLiteRecordAndList(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	require.NoError(t, j.RecordPosition(sampleRecord("p1")))
	require.NoError(t, j.RecordPosition(sampleRecord("p2")))

	other := sampleRecord("p3")
	other.Venue = "fbs"
	require.NoError(t, j.RecordPosition(other))

	got, err := j.ListPositions("simulation")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].PositionID)
	assert.Equal(t, "p2", got[1].PositionID)
	assert.Equal(t, 30000.0, got[0].EntryPrice)
	assert.Equal(t, "CLOSED_MANUAL", got[0].Status)
	assert.True(t, got[0].OpenTime.Equal(sampleRecord("p1").OpenTime))
}

func TestSQLiteUpsertByPositionID(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	rec := sampleRecord("p1")
	rec.Status = "OPEN"
	rec.ClosePrice = 0
	require.NoError(t, j.RecordPosition(rec))

	// Re-recording the same id replaces the row, mirroring a close.
	rec.Status = "CLOSED_TP"
	rec.ClosePrice = 31000
	require.NoError(t, j.RecordPosition(rec))

	got, err := j.ListPositions("simulation")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CLOSED_TP", got[0].Status)
	assert.Equal(t, 31000.0, got[0].ClosePrice)
}

func TestSQLiteRecordBalance(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)

	require.NoError(t, j.RecordBalance(BalanceSnapshot{
		Time: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), Venue: "simulation", Balance: 899.9,
	}))
	require.NoError(t, j.RecordBalance(BalanceSnapshot{
		Time: time.Date(2024, 6, 1, 12, 1, 0, 0, time.UTC), Venue: "simulation", Balance: 1033.23,
	}))
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM balances WHERE venue = 'simulation'`).Scan(&n))
	assert.Equal(t, 2, n)
}

package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCSV(t *testing.T) (*CSVJournal, string, string) {
	t.Helper()

	dir := t.TempDir()
	pPath := filepath.Join(dir, "positions.csv")
	bPath := filepath.Join(dir, "balances.csv")

	j, err := NewCSV(pPath, bPath)
	require.NoError(t, err)

	return j, pPath, bPath
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVHeaders(t *testing.T) {
	t.Parallel()

	j, pPath, bPath := newTestCSV(t)
	require.NoError(t, j.Close())

	positions := readCSV(t, pPath)
	require.Len(t, positions, 1)
	assert.Equal(t, "position_id", positions[0][0])
	assert.Equal(t, "status", positions[0][len(positions[0])-1])

	balances := readCSV(t, bPath)
	require.Len(t, balances, 1)
	assert.Equal(t, []string{"time", "venue", "balance"}, balances[0])
}

func TestCSVRecordPosition(t *testing.T) {
	t.Parallel()

	j, pPath, _ := newTestCSV(t)

	require.NoError(t, j.RecordPosition(sampleRecord("p1")))
	require.NoError(t, j.Close())

	rows := readCSV(t, pPath)
	require.Len(t, rows, 2)
	row := rows[1]
	assert.Equal(t, "p1", row[0])
	assert.Equal(t, "simulation", row[1])
	assert.Equal(t, "BTC", row[2])
	assert.Equal(t, "100", row[4])
	assert.Equal(t, "10", row[5])
	assert.Equal(t, "30000", row[6])
	assert.Equal(t, "2024-06-01T12:00:00Z", row[8])
	assert.Equal(t, "CLOSED_MANUAL", row[12])
}

func TestCSVRecordBalance(t *testing.T) {
	t.Parallel()

	j, _, bPath := newTestCSV(t)

	require.NoError(t, j.RecordBalance(BalanceSnapshot{
		Time:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Venue:   "simulation",
		Balance: 899.9,
	}))
	require.NoError(t, j.Close())

	rows := readCSV(t, bPath)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-06-01T12:00:00Z", "simulation", "899.9"}, rows[1])
}

func TestCSVRecordsVisibleWithoutClose(t *testing.T) {
	t.Parallel()

	j, pPath, _ := newTestCSV(t)
	t.Cleanup(func() { _ = j.Close() })

	require.NoError(t, j.RecordPosition(sampleRecord("p1")))

	// Rows are flushed per record, so a crash loses nothing already written.
	rows := readCSV(t, pPath)
	assert.Len(t, rows, 2)
}

func TestNoopJournal(t *testing.T) {
	t.Parallel()

	var j Journal = Noop{}
	assert.NoError(t, j.RecordPosition(PositionRecord{}))
	assert.NoError(t, j.RecordBalance(BalanceSnapshot{}))
	assert.NoError(t, j.Close())
}

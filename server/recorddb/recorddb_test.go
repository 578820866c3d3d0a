package recorddb

import (
	"path/filepath"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

func createTestDB(t *testing.T) *RecordDB {
	db, err := Open(logs.NewTestingLog(t), filepath.Join(t.TempDir(), "detections.sqlite"))
	require.NoError(t, err)
	return db
}

func TestAddAndLatest(t *testing.T) {
	db := createTestDB(t)

	require.NoError(t, db.Add("frame-001.jpg", 5))
	require.NoError(t, db.Add("frame-002.jpg", 10))
	require.NoError(t, db.Add("frame-003.jpg", 15))

	records, err := db.Latest(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Newest first. Timestamps can collide within a millisecond, so the id
	// tiebreaker keeps the order deterministic.
	require.Equal(t, "frame-003.jpg", records[0].Filename)
	require.Equal(t, "frame-002.jpg", records[1].Filename)
	require.Greater(t, records[0].ID, records[1].ID)

	counts, err := db.LatestCounts(10)
	require.NoError(t, err)
	require.Equal(t, []int{15, 10, 5}, counts)
}

func TestEmpty(t *testing.T) {
	db := createTestDB(t)
	counts, err := db.LatestCounts(3)
	require.NoError(t, err)
	require.Len(t, counts, 0)
}

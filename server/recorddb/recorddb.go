// Package recorddb is the append-only audit log of per-frame detection results
package recorddb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cyclopcam/dbh"
	"github.com/cyclopcam/logs"
	"gorm.io/gorm"
)

type RecordDB struct {
	Log logs.Log
	DB  *gorm.DB
}

// Open or create the detection record database
func Open(log logs.Log, dbFilename string) (*RecordDB, error) {
	os.MkdirAll(filepath.Dir(dbFilename), 0777)
	db, err := dbh.OpenDB(log, dbh.MakeSqliteConfig(dbFilename), Migrations(log), 0)
	if err != nil {
		return nil, fmt.Errorf("Failed to open database %v: %w", dbFilename, err)
	}
	return &RecordDB{
		Log: log,
		DB:  db,
	}, nil
}

// Add appends one (filename, people count) record, stamped now.
// Records are never updated or deleted.
func (r *RecordDB) Add(filename string, peopleCount int) error {
	rec := &DetectionRecord{
		Filename:    filename,
		PeopleCount: peopleCount,
		Time:        dbh.MakeIntTime(time.Now()),
	}
	return r.DB.Create(rec).Error
}

// Latest returns the n most recent records, newest first
func (r *RecordDB) Latest(n int) ([]*DetectionRecord, error) {
	var records []*DetectionRecord
	if err := r.DB.Order("time DESC, id DESC").Limit(n).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// LatestCounts returns the people counts of the n most recent records, newest first
func (r *RecordDB) LatestCounts(n int) ([]int, error) {
	records, err := r.Latest(n)
	if err != nil {
		return nil, err
	}
	counts := make([]int, 0, len(records))
	for _, rec := range records {
		counts = append(counts, rec.PeopleCount)
	}
	return counts, nil
}

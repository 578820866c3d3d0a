package recorddb

import "github.com/cyclopcam/dbh"

// BaseModel is our base class for a GORM model.
// The default GORM Model uses int, but we prefer int64
type BaseModel struct {
	ID int64 `gorm:"primaryKey" json:"id"`
}

// DetectionRecord is one appended (filename, people count, timestamp) tuple
type DetectionRecord struct {
	BaseModel
	Filename    string      `json:"filename"`
	PeopleCount int         `json:"peopleCount"`
	Time        dbh.IntTime `json:"time"`
}

func (DetectionRecord) TableName() string {
	return "detection"
}

package recorddb

import (
	"github.com/BurntSushi/migration"
	"github.com/cyclopcam/dbh"
	"github.com/cyclopcam/logs"
)

func Migrations(log logs.Log) []migration.Migrator {
	migs := []migration.Migrator{}
	idx := 0

	migs = append(migs, dbh.MakeMigrationFromSQL(log, &idx,
		`
		CREATE TABLE detection(
			id INTEGER PRIMARY KEY,
			filename TEXT NOT NULL,
			people_count INT NOT NULL,
			time INT NOT NULL
		);
		CREATE INDEX idx_detection_time ON detection (time);
	`))

	return migs
}

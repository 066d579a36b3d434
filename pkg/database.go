package waffles

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx"
)

var channelMap ChannelMap

// ChannelMapEntry is one row of the detector channel-map table, relating an
// offline channel number to its physical endpoint and channel.
type ChannelMapEntry struct {
	Endpoint  int `db:"Endpoint"`
	Channel   int `db:"Channel"`
	OfflineCh int `db:"OfflineCh"`
}

// ChannelMap relates offline channel numbers to the unique channels they
// were mapped to during a given run range.
type ChannelMap struct {
	ToUnique  map[int]UniqueChannel
	ToOffline map[UniqueChannel]int
}

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// LoadChannelMap reads the channel map valid for runNumber and caches it for
// GetChannelMap.
func LoadChannelMap(dbConn *sqlx.DB, runNumber int) error {
	var err error
	channelMap, err = GetChannelMapFromDB(dbConn, runNumber)
	if err != nil {
		errMessage := fmt.Errorf("error getting channel map from database: %w", err)
		logger.Error(errMessage.Error())
		return errMessage
	}
	return nil
}

func GetChannelMap() ChannelMap {
	return channelMap
}

func GetChannelMapFromDB(db *sqlx.DB, runNumber int) (ChannelMap, error) {
	query := fmt.Sprintf("SELECT Endpoint, Channel, OfflineCh from ChannelMapping WHERE MinRun <= %d and MaxRun >= %d", runNumber, runNumber)
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Reading channel map for run %d from database", runNumber)
		logger.Info(message, "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		return ChannelMap{}, fmt.Errorf("error querying database: %w", err)
	}

	entries := make([]ChannelMapEntry, 0)
	for rows.Next() {
		entry := ChannelMapEntry{}
		if err := rows.StructScan(&entry); err != nil {
			return ChannelMap{}, fmt.Errorf("error scanning DB row: %w", err)
		}
		entries = append(entries, entry)
	}
	return buildChannelMap(entries), nil
}

func buildChannelMap(entries []ChannelMapEntry) ChannelMap {
	result := ChannelMap{
		ToUnique:  make(map[int]UniqueChannel, len(entries)),
		ToOffline: make(map[UniqueChannel]int, len(entries)),
	}
	for _, entry := range entries {
		unique := UniqueChannel{Endpoint: entry.Endpoint, Channel: entry.Channel}
		result.ToUnique[entry.OfflineCh] = unique
		result.ToOffline[unique] = entry.OfflineCh
	}
	return result
}

package sqldb

import (
	"database/sql"
)

type CapabilityDB struct {
	db     *sql.DB
	getAll *sql.Stmt
	insert *sql.Stmt
	remove *sql.Stmt
}

func NewCapabilityDB(db *sql.DB) *CapabilityDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS capability (
			grp int(11) NOT NULL,
			capability int(11) NOT NULL,
			PRIMARY KEY (grp)
		);`)

	var capabilityDB = &CapabilityDB{}
	capabilityDB.db = db
	capabilityDB.getAll = mustPrepare(db, "SELECT grp, capability FROM capability")
	capabilityDB.insert = mustPrepare(db, "REPLACE INTO capability (grp, capability) VALUES (?, ?)")
	capabilityDB.remove = mustPrepare(db, "DELETE FROM capability WHERE grp = ?")
	return capabilityDB
}

func (e *CapabilityDB) GetCapabilityRules() (map[int]int, error) {
	res, err := e.getAll.Query()
	if err != nil {
		return nil, err
	}
	defer res.Close()
	var rules = map[int]int{}
	for res.Next() {
		var groupID, capability int
		if err = res.Scan(&groupID, &capability); err != nil {
			return nil, err
		}
		rules[groupID] = capability
	}
	return rules, nil
}

func (e *CapabilityDB) InsertCapabilityRule(groupID int, capability int) error {
	_, err := e.insert.Exec(groupID, capability)
	return err
}

func (e *CapabilityDB) RemoveCapabilityRule(groupID int) error {
	_, err := e.remove.Exec(groupID)
	return err
}

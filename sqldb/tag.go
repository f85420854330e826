package sqldb

import (
	"database/sql"
	"errors"

	"github.com/pgcommunity/pgsite/core"
)

type tag struct {
	id      int
	urlName string
	name    string
}

func (t *tag) ID() int {
	return t.id
}

func (t *tag) URLName() string {
	return t.urlName
}

func (t *tag) Name() string {
	return t.name
}

type TagDB struct {
	*sql.DB
	get       *sql.Stmt
	getAll    *sql.Stmt
	getByName *sql.Stmt
	insert    *sql.Stmt
}

func NewTagDB(db *sql.DB) *TagDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS tag (
			id INTEGER PRIMARY KEY,
			urlname varchar(64) NOT NULL,
			name varchar(64) NOT NULL,
			UNIQUE(urlname)
		);`)

	var tagDB = &TagDB{}
	tagDB.DB = db
	tagDB.get = mustPrepare(db, "SELECT urlname, name FROM tag WHERE id = ? LIMIT 1")
	tagDB.getAll = mustPrepare(db, "SELECT id, urlname, name FROM tag ORDER BY name LIMIT ? OFFSET ?")
	tagDB.getByName = mustPrepare(db, "SELECT id, name FROM tag WHERE urlname = ? LIMIT 1")
	tagDB.insert = mustPrepare(db, "INSERT INTO tag (urlname, name) VALUES (?, ?)")
	return tagDB
}

func (db *TagDB) GetAllTags(limit, offset int) ([]core.DBTag, error) {

	var all = []core.DBTag{}

	rows, err := db.getAll.Query(limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t = &tag{}
		if err := rows.Scan(&t.id, &t.urlName, &t.name); err != nil {
			return nil, err
		}
		all = append(all, t)
	}

	return all, nil
}

func (db *TagDB) GetTag(id int) (core.DBTag, error) {
	var t = &tag{
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&t.urlName, &t.name)
	return t, err
}

func (db *TagDB) GetTagByURLName(urlname string) (core.DBTag, error) {
	var t = &tag{
		urlName: urlname,
	}
	err := db.getByName.QueryRow(urlname).Scan(&t.id, &t.name)
	return t, err
}

func (db *TagDB) InsertTag(urlname, name string) (core.DBTag, error) {
	if urlname == "" || name == "" {
		return nil, errors.New("tag urlname and name can't be empty")
	}
	result, err := db.insert.Exec(urlname, name)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &tag{
		id:      int(id),
		urlName: urlname,
		name:    name,
	}, nil
}

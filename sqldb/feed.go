package sqldb

import (
	"database/sql"

	"github.com/pgcommunity/pgsite/core"
)

type feed struct {
	id           int
	internalName string
	url          string
	purgePattern string
}

func (f *feed) ID() int {
	return f.id
}

func (f *feed) InternalName() string {
	return f.internalName
}

func (f *feed) URL() string {
	return f.url
}

func (f *feed) PurgePattern() string {
	return f.purgePattern
}

type feedItem struct {
	id       int
	feedID   int
	title    string
	url      string
	teaser   string
	postTime int64
}

func (i *feedItem) ID() int {
	return i.id
}

func (i *feedItem) FeedID() int {
	return i.feedID
}

func (i *feedItem) Title() string {
	return i.title
}

func (i *feedItem) URL() string {
	return i.url
}

func (i *feedItem) Teaser() string {
	return i.teaser
}

func (i *feedItem) PostTime() int64 {
	return i.postTime
}

type FeedDB struct {
	*sql.DB
	get        *sql.Stmt
	getAll     *sql.Stmt
	getByName  *sql.Stmt
	getItems   *sql.Stmt
	getLatest  *sql.Stmt
	insert     *sql.Stmt
	insertItem *sql.Stmt
}

func NewFeedDB(db *sql.DB) *FeedDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS rssfeed (
			id INTEGER PRIMARY KEY,
			internalname varchar(64) NOT NULL,
			url varchar(256) NOT NULL,
			purgepattern varchar(256) NOT NULL DEFAULT '',
			UNIQUE(internalname)
		);
		CREATE TABLE IF NOT EXISTS rssitem (
			id INTEGER PRIMARY KEY,
			feed int(11) NOT NULL,
			title varchar(256) NOT NULL,
			url varchar(256) NOT NULL,
			teaser varchar(512) NOT NULL DEFAULT '',
			posttime int(11) NOT NULL,
			UNIQUE(feed, url)
		);`)

	var feedDB = &FeedDB{}
	feedDB.DB = db
	feedDB.get = mustPrepare(db, "SELECT internalname, url, purgepattern FROM rssfeed WHERE id = ? LIMIT 1")
	feedDB.getAll = mustPrepare(db, "SELECT id, internalname, url, purgepattern FROM rssfeed ORDER BY internalname")
	feedDB.getByName = mustPrepare(db, "SELECT id, url, purgepattern FROM rssfeed WHERE internalname = ? LIMIT 1")
	feedDB.getItems = mustPrepare(db, "SELECT id, title, url, teaser, posttime FROM rssitem WHERE feed = ? ORDER BY posttime DESC, id DESC LIMIT ? OFFSET ?")
	feedDB.getLatest = mustPrepare(db, "SELECT id, feed, title, url, teaser, posttime FROM rssitem ORDER BY posttime DESC, id DESC LIMIT ?")
	feedDB.insert = mustPrepare(db, "INSERT INTO rssfeed (internalname, url, purgepattern) VALUES (?, ?, ?)")
	feedDB.insertItem = mustPrepare(db, "INSERT OR IGNORE INTO rssitem (feed, title, url, teaser, posttime) VALUES (?, ?, ?, ?, ?)")
	return feedDB
}

func (db *FeedDB) GetAllFeeds() ([]core.DBFeed, error) {

	var all = []core.DBFeed{}

	rows, err := db.getAll.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var f = &feed{}
		if err := rows.Scan(&f.id, &f.internalName, &f.url, &f.purgePattern); err != nil {
			return nil, err
		}
		all = append(all, f)
	}

	return all, nil
}

func (db *FeedDB) GetFeed(id int) (core.DBFeed, error) {
	var f = &feed{
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&f.internalName, &f.url, &f.purgePattern)
	return f, err
}

func (db *FeedDB) GetFeedByName(internalName string) (core.DBFeed, error) {
	var f = &feed{
		internalName: internalName,
	}
	err := db.getByName.QueryRow(internalName).Scan(&f.id, &f.url, &f.purgePattern)
	return f, err
}

func (db *FeedDB) GetItems(feedID int, limit, offset int) ([]core.DBFeedItem, error) {

	var all = []core.DBFeedItem{}

	rows, err := db.getItems.Query(feedID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var i = &feedItem{
			feedID: feedID,
		}
		if err := rows.Scan(&i.id, &i.title, &i.url, &i.teaser, &i.postTime); err != nil {
			return nil, err
		}
		all = append(all, i)
	}

	return all, nil
}

func (db *FeedDB) GetLatestItems(limit int) ([]core.DBFeedItem, error) {

	var all = []core.DBFeedItem{}

	rows, err := db.getLatest.Query(limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var i = &feedItem{}
		if err := rows.Scan(&i.id, &i.feedID, &i.title, &i.url, &i.teaser, &i.postTime); err != nil {
			return nil, err
		}
		all = append(all, i)
	}

	return all, nil
}

func (db *FeedDB) InsertFeed(internalName, url, purgePattern string) error {
	_, err := db.insert.Exec(internalName, url, purgePattern)
	return err
}

// InsertItem returns false if the url was already imported for the feed.
func (db *FeedDB) InsertItem(feedID int, title, url, teaser string, postTime int64) (bool, error) {
	result, err := db.insertItem.Exec(feedID, title, url, teaser, postTime)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

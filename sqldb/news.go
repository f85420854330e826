package sqldb

import (
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pgcommunity/pgsite/core"
)

type article struct {
	id       int
	orgID    int
	emailID  int
	title    string
	content  string
	posted   int64
	modState int
}

func (a *article) ID() int {
	return a.id
}

func (a *article) OrgID() int {
	return a.orgID
}

func (a *article) OrgEmailID() int {
	return a.emailID
}

func (a *article) Title() string {
	return a.title
}

func (a *article) Content() string {
	return a.content
}

func (a *article) PostedAt() int64 {
	return a.posted
}

func (a *article) ModState() int {
	return a.modState
}

type NewsDB struct {
	*sql.DB
	addTag      *sql.Stmt
	delete      *sql.Stmt
	deleteTags  *sql.Stmt
	get         *sql.Stmt
	getByOrg    *sql.Stmt
	getTags     *sql.Stmt
	insert      *sql.Stmt
	nextTagPos  *sql.Stmt
	removeTag   *sql.Stmt
	setModState *sql.Stmt
	update      *sql.Stmt
}

func NewNewsDB(db *sql.DB) *NewsDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS news (
			id INTEGER PRIMARY KEY,
			org int(11) NOT NULL,
			orgmail int(11) NOT NULL,
			title varchar(256) NOT NULL,
			content text NOT NULL DEFAULT '',
			posted int(11) NOT NULL,
			modstate int(11) NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS news_tag (
			news int(11) NOT NULL,
			tag int(11) NOT NULL,
			position int(11) NOT NULL,
			PRIMARY KEY (news, tag)
		);`)

	var newsDB = &NewsDB{}
	newsDB.DB = db
	newsDB.addTag = mustPrepare(db, "INSERT OR IGNORE INTO news_tag (news, tag, position) VALUES (?, ?, ?)")
	newsDB.delete = mustPrepare(db, "DELETE FROM news WHERE id = ?")
	newsDB.deleteTags = mustPrepare(db, "DELETE FROM news_tag WHERE news = ?")
	newsDB.get = mustPrepare(db, "SELECT org, orgmail, title, content, posted, modstate FROM news WHERE id = ? LIMIT 1")
	newsDB.getByOrg = mustPrepare(db, "SELECT id, org, orgmail, title, content, posted, modstate FROM news WHERE org = ? ORDER BY posted DESC, id DESC LIMIT ? OFFSET ?")
	newsDB.getTags = mustPrepare(db, "SELECT tag.id, tag.urlname, tag.name FROM tag, news_tag WHERE tag.id = news_tag.tag AND news_tag.news = ? ORDER BY news_tag.position")
	newsDB.insert = mustPrepare(db, "INSERT INTO news (org, orgmail, title, content, posted) VALUES (?, ?, ?, ?, ?)")
	newsDB.nextTagPos = mustPrepare(db, "SELECT COALESCE(MAX(position), 0) + 1 FROM news_tag WHERE news = ?")
	newsDB.removeTag = mustPrepare(db, "DELETE FROM news_tag WHERE news = ? AND tag = ?")
	newsDB.setModState = mustPrepare(db, "UPDATE news SET modstate = ? WHERE id = ?")
	newsDB.update = mustPrepare(db, "UPDATE news SET title = ?, content = ?, posted = ?, orgmail = ? WHERE id = ?")
	return newsDB
}

// AddTag appends the tag to the article's tag list.
func (db *NewsDB) AddTag(a core.DBArticle, t core.DBTag) error {

	var position int
	if err := db.nextTagPos.QueryRow(a.ID()).Scan(&position); err != nil {
		return err
	}

	_, err := db.addTag.Exec(a.ID(), t.ID(), position)
	return err
}

// filtered builds the shared WHERE clause of article listings.
func filtered(builder sq.SelectBuilder, f core.ArchiveFilter) sq.SelectBuilder {

	if f.Tag != "" {
		builder = builder.
			Join("news_tag ON news_tag.news = news.id").
			Join("tag ON tag.id = news_tag.tag").
			Where(sq.Eq{"tag.urlname": f.Tag})
	}

	if f.OrgID != 0 {
		builder = builder.Where(sq.Eq{"news.org": f.OrgID})
	}

	if f.Year != 0 {
		var start = time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
		var end = time.Date(f.Year+1, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
		builder = builder.Where(sq.GtOrEq{"news.posted": start}).Where(sq.Lt{"news.posted": end})
	}

	if len(f.States) > 0 {
		var states = make([]int, len(f.States))
		for i, s := range f.States {
			states[i] = int(s)
		}
		builder = builder.Where(sq.Eq{"news.modstate": states})
	}

	return builder
}

func (db *NewsDB) CountArticles(f core.ArchiveFilter) (int, error) {

	query, args, err := filtered(sq.Select("COUNT(*)").From("news"), f).ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = db.QueryRow(query, args...).Scan(&count)
	return count, err
}

func (db *NewsDB) DeleteArticle(a core.DBArticle) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Stmt(db.deleteTags).Exec(a.ID())
	if err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.Stmt(db.delete).Exec(a.ID())
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (db *NewsDB) GetArticle(id int) (core.DBArticle, error) {
	var a = &article{
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&a.orgID, &a.emailID, &a.title, &a.content, &a.posted, &a.modState)
	return a, err
}

func (db *NewsDB) GetArticles(f core.ArchiveFilter, limit, offset int) ([]core.DBArticle, error) {

	query, args, err := filtered(
		sq.Select("news.id", "news.org", "news.orgmail", "news.title", "news.content", "news.posted", "news.modstate").From("news"),
		f,
	).
		OrderBy("news.posted DESC", "news.id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanArticles(rows)
}

func (db *NewsDB) GetArticlesByOrg(orgID int, limit, offset int) ([]core.DBArticle, error) {
	rows, err := db.getByOrg.Query(orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

func scanArticles(rows *sql.Rows) ([]core.DBArticle, error) {
	var all = []core.DBArticle{}
	for rows.Next() {
		var a = &article{}
		if err := rows.Scan(&a.id, &a.orgID, &a.emailID, &a.title, &a.content, &a.posted, &a.modState); err != nil {
			return nil, err
		}
		all = append(all, a)
	}
	return all, nil
}

func (db *NewsDB) GetTags(articleID int) ([]core.DBTag, error) {

	var all = []core.DBTag{}

	rows, err := db.getTags.Query(articleID)
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

func (db *NewsDB) InsertArticle(orgID, emailID int, title, content string, postedAt int64) (core.DBArticle, error) {
	result, err := db.insert.Exec(orgID, emailID, title, content, postedAt)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &article{
		id:      int(id),
		orgID:   orgID,
		emailID: emailID,
		title:   title,
		content: content,
		posted:  postedAt,
	}, nil
}

func (db *NewsDB) IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func (db *NewsDB) RemoveTag(a core.DBArticle, tagID int) error {
	_, err := db.removeTag.Exec(a.ID(), tagID)
	return err
}

func (db *NewsDB) SetModState(a core.DBArticle, state int) error {
	_, err := db.setModState.Exec(state, a.ID())
	if err == nil {
		if sa, ok := a.(*article); ok {
			sa.modState = state
		}
	}
	return err
}

func (db *NewsDB) UpdateArticle(a core.DBArticle, title, content string, postedAt int64, emailID int) error {
	_, err := db.update.Exec(title, content, postedAt, emailID, a.ID())
	if err == nil {
		if sa, ok := a.(*article); ok {
			sa.title = title
			sa.content = content
			sa.posted = postedAt
			sa.emailID = emailID
		}
	}
	return err
}

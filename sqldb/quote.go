package sqldb

import (
	"database/sql"
	"errors"

	"github.com/pgcommunity/pgsite/core"
)

type quote struct {
	id       int
	quote    string
	who      string
	org      string
	link     string
	approved bool
}

func (q *quote) ID() int {
	return q.id
}

func (q *quote) Quote() string {
	return q.quote
}

func (q *quote) Who() string {
	return q.who
}

func (q *quote) Org() string {
	return q.org
}

func (q *quote) Link() string {
	return q.link
}

func (q *quote) Approved() bool {
	return q.approved
}

type QuoteDB struct {
	*sql.DB
	delete      *sql.Stmt
	get         *sql.Stmt
	getAll      *sql.Stmt
	getApproved *sql.Stmt
	insert      *sql.Stmt
	setApproved *sql.Stmt
	update      *sql.Stmt
}

func NewQuoteDB(db *sql.DB) *QuoteDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS quote (
			id INTEGER PRIMARY KEY,
			quote text NOT NULL,
			who varchar(128) NOT NULL DEFAULT '',
			org varchar(128) NOT NULL DEFAULT '',
			link varchar(256) NOT NULL DEFAULT '',
			approved int(1) NOT NULL DEFAULT 0
		);`)

	var quoteDB = &QuoteDB{}
	quoteDB.DB = db
	quoteDB.delete = mustPrepare(db, "DELETE FROM quote WHERE id = ?")
	quoteDB.get = mustPrepare(db, "SELECT quote, who, org, link, approved FROM quote WHERE id = ? LIMIT 1")
	quoteDB.getAll = mustPrepare(db, "SELECT id, quote, who, org, link, approved FROM quote ORDER BY id DESC LIMIT ? OFFSET ?")
	quoteDB.getApproved = mustPrepare(db, "SELECT id, quote, who, org, link, approved FROM quote WHERE approved = 1 ORDER BY RANDOM() LIMIT ?")
	quoteDB.insert = mustPrepare(db, "INSERT INTO quote (quote, who, org, link) VALUES (?, ?, ?, ?)")
	quoteDB.setApproved = mustPrepare(db, "UPDATE quote SET approved = ? WHERE id = ?")
	quoteDB.update = mustPrepare(db, "UPDATE quote SET quote = ?, who = ?, org = ?, link = ? WHERE id = ?")
	return quoteDB
}

func (db *QuoteDB) DeleteQuote(q core.DBQuote) error {
	_, err := db.delete.Exec(q.ID())
	return err
}

func (db *QuoteDB) GetQuote(id int) (core.DBQuote, error) {
	var q = &quote{
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&q.quote, &q.who, &q.org, &q.link, &q.approved)
	return q, err
}

func (db *QuoteDB) getMultiple(stmt *sql.Stmt, args ...interface{}) ([]core.DBQuote, error) {

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []core.DBQuote{}

	for rows.Next() {
		var q = &quote{}
		if err := rows.Scan(&q.id, &q.quote, &q.who, &q.org, &q.link, &q.approved); err != nil {
			return nil, err
		}
		all = append(all, q)
	}

	return all, nil
}

func (db *QuoteDB) GetAllQuotes(limit, offset int) ([]core.DBQuote, error) {
	return db.getMultiple(db.getAll, limit, offset)
}

func (db *QuoteDB) GetApprovedQuotes(limit int) ([]core.DBQuote, error) {
	return db.getMultiple(db.getApproved, limit)
}

func (db *QuoteDB) InsertQuote(quoteText, who, org, link string) (core.DBQuote, error) {
	if quoteText == "" {
		return nil, errors.New("quote can't be empty")
	}
	result, err := db.insert.Exec(quoteText, who, org, link)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &quote{
		id:    int(id),
		quote: quoteText,
		who:   who,
		org:   org,
		link:  link,
	}, nil
}

func (db *QuoteDB) SetQuoteApproved(q core.DBQuote, approved bool) error {
	_, err := db.setApproved.Exec(approved, q.ID())
	if err == nil {
		if sq, ok := q.(*quote); ok {
			sq.approved = approved
		}
	}
	return err
}

func (db *QuoteDB) UpdateQuote(q core.DBQuote, quoteText, who, org, link string) error {
	_, err := db.update.Exec(quoteText, who, org, link, q.ID())
	if err == nil {
		if sq, ok := q.(*quote); ok {
			sq.quote = quoteText
			sq.who = who
			sq.org = org
			sq.link = link
		}
	}
	return err
}

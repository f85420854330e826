package sqldb

import (
	"database/sql"
	"errors"

	"github.com/pgcommunity/pgsite/auth"
	"github.com/pgcommunity/pgsite/core"
)

type org struct {
	db               *OrgDB // required for lazy loading
	id               int
	name             string
	address          string
	url              string
	orgTypeID        int
	fromNameOverride string
	mailTemplate     string
	managerIDs       []int // cached, lazy loading
	managersLoaded   bool
}

func (o *org) ID() int {
	return o.id
}

func (o *org) Name() string {
	return o.name
}

func (o *org) Address() string {
	return o.address
}

func (o *org) URL() string {
	return o.url
}

func (o *org) OrgTypeID() int {
	return o.orgTypeID
}

func (o *org) FromNameOverride() string {
	return o.fromNameOverride
}

func (o *org) MailTemplate() string {
	return o.mailTemplate
}

func (o *org) ManagerIDs() ([]int, error) {

	if !o.managersLoaded {

		var ids = []int{}

		rows, err := o.db.managers.Query(o.id)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		for rows.Next() {
			var userID int
			if err = rows.Scan(&userID); err != nil {
				return nil, err
			}
			ids = append(ids, userID)
		}

		o.managerIDs = ids
		o.managersLoaded = true
	}

	return o.managerIDs, nil
}

type orgEmail struct {
	id        int
	orgID     int
	address   string
	confirmed bool
}

func (e *orgEmail) ID() int {
	return e.id
}

func (e *orgEmail) OrgID() int {
	return e.orgID
}

func (e *orgEmail) Address() string {
	return e.address
}

func (e *orgEmail) Confirmed() bool {
	return e.confirmed
}

type orgType struct {
	id       int
	typeName string
}

func (t *orgType) ID() int {
	return t.id
}

func (t *orgType) TypeName() string {
	return t.typeName
}

type OrgDB struct {
	*sql.DB
	addManager    *sql.Stmt
	confirmEmail  *sql.Stmt
	deleteOrg     *sql.Stmt
	get           *sql.Stmt
	getAll        *sql.Stmt
	getByName     *sql.Stmt
	getByToken    *sql.Stmt
	getEmail      *sql.Stmt
	getEmails     *sql.Stmt
	getManagedBy  *sql.Stmt
	getType       *sql.Stmt
	getTypes      *sql.Stmt
	insert        *sql.Stmt
	insertEmail   *sql.Stmt
	insertType    *sql.Stmt
	managers      *sql.Stmt
	mergeEmails   *sql.Stmt
	mergeManagers *sql.Stmt
	mergeNews     *sql.Stmt
	removeManager *sql.Stmt
	rmManagers    *sql.Stmt
	update        *sql.Stmt
}

func NewOrgDB(db *sql.DB) *OrgDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS org (
			id INTEGER PRIMARY KEY,
			name varchar(128) NOT NULL,
			address text NOT NULL DEFAULT '',
			url varchar(256) NOT NULL DEFAULT '',
			orgtype int(11) NOT NULL DEFAULT 0,
			fromnameoverride varchar(128) NOT NULL DEFAULT '',
			mailtemplate text NOT NULL DEFAULT '',
			UNIQUE(name)
		);
		CREATE TABLE IF NOT EXISTS orgtype (
			id INTEGER PRIMARY KEY,
			typename varchar(64) NOT NULL,
			UNIQUE(typename)
		);
		CREATE TABLE IF NOT EXISTS orgmail (
			id INTEGER PRIMARY KEY,
			org int(11) NOT NULL,
			address varchar(128) NOT NULL,
			confirmed int(1) NOT NULL DEFAULT 0,
			token varchar(64) NOT NULL DEFAULT '',
			UNIQUE(org, address)
		);
		CREATE TABLE IF NOT EXISTS org_manager (
			org int(11) NOT NULL,
			usr int(11) NOT NULL,
			PRIMARY KEY (org, usr)
		);`)

	var orgDB = &OrgDB{}
	orgDB.DB = db
	orgDB.addManager = mustPrepare(db, "INSERT OR IGNORE INTO org_manager (org, usr) VALUES (?, ?)")
	orgDB.confirmEmail = mustPrepare(db, "UPDATE orgmail SET confirmed = 1, token = '' WHERE id = ?")
	orgDB.deleteOrg = mustPrepare(db, "DELETE FROM org WHERE id = ?")
	orgDB.get = mustPrepare(db, "SELECT name, address, url, orgtype, fromnameoverride, mailtemplate FROM org WHERE id = ? LIMIT 1")
	orgDB.getAll = mustPrepare(db, "SELECT id, name, address, url, orgtype, fromnameoverride, mailtemplate FROM org ORDER BY name LIMIT ? OFFSET ?")
	orgDB.getByName = mustPrepare(db, "SELECT id, address, url, orgtype, fromnameoverride, mailtemplate FROM org WHERE name = ? LIMIT 1")
	orgDB.getByToken = mustPrepare(db, "SELECT id, org, address FROM orgmail WHERE token = ? AND token != '' LIMIT 1")
	orgDB.getEmail = mustPrepare(db, "SELECT org, address, confirmed FROM orgmail WHERE id = ? LIMIT 1")
	orgDB.getEmails = mustPrepare(db, "SELECT id, address, confirmed FROM orgmail WHERE org = ? ORDER BY address")
	orgDB.getManagedBy = mustPrepare(db, "SELECT org.id, org.name, org.address, org.url, org.orgtype, org.fromnameoverride, org.mailtemplate FROM org, org_manager WHERE org.id = org_manager.org AND org_manager.usr = ? ORDER BY org.name")
	orgDB.getType = mustPrepare(db, "SELECT typename FROM orgtype WHERE id = ? LIMIT 1")
	orgDB.getTypes = mustPrepare(db, "SELECT id, typename FROM orgtype ORDER BY typename")
	orgDB.insert = mustPrepare(db, "INSERT INTO org (name, address, url, orgtype) VALUES (?, ?, ?, ?)")
	orgDB.insertEmail = mustPrepare(db, "INSERT INTO orgmail (org, address, token) VALUES (?, ?, ?)")
	orgDB.insertType = mustPrepare(db, "INSERT INTO orgtype (typename) VALUES (?)")
	orgDB.managers = mustPrepare(db, "SELECT usr FROM org_manager WHERE org = ? ORDER BY usr")
	orgDB.mergeEmails = mustPrepare(db, "UPDATE orgmail SET org = ? WHERE org = ?")
	orgDB.mergeManagers = mustPrepare(db, "INSERT OR IGNORE INTO org_manager (org, usr) SELECT ?, usr FROM org_manager WHERE org = ?")
	orgDB.mergeNews = mustPrepare(db, "UPDATE news SET org = ? WHERE org = ?")
	orgDB.removeManager = mustPrepare(db, "DELETE FROM org_manager WHERE org = ? AND usr = ?")
	orgDB.rmManagers = mustPrepare(db, "DELETE FROM org_manager WHERE org = ?")
	orgDB.update = mustPrepare(db, "UPDATE org SET address = ?, url = ?, orgtype = ?, fromnameoverride = ?, mailtemplate = ? WHERE id = ?")
	return orgDB
}

func (db *OrgDB) AddManager(o core.DBOrganisation, u auth.DBUser) error {
	_, err := db.addManager.Exec(o.ID(), u.ID())
	if err != nil {
		return err
	}
	if so, ok := o.(*org); ok {
		so.managersLoaded = false
	}
	return nil
}

// ConfirmEmail resolves the token and clears it, so each token works once.
func (db *OrgDB) ConfirmEmail(token string) (core.DBOrganisationEmail, error) {

	var e = &orgEmail{}
	err := db.getByToken.QueryRow(token).Scan(&e.id, &e.orgID, &e.address)
	if err != nil {
		return nil, err
	}

	if _, err := db.confirmEmail.Exec(e.id); err != nil {
		return nil, err
	}

	e.confirmed = true
	return e, nil
}

func (db *OrgDB) DeleteOrg(o core.DBOrganisation) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Stmt(db.rmManagers).Exec(o.ID())
	if err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.Stmt(db.deleteOrg).Exec(o.ID())
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (db *OrgDB) GetAllOrgs(limit, offset int) ([]core.DBOrganisation, error) {

	var all = []core.DBOrganisation{}

	rows, err := db.getAll.Query(limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var o = &org{db: db}
		err = rows.Scan(&o.id, &o.name, &o.address, &o.url, &o.orgTypeID, &o.fromNameOverride, &o.mailTemplate)
		if err != nil {
			return nil, err
		}
		all = append(all, o)
	}

	return all, nil
}

func (db *OrgDB) GetEmail(id int) (core.DBOrganisationEmail, error) {
	var e = &orgEmail{
		id: id,
	}
	err := db.getEmail.QueryRow(id).Scan(&e.orgID, &e.address, &e.confirmed)
	return e, err
}

func (db *OrgDB) GetEmails(orgID int) ([]core.DBOrganisationEmail, error) {

	var all = []core.DBOrganisationEmail{}

	rows, err := db.getEmails.Query(orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e = &orgEmail{
			orgID: orgID,
		}
		err = rows.Scan(&e.id, &e.address, &e.confirmed)
		if err != nil {
			return nil, err
		}
		all = append(all, e)
	}

	return all, nil
}

func (db *OrgDB) GetOrg(id int) (core.DBOrganisation, error) {
	var o = &org{
		db: db,
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&o.name, &o.address, &o.url, &o.orgTypeID, &o.fromNameOverride, &o.mailTemplate)
	return o, err
}

func (db *OrgDB) GetOrgByName(name string) (core.DBOrganisation, error) {
	var o = &org{
		db:   db,
		name: name,
	}
	err := db.getByName.QueryRow(name).Scan(&o.id, &o.address, &o.url, &o.orgTypeID, &o.fromNameOverride, &o.mailTemplate)
	return o, err
}

func (db *OrgDB) GetOrgsManagedBy(u auth.DBUser) ([]core.DBOrganisation, error) {

	var all = []core.DBOrganisation{}

	rows, err := db.getManagedBy.Query(u.ID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var o = &org{db: db}
		err = rows.Scan(&o.id, &o.name, &o.address, &o.url, &o.orgTypeID, &o.fromNameOverride, &o.mailTemplate)
		if err != nil {
			return nil, err
		}
		all = append(all, o)
	}

	return all, nil
}

func (db *OrgDB) GetOrgType(id int) (core.DBOrgType, error) {
	var t = &orgType{
		id: id,
	}
	err := db.getType.QueryRow(id).Scan(&t.typeName)
	return t, err
}

func (db *OrgDB) GetOrgTypes() ([]core.DBOrgType, error) {

	var all = []core.DBOrgType{}

	rows, err := db.getTypes.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t = &orgType{}
		err = rows.Scan(&t.id, &t.typeName)
		if err != nil {
			return nil, err
		}
		all = append(all, t)
	}

	return all, nil
}

func (db *OrgDB) InsertEmail(o core.DBOrganisation, address, token string) error {
	address = clean(address)
	if address == "" {
		return errors.New("address can't be empty")
	}
	_, err := db.insertEmail.Exec(o.ID(), address, token)
	return err
}

func (db *OrgDB) InsertOrg(name, address, url string, orgTypeID int) (core.DBOrganisation, error) {
	result, err := db.insert.Exec(name, address, url, orgTypeID)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &org{
		db:        db,
		id:        int(id),
		name:      name,
		address:   address,
		url:       url,
		orgTypeID: orgTypeID,
	}, nil
}

func (db *OrgDB) InsertOrgType(typeName string) error {
	_, err := db.insertType.Exec(typeName)
	return err
}

func (db *OrgDB) IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// MergeOrgs moves articles, emails and managers into the target organisation
// and deletes the source, all in one transaction.
func (db *OrgDB) MergeOrgs(from, to core.DBOrganisation) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	for _, stmt := range []*sql.Stmt{db.mergeNews, db.mergeEmails, db.mergeManagers} {
		if _, err := tx.Stmt(stmt).Exec(to.ID(), from.ID()); err != nil {
			tx.Rollback()
			return err
		}
	}

	if _, err := tx.Stmt(db.rmManagers).Exec(from.ID()); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.Stmt(db.deleteOrg).Exec(from.ID()); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (db *OrgDB) RemoveManager(o core.DBOrganisation, u auth.DBUser) error {
	_, err := db.removeManager.Exec(o.ID(), u.ID())
	if err != nil {
		return err
	}
	if so, ok := o.(*org); ok {
		so.managersLoaded = false
	}
	return nil
}

func (db *OrgDB) UpdateOrg(o core.DBOrganisation, address, url string, orgTypeID int, fromNameOverride, mailTemplate string) error {
	_, err := db.update.Exec(address, url, orgTypeID, fromNameOverride, mailTemplate, o.ID())
	if err != nil {
		return err
	}
	if so, ok := o.(*org); ok {
		so.address = address
		so.url = url
		so.orgTypeID = orgTypeID
		so.fromNameOverride = fromNameOverride
		so.mailTemplate = mailTemplate
	}
	return nil
}

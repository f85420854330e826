package sqldb

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/pgcommunity/pgsite/auth"
	"github.com/pgcommunity/pgsite/util"
)

var ErrAuth = errors.New("authentication failed")

func clean(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	return name
}

func hash(salt string, password string) string {
	var hash = sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(hash[:])
}

type user struct {
	id   int
	name string
	salt string
	pass string // hash
}

func (u *user) hash(password string) string {
	return hash(u.salt, password)
}

func (u *user) ID() int {
	return u.id
}

func (u *user) Name() string {
	return u.name
}

type UserDB struct {
	*sql.DB
	delete      *sql.Stmt
	get         *sql.Stmt
	getByName   *sql.Stmt
	getAll      *sql.Stmt
	getProfile  *sql.Stmt
	insert      *sql.Stmt
	login       *sql.Stmt
	setPassword *sql.Stmt
	setProfile  *sql.Stmt
}

func NewUserDB(db *sql.DB) *UserDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS usr (
			id INTEGER PRIMARY KEY,
			name varchar(128) NOT NULL,
			salt varchar(64) NOT NULL DEFAULT '',
			password varchar(64) NOT NULL DEFAULT '',
			UNIQUE(name)
		);
		CREATE TABLE IF NOT EXISTS usr_profile (
			usr int(11) NOT NULL,
			sshkey text NOT NULL DEFAULT '',
			blockoauth int(1) NOT NULL DEFAULT 0,
			PRIMARY KEY (usr)
		);`)

	var userDB = &UserDB{}
	userDB.DB = db
	userDB.delete = mustPrepare(db, "DELETE FROM usr WHERE id = ?")
	userDB.get = mustPrepare(db, "SELECT name FROM usr WHERE id = ? LIMIT 1")
	userDB.getByName = mustPrepare(db, "SELECT id FROM usr WHERE name = ? LIMIT 1")
	userDB.getAll = mustPrepare(db, "SELECT id, name, salt FROM usr ORDER BY name LIMIT ? OFFSET ?")
	userDB.getProfile = mustPrepare(db, "SELECT sshkey, blockoauth FROM usr_profile WHERE usr = ? LIMIT 1")
	userDB.insert = mustPrepare(db, "INSERT INTO usr (name) VALUES (?)") // empty password field should be safe because no hash value equals it
	userDB.login = mustPrepare(db, "SELECT id, salt, password FROM usr WHERE name = ?")
	userDB.setPassword = mustPrepare(db, "UPDATE usr SET salt = ?, password = ? WHERE id = ?")
	userDB.setProfile = mustPrepare(db, "REPLACE INTO usr_profile (usr, sshkey, blockoauth) VALUES (?, ?, ?)")
	return userDB
}

func (db *UserDB) Writeable() bool {
	return true
}

func (db *UserDB) ChangePassword(u auth.DBUser, old, new string) error {
	if u.(*user).hash(old) != u.(*user).pass {
		return ErrAuth
	}
	return db.SetPassword(u, new)
}

func (db *UserDB) Delete(u auth.DBUser) error {
	_, err := db.delete.Exec(u.ID())
	return err
}

// GetUser may return sql.ErrNoRows, because we can not compare the returned auth.DBUser to nil.
func (db *UserDB) GetUser(id int) (auth.DBUser, error) {
	var u = &user{
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&u.name)
	return u, err
}

func (db *UserDB) GetUserByName(name string) (auth.DBUser, error) {
	var u = &user{
		name: clean(name),
	}
	err := db.getByName.QueryRow(u.name).Scan(&u.id)
	return u, err
}

func (db *UserDB) GetAllUsers(limit, offset int) ([]auth.DBUser, error) {

	var all = []auth.DBUser{}

	rows, err := db.getAll.Query(limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u = &user{}
		err = rows.Scan(&u.id, &u.name, &u.salt)
		if err != nil {
			return nil, err
		}
		all = append(all, u)
	}

	return all, nil
}

func (db *UserDB) GetProfile(u auth.DBUser) (auth.Profile, error) {
	var p auth.Profile
	err := db.getProfile.QueryRow(u.ID()).Scan(&p.SSHKey, &p.BlockOAuth)
	if err == sql.ErrNoRows {
		return auth.Profile{}, nil // no row means default profile
	}
	return p, err
}

func (db *UserDB) InsertUser(name string) (auth.DBUser, error) {
	name = clean(name)
	if name == "" {
		return nil, errors.New("name can't be empty")
	}
	result, err := db.insert.Exec(name)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &user{
		id:   int(id),
		name: name,
	}, nil
}

func (db *UserDB) LoginUser(name, password string) (auth.DBUser, error) {

	name = clean(name)

	var u = &user{
		name: name,
	}

	err := db.login.QueryRow(name).Scan(&u.id, &u.salt, &u.pass)
	if err == sql.ErrNoRows {
		return nil, ErrAuth // user not found
	}
	if err != nil {
		return nil, err
	}

	if u.hash(password) != u.pass {
		return nil, ErrAuth // wrong password
	}

	return u, nil
}

func (db *UserDB) SetPassword(u auth.DBUser, password string) error {

	if password == "" {
		return errors.New("no password given")
	}

	if u.ID() == 0 {
		return errors.New("can't set password of user 0")
	}

	salt, err := util.RandomString32()
	if err != nil {
		return err
	}

	_, err = db.setPassword.Exec(salt, hash(salt, password), u.ID())
	if err != nil {
		return err
	}

	if su, ok := u.(*user); ok {
		su.salt = salt
		su.pass = hash(salt, password)
	}
	return nil
}

func (db *UserDB) SetProfile(u auth.DBUser, p auth.Profile) error {
	_, err := db.setProfile.Exec(u.ID(), p.SSHKey, p.BlockOAuth)
	return err
}

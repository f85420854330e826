package site

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pgcommunity/pgsite/auth"
	"github.com/pgcommunity/pgsite/core"
	"github.com/pgcommunity/pgsite/sqldb"
	"github.com/pgcommunity/pgsite/sqldb/sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoreDB(t *testing.T) *core.CoreDB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // :memory: is per-connection
	t.Cleanup(func() { sqlDB.Close() })

	var db = &core.CoreDB{}
	require.NoError(t, db.Init(sqlite3.NewSessionStore(sqlDB), ""))

	db.Auth = &auth.AuthDB{
		GroupDB: sqldb.NewGroupDB(sqlDB),
		UserDB:  sqldb.NewUserDB(sqlDB),
	}
	db.CapabilityDB = sqldb.NewCapabilityDB(sqlDB)
	db.FeedDB = sqldb.NewFeedDB(sqlDB)
	db.NewsDB = sqldb.NewNewsDB(sqlDB)
	db.OrgDB = sqldb.NewOrgDB(sqlDB)
	db.QuoteDB = sqldb.NewQuoteDB(sqlDB)
	db.TagDB = sqldb.NewTagDB(sqlDB)
	db.SqlDB = sqlDB

	return db
}

func newTestServer(t *testing.T, db *core.CoreDB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(db.SessionManager.LoadAndSave(NewSiteRouter(db)))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHome(t *testing.T) {

	var db = newTestCoreDB(t)
	var srv = newTestServer(t, db)

	status, _ := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, status)
}

func TestArticlePage(t *testing.T) {

	var db = newTestCoreDB(t)
	var srv = newTestServer(t, db)

	org, err := db.CreateOrganisation("ACME Corp", "", "", 0)
	require.NoError(t, err)

	published, err := db.InsertArticle(org.ID(), 0, "PostgreSQL test news", "We **shipped** it.", 1000)
	require.NoError(t, err)
	require.NoError(t, db.SetModState(published, int(core.ModStateApproved)))

	draft, err := db.InsertArticle(org.ID(), 0, "Not yet public", "", 2000)
	require.NoError(t, err)

	article, err := db.GetArticle(published.ID())
	require.NoError(t, err)
	require.Equal(t, "/about/news/postgresql-test-news-"+strconv.Itoa(published.ID())+"/", article.PermanentURL())

	status, body := get(t, srv.URL+article.PermanentURL())
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "PostgreSQL test news")
	assert.Contains(t, body, "<strong>shipped</strong>") // markdown is rendered
	assert.Contains(t, body, "ACME Corp via PostgreSQL Announce")

	// the slug part is decorative, only the id counts
	status, _ = get(t, srv.URL+"/about/news/anything-"+strconv.Itoa(published.ID())+"/")
	assert.Equal(t, http.StatusOK, status)

	// pending articles are invisible to the public
	status, _ = get(t, srv.URL+"/about/news/not-yet-public-"+strconv.Itoa(draft.ID())+"/")
	assert.Equal(t, http.StatusNotFound, status)

	// unknown id and malformed slug
	status, _ = get(t, srv.URL+"/about/news/whatever-99999/")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = get(t, srv.URL+"/about/news/no-id-here/")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestArchive(t *testing.T) {

	var db = newTestCoreDB(t)
	var srv = newTestServer(t, db)

	org, err := db.CreateOrganisation("ACME Corp", "", "", 0)
	require.NoError(t, err)

	visible, err := db.InsertArticle(org.ID(), 0, "Visible", "", 1000)
	require.NoError(t, err)
	require.NoError(t, db.SetModState(visible, int(core.ModStateApproved)))

	_, err = db.InsertArticle(org.ID(), 0, "Invisible", "", 2000)
	require.NoError(t, err)

	status, body := get(t, srv.URL+"/about/news/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Visible")
	assert.NotContains(t, body, "Invisible")
}

func TestConfirmEmailPage(t *testing.T) {

	var db = newTestCoreDB(t)
	var srv = newTestServer(t, db)

	org, err := db.CreateOrganisation("ACME Corp", "", "", 0)
	require.NoError(t, err)
	require.NoError(t, db.InsertEmail(org.DBOrganisation, "news@acme.example.com", "token123"))

	status, body := get(t, srv.URL+"/org/mail/confirm/token123/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "news@acme.example.com")

	// single use
	status, _ = get(t, srv.URL+"/org/mail/confirm/token123/")
	assert.Equal(t, http.StatusNotFound, status)
}

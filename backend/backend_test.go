package backend

import (
	"database/sql"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
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

// newTestServer wires the backend router behind the session middleware like
// func main does.
func newTestServer(t *testing.T, db *core.CoreDB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(db.SessionManager.LoadAndSave(NewBackendRouter(db)))
	t.Cleanup(srv.Close)
	return srv
}

// newTestClient keeps cookies and does not follow redirects, so the tests
// can inspect them.
func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func createUser(t *testing.T, db *core.CoreDB, name, password string) auth.DBUser {
	t.Helper()
	user, err := db.Auth.InsertUser(name)
	require.NoError(t, err)
	require.NoError(t, db.Auth.SetPassword(user, password))
	return user
}

func grantCapability(t *testing.T, db *core.CoreDB, u auth.DBUser, capability core.Capability) {
	t.Helper()
	group, err := db.Auth.InsertGroup("grp-" + u.Name())
	require.NoError(t, err)
	require.NoError(t, db.Auth.Join(group, u))
	require.NoError(t, db.AddCapabilityRule(group.ID(), capability))
}

func loginAs(t *testing.T, client *http.Client, srv *httptest.Server, name, password string) {
	t.Helper()
	resp, err := client.PostForm(srv.URL+"/account/login/", url.Values{
		"username": {name},
		"password": {password},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
}

func get(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestLoginRedirect(t *testing.T) {

	var db = newTestCoreDB(t)
	var srv = newTestServer(t, db)
	var client = newTestClient(t)

	// unauthenticated access redirects 302 to the login form, carrying the
	// original url unescaped
	for _, path := range []string{"/admin/", "/admin/pending/", "/admin/users/"} {
		resp := get(t, client, srv.URL+path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/account/login/?next="+path, resp.Header.Get("Location"), path)
	}
}

func TestLoginLogout(t *testing.T) {

	var db = newTestCoreDB(t)
	var srv = newTestServer(t, db)
	var client = newTestClient(t)

	createUser(t, db, "alice", "secret")

	// wrong password re-renders the form
	resp, err := client.PostForm(srv.URL+"/account/login/", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	loginAs(t, client, srv, "alice", "secret")

	resp = get(t, client, srv.URL+"/admin/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, client, srv.URL+"/account/logout/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp = get(t, client, srv.URL+"/admin/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestAdminOnlyViews(t *testing.T) {

	var db = newTestCoreDB(t)
	var srv = newTestServer(t, db)
	var client = newTestClient(t)

	createUser(t, db, "alice", "secret") // no capabilities
	loginAs(t, client, srv, "alice", "secret")

	// a logged-in user without the capability never sees admin-only views
	for _, path := range []string{"/admin/users/", "/admin/groups/", "/admin/orgs/", "/admin/mergeorg/", "/admin/pending/"} {
		resp := get(t, client, srv.URL+path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/account/login/?next="), path)
	}
}

func TestModeratorViews(t *testing.T) {

	var db = newTestCoreDB(t)
	var srv = newTestServer(t, db)
	var client = newTestClient(t)

	moderator := createUser(t, db, "mod", "secret")
	grantCapability(t, db, moderator, core.Moderate)
	loginAs(t, client, srv, "mod", "secret")

	resp := get(t, client, srv.URL+"/admin/pending/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// moderate does not imply admin
	resp = get(t, client, srv.URL+"/admin/users/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestUnknownUserIs404(t *testing.T) {

	var db = newTestCoreDB(t)
	var srv = newTestServer(t, db)
	var client = newTestClient(t)

	admin := createUser(t, db, "admin", "secret")
	grantCapability(t, db, admin, core.Admin)
	loginAs(t, client, srv, "admin", "secret")

	resp := get(t, client, srv.URL+"/admin/user/99999/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = get(t, client, srv.URL+"/admin/auth/user/99999/change/resetpassword/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserPageAccess(t *testing.T) {

	var db = newTestCoreDB(t)
	var srv = newTestServer(t, db)
	var client = newTestClient(t)

	alice := createUser(t, db, "alice", "secret")
	bob := createUser(t, db, "bob", "secret")

	loginAs(t, client, srv, "alice", "secret")

	// own page
	resp := get(t, client, srv.URL+"/admin/user/"+strconv.Itoa(alice.ID())+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// someone else's page
	resp = get(t, client, srv.URL+"/admin/user/"+strconv.Itoa(bob.ID())+"/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestModeration(t *testing.T) {

	var db = newTestCoreDB(t)
	var srv = newTestServer(t, db)
	var client = newTestClient(t)

	moderator := createUser(t, db, "mod", "secret")
	grantCapability(t, db, moderator, core.Moderate)
	loginAs(t, client, srv, "mod", "secret")

	org, err := db.CreateOrganisation("ACME Corp", "", "", 0)
	require.NoError(t, err)
	dbArticle, err := db.InsertArticle(org.ID(), 1, "Release", "", 1000)
	require.NoError(t, err)

	resp, err := client.PostForm(srv.URL+"/admin/pending/", url.Values{
		"id":     {strconv.Itoa(dbArticle.ID())},
		"action": {"approve"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	article, err := db.GetArticle(dbArticle.ID())
	require.NoError(t, err)
	assert.Equal(t, core.ModStateApproved, article.ModState())
	assert.True(t, article.BlockEdit())

	// return to pending unlocks
	resp, err = client.PostForm(srv.URL+"/admin/pending/", url.Values{
		"id":     {strconv.Itoa(dbArticle.ID())},
		"action": {"return"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	article, err = db.GetArticle(dbArticle.ID())
	require.NoError(t, err)
	assert.Equal(t, core.ModStatePending, article.ModState())
	assert.False(t, article.BlockEdit())
}


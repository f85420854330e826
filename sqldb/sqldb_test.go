package sqldb

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pgcommunity/pgsite/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1) // :memory: is per-connection
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserDB(t *testing.T) {

	var userDB = NewUserDB(newTestDB(t))

	alice, err := userDB.InsertUser("Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", alice.Name()) // names are lowercased

	// no password yet, login must fail
	_, err = userDB.LoginUser("alice", "")
	assert.ErrorIs(t, err, ErrAuth)

	require.NoError(t, userDB.SetPassword(alice, "secret"))

	loggedIn, err := userDB.LoginUser("alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, alice.ID(), loggedIn.ID())

	_, err = userDB.LoginUser("alice", "wrong")
	assert.ErrorIs(t, err, ErrAuth)

	_, err = userDB.LoginUser("nobody", "secret")
	assert.ErrorIs(t, err, ErrAuth)

	// change password requires the old one
	assert.ErrorIs(t, userDB.ChangePassword(loggedIn, "wrong", "other"), ErrAuth)
	require.NoError(t, userDB.ChangePassword(loggedIn, "secret", "other"))

	_, err = userDB.LoginUser("alice", "other")
	require.NoError(t, err)

	// duplicate name
	_, err = userDB.InsertUser("alice")
	assert.Error(t, err)
}

func TestUserProfile(t *testing.T) {

	var userDB = NewUserDB(newTestDB(t))

	alice, err := userDB.InsertUser("alice")
	require.NoError(t, err)

	// default profile before any row exists
	profile, err := userDB.GetProfile(alice)
	require.NoError(t, err)
	assert.Empty(t, profile.SSHKey)
	assert.False(t, profile.BlockOAuth)

	profile.SSHKey = "ssh-ed25519 AAAA"
	profile.BlockOAuth = true
	require.NoError(t, userDB.SetProfile(alice, profile))

	got, err := userDB.GetProfile(alice)
	require.NoError(t, err)
	assert.Equal(t, profile, got)
}

func TestGroupDB(t *testing.T) {

	var db = newTestDB(t)
	var groupDB = NewGroupDB(db)
	var userDB = NewUserDB(db)

	moderators, err := groupDB.InsertGroup("moderators")
	require.NoError(t, err)

	alice, err := userDB.InsertUser("alice")
	require.NoError(t, err)

	require.NoError(t, groupDB.Join(moderators, alice))

	ok, err := moderators.HasMember(alice)
	require.NoError(t, err)
	assert.True(t, ok)

	groups, err := groupDB.GetGroupsOf(alice)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "moderators", groups[0].Name())

	require.NoError(t, groupDB.Leave(moderators, alice))

	groups, err = groupDB.GetGroupsOf(alice)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestCapabilityDB(t *testing.T) {

	var capabilityDB = NewCapabilityDB(newTestDB(t))

	require.NoError(t, capabilityDB.InsertCapabilityRule(10, int(core.Moderate)))
	require.NoError(t, capabilityDB.InsertCapabilityRule(10, int(core.Admin))) // replaces

	rules, err := capabilityDB.GetCapabilityRules()
	require.NoError(t, err)
	assert.Equal(t, map[int]int{10: int(core.Admin)}, rules)

	require.NoError(t, capabilityDB.RemoveCapabilityRule(10))

	rules, err = capabilityDB.GetCapabilityRules()
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestOrgDB(t *testing.T) {

	var db = newTestDB(t)
	var orgDB = NewOrgDB(db)
	var userDB = NewUserDB(db)

	acme, err := orgDB.InsertOrg("ACME Corp", "", "https://acme.example.com", 0)
	require.NoError(t, err)

	// unique name
	_, err = orgDB.InsertOrg("ACME Corp", "", "", 0)
	assert.Error(t, err)

	alice, err := userDB.InsertUser("alice")
	require.NoError(t, err)

	require.NoError(t, orgDB.AddManager(acme, alice))

	ids, err := acme.ManagerIDs()
	require.NoError(t, err)
	assert.Equal(t, []int{alice.ID()}, ids)

	require.NoError(t, orgDB.RemoveManager(acme, alice))

	ids, err = acme.ManagerIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)

	// not found mapping
	_, err = orgDB.GetOrg(99999)
	assert.True(t, orgDB.IsNotFound(err))
}

func TestConfirmEmail(t *testing.T) {

	var orgDB = NewOrgDB(newTestDB(t))

	acme, err := orgDB.InsertOrg("ACME Corp", "", "", 0)
	require.NoError(t, err)

	require.NoError(t, orgDB.InsertEmail(acme, "news@acme.example.com", "token123"))

	emails, err := orgDB.GetEmails(acme.ID())
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.False(t, emails[0].Confirmed())

	confirmed, err := orgDB.ConfirmEmail("token123")
	require.NoError(t, err)
	assert.Equal(t, "news@acme.example.com", confirmed.Address())
	assert.True(t, confirmed.Confirmed())

	// single use, the token is cleared
	_, err = orgDB.ConfirmEmail("token123")
	assert.True(t, orgDB.IsNotFound(err))
}

func TestMergeOrgs(t *testing.T) {

	var db = newTestDB(t)
	var orgDB = NewOrgDB(db)
	var newsDB = NewNewsDB(db)
	var userDB = NewUserDB(db)

	duplicate, err := orgDB.InsertOrg("ACME", "", "", 0)
	require.NoError(t, err)
	target, err := orgDB.InsertOrg("ACME Corp", "", "", 0)
	require.NoError(t, err)

	alice, err := userDB.InsertUser("alice")
	require.NoError(t, err)
	require.NoError(t, orgDB.AddManager(duplicate, alice))

	article, err := newsDB.InsertArticle(duplicate.ID(), 1, "Release", "", 1000)
	require.NoError(t, err)

	require.NoError(t, orgDB.MergeOrgs(duplicate, target))

	// article moved
	moved, err := newsDB.GetArticle(article.ID())
	require.NoError(t, err)
	assert.Equal(t, target.ID(), moved.OrgID())

	// manager moved
	ids, err := target.ManagerIDs()
	require.NoError(t, err)
	assert.Equal(t, []int{alice.ID()}, ids)

	// duplicate gone
	_, err = orgDB.GetOrg(duplicate.ID())
	assert.True(t, orgDB.IsNotFound(err))
}

func TestNewsDBTags(t *testing.T) {

	var db = newTestDB(t)
	var newsDB = NewNewsDB(db)
	var tagDB = NewTagDB(db)

	article, err := newsDB.InsertArticle(1, 1, "Release", "", 1000)
	require.NoError(t, err)

	replication, err := tagDB.InsertTag("replication", "Replication")
	require.NoError(t, err)
	backup, err := tagDB.InsertTag("backup", "Backup")
	require.NoError(t, err)

	// insertion order survives, not alphabetical or id order
	require.NoError(t, newsDB.AddTag(article, replication))
	require.NoError(t, newsDB.AddTag(article, backup))

	tags, err := newsDB.GetTags(article.ID())
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Replication", tags[0].Name())
	assert.Equal(t, "Backup", tags[1].Name())

	require.NoError(t, newsDB.RemoveTag(article, replication.ID()))

	tags, err = newsDB.GetTags(article.ID())
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Backup", tags[0].Name())
}

func TestNewsDBFilter(t *testing.T) {

	var db = newTestDB(t)
	var newsDB = NewNewsDB(db)
	var tagDB = NewTagDB(db)

	first, err := newsDB.InsertArticle(1, 1, "First", "", 1000)
	require.NoError(t, err)
	second, err := newsDB.InsertArticle(2, 1, "Second", "", 2000)
	require.NoError(t, err)

	require.NoError(t, newsDB.SetModState(second, 1))

	tag, err := tagDB.InsertTag("release", "Release")
	require.NoError(t, err)
	require.NoError(t, newsDB.AddTag(first, tag))

	// newest first
	all, err := newsDB.GetArticles(core.ArchiveFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Second", all[0].Title())

	// by state
	pending, err := newsDB.GetArticles(core.ArchiveFilter{States: []core.ModState{core.ModStatePending}}, 10, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "First", pending[0].Title())

	// by tag
	tagged, err := newsDB.GetArticles(core.ArchiveFilter{Tag: "release"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "First", tagged[0].Title())

	// by org
	count, err := newsDB.CountArticles(core.ArchiveFilter{OrgID: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFeedDBDedupe(t *testing.T) {

	var feedDB = NewFeedDB(newTestDB(t))

	require.NoError(t, feedDB.InsertFeed("planet", "https://planet.example.com/rss", ""))

	feed, err := feedDB.GetFeedByName("planet")
	require.NoError(t, err)

	isNew, err := feedDB.InsertItem(feed.ID(), "Post", "https://blog.example.com/post", "A teaser.", 1000)
	require.NoError(t, err)
	assert.True(t, isNew)

	// same url again is a no-op
	isNew, err = feedDB.InsertItem(feed.ID(), "Post again", "https://blog.example.com/post", "", 2000)
	require.NoError(t, err)
	assert.False(t, isNew)

	items, err := feedDB.GetItems(feed.ID(), 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Post", items[0].Title())
	assert.Equal(t, "A teaser.", items[0].Teaser())
}

func TestQuoteDB(t *testing.T) {

	var quoteDB = NewQuoteDB(newTestDB(t))

	quote, err := quoteDB.InsertQuote("Works great.", "Alice", "ACME Corp", "")
	require.NoError(t, err)
	assert.False(t, quote.Approved())

	// only approved quotes reach the public site
	approved, err := quoteDB.GetApprovedQuotes(10)
	require.NoError(t, err)
	assert.Empty(t, approved)

	require.NoError(t, quoteDB.SetQuoteApproved(quote, true))

	approved, err = quoteDB.GetApprovedQuotes(10)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "Works great.", approved[0].Quote())
}

package core

import (
	"errors"
	"testing"
	"time"

	"github.com/pgcommunity/pgsite/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// in-memory fakes, just enough model for the derived-value contracts

type fakeUser struct {
	id   int
	name string
}

func (u fakeUser) ID() int      { return u.id }
func (u fakeUser) Name() string { return u.name }

type fakeOrg struct {
	id               int
	name             string
	fromNameOverride string
	managerIDs       []int
}

func (o fakeOrg) ID() int                    { return o.id }
func (o fakeOrg) Name() string               { return o.name }
func (o fakeOrg) Address() string            { return "" }
func (o fakeOrg) URL() string                { return "" }
func (o fakeOrg) OrgTypeID() int             { return 0 }
func (o fakeOrg) FromNameOverride() string   { return o.fromNameOverride }
func (o fakeOrg) MailTemplate() string       { return "" }
func (o fakeOrg) ManagerIDs() ([]int, error) { return o.managerIDs, nil }

type fakeArticle struct {
	id       int
	orgID    int
	title    string
	posted   int64
	modState int
}

func (a fakeArticle) ID() int          { return a.id }
func (a fakeArticle) OrgID() int       { return a.orgID }
func (a fakeArticle) OrgEmailID() int  { return 1 }
func (a fakeArticle) Title() string    { return a.title }
func (a fakeArticle) Content() string  { return "" }
func (a fakeArticle) PostedAt() int64  { return a.posted }
func (a fakeArticle) ModState() int    { return a.modState }

type fakeTag struct {
	id      int
	urlName string
	name    string
}

func (t fakeTag) ID() int         { return t.id }
func (t fakeTag) URLName() string { return t.urlName }
func (t fakeTag) Name() string    { return t.name }

// fakeNewsDB only serves GetTags, everything else is unused by these tests
type fakeNewsDB struct {
	NewsDB
	tags map[int][]DBTag
}

func (db fakeNewsDB) GetTags(articleID int) ([]DBTag, error) {
	return db.tags[articleID], nil
}

func newTestArticle(dbArticle fakeArticle, org fakeOrg, tags []DBTag) *Article {
	var c = &CoreDB{
		NewsDB: fakeNewsDB{tags: map[int][]DBTag{dbArticle.id: tags}},
		Config: SiteConfig{Brand: "PostgreSQL Announce"},
	}
	return &Article{
		DBArticle: dbArticle,
		Org:       &Organisation{DBOrganisation: org, db: c},
		db:        c,
	}
}

func TestPermanentURL(t *testing.T) {
	article := newTestArticle(fakeArticle{id: 42, title: "PostgreSQL test news"}, fakeOrg{}, nil)
	assert.Equal(t, "/about/news/postgresql-test-news-42/", article.PermanentURL())
}

func TestBlockEdit(t *testing.T) {

	for modState, locked := range map[int]bool{
		int(ModStatePending):  false,
		int(ModStateApproved): true,
		int(ModStateArchived): true,
	} {
		article := newTestArticle(fakeArticle{id: 1, modState: modState}, fakeOrg{}, nil)
		assert.Equal(t, locked, article.BlockEdit(), "modstate %d", modState)
		assert.Equal(t, locked, article.ModState().Locked(), "modstate %d", modState)
	}
}

func TestDisplayDate(t *testing.T) {
	posted := time.Date(2024, time.March, 5, 23, 30, 0, 0, time.UTC).Unix()
	article := newTestArticle(fakeArticle{id: 1, posted: posted}, fakeOrg{}, nil)
	assert.Equal(t, "2024-03-05", article.DisplayDate())
}

func TestTagList(t *testing.T) {

	// insertion order, not alphabetical
	article := newTestArticle(fakeArticle{id: 1}, fakeOrg{}, []DBTag{
		fakeTag{id: 3, name: "Replication"},
		fakeTag{id: 1, name: "Backup"},
	})
	assert.Equal(t, "Replication, Backup", article.TagList())

	empty := newTestArticle(fakeArticle{id: 2}, fakeOrg{}, nil)
	assert.Equal(t, "", empty.TagList())
}

func TestSentFrom(t *testing.T) {

	article := newTestArticle(fakeArticle{id: 1}, fakeOrg{name: "ACME Corp"}, nil)
	assert.Equal(t, "ACME Corp via PostgreSQL Announce", article.SentFrom())

	overridden := newTestArticle(fakeArticle{id: 2}, fakeOrg{name: "ACME Corp", fromNameOverride: "PostgreSQL news"}, nil)
	assert.Equal(t, "PostgreSQL news", overridden.SentFrom())
}

func TestVerifySubmitter(t *testing.T) {

	article := newTestArticle(fakeArticle{id: 1}, fakeOrg{managerIDs: []int{7}}, nil)

	ok, err := article.VerifySubmitter(fakeUser{id: 7})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = article.VerifySubmitter(fakeUser{id: 8})
	require.NoError(t, err)
	assert.False(t, ok)

	// anonymous
	ok, err = article.VerifySubmitter(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRequireArticleEdit(t *testing.T) {

	var c = &CoreDB{}

	pending := newTestArticle(fakeArticle{id: 1, modState: int(ModStatePending)}, fakeOrg{managerIDs: []int{7}}, nil)
	locked := newTestArticle(fakeArticle{id: 2, modState: int(ModStateApproved)}, fakeOrg{managerIDs: []int{7}}, nil)

	assert.NoError(t, c.RequireArticleEdit(fakeUser{id: 7}, pending))
	assert.ErrorIs(t, c.RequireArticleEdit(fakeUser{id: 8}, pending), ErrUnauthorized)
	assert.ErrorIs(t, c.RequireArticleEdit(fakeUser{id: 7}, locked), ErrArticleLocked)

	// no admin pass-through here, elevated roles go through RequireCapability
	assert.Error(t, c.RequireArticleEdit(nil, pending))
}

// fakeGroupDB backs the capability tests
type fakeGroupDB struct {
	auth.GroupDB
	groupsOf map[int][]auth.DBGroup
}

func (db fakeGroupDB) GetGroupsOf(u auth.DBUser) ([]auth.DBGroup, error) {
	return db.groupsOf[u.ID()], nil
}

type fakeGroup struct {
	id   int
	name string
}

func (g fakeGroup) ID() int                                  { return g.id }
func (g fakeGroup) Name() string                             { return g.name }
func (g fakeGroup) HasMember(auth.DBUser) (bool, error) { return false, errors.New("not implemented") }
func (g fakeGroup) Members() (map[int]interface{}, error) { return nil, errors.New("not implemented") }

type fakeCapabilityDB struct {
	rules map[int]int
}

func (db fakeCapabilityDB) GetCapabilityRules() (map[int]int, error) { return db.rules, nil }
func (db fakeCapabilityDB) InsertCapabilityRule(int, int) error       { return nil }
func (db fakeCapabilityDB) RemoveCapabilityRule(int) error            { return nil }

func TestRequireCapability(t *testing.T) {

	var c = &CoreDB{
		Auth: &auth.AuthDB{
			GroupDB: fakeGroupDB{groupsOf: map[int][]auth.DBGroup{
				1: {fakeGroup{id: 10, name: "moderators"}},
				2: {fakeGroup{id: 20, name: "admins"}},
				3: {fakeGroup{id: 30, name: "plain"}},
			}},
		},
		CapabilityDB: fakeCapabilityDB{rules: map[int]int{
			10: int(Moderate),
			20: int(Admin),
		}},
	}

	// admin implies moderate, never the other way round
	assert.NoError(t, c.RequireCapability(Moderate, fakeUser{id: 1}))
	assert.ErrorIs(t, c.RequireCapability(Admin, fakeUser{id: 1}), ErrUnauthorized)
	assert.NoError(t, c.RequireCapability(Moderate, fakeUser{id: 2}))
	assert.NoError(t, c.RequireCapability(Admin, fakeUser{id: 2}))

	// group without rule
	assert.ErrorIs(t, c.RequireCapability(Moderate, fakeUser{id: 3}), ErrUnauthorized)

	// capabilities are never granted to the public
	assert.ErrorIs(t, c.RequireCapability(Moderate, nil), ErrUnauthorized)
}

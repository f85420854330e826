package core

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/pgcommunity/pgsite/auth"
)

type CoreDB struct {
	Auth *auth.AuthDB
	CapabilityDB
	FeedDB
	NewsDB
	OrgDB
	QuoteDB
	TagDB
	SessionManager *scs.SessionManager
	Config         SiteConfig

	SqlDB *sql.DB // required for the session store
}

func (c *CoreDB) Init(sessionStore scs.Store, cookiePath string) error {

	config, err := LoadSiteConfig()
	if err != nil {
		return fmt.Errorf("loading site config: %w", err)
	}
	c.Config = config

	c.SessionManager = scs.New()
	c.SessionManager.Store = sessionStore
	c.SessionManager.Cookie.Path = cookiePath + "/"         // 'The default value is "/". Passing the empty string "" will result in it being set to the path that the cookie was issued from.'
	c.SessionManager.Cookie.Persist = false                 // Don't store cookie across browser sessions. Required for GDPR cookie consent exemption criterion B. https://ec.europa.eu/justice/article-29/documentation/opinion-recommendation/files/2012/wp194_en.pdf
	c.SessionManager.Cookie.SameSite = http.SameSiteLaxMode // good CSRF protection if HTTP GET doesn't modify anything
	c.SessionManager.Cookie.Secure = false                  // else running on localhost or behind a http proxy fails
	c.SessionManager.IdleTimeout = 12 * time.Hour
	c.SessionManager.Lifetime = 720 * time.Hour

	return nil
}

// IsNotFound reports whether err means a missing row, regardless of which
// store returned it.
func (c *CoreDB) IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return c.NewsDB.IsNotFound(err) || c.OrgDB.IsNotFound(err)
}

// AddCapabilityRule shadows CapabilityDB.InsertCapabilityRule.
func (c *CoreDB) AddCapabilityRule(groupID int, capability Capability) error {
	if !capability.Valid() {
		return fmt.Errorf("unknown capability %d", int(capability))
	}
	var group, err = c.Auth.GetGroup(groupID)
	if err != nil {
		return err
	}
	return c.CapabilityDB.InsertCapabilityRule(group.ID(), int(capability))
}

// RemoveCapabilityRule shadows CapabilityDB.RemoveCapabilityRule.
func (c *CoreDB) RemoveCapabilityRule(groupID int) error {
	// not checking if the group exists because not a lot can go wrong
	return c.CapabilityDB.RemoveCapabilityRule(groupID)
}

// CreateArticle inserts a pending article attributed to a confirmed email of
// the organisation, then appends the given tags in order.
func (c *CoreDB) CreateArticle(org *Organisation, emailID int, title, content string, tagIDs []int) (*Article, error) {

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title can't be empty")
	}

	email, err := c.GetEmail(emailID)
	if err != nil {
		return nil, err
	}
	if email.OrgID() != org.ID() {
		return nil, errors.New("email does not belong to the organisation")
	}
	if !email.Confirmed() {
		return nil, errors.New("email is not confirmed")
	}

	dbArticle, err := c.InsertArticle(org.ID(), emailID, title, content, time.Now().Unix())
	if err != nil {
		return nil, err
	}

	var article = c.newArticle(dbArticle, org)
	for _, tagID := range tagIDs {
		tag, err := c.GetTag(tagID)
		if err != nil {
			return nil, err
		}
		if err := c.AddTag(dbArticle, tag); err != nil {
			return nil, err
		}
	}
	article.tagsLoaded = false

	return article, nil
}

// EditArticle updates title, content and attribution, then reconciles the tag
// list against the wanted set by explicit add and remove calls.
func (c *CoreDB) EditArticle(a *Article, title, content string, emailID int, tagIDs []int) error {

	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("title can't be empty")
	}

	email, err := c.GetEmail(emailID)
	if err != nil {
		return err
	}
	if email.OrgID() != a.OrgID() {
		return errors.New("email does not belong to the organisation")
	}
	if !email.Confirmed() {
		return errors.New("email is not confirmed")
	}

	if err := c.UpdateArticle(a.DBArticle, title, content, a.PostedAt(), emailID); err != nil {
		return err
	}

	current, err := c.GetTags(a.ID())
	if err != nil {
		return err
	}

	var wanted = make(map[int]bool)
	for _, tagID := range tagIDs {
		wanted[tagID] = true
	}

	var has = make(map[int]bool)
	for _, tag := range current {
		has[tag.ID()] = true
		if !wanted[tag.ID()] {
			if err := c.RemoveTag(a.DBArticle, tag.ID()); err != nil {
				return err
			}
		}
	}

	for _, tagID := range tagIDs {
		if !has[tagID] {
			tag, err := c.GetTag(tagID)
			if err != nil {
				return err
			}
			if err := c.AddTag(a.DBArticle, tag); err != nil {
				return err
			}
		}
	}

	a.tagsLoaded = false
	return nil
}

// ApproveArticle moves a pending article to approved.
func (c *CoreDB) ApproveArticle(a *Article) error {
	if a.ModState() != ModStatePending {
		return fmt.Errorf("can't approve %s article", a.ModState())
	}
	return c.SetModState(a.DBArticle, int(ModStateApproved))
}

// ArchiveArticle archives an article. Allowed from any state.
func (c *CoreDB) ArchiveArticle(a *Article) error {
	return c.SetModState(a.DBArticle, int(ModStateArchived))
}

// ReturnArticle puts an article back into the pending queue, which unlocks it
// for its submitter.
func (c *CoreDB) ReturnArticle(a *Article) error {
	return c.SetModState(a.DBArticle, int(ModStatePending))
}

// MergeOrganisations moves articles, emails and managers from one organisation
// into another and deletes the source.
func (c *CoreDB) MergeOrganisations(from, to *Organisation) error {
	if from.ID() == to.ID() {
		return errors.New("can't merge an organisation into itself")
	}
	if err := c.MergeOrgs(from.DBOrganisation, to.DBOrganisation); err != nil {
		return err
	}
	to.managersLoaded = false
	return nil
}

// ConfirmOrgEmail shadows OrgDB.ConfirmEmail.
func (c *CoreDB) ConfirmOrgEmail(token string) (DBOrganisationEmail, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("token can't be empty")
	}
	return c.ConfirmEmail(token)
}

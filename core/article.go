package core

import (
	"fmt"
	"time"

	"github.com/pgcommunity/pgsite/auth"
)

// An Article wraps a DBArticle together with its owning Organisation.
// All derived display values are computed from loaded state, never stored.
type Article struct {
	DBArticle
	Org *Organisation

	db         *CoreDB
	tags       []DBTag // cached, lazy loading
	tagsLoaded bool
}

// GetArticle loads an article and its owning organisation.
func (c *CoreDB) GetArticle(id int) (*Article, error) {

	dbArticle, err := c.NewsDB.GetArticle(id)
	if err != nil {
		return nil, err
	}

	org, err := c.GetOrganisation(dbArticle.OrgID())
	if err != nil {
		return nil, fmt.Errorf("organisation of article %d: %w", id, err)
	}

	return &Article{
		DBArticle: dbArticle,
		Org:       org,
		db:        c,
	}, nil
}

func (c *CoreDB) newArticle(dbArticle DBArticle, org *Organisation) *Article {
	return &Article{
		DBArticle: dbArticle,
		Org:       org,
		db:        c,
	}
}

// ModState shadows DBArticle.ModState.
func (a *Article) ModState() ModState {
	return ModState(a.DBArticle.ModState())
}

// BlockEdit returns whether the article is immutable to its submitter.
// Pure function of stored state.
func (a *Article) BlockEdit() bool {
	return a.ModState() != ModStatePending
}

// DisplayDate formats the publication timestamp, locale-independent.
func (a *Article) DisplayDate() string {
	return time.Unix(a.PostedAt(), 0).UTC().Format("2006-01-02")
}

// Tags shadows NewsDB.GetTags and caches the result.
func (a *Article) Tags() ([]DBTag, error) {

	if !a.tagsLoaded {
		tags, err := a.db.GetTags(a.ID())
		if err != nil {
			return nil, err
		}
		a.tags = tags
		a.tagsLoaded = true
	}

	return a.tags, nil
}

// TagList joins the tag display names in insertion order.
func (a *Article) TagList() string {
	var tags, _ = a.Tags()
	var list string
	for i, tag := range tags {
		if i > 0 {
			list += ", "
		}
		list += tag.Name()
	}
	return list
}

// SentFrom is the sender line for announcement mails. The organisation's
// override wins, else the organisation is attributed via the site brand.
func (a *Article) SentFrom() string {
	if override := a.Org.FromNameOverride(); override != "" {
		return override
	}
	return fmt.Sprintf("%s via %s", a.Org.Name(), a.db.Config.Brand)
}

// PermanentURL shadows ArticlePath.
func (a *Article) PermanentURL() string {
	return ArticlePath(a.Title(), a.ID())
}

// VerifySubmitter returns whether the user is a manager of the owning
// organisation. No other identity passes, elevated roles are checked
// separately through RequireCapability.
func (a *Article) VerifySubmitter(u auth.DBUser) (bool, error) {
	return a.Org.HasManager(u)
}

// Email returns the attributed organisation email.
func (a *Article) Email() (DBOrganisationEmail, error) {
	return a.db.GetEmail(a.OrgEmailID())
}

func (a *Article) String() string {
	return fmt.Sprintf("%s: %s", a.DisplayDate(), a.Title())
}

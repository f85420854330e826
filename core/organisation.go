package core

import (
	"errors"
	"strings"

	"github.com/pgcommunity/pgsite/auth"
)

// An Organisation wraps a DBOrganisation.
type Organisation struct {
	DBOrganisation

	db             *CoreDB
	managers       []auth.DBUser // cached, lazy loading
	managersLoaded bool
}

// GetOrganisation shadows OrgDB.GetOrg.
func (c *CoreDB) GetOrganisation(id int) (*Organisation, error) {
	dbOrg, err := c.OrgDB.GetOrg(id)
	if err != nil {
		return nil, err
	}
	return &Organisation{
		DBOrganisation: dbOrg,
		db:             c,
	}, nil
}

// GetAllOrganisations shadows OrgDB.GetAllOrgs.
func (c *CoreDB) GetAllOrganisations(limit, offset int) ([]*Organisation, error) {
	dbOrgs, err := c.OrgDB.GetAllOrgs(limit, offset)
	if err != nil {
		return nil, err
	}
	var orgs = make([]*Organisation, len(dbOrgs))
	for i := range dbOrgs {
		orgs[i] = &Organisation{
			DBOrganisation: dbOrgs[i],
			db:             c,
		}
	}
	return orgs, nil
}

// CreateOrganisation inserts an organisation. Name uniqueness is enforced by
// the database, a duplicate name surfaces as an error here.
func (c *CoreDB) CreateOrganisation(name, address, url string, orgTypeID int) (*Organisation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("organisation name can't be empty")
	}
	dbOrg, err := c.InsertOrg(name, address, url, orgTypeID)
	if err != nil {
		return nil, err
	}
	return &Organisation{
		DBOrganisation: dbOrg,
		db:             c,
	}, nil
}

// Managers shadows DBOrganisation.ManagerIDs and caches the loaded users.
func (o *Organisation) Managers() ([]auth.DBUser, error) {

	if !o.managersLoaded {

		ids, err := o.ManagerIDs()
		if err != nil {
			return nil, err
		}

		var managers = make([]auth.DBUser, 0, len(ids))
		for _, id := range ids {
			manager, err := o.db.Auth.GetUser(id)
			if err != nil {
				return nil, err
			}
			managers = append(managers, manager)
		}

		o.managers = managers
		o.managersLoaded = true
	}

	return o.managers, nil
}

// HasManager returns whether the user is in the current manager set.
func (o *Organisation) HasManager(u auth.DBUser) (bool, error) {
	if u == nil {
		return false, nil
	}
	ids, err := o.ManagerIDs()
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == u.ID() {
			return true, nil
		}
	}
	return false, nil
}

// Emails shadows OrgDB.GetEmails.
func (o *Organisation) Emails() ([]DBOrganisationEmail, error) {
	return o.db.GetEmails(o.ID())
}

// ConfirmedEmails returns the confirmed emails, which are the only valid
// attribution for a news article.
func (o *Organisation) ConfirmedEmails() ([]DBOrganisationEmail, error) {
	emails, err := o.Emails()
	if err != nil {
		return nil, err
	}
	var confirmed = []DBOrganisationEmail{}
	for _, email := range emails {
		if email.Confirmed() {
			confirmed = append(confirmed, email)
		}
	}
	return confirmed, nil
}

// AddManager shadows OrgDB.AddManager. The relation is mutated by explicit
// add/remove, never by full-set replacement.
func (c *CoreDB) AddManager(o *Organisation, u auth.DBUser) error {
	if u == nil || u.ID() == 0 {
		return errors.New("can't add all users")
	}
	if err := c.OrgDB.AddManager(o.DBOrganisation, u); err != nil {
		return err
	}
	o.managersLoaded = false
	return nil
}

// RemoveManager shadows OrgDB.RemoveManager.
func (c *CoreDB) RemoveManager(o *Organisation, u auth.DBUser) error {
	if err := c.OrgDB.RemoveManager(o.DBOrganisation, u); err != nil {
		return err
	}
	o.managersLoaded = false
	return nil
}

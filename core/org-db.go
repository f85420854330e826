package core

import (
	"github.com/pgcommunity/pgsite/auth"
)

type DBOrganisation interface {
	ID() int
	Name() string
	Address() string
	URL() string
	OrgTypeID() int
	FromNameOverride() string
	MailTemplate() string
	ManagerIDs() ([]int, error)
}

type DBOrganisationEmail interface {
	ID() int
	OrgID() int
	Address() string
	Confirmed() bool
}

// DBOrgType is pure reference data.
type DBOrgType interface {
	ID() int
	TypeName() string
}

type OrgDB interface {
	AddManager(o DBOrganisation, u auth.DBUser) error
	ConfirmEmail(token string) (DBOrganisationEmail, error) // single use, clears the token
	DeleteOrg(o DBOrganisation) error
	GetAllOrgs(limit, offset int) ([]DBOrganisation, error)
	GetEmail(id int) (DBOrganisationEmail, error)
	GetEmails(orgID int) ([]DBOrganisationEmail, error)
	GetOrg(id int) (DBOrganisation, error)
	GetOrgByName(name string) (DBOrganisation, error)
	GetOrgsManagedBy(u auth.DBUser) ([]DBOrganisation, error)
	GetOrgType(id int) (DBOrgType, error)
	GetOrgTypes() ([]DBOrgType, error)
	InsertEmail(o DBOrganisation, address, token string) error
	InsertOrg(name, address, url string, orgTypeID int) (DBOrganisation, error)
	InsertOrgType(typeName string) error
	IsNotFound(err error) bool
	MergeOrgs(from, to DBOrganisation) error
	RemoveManager(o DBOrganisation, u auth.DBUser) error
	UpdateOrg(o DBOrganisation, address, url string, orgTypeID int, fromNameOverride, mailTemplate string) error
}

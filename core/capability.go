package core

import (
	"errors"

	"github.com/pgcommunity/pgsite/auth"
)

var ErrUnauthorized = errors.New("unauthorized")

// Higher capabilities include lower capabilities.
type Capability int

const (
	Moderate Capability = 100 // work the pending queue, approve and archive articles
	Admin    Capability = 500 // everything, including user and organisation administration
)

func (c Capability) String() string {
	switch c {
	case Moderate:
		return "moderate"
	case Admin:
		return "admin"
	}
	return "unknown"
}

func (c Capability) Valid() bool {
	switch c {
	case Moderate, Admin:
		return true
	default:
		return false
	}
}

// CapabilityDB stores which group holds which capability.
type CapabilityDB interface {
	GetCapabilityRules() (map[int]int, error) // group id -> capability
	InsertCapabilityRule(groupID int, capability int) error
	RemoveCapabilityRule(groupID int) error
}

// RequireCapability checks if any group of the user has a rule which grants the
// required capability. Capabilities are never granted to the public.
func (c *CoreDB) RequireCapability(required Capability, u auth.DBUser) error {

	if u == nil {
		return ErrUnauthorized
	}

	groups, err := c.Auth.GetGroupsOf(u)
	if err != nil {
		return err
	}

	rules, err := c.GetCapabilityRules()
	if err != nil {
		return err
	}

	for _, group := range groups {
		if myCapability, ok := rules[group.ID()]; ok {
			var myCap = Capability(myCapability)
			if !myCap.Valid() {
				return errors.New("invalid capability")
			}
			if myCap >= required {
				return nil
			}
		}
	}

	return ErrUnauthorized
}

var ErrArticleLocked = errors.New("article is locked")

// RequireArticleEdit is the submission gate: the user must be a manager of the
// owning organisation and the article must still be pending. Elevated roles
// are authorized through RequireCapability at the routing layer, not here.
func (c *CoreDB) RequireArticleEdit(u auth.DBUser, a *Article) error {

	ok, err := a.VerifySubmitter(u)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}

	if a.BlockEdit() {
		return ErrArticleLocked
	}

	return nil
}

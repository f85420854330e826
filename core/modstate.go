package core

// ModState is the moderation state of a news article.
// The numeric values are stored in the database and are a stable contract:
// anything greater than pending is locked for non-moderators.
type ModState int

const (
	ModStatePending  ModState = 0 // submitted, still editable by the organisation's managers
	ModStateApproved ModState = 1 // published, locked
	ModStateArchived ModState = 2 // kept for the record, locked
)

func (m ModState) String() string {
	switch m {
	case ModStatePending:
		return "pending"
	case ModStateApproved:
		return "approved"
	case ModStateArchived:
		return "archived"
	}
	return "unknown"
}

func (m ModState) Valid() bool {
	switch m {
	case ModStatePending, ModStateApproved, ModStateArchived:
		return true
	default:
		return false
	}
}

// Locked returns whether articles in this state are immutable to non-moderators.
func (m ModState) Locked() bool {
	return m != ModStatePending
}

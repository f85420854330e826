package auth

type DBUser interface {
	ID() int
	Name() string // can be email address
}

// A Profile carries the non-credential attributes of a user account.
type Profile struct {
	SSHKey     string
	BlockOAuth bool
}

type UserDB interface {
	ChangePassword(u DBUser, old, new string) error
	Delete(u DBUser) error
	GetUser(id int) (DBUser, error)
	GetUserByName(name string) (DBUser, error)
	GetAllUsers(limit, offset int) ([]DBUser, error)
	GetProfile(u DBUser) (Profile, error)
	InsertUser(name string) (DBUser, error)
	LoginUser(name, password string) (DBUser, error)
	SetPassword(u DBUser, password string) error
	SetProfile(u DBUser, p Profile) error
	Writeable() bool
}

type User = DBUser

// GetAllUsers shadows AuthDB.UserDB.GetAllUsers.
func (a *AuthDB) GetAllUsers(limit, offset int) ([]User, error) {
	users, err := a.UserDB.GetAllUsers(limit, offset)
	result := make([]User, len(users))
	for i := range users {
		result[i] = users[i]
	}
	return result, err
}

package core

type DBArticle interface {
	ID() int
	OrgID() int
	OrgEmailID() int
	Title() string
	Content() string
	PostedAt() int64 // unix timestamp
	ModState() int
}

// DBTag is pure reference data: a unique url slug plus a display name.
type DBTag interface {
	ID() int
	URLName() string
	Name() string
}

// An ArchiveFilter restricts article listings. Zero values match everything.
type ArchiveFilter struct {
	Tag    string // tag urlname
	OrgID  int
	Year   int
	States []ModState
}

type NewsDB interface {
	AddTag(a DBArticle, t DBTag) error // appends to the article's tag list
	CountArticles(f ArchiveFilter) (int, error)
	DeleteArticle(a DBArticle) error
	GetArticle(id int) (DBArticle, error)
	GetArticles(f ArchiveFilter, limit, offset int) ([]DBArticle, error) // newest first
	GetArticlesByOrg(orgID int, limit, offset int) ([]DBArticle, error)
	GetTags(articleID int) ([]DBTag, error) // in insertion order
	InsertArticle(orgID, emailID int, title, content string, postedAt int64) (DBArticle, error)
	IsNotFound(err error) bool
	RemoveTag(a DBArticle, tagID int) error
	SetModState(a DBArticle, state int) error
	UpdateArticle(a DBArticle, title, content string, postedAt int64, emailID int) error
}

type TagDB interface {
	GetAllTags(limit, offset int) ([]DBTag, error)
	GetTag(id int) (DBTag, error)
	GetTagByURLName(urlname string) (DBTag, error)
	InsertTag(urlname, name string) (DBTag, error)
}

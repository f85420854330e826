package core

type DBFeed interface {
	ID() int
	InternalName() string
	URL() string
	PurgePattern() string // regexp matched against item urls, matches are excluded
}

type DBFeedItem interface {
	ID() int
	FeedID() int
	Title() string
	URL() string
	Teaser() string // plain text
	PostTime() int64
}

// FeedDB is an append-only ingestion log, deduplicated by url per feed.
type FeedDB interface {
	GetAllFeeds() ([]DBFeed, error)
	GetFeed(id int) (DBFeed, error)
	GetFeedByName(internalName string) (DBFeed, error)
	GetItems(feedID int, limit, offset int) ([]DBFeedItem, error) // newest first
	GetLatestItems(limit int) ([]DBFeedItem, error)
	InsertFeed(internalName, url, purgePattern string) error
	InsertItem(feedID int, title, url, teaser string, postTime int64) (bool, error) // false if the url was already imported
}

package rss

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pgcommunity/pgsite/core"
	"github.com/pgcommunity/pgsite/sqldb"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
	<channel>
		<title>Planet Example</title>
		<item>
			<title>Plain post</title>
			<link>https://blog.example.com/plain</link>
			<description>&lt;p&gt;We have &lt;em&gt;news&lt;/em&gt;.&lt;/p&gt;</description>
			<pubDate>Mon, 02 Jan 2006 15:04:05 +0000</pubDate>
		</item>
		<item>
			<title>&lt;b&gt;Bold&lt;/b&gt; post</title>
			<link>https://blog.example.com/bold</link>
			<pubDate>not a date</pubDate>
		</item>
		<item>
			<title>Job offer</title>
			<link>https://jobs.example.com/offer</link>
		</item>
		<item>
			<title>No link</title>
			<link></link>
		</item>
	</channel>
</rss>`

func newTestFeedDB(t *testing.T) core.FeedDB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1) // :memory: is per-connection
	t.Cleanup(func() { db.Close() })
	return sqldb.NewFeedDB(db)
}

func TestImporter(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	var feedDB = newTestFeedDB(t)
	require.NoError(t, feedDB.InsertFeed("planet", srv.URL, `^https://jobs\.`))

	feed, err := feedDB.GetFeedByName("planet")
	require.NoError(t, err)

	var importer = NewImporter(feedDB, zerolog.Nop())

	importer.Run(context.Background())

	items, err := feedDB.GetItems(feed.ID(), 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 2) // purged and linkless items are skipped

	var byURL = make(map[string]core.DBFeedItem)
	for _, item := range items {
		byURL[item.URL()] = item
	}

	plain, ok := byURL["https://blog.example.com/plain"]
	require.True(t, ok)
	assert.Equal(t, "Plain post", plain.Title())
	assert.Equal(t, "We have news.", plain.Teaser())
	assert.Equal(t, time.Date(2006, time.January, 2, 15, 4, 5, 0, time.UTC).Unix(), plain.PostTime())

	// markup in titles is reduced to text
	bold, ok := byURL["https://blog.example.com/bold"]
	require.True(t, ok)
	assert.Equal(t, "Bold post", bold.Title())

	// re-polling is idempotent
	importer.Run(context.Background())

	items, err = feedDB.GetItems(feed.ID(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestImporterBadFeed(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	var feedDB = newTestFeedDB(t)
	require.NoError(t, feedDB.InsertFeed("broken", srv.URL, ""))
	require.NoError(t, feedDB.InsertFeed("also-broken", "http://127.0.0.1:1/rss", ""))

	// failing feeds are logged and skipped, Run never panics
	NewImporter(feedDB, zerolog.Nop()).Run(context.Background())
}

func TestParsePubDate(t *testing.T) {

	for value, want := range map[string]time.Time{
		"Mon, 02 Jan 2006 15:04:05 +0000": time.Date(2006, time.January, 2, 15, 4, 5, 0, time.UTC),
		"Mon, 02 Jan 2006 15:04:05 UTC":   time.Date(2006, time.January, 2, 15, 4, 5, 0, time.UTC),
		"02 Jan 06 15:04 +0000":           time.Date(2006, time.January, 2, 15, 4, 0, 0, time.UTC),
		"02 Jan 06 15:04 UTC":             time.Date(2006, time.January, 2, 15, 4, 0, 0, time.UTC),
	} {
		parsed, err := parsePubDate(value)
		require.NoError(t, err, value)
		assert.Equal(t, want.Unix(), parsed.Unix(), value)
	}

	_, err := parsePubDate("not a date")
	assert.Error(t, err)
}

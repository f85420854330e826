package rss

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pgcommunity/pgsite/core"
	"github.com/pgcommunity/pgsite/util"
	"github.com/rs/zerolog"
)

// rss 2.0 envelope, only the fields we store
type rssDocument struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// An Importer polls the stored feeds and appends new items. Re-polling is
// idempotent, items are deduplicated per feed by url.
type Importer struct {
	db     core.FeedDB
	client *http.Client
	logger zerolog.Logger
}

func NewImporter(db core.FeedDB, logger zerolog.Logger) *Importer {
	return &Importer{
		db: db,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Run imports all stored feeds. A failing feed is logged and skipped, it
// never aborts the whole run.
func (imp *Importer) Run(ctx context.Context) {

	feeds, err := imp.db.GetAllFeeds()
	if err != nil {
		imp.logger.Error().Err(err).Msg("loading feeds")
		return
	}

	for _, feed := range feeds {
		inserted, err := imp.importFeed(ctx, feed)
		if err != nil {
			imp.logger.Error().Err(err).Str("feed", feed.InternalName()).Msg("importing feed")
			continue
		}
		imp.logger.Info().Str("feed", feed.InternalName()).Int("new", inserted).Msg("feed imported")
	}
}

func (imp *Importer) importFeed(ctx context.Context, feed core.DBFeed) (int, error) {

	var purge *regexp.Regexp
	if pattern := feed.PurgePattern(); pattern != "" {
		var err error
		purge, err = regexp.Compile(pattern)
		if err != nil {
			return 0, fmt.Errorf("purge pattern: %w", err)
		}
	}

	items, err := imp.fetch(ctx, feed.URL())
	if err != nil {
		return 0, err
	}

	var inserted int
	for _, item := range items {

		var url = strings.TrimSpace(item.Link)
		if url == "" {
			continue
		}
		if purge != nil && purge.MatchString(url) {
			continue
		}

		var postTime = time.Now().Unix()
		if t, err := parsePubDate(item.PubDate); err == nil {
			postTime = t.Unix()
		}

		isNew, err := imp.db.InsertItem(feed.ID(), stripHTML(item.Title), url, teaser(item.Description), postTime)
		if err != nil {
			return inserted, err
		}
		if isNew {
			inserted++
		}
	}

	return inserted, nil
}

func (imp *Importer) fetch(ctx context.Context, url string) ([]rssItem, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := imp.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("got status %s", resp.Status)
	}

	var doc rssDocument
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}

	return doc.Channel.Items, nil
}

// feeds in the wild use either RFC 1123 variant
var pubDateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

func parsePubDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, format := range pubDateFormats {
		t, err := time.Parse(format, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// stripHTML reduces an item title to its text content.
func stripHTML(input string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return strings.TrimSpace(input)
	}
	return strings.TrimSpace(doc.Text())
}

// teaser reduces an item description to a short plain-text preview.
func teaser(description string) string {
	return util.Trunc(util.TextContent(strings.NewReader(description)), 200)
}

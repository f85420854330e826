package site

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/core"
	"github.com/pgcommunity/pgsite/util"
)

const articlesPerPage = 20

var homeTmpl = tmpl(`<h1>{{ .SiteTitle }}</h1>

	{{ with .Quotes }}
		{{ range . }}
			<blockquote class="blockquote">
				<p>{{ .Quote }}</p>
				<footer class="blockquote-footer">{{ .Who }}{{ with .Org }}, {{ . }}{{ end }}</footer>
			</blockquote>
		{{ end }}
	{{ end }}

	<h2>Latest news</h2>

	<ul>
		{{ range .Articles }}
			<li>{{ .DisplayDate }} <a href="{{ .PermanentURL }}">{{ .Title }}</a></li>
		{{ end }}
	</ul>

	<p><a href="/about/news/">News archive</a></p>

	<h2>From the blogosphere</h2>

	<ul>
		{{ range .FeedItems }}
			<li>
				<a href="{{ .URL }}">{{ .Title }}</a>
				{{ with .Teaser }}<br><small class="text-muted">{{ . }}</small>{{ end }}
			</li>
		{{ end }}
	</ul>`)

type homeData struct {
	*context
	Articles  []*core.Article
	Quotes    []core.DBQuote
	FeedItems []core.DBFeedItem
}

func home(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	articles, err := loadArticles(ctx, core.ArchiveFilter{States: []core.ModState{core.ModStateApproved}}, 5, 0)
	if err != nil {
		return err
	}

	quotes, err := ctx.db.GetApprovedQuotes(1)
	if err != nil {
		return err
	}

	feedItems, err := ctx.db.GetLatestItems(10)
	if err != nil {
		return err
	}

	return homeTmpl.Execute(w, &homeData{
		context:   ctx,
		Articles:  articles,
		Quotes:    quotes,
		FeedItems: feedItems,
	})
}

var archiveTmpl = tmpl(`<h1>News archive</h1>

	{{ with .Tag }}
		<p>Filtered by tag &raquo;{{ . }}&laquo;. <a href="/about/news/">Show all</a></p>
	{{ end }}

	<ul>
		{{ range .Articles }}
			<li>{{ .DisplayDate }} <a href="{{ .PermanentURL }}">{{ .Title }}</a>{{ with .TagList }} ({{ . }}){{ end }}</li>
		{{ end }}
	</ul>

	<nav>
		{{ range .PageLinks }}
			{{ . }}
		{{ end }}
	</nav>`)

type archiveData struct {
	*context
	Articles  []*core.Article
	Tag       string
	PageLinks []template.HTML
}

func archive(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var query = req.URL.Query()
	var filter = core.ArchiveFilter{
		Tag:    query.Get("tag"),
		States: []core.ModState{core.ModStateApproved},
	}
	if year, err := strconv.Atoi(query.Get("year")); err == nil {
		filter.Year = year
	}

	var page, _ = strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}

	count, err := ctx.db.CountArticles(filter)
	if err != nil {
		return err
	}
	var numPages = (count + articlesPerPage - 1) / articlesPerPage

	articles, err := loadArticles(ctx, filter, articlesPerPage, (page-1)*articlesPerPage)
	if err != nil {
		return err
	}

	var pageLink = func(page int, name string) string {
		var href = fmt.Sprintf("/about/news/?page=%d", page)
		if filter.Tag != "" {
			href += "&tag=" + template.URLQueryEscaper(filter.Tag)
		}
		return fmt.Sprintf(`<a href="%s">%s</a>`, href, name)
	}

	return archiveTmpl.Execute(w, &archiveData{
		context:  ctx,
		Articles: articles,
		Tag:      filter.Tag,
		PageLinks: util.PageLinks(page, numPages, pageLink, func(page int, name string) string {
			return fmt.Sprintf(`<strong>%s</strong>`, name)
		}),
	})
}

var articleTmpl = tmpl(`<h1>{{ .Article.Title }}</h1>

	<p>
		{{ .FormatDateTime .Article.PostedAt }}
		&mdash; {{ .Article.SentFrom }}
		{{ with .Article.TagList }}&mdash; {{ . }}{{ end }}
	</p>

	{{ .Body }}`)

type articleData struct {
	*context
	Article *core.Article
	Body    template.HTML
}

func article(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	id, err := core.ParseArticleSlug(params.ByName("slugid"))
	if err != nil {
		return core.ErrMalformedPath
	}

	article, err := ctx.db.GetArticle(id)
	if err != nil {
		return err
	}

	// unapproved articles are public 404, only submitters and moderators see them
	if article.ModState() != core.ModStateApproved {
		isSubmitter, _ := article.VerifySubmitter(ctx.User)
		if !isSubmitter && !ctx.IsModerator() {
			http.NotFound(w, req)
			return nil
		}
	}

	return articleTmpl.Execute(w, &articleData{
		context: ctx,
		Article: article,
		Body:    RenderMarkdown(article.Content()),
	})
}

func loadArticles(ctx *context, filter core.ArchiveFilter, limit, offset int) ([]*core.Article, error) {

	dbArticles, err := ctx.db.GetArticles(filter, limit, offset)
	if err != nil {
		return nil, err
	}

	var articles = make([]*core.Article, 0, len(dbArticles))
	for _, dbArticle := range dbArticles {
		article, err := ctx.db.GetArticle(dbArticle.ID())
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, nil
}

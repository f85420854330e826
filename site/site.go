package site

import (
	"html/template"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/core"
)

type context struct {
	*core.Request
	db *core.CoreDB
}

func (ctx *context) Brand() string {
	return ctx.db.Config.Brand
}

func (ctx *context) SiteTitle() string {
	return ctx.db.Config.Title
}

func middleware(db *core.CoreDB, f func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error) func(http.ResponseWriter, *http.Request, httprouter.Params) {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var ctx = &context{
			Request: db.NewRequest(w, req),
			db:      db,
		}
		defer ctx.Cleanup()

		if err := f(w, req, ctx, params); err != nil {
			if db.IsNotFound(err) || err == core.ErrMalformedPath {
				http.NotFound(w, req)
				return
			}
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

func NewSiteRouter(db *core.CoreDB) http.Handler {

	var router = httprouter.New()

	router.GET("/", middleware(db, home))
	router.GET("/about/news/", middleware(db, archive))
	router.GET("/about/news/:slugid/", middleware(db, article))
	router.GET("/org/mail/confirm/:token/", middleware(db, confirmEmail))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.NotFound(w, req)
	})

	return router
}

func tmpl(text string) *template.Template {
	t := template.Must(siteTmpl.Clone())
	t = template.Must(t.Parse(`{{ define "content" }}` + text + `{{ end }}`))
	return t
}

var siteTmpl = template.Must(template.New("site").Parse(`
<!DOCTYPE html>
<html>
	<head>
		<link rel="stylesheet" type="text/css" href="/assets/bootstrap-4.4.1.min.css">
		<meta charset="utf-8">
		<title>{{ .SiteTitle }}</title>
	</head>
	<body>

		<nav class="navbar navbar-expand-md bg-light">
			<a class="navbar-brand" href="/">{{ .SiteTitle }}</a>
			<ul class="navbar-nav">
				<li class="nav-item">
					<a class="nav-link" href="/about/news/">News</a>
				</li>
				{{ if .LoggedIn }}
					<li class="nav-item">
						<a class="nav-link" href="/admin/">Administration</a>
					</li>
				{{ else }}
					<li class="nav-item">
						<a class="nav-link" href="/account/login/">Login</a>
					</li>
				{{ end }}
			</ul>
		</nav>

		<div class="container pt-3">
			{{ .RenderNotifications }}
			{{ template "content" . }}
		</div>
	</body>
</html>`))

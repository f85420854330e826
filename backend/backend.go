package backend

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/auth"
	"github.com/pgcommunity/pgsite/core"
)

// we need the CoreDB in the backend
type context struct {
	*core.Request
	db *core.CoreDB
}

func (ctx *context) UsersWriteable() bool {
	return ctx.db.Auth.UserDB.Writeable()
}

func (ctx *context) GroupsWriteable() bool {
	return ctx.db.Auth.GroupDB.Writeable()
}

// middleware wraps a handler into session and authorization plumbing.
// Unauthenticated or unauthorized access is redirected to the login form with
// the original url in the next parameter. requireCap == 0 means any logged-in
// user may pass.
func middleware(db *core.CoreDB, requireLoggedIn bool, requireCap core.Capability, f func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error) func(http.ResponseWriter, *http.Request, httprouter.Params) {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var request = db.NewRequest(w, req)

		var ctx = &context{
			Request: request,
			db:      db,
		}
		defer ctx.Cleanup()

		if requireLoggedIn && !ctx.LoggedIn() {
			ctx.RedirectToLogin(req.URL.RequestURI())
			return
		}

		if requireCap != 0 {
			if err := db.RequireCapability(requireCap, ctx.User); err != nil {
				ctx.RedirectToLogin(req.URL.RequestURI())
				return
			}
		}

		if err := f(w, req, ctx, params); err != nil {
			if db.IsNotFound(err) {
				http.NotFound(w, req)
				return
			}
			// probably no template has been executed, so execute error template
			errorTmpl.Execute(w, struct {
				*context
				Err error
			}{
				context: ctx,
				Err:     err,
			})
		}
	}
}

var errorTmpl = tmpl(`
	<div class="alert alert-danger" role="alert">
		{{ .Err }}
	</div>`)

// NewBackendRouter serves /account/ and /admin/. Paths are absolute, the
// router is mounted without prefix stripping so login redirects stay intact.
func NewBackendRouter(db *core.CoreDB) http.Handler {

	var router = httprouter.New()

	var GETAndPOST = func(path string, handle httprouter.Handle) {
		router.GET(path, handle)
		router.POST(path, handle)
	}

	// public
	GETAndPOST("/account/login/", middleware(db, false, 0, login))
	router.GET("/account/logout/", middleware(db, false, 0, logout))

	// any logged-in user
	router.GET("/admin/", middleware(db, true, 0, root))
	GETAndPOST("/admin/user/:id/", middleware(db, true, 0, user))
	router.GET("/admin/news/", middleware(db, true, 0, articles))
	GETAndPOST("/admin/news/submit/", middleware(db, true, 0, articleSubmit))
	GETAndPOST("/admin/news/edit/:id/", middleware(db, true, 0, articleEdit))
	GETAndPOST("/admin/org/:id/", middleware(db, true, 0, org))

	// moderators
	GETAndPOST("/admin/pending/", middleware(db, true, core.Moderate, pending))
	GETAndPOST("/admin/tags/", middleware(db, true, core.Moderate, tags))
	GETAndPOST("/admin/quotes/", middleware(db, true, core.Moderate, quotes))
	router.GET("/admin/feeds/", middleware(db, true, core.Moderate, feeds))

	// admins
	GETAndPOST("/admin/orgs/", middleware(db, true, core.Admin, orgs))
	GETAndPOST("/admin/mergeorg/", middleware(db, true, core.Admin, mergeOrg))
	GETAndPOST("/admin/users/", middleware(db, true, core.Admin, users))
	GETAndPOST("/admin/groups/", middleware(db, true, core.Admin, groups))
	GETAndPOST("/admin/group/:id/", middleware(db, true, core.Admin, group))
	GETAndPOST("/admin/auth/user/:id/change/resetpassword/", middleware(db, true, core.Admin, resetPassword))

	return router
}

func tmpl(text string) *template.Template {
	t := template.Must(backendTmpl.Clone())
	t = template.Must(t.Parse(`{{ define "content" }}` + text + `{{ end }}`))
	return t
}

var backendTmpl = template.Must(template.New("backend").Funcs(
	template.FuncMap{
		"GroupLink": func(group auth.DBGroup) template.HTML {
			if group.ID() == 0 { // all users
				return template.HTML(group.Name())
			}
			return template.HTML(fmt.Sprintf(`<a href="/admin/group/%d/">%s</a>`, group.ID(), template.HTMLEscapeString(group.Name())))
		},
		"OrgLink": func(org core.DBOrganisation) template.HTML {
			return template.HTML(fmt.Sprintf(`<a href="/admin/org/%d/">%s</a>`, org.ID(), template.HTMLEscapeString(org.Name())))
		},
		"UserLink": func(user auth.DBUser) template.HTML {
			return template.HTML(fmt.Sprintf(`<a href="/admin/user/%d/">%s</a>`, user.ID(), template.HTMLEscapeString(user.Name())))
		},
	},
).Parse(`
<!DOCTYPE html>
<html>
	<head>
		<link rel="stylesheet" type="text/css" href="/assets/bootstrap-4.4.1.min.css">
		<meta charset="utf-8">
		<title>Administration</title>

		<style>

			body {
				padding-bottom: 1rem;
			}

			h1 {
				font-size: 1.5rem !important;
				margin: 1rem 0 0.7rem !important;
			}

			h2 {
				font-size: 1.3rem !important;
				margin: 0.2rem 0 0.5rem !important;
			}

			table {
				margin-top: 0.5rem;
				border-bottom: 1px solid #dee2e6;
			}

			.col-form-label {
				text-align: right;
			}

		</style>
	</head>
	<body>

		{{ if .LoggedIn }}

			<nav class="navbar navbar-expand-md bg-light">
				<ul class="navbar-nav">
					<li class="nav-item">
						<a class="nav-link" href="/" target="_blank">View site</a>
					</li>
					<li class="nav-item">
						<a class="nav-link" href="/admin/news/">News</a>
					</li>
					<li class="nav-item">
						<a class="nav-link" href="/admin/user/{{ .User.ID }}/">{{ .User.Name }}</a>
					</li>

					{{ if .IsModerator }}
						<li class="nav-item">
							<a class="nav-link" href="/admin/pending/">Pending</a>
						</li>
						<li class="nav-item">
							<a class="nav-link" href="/admin/tags/">Tags</a>
						</li>
						<li class="nav-item">
							<a class="nav-link" href="/admin/quotes/">Quotes</a>
						</li>
						<li class="nav-item">
							<a class="nav-link" href="/admin/feeds/">Feeds</a>
						</li>
					{{ end }}

					{{ if .IsAdmin }}
						<li class="nav-item">
							<a class="nav-link" href="/admin/orgs/">Organisations</a>
						</li>
						<li class="nav-item">
							<a class="nav-link" href="/admin/users/">Users</a>
						</li>
						<li class="nav-item">
							<a class="nav-link" href="/admin/groups/">Groups</a>
						</li>
					{{ end }}

					<li class="nav-item">
						<a class="nav-link" href="/account/logout/">Logout</a>
					</li>
				</ul>
			</nav>

		{{ end }}

		<div class="container pt-3">
			{{ .RenderNotifications }}
			{{ template "content" . }}
		</div>
	</body>
</html>`))

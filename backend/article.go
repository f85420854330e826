package backend

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/core"
)

var articlesTmpl = tmpl(`<h1>Your news</h1>

	{{ with .Articles }}
		<table class="table">
			<tr>
				<th>Date</th>
				<th>Title</th>
				<th>Tags</th>
				<th>State</th>
				<th></th>
			</tr>
			{{ range . }}
				<tr>
					<td>{{ .DisplayDate }}</td>
					<td><a href="{{ .PermanentURL }}">{{ .Title }}</a></td>
					<td>{{ .TagList }}</td>
					<td>{{ .ModState }}</td>
					<td>
						{{ if not .BlockEdit }}
							<a class="btn btn-sm btn-primary" href="/admin/news/edit/{{ .ID }}/">Edit</a>
						{{ end }}
					</td>
				</tr>
			{{ end }}
		</table>
	{{ else }}
		<p>No news yet.</p>
	{{ end }}

	<p><a class="btn btn-primary" href="/admin/news/submit/">Submit news</a></p>`)

type articlesData struct {
	*context
	Articles []*core.Article
}

func articles(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	orgs, err := ctx.ManagedOrganisations()
	if err != nil {
		return err
	}

	var all = []*core.Article{}
	for _, org := range orgs {
		dbArticles, err := ctx.db.GetArticlesByOrg(org.ID(), 100, 0)
		if err != nil {
			return err
		}
		for _, dbArticle := range dbArticles {
			article, err := ctx.db.GetArticle(dbArticle.ID())
			if err != nil {
				return err
			}
			all = append(all, article)
		}
	}

	return articlesTmpl.Execute(w, &articlesData{
		context:  ctx,
		Articles: all,
	})
}

var articleFormTmpl = tmpl(`<h1>{{ if .Selected }}Edit news{{ else }}Submit news{{ end }}</h1>

	<form method="post">

		{{ if not .Selected }}
			<div class="form-group row">
				<label class="col-sm-3 col-form-label">Organisation</label>
				<div class="col-sm-9">
					<select class="form-control" name="org" required>
						{{ range .Orgs }}
							<option value="{{ .ID }}">{{ .Name }}</option>
						{{ end }}
					</select>
				</div>
			</div>
		{{ end }}

		<div class="form-group row">
			<label class="col-sm-3 col-form-label">From address</label>
			<div class="col-sm-9">
				<select class="form-control" name="email" required>
					{{ $selectedEmail := .SelectedEmailID }}
					{{ range .Emails }}
						<option value="{{ .ID }}" {{ if eq .ID $selectedEmail }}selected{{ end }}>{{ .Address }}</option>
					{{ end }}
				</select>
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-3 col-form-label">Title</label>
			<div class="col-sm-9">
				<input type="text" class="form-control" name="title" value="{{ .Title }}" required>
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-3 col-form-label">Content (CommonMark)</label>
			<div class="col-sm-9">
				<textarea class="form-control" name="content" rows="12">{{ .Content }}</textarea>
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-3 col-form-label">Tags</label>
			<div class="col-sm-9">
				{{ $checked := .CheckedTags }}
				{{ range .AllTags }}
					<label class="mr-3">
						<input type="checkbox" name="tag" value="{{ .ID }}" {{ if index $checked .ID }}checked{{ end }}>
						{{ .Name }}
					</label>
				{{ end }}
			</div>
		</div>

		<button type="submit" class="btn btn-primary" name="submit_save">Save</button>

	</form>`)

type articleFormData struct {
	*context
	Selected        *core.Article
	Orgs            []*core.Organisation
	Emails          []core.DBOrganisationEmail
	Title           string
	Content         string
	SelectedEmailID int
}

func (data *articleFormData) AllTags() ([]core.DBTag, error) {
	return data.db.GetAllTags(100000, 0)
}

func (data *articleFormData) CheckedTags() (map[int]bool, error) {
	var checked = map[int]bool{}
	if data.Selected != nil {
		tags, err := data.Selected.Tags()
		if err != nil {
			return nil, err
		}
		for _, tag := range tags {
			checked[tag.ID()] = true
		}
	}
	return checked, nil
}

func formTagIDs(req *http.Request) []int {
	var ids = []int{}
	for _, value := range req.PostForm["tag"] {
		if id, err := strconv.Atoi(value); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func articleSubmit(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	orgs, err := ctx.ManagedOrganisations()
	if err != nil {
		return err
	}
	if len(orgs) == 0 {
		return errors.New("you don't manage any organisations")
	}

	if req.Method == http.MethodPost {

		req.ParseForm()

		orgID, err := strconv.Atoi(req.PostFormValue("org"))
		if err != nil {
			return err
		}

		var selectedOrg *core.Organisation
		for _, org := range orgs {
			if org.ID() == orgID {
				selectedOrg = org
				break
			}
		}
		if selectedOrg == nil {
			return core.ErrUnauthorized
		}

		emailID, err := strconv.Atoi(req.PostFormValue("email"))
		if err != nil {
			return err
		}

		article, err := ctx.db.CreateArticle(selectedOrg, emailID, req.PostFormValue("title"), req.PostFormValue("content"), formTagIDs(req))
		if err != nil {
			return err
		}

		ctx.Success("%s has been submitted for moderation", article.Title())
		ctx.Redirect("/admin/news/")
		return nil
	}

	// emails of the first organisation, the form is re-rendered after a change
	emails, err := orgs[0].ConfirmedEmails()
	if err != nil {
		return err
	}

	return articleFormTmpl.Execute(w, &articleFormData{
		context: ctx,
		Orgs:    orgs,
		Emails:  emails,
	})
}

func articleEdit(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	id, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return err
	}

	article, err := ctx.db.GetArticle(id)
	if err != nil {
		return err
	}

	// admins may edit any article, others pass the submission gate
	if err := ctx.db.RequireArticleEdit(ctx.User, article); err != nil {
		if !ctx.IsAdmin() {
			if errors.Is(err, core.ErrArticleLocked) {
				return err
			}
			ctx.RedirectToLogin(req.URL.RequestURI())
			return nil
		}
	}

	if req.Method == http.MethodPost {

		req.ParseForm()

		emailID, err := strconv.Atoi(req.PostFormValue("email"))
		if err != nil {
			return err
		}

		if err := ctx.db.EditArticle(article, req.PostFormValue("title"), req.PostFormValue("content"), emailID, formTagIDs(req)); err != nil {
			return err
		}

		ctx.Success("%s has been saved", article.Title())
		ctx.Redirect("/admin/news/")
		return nil
	}

	emails, err := article.Org.ConfirmedEmails()
	if err != nil {
		return err
	}

	return articleFormTmpl.Execute(w, &articleFormData{
		context:         ctx,
		Selected:        article,
		Emails:          emails,
		Title:           article.Title(),
		Content:         article.Content(),
		SelectedEmailID: article.OrgEmailID(),
	})
}

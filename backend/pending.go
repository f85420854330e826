package backend

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/core"
)

var pendingTmpl = tmpl(`<h1>Pending news</h1>

	{{ with .Articles }}
		<table class="table">
			<tr>
				<th>Date</th>
				<th>Organisation</th>
				<th>Title</th>
				<th>Tags</th>
				<th>Sender</th>
				<th></th>
			</tr>
			{{ range . }}
				<tr>
					<td>{{ .DisplayDate }}</td>
					<td>{{ OrgLink .Org }}</td>
					<td><a href="{{ .PermanentURL }}">{{ .Title }}</a></td>
					<td>{{ .TagList }}</td>
					<td>{{ .SentFrom }}</td>
					<td>
						<form method="post" class="form-inline">
							<input type="hidden" name="id" value="{{ .ID }}">
							<button type="submit" class="btn btn-sm btn-success" name="action" value="approve">Approve</button>
							<button type="submit" class="btn btn-sm btn-secondary mx-1" name="action" value="return">Return</button>
							<button type="submit" class="btn btn-sm btn-danger" name="action" value="archive">Archive</button>
						</form>
					</td>
				</tr>
			{{ end }}
		</table>
	{{ else }}
		<p>The moderation queue is empty.</p>
	{{ end }}`)

type pendingData struct {
	*context
	Articles []*core.Article
}

func pending(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if req.Method == http.MethodPost {

		id, err := strconv.Atoi(req.PostFormValue("id"))
		if err != nil {
			return err
		}

		article, err := ctx.db.GetArticle(id)
		if err != nil {
			return err
		}

		switch action := req.PostFormValue("action"); action {
		case "approve":
			err = ctx.db.ApproveArticle(article)
		case "return":
			err = ctx.db.ReturnArticle(article)
		case "archive":
			err = ctx.db.ArchiveArticle(article)
		default:
			err = fmt.Errorf("unknown action %s", action)
		}
		if err != nil {
			return err
		}

		ctx.Success("%s is now %s", article.Title(), article.ModState())
		ctx.Redirect("/admin/pending/")
		return nil
	}

	dbArticles, err := ctx.db.GetArticles(core.ArchiveFilter{States: []core.ModState{core.ModStatePending}}, 100, 0)
	if err != nil {
		return err
	}

	var articles = make([]*core.Article, 0, len(dbArticles))
	for _, dbArticle := range dbArticles {
		article, err := ctx.db.GetArticle(dbArticle.ID())
		if err != nil {
			return err
		}
		articles = append(articles, article)
	}

	return pendingTmpl.Execute(w, &pendingData{
		context:  ctx,
		Articles: articles,
	})
}

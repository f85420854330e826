package backend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/core"
)

var tagsTmpl = tmpl(`<h1>Tags</h1>

	<table class="table">
		<tr>
			<th>Slug</th>
			<th>Name</th>
		</tr>
		{{ range .Tags }}
			<tr>
				<td>{{ .URLName }}</td>
				<td>{{ .Name }}</td>
			</tr>
		{{ end }}
	</table>

	<h2>Create tag</h2>

	<form method="post" class="form-inline">
		<div class="form-group">
			<input type="text" class="form-control" name="name" placeholder="Display name" required>
			<button type="submit" class="btn btn-primary mx-sm-3" name="submit_add">Create tag</button>
		</div>
	</form>`)

type tagsData struct {
	*context
}

func (data *tagsData) Tags() ([]core.DBTag, error) {
	return data.db.GetAllTags(100000, 0)
}

func tags(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if req.Method == http.MethodPost {

		var name = strings.TrimSpace(req.PostFormValue("name"))
		var urlName = core.NormalizeSlug(name)

		if urlName == "" {
			return errors.New("missing tag name")
		}

		tag, err := ctx.db.InsertTag(urlName, name)
		if err != nil {
			return err
		}

		ctx.Success("tag %s has been created", tag.Name())
		ctx.Redirect("/admin/tags/")
		return nil
	}

	return tagsTmpl.Execute(w, &tagsData{
		context: ctx,
	})
}

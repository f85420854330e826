package backend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/auth"
)

var groupsTmpl = tmpl(`<h1>Groups</h1>

	<ul>
		{{ range .Groups }}
			<li>{{ GroupLink . }}</li>
		{{ end }}
	</ul>

	<h2>Create group</h2>

	<form method="post" class="form-inline">
		<div class="form-group">
			<input type="text" class="form-control" name="name" placeholder="Name">
			<button type="submit" class="btn btn-primary mx-sm-3" name="submit_add">Create group</button>
		</div>
	</form>`)

type groupsData struct {
	*context
}

func (data *groupsData) Groups() ([]auth.Group, error) {
	return data.db.Auth.GetAllGroups(100000, 0)
}

func groups(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if req.Method == http.MethodPost {

		newGroupName := strings.TrimSpace(req.PostFormValue("name"))

		if newGroupName == "" {
			return errors.New("missing group name")
		}

		newGroup, err := ctx.db.Auth.InsertGroup(newGroupName)
		if err != nil {
			return err
		}

		ctx.Success("group %s has been created", newGroup.Name())
		ctx.Redirect("/admin/group/%d/", newGroup.ID())
		return nil
	}

	return groupsTmpl.Execute(w, &groupsData{
		context: ctx,
	})
}

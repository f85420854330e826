package backend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/auth"
)

var usersTmpl = tmpl(`<h1>Users</h1>

	<ul>
		{{ range .Users }}
			<li>{{ UserLink . }}</li>
		{{ end }}
	</ul>

	<h2>Create user</h2>

	<form method="post" class="form-inline">
		<div class="form-group">
			<input type="text" class="form-control" name="name" placeholder="Username">
			<button type="submit" class="btn btn-primary mx-sm-3" name="submit_add">Create user</button>
		</div>
	</form>`)

type usersData struct {
	*context
}

func (data *usersData) Users() ([]auth.User, error) {
	return data.db.Auth.GetAllUsers(100000, 0) // assuming there are not more than 100k users
}

func users(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if req.Method == http.MethodPost {

		newUserName := strings.TrimSpace(req.PostFormValue("name"))

		if newUserName == "" {
			return errors.New("missing username")
		}

		newUser, err := ctx.db.Auth.InsertUser(newUserName)
		if err != nil {
			return err
		}

		ctx.Success("user %s has been created", newUser.Name())
		ctx.Redirect("/admin/user/%d/", newUser.ID())
		return nil
	}

	return usersTmpl.Execute(w, &usersData{
		context: ctx,
	})
}

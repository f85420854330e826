package backend

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/util"
)

var resetPasswordTmpl = tmpl(`<h1>Reset password of &raquo;{{ .Selected.Name }}&laquo;</h1>

	<form method="post">
		<p>A random password is generated and shown once.</p>
		<button type="submit" class="btn btn-danger" name="submit_reset">Reset password</button>
	</form>`)

type resetPasswordData struct {
	*context
	Selected interface{ Name() string }
}

func resetPassword(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	selectedID, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return err
	}

	selected, err := ctx.db.Auth.GetUser(selectedID)
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost {

		password, err := util.RandomString32()
		if err != nil {
			return err
		}

		if err := ctx.db.Auth.SetPassword(selected, password); err != nil {
			return err
		}

		ctx.Success("new password of %s: %s", selected.Name(), password)
		ctx.Redirect("/admin/user/%d/", selected.ID())
		return nil
	}

	return resetPasswordTmpl.Execute(w, &resetPasswordData{
		context:  ctx,
		Selected: selected,
	})
}

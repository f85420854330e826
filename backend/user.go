package backend

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/auth"
)

var userTmpl = tmpl(`<h1>User &raquo;{{ .Selected.Name }}&laquo;</h1>

	<h2>Groups</h2>

	<ul>
		{{ range .Groups }}
			<li>{{ GroupLink . }}</li>
		{{ end }}
	</ul>

	<h2>Profile</h2>

	<form method="post">

		<div class="form-group row">
			<label class="col-sm-3 col-form-label">SSH public key</label>
			<div class="col-sm-9">
				<textarea class="form-control" name="sshkey" rows="3">{{ .Profile.SSHKey }}</textarea>
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-3 col-form-label">Block OAuth login</label>
			<div class="col-sm-9">
				<input type="checkbox" name="blockoauth" {{ if .Profile.BlockOAuth }}checked{{ end }}>
			</div>
		</div>

		<button type="submit" class="btn btn-primary" name="action" value="profile">Save profile</button>

	</form>

	<h2>Change password</h2>

	<form method="post">

		{{ if not .IsAdmin }}
			<div class="form-group row">
				<label class="col-sm-6 col-form-label">Current password</label>
				<div class="col-sm-6">
					<input type="password" class="form-control" name="old">
				</div>
			</div>
		{{ end }}

		<div class="form-group row">
			<label class="col-sm-6 col-form-label">New password</label>
			<div class="col-sm-6">
				<input type="password" class="form-control" name="new1">
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-6 col-form-label">Repeat new password</label>
			<div class="col-sm-6">
				<input type="password" class="form-control" name="new2">
			</div>
		</div>

		<button type="submit" class="btn btn-primary" name="action" value="password">Change password</button>

	</form>`)

type userData struct {
	*context
	Selected auth.DBUser
	Profile  auth.Profile
}

func (data *userData) Groups() ([]auth.Group, error) {
	return data.db.Auth.GetGroupsOf(data.Selected)
}

func user(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	selectedID, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return err
	}

	selected, err := ctx.db.Auth.GetUser(selectedID)
	if err != nil {
		return err
	}

	if !(ctx.IsAdmin() || selected.ID() == ctx.User.ID()) {
		ctx.RedirectToLogin(req.URL.RequestURI())
		return nil
	}

	if req.Method == http.MethodPost {

		switch req.PostFormValue("action") {

		case "profile":
			if err := ctx.db.Auth.SetProfile(selected, auth.Profile{
				SSHKey:     strings.TrimSpace(req.PostFormValue("sshkey")),
				BlockOAuth: req.PostFormValue("blockoauth") != "",
			}); err != nil {
				return err
			}
			ctx.Success("profile of %s has been saved", selected.Name())

		case "password":
			var new1 = req.PostFormValue("new1")
			var new2 = req.PostFormValue("new2")

			if new1 != new2 {
				return errors.New("new passwords don't match")
			}

			if strings.TrimSpace(new1) == "" {
				return errors.New("new password is empty")
			}

			if ctx.IsAdmin() && selected.ID() != ctx.User.ID() {
				err = ctx.db.Auth.SetPassword(selected, new1)
			} else {
				err = ctx.db.Auth.ChangePassword(selected, req.PostFormValue("old"), new1)
			}
			if err != nil {
				return err
			}

			ctx.Success("password of %s has been changed", selected.Name())
		}

		ctx.Redirect("/admin/user/%d/", selected.ID())
		return nil
	}

	profile, err := ctx.db.Auth.GetProfile(selected)
	if err != nil {
		return err
	}

	return userTmpl.Execute(w, &userData{
		context:  ctx,
		Selected: selected,
		Profile:  profile,
	})
}

package backend

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/auth"
	"github.com/pgcommunity/pgsite/core"
	"github.com/pgcommunity/pgsite/util"
)

var orgTmpl = tmpl(`<h1>Organisation &raquo;{{ .Selected.Name }}&laquo;</h1>

	<form method="post">

		<div class="form-group row">
			<label class="col-sm-3 col-form-label">Address</label>
			<div class="col-sm-9">
				<textarea class="form-control" name="address" rows="3">{{ .Selected.Address }}</textarea>
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-3 col-form-label">URL</label>
			<div class="col-sm-9">
				<input type="text" class="form-control" name="url" value="{{ .Selected.URL }}">
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-3 col-form-label">Type</label>
			<div class="col-sm-9">
				<select class="form-control" name="orgtype">
					<option value="0">No type</option>
					{{ $current := .Selected.OrgTypeID }}
					{{ range .OrgTypes }}
						<option value="{{ .ID }}" {{ if eq .ID $current }}selected{{ end }}>{{ .TypeName }}</option>
					{{ end }}
				</select>
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-3 col-form-label">From-name override</label>
			<div class="col-sm-9">
				<input type="text" class="form-control" name="fromnameoverride" value="{{ .Selected.FromNameOverride }}">
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-3 col-form-label">Mail template</label>
			<div class="col-sm-9">
				<textarea class="form-control" name="mailtemplate" rows="4">{{ .Selected.MailTemplate }}</textarea>
			</div>
		</div>

		<button type="submit" class="btn btn-primary" name="action" value="update">Save</button>

	</form>

	<h2>Email addresses</h2>

	<table class="table">
		<tr>
			<th>Address</th>
			<th>Confirmed</th>
		</tr>
		{{ range .Emails }}
			<tr>
				<td>{{ .Address }}</td>
				<td>{{ if .Confirmed }}yes{{ else }}pending{{ end }}</td>
			</tr>
		{{ end }}
	</table>

	<form method="post" class="form-inline">
		<div class="form-group">
			<input type="email" class="form-control" name="address" placeholder="Email address" required>
			<button type="submit" class="btn btn-primary mx-sm-3" name="action" value="addemail">Add address</button>
		</div>
	</form>

	<h2>Managers</h2>

	<ul>
		{{ range .Managers }}
			<li>
				{{ UserLink . }}
				{{ if $.IsAdmin }}
					<form method="post" style="display: inline;">
						<input type="hidden" name="manager" value="{{ .ID }}">
						<button type="submit" class="btn btn-sm btn-danger" name="action" value="removemanager">Remove</button>
					</form>
				{{ end }}
			</li>
		{{ end }}
	</ul>

	{{ if .IsAdmin }}
		<form method="post" class="form-inline">
			<div class="form-group">
				<input type="text" class="form-control" name="manager" placeholder="Username" required>
				<button type="submit" class="btn btn-primary mx-sm-3" name="action" value="addmanager">Add manager</button>
			</div>
		</form>
	{{ end }}`)

type orgData struct {
	*context
	Selected *core.Organisation
}

func (data *orgData) Emails() ([]core.DBOrganisationEmail, error) {
	return data.Selected.Emails()
}

func (data *orgData) Managers() ([]auth.DBUser, error) {
	return data.Selected.Managers()
}

func (data *orgData) OrgTypes() ([]core.DBOrgType, error) {
	return data.db.GetOrgTypes()
}

func org(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	selectedID, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return err
	}

	selected, err := ctx.db.GetOrganisation(selectedID)
	if err != nil {
		return err
	}

	isManager, err := selected.HasManager(ctx.User)
	if err != nil {
		return err
	}
	if !isManager && !ctx.IsAdmin() {
		ctx.RedirectToLogin(req.URL.RequestURI())
		return nil
	}

	if req.Method == http.MethodPost {

		switch action := req.PostFormValue("action"); action {

		case "update":
			orgTypeID, _ := strconv.Atoi(req.PostFormValue("orgtype"))
			if err := ctx.db.UpdateOrg(
				selected.DBOrganisation,
				strings.TrimSpace(req.PostFormValue("address")),
				strings.TrimSpace(req.PostFormValue("url")),
				orgTypeID,
				strings.TrimSpace(req.PostFormValue("fromnameoverride")),
				req.PostFormValue("mailtemplate"),
			); err != nil {
				return err
			}
			ctx.Success("organisation %s has been updated", selected.Name())

		case "addemail":
			token, err := util.RandomString32()
			if err != nil {
				return err
			}
			if err := ctx.db.InsertEmail(selected.DBOrganisation, req.PostFormValue("address"), token); err != nil {
				return err
			}
			ctx.Success("confirmation link: /org/mail/confirm/%s/", token)

		case "addmanager", "removemanager":
			if !ctx.IsAdmin() {
				ctx.RedirectToLogin(req.URL.RequestURI())
				return nil
			}
			if action == "addmanager" {
				manager, err := ctx.db.Auth.GetUserByName(req.PostFormValue("manager"))
				if err != nil {
					return err
				}
				if err := ctx.db.AddManager(selected, manager); err != nil {
					return err
				}
				ctx.Success("%s now manages %s", manager.Name(), selected.Name())
			} else {
				managerID, err := strconv.Atoi(req.PostFormValue("manager"))
				if err != nil {
					return err
				}
				manager, err := ctx.db.Auth.GetUser(managerID)
				if err != nil {
					return err
				}
				if err := ctx.db.RemoveManager(selected, manager); err != nil {
					return err
				}
				ctx.Success("%s no longer manages %s", manager.Name(), selected.Name())
			}
		}

		ctx.Redirect("/admin/org/%d/", selected.ID())
		return nil
	}

	return orgTmpl.Execute(w, &orgData{
		context:  ctx,
		Selected: selected,
	})
}

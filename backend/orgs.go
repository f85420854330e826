package backend

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/core"
)

var orgsTmpl = tmpl(`<h1>Organisations</h1>

	<ul>
		{{ range .Orgs }}
			<li>{{ OrgLink . }}</li>
		{{ end }}
	</ul>

	<p><a href="/admin/mergeorg/">Merge duplicates</a></p>

	<h2>Create organisation</h2>

	<form method="post" class="form-inline">
		<div class="form-group">
			<input type="text" class="form-control" name="name" placeholder="Name" required>
			<select class="form-control mx-sm-2" name="orgtype">
				<option value="0">No type</option>
				{{ range .OrgTypes }}
					<option value="{{ .ID }}">{{ .TypeName }}</option>
				{{ end }}
			</select>
			<button type="submit" class="btn btn-primary" name="submit_add">Create</button>
		</div>
	</form>`)

type orgsData struct {
	*context
}

func (data *orgsData) Orgs() ([]*core.Organisation, error) {
	return data.db.GetAllOrganisations(100000, 0) // assuming there are not more than 100k organisations
}

func (data *orgsData) OrgTypes() ([]core.DBOrgType, error) {
	return data.db.GetOrgTypes()
}

func orgs(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if req.Method == http.MethodPost {

		var name = strings.TrimSpace(req.PostFormValue("name"))
		if name == "" {
			return errors.New("missing organisation name")
		}

		orgTypeID, _ := strconv.Atoi(req.PostFormValue("orgtype"))

		org, err := ctx.db.CreateOrganisation(name, "", "", orgTypeID)
		if err != nil {
			return err
		}

		ctx.Success("organisation %s has been created", org.Name())
		ctx.Redirect("/admin/org/%d/", org.ID())
		return nil
	}

	return orgsTmpl.Execute(w, &orgsData{
		context: ctx,
	})
}

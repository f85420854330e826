package backend

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/core"
)

var mergeOrgTmpl = tmpl(`<h1>Merge organisations</h1>

	<p>Articles, email addresses and managers of the duplicate are moved to the
	target, then the duplicate is deleted.</p>

	<form method="post">

		<div class="form-group row">
			<label class="col-sm-3 col-form-label">Duplicate</label>
			<div class="col-sm-9">
				<select class="form-control" name="from" required>
					{{ range .Orgs }}
						<option value="{{ .ID }}">{{ .Name }}</option>
					{{ end }}
				</select>
			</div>
		</div>

		<div class="form-group row">
			<label class="col-sm-3 col-form-label">Target</label>
			<div class="col-sm-9">
				<select class="form-control" name="to" required>
					{{ range .Orgs }}
						<option value="{{ .ID }}">{{ .Name }}</option>
					{{ end }}
				</select>
			</div>
		</div>

		<button type="submit" class="btn btn-danger" name="submit_merge">Merge</button>

	</form>`)

type mergeOrgData struct {
	*context
}

func (data *mergeOrgData) Orgs() ([]*core.Organisation, error) {
	return data.db.GetAllOrganisations(100000, 0)
}

func mergeOrg(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if req.Method == http.MethodPost {

		fromID, err := strconv.Atoi(req.PostFormValue("from"))
		if err != nil {
			return err
		}

		toID, err := strconv.Atoi(req.PostFormValue("to"))
		if err != nil {
			return err
		}

		from, err := ctx.db.GetOrganisation(fromID)
		if err != nil {
			return err
		}

		to, err := ctx.db.GetOrganisation(toID)
		if err != nil {
			return err
		}

		if err := ctx.db.MergeOrganisations(from, to); err != nil {
			return err
		}

		ctx.Success("%s has been merged into %s", from.Name(), to.Name())
		ctx.Redirect("/admin/org/%d/", to.ID())
		return nil
	}

	return mergeOrgTmpl.Execute(w, &mergeOrgData{
		context: ctx,
	})
}

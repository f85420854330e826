package backend

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/auth"
	"github.com/pgcommunity/pgsite/core"
)

var groupTmpl = tmpl(`<h1>Group &raquo;{{ .Selected.Name }}&laquo;</h1>

	{{ with .Capability }}
		<p>Capability: {{ . }}</p>
	{{ end }}

	<h2>Members</h2>

	<ul>
		{{ range .Members }}
			<li>
				{{ UserLink . }}
				<form method="post" style="display: inline;">
					<input type="hidden" name="member" value="{{ .ID }}">
					<button type="submit" class="btn btn-sm btn-danger" name="action" value="leave">Remove</button>
				</form>
			</li>
		{{ end }}
	</ul>

	<form method="post" class="form-inline">
		<div class="form-group">
			<input type="text" class="form-control" name="member" placeholder="Username" required>
			<button type="submit" class="btn btn-primary mx-sm-3" name="action" value="join">Add member</button>
		</div>
	</form>

	<h2>Capability</h2>

	<form method="post" class="form-inline">
		<div class="form-group">
			<select class="form-control" name="capability">
				<option value="0">None</option>
				<option value="100">moderate</option>
				<option value="500">admin</option>
			</select>
			<button type="submit" class="btn btn-primary mx-sm-3" name="action" value="capability">Set capability</button>
		</div>
	</form>`)

type groupData struct {
	*context
	Selected auth.DBGroup
}

func (data *groupData) Members() ([]auth.DBUser, error) {

	memberIDs, err := data.Selected.Members()
	if err != nil {
		return nil, err
	}

	var members = make([]auth.DBUser, 0, len(memberIDs))
	for id := range memberIDs {
		member, err := data.db.Auth.GetUser(id)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}

func (data *groupData) Capability() (string, error) {
	rules, err := data.db.GetCapabilityRules()
	if err != nil {
		return "", err
	}
	if capability, ok := rules[data.Selected.ID()]; ok {
		return core.Capability(capability).String(), nil
	}
	return "", nil
}

func group(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	selectedID, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return err
	}

	selected, err := ctx.db.Auth.GetGroup(selectedID)
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost {

		switch req.PostFormValue("action") {

		case "join":
			member, err := ctx.db.Auth.GetUserByName(req.PostFormValue("member"))
			if err != nil {
				return err
			}
			if err := ctx.db.Auth.Join(selected, member); err != nil {
				return err
			}
			ctx.Success("%s has joined %s", member.Name(), selected.Name())

		case "leave":
			memberID, err := strconv.Atoi(req.PostFormValue("member"))
			if err != nil {
				return err
			}
			member, err := ctx.db.Auth.GetUser(memberID)
			if err != nil {
				return err
			}
			if err := ctx.db.Auth.Leave(selected, member); err != nil {
				return err
			}
			ctx.Success("%s has left %s", member.Name(), selected.Name())

		case "capability":
			capability, err := strconv.Atoi(req.PostFormValue("capability"))
			if err != nil {
				return err
			}
			if capability == 0 {
				err = ctx.db.RemoveCapabilityRule(selected.ID())
			} else {
				err = ctx.db.AddCapabilityRule(selected.ID(), core.Capability(capability))
			}
			if err != nil {
				return err
			}
			ctx.Success("capability of %s has been updated", selected.Name())
		}

		ctx.Redirect("/admin/group/%d/", selected.ID())
		return nil
	}

	return groupTmpl.Execute(w, &groupData{
		context:  ctx,
		Selected: selected,
	})
}

package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/core"
)

var rootTmpl = tmpl(`<h1>Administration</h1>

	<h2>Your organisations</h2>

	{{ with .Orgs }}
		<ul>
			{{ range . }}
				<li>{{ OrgLink . }}</li>
			{{ end }}
		</ul>
	{{ else }}
		<p>You don't manage any organisations.</p>
	{{ end }}

	<p><a class="btn btn-primary" href="/admin/news/submit/">Submit news</a></p>`)

type rootData struct {
	*context
}

func (data *rootData) Orgs() ([]*core.Organisation, error) {
	return data.ManagedOrganisations()
}

func root(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	return rootTmpl.Execute(w, &rootData{
		context: ctx,
	})
}

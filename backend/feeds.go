package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/core"
)

var feedsTmpl = tmpl(`<h1>Imported feeds</h1>

	<table class="table">
		<tr>
			<th>Name</th>
			<th>URL</th>
			<th>Purge pattern</th>
		</tr>
		{{ range .Feeds }}
			<tr>
				<td>{{ .InternalName }}</td>
				<td>{{ .URL }}</td>
				<td>{{ .PurgePattern }}</td>
			</tr>
		{{ end }}
	</table>

	<h2>Latest items</h2>

	<ul>
		{{ range .LatestItems }}
			<li><a href="{{ .URL }}">{{ .Title }}</a></li>
		{{ end }}
	</ul>`)

type feedsData struct {
	*context
}

func (data *feedsData) Feeds() ([]core.DBFeed, error) {
	return data.db.GetAllFeeds()
}

func (data *feedsData) LatestItems() ([]core.DBFeedItem, error) {
	return data.db.GetLatestItems(30)
}

func feeds(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	return feedsTmpl.Execute(w, &feedsData{
		context: ctx,
	})
}

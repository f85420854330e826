package site

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

var confirmTmpl = tmpl(`<h1>Email address confirmed</h1>

	<p>{{ .Address }} can now be used as a sender address for news
	announcements.</p>`)

type confirmData struct {
	*context
	Address string
}

// each confirmation link works once, a second visit is a 404
func confirmEmail(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	email, err := ctx.db.ConfirmOrgEmail(params.ByName("token"))
	if err != nil {
		return err
	}

	return confirmTmpl.Execute(w, &confirmData{
		context: ctx,
		Address: email.Address(),
	})
}

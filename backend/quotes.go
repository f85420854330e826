package backend

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/pgcommunity/pgsite/core"
)

var quotesTmpl = tmpl(`<h1>Quotes</h1>

	<table class="table">
		<tr>
			<th>Quote</th>
			<th>Who</th>
			<th>Organisation</th>
			<th>Approved</th>
			<th></th>
		</tr>
		{{ range .Quotes }}
			<tr>
				<td>{{ .Quote }}</td>
				<td>{{ .Who }}</td>
				<td>{{ .Org }}</td>
				<td>{{ if .Approved }}yes{{ else }}no{{ end }}</td>
				<td>
					<form method="post" class="form-inline">
						<input type="hidden" name="id" value="{{ .ID }}">
						{{ if .Approved }}
							<button type="submit" class="btn btn-sm btn-secondary" name="action" value="unapprove">Unapprove</button>
						{{ else }}
							<button type="submit" class="btn btn-sm btn-success" name="action" value="approve">Approve</button>
						{{ end }}
						<button type="submit" class="btn btn-sm btn-danger mx-1" name="action" value="delete">Delete</button>
					</form>
				</td>
			</tr>
		{{ end }}
	</table>

	<h2>Add quote</h2>

	<form method="post">
		<div class="form-group">
			<textarea class="form-control" name="quote" rows="3" placeholder="Quote" required></textarea>
		</div>
		<div class="form-group">
			<input type="text" class="form-control" name="who" placeholder="Who said it">
		</div>
		<div class="form-group">
			<input type="text" class="form-control" name="org" placeholder="Organisation">
		</div>
		<div class="form-group">
			<input type="text" class="form-control" name="link" placeholder="Link">
		</div>
		<button type="submit" class="btn btn-primary" name="action" value="add">Add quote</button>
	</form>`)

type quotesData struct {
	*context
}

func (data *quotesData) Quotes() ([]core.DBQuote, error) {
	return data.db.GetAllQuotes(100000, 0)
}

func quotes(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if req.Method == http.MethodPost {

		switch action := req.PostFormValue("action"); action {

		case "add":
			if _, err := ctx.db.InsertQuote(
				strings.TrimSpace(req.PostFormValue("quote")),
				strings.TrimSpace(req.PostFormValue("who")),
				strings.TrimSpace(req.PostFormValue("org")),
				strings.TrimSpace(req.PostFormValue("link")),
			); err != nil {
				return err
			}
			ctx.Success("quote has been added")

		case "approve", "unapprove", "delete":
			id, err := strconv.Atoi(req.PostFormValue("id"))
			if err != nil {
				return err
			}
			quote, err := ctx.db.GetQuote(id)
			if err != nil {
				return err
			}
			switch action {
			case "approve":
				err = ctx.db.SetQuoteApproved(quote, true)
			case "unapprove":
				err = ctx.db.SetQuoteApproved(quote, false)
			case "delete":
				err = ctx.db.DeleteQuote(quote)
			}
			if err != nil {
				return err
			}
			ctx.Success("quote has been updated")

		default:
			return fmt.Errorf("unknown action %s", action)
		}

		ctx.Redirect("/admin/quotes/")
		return nil
	}

	return quotesTmpl.Execute(w, &quotesData{
		context: ctx,
	})
}

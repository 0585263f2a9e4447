package lead

import (
	"bytes"
	"html/template"
	"time"

	"github.com/iwvelando/payout-quote/internal/quote"
	"github.com/iwvelando/payout-quote/pkg/format"
)

var bodyTemplate = template.Must(template.New("lead").Funcs(template.FuncMap{
	"kroner":   format.Kroner,
	"yesno":    format.YesNo,
	"duration": quote.DurationLabel,
}).Parse(`<html><body>
<h2>New lead from the payout calculator</h2>
<p>Submitted {{.SubmittedAt.Format "2006-01-02 15:04:05 MST"}}</p>

<h3>Contact</h3>
<table>
<tr><td>Name</td><td>{{.Contact.Name}}</td></tr>
<tr><td>Address</td><td>{{.Contact.Address}}</td></tr>
<tr><td>Phone</td><td>{{.Contact.Phone}}</td></tr>
<tr><td>Email</td><td>{{.Contact.Email}}</td></tr>
<tr><td>Age</td><td>{{.Contact.Age}}</td></tr>
{{- if .Contact.Comment}}
<tr><td>Comment</td><td>{{.Contact.Comment}}</td></tr>
{{- end}}
</table>

<h3>Quote input</h3>
<table>
<tr><td>Monthly payout</td><td>{{kroner .Input.MonthlyPayout}}</td></tr>
<tr><td>Lump sum payout</td><td>{{kroner .Input.LumpSumPayout}}</td></tr>
<tr><td>Duration</td><td>{{duration .Input.DurationQuarters}} ({{.Input.DurationQuarters}} quarters)</td></tr>
<tr><td>Property value</td><td>{{kroner .Input.PropertyValue}}</td></tr>
<tr><td>Equity value</td><td>{{kroner .Input.EquityValue}}</td></tr>
<tr><td>Amortizing loan</td><td>{{yesno .Input.Amortizing}}</td></tr>
<tr><td>Owner age</td><td>{{.Input.OwnerAge}}</td></tr>
<tr><td>Postal code</td><td>{{.Input.PostalCode}}{{if .City}} {{.City}}{{end}}</td></tr>
</table>

<h3>Result</h3>
<p>Total payout: {{kroner .Result.TotalPayout}}<br>Eligibility: {{.Result.Verdict}}</p>
<table>
<tr><th>Quarter</th><th>Amount</th></tr>
{{- range .Result.Schedule}}
<tr><td>{{.Quarter}}</td><td>{{kroner .Amount}}</td></tr>
{{- end}}
</table>
</body></html>
`))

type bodyData struct {
	Submission
	SubmittedAt time.Time
}

func renderBody(sub Submission, submittedAt time.Time) (string, error) {
	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, bodyData{Submission: sub, SubmittedAt: submittedAt}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

package notify

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"sort"
	"strings"

	"equalizer/internal/ledger"
)

// The email body groups line items by date, newest group last, with the
// request link up top so the creditor can fire off the charge in one click.
const emailTemplate = `<html>
<body>
<h2>New batch ready</h2>
<p><a href="{{.RequestLink}}">Request {{.Total}} on Venmo</a></p>
<p>batch id: {{.BatchID}}</p>
{{range .Groups}}<h3>{{.Date}}</h3>
<table>
{{range .Items}}<tr><td>{{.Payee}}</td><td align="right">{{.Amount}}</td></tr>
{{end}}</table>
{{end}}{{if .Warnings}}<h3>Warnings</h3>
<ul>
{{range .Warnings}}<li>{{.}}</li>
{{end}}</ul>
{{end}}</body>
</html>
`

var emailTmpl = template.Must(template.New("batch_ready").Parse(emailTemplate))

type dateGroup struct {
	Date  string
	Items []LineItem
	when  ledger.Date
}

// RenderHTML renders the summary as the batch-ready email body.
func RenderHTML(summary Summary) (string, error) {
	byDate := make(map[string]*dateGroup)
	for _, item := range summary.LineItems {
		key := item.Date.Format("Jan 02, 2006")
		group, ok := byDate[key]
		if !ok {
			group = &dateGroup{Date: key, when: item.Date}
			byDate[key] = group
		}
		group.Items = append(group.Items, item)
	}

	groups := make([]*dateGroup, 0, len(byDate))
	for _, group := range byDate {
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].when.Before(groups[j].when) })

	var sb strings.Builder
	err := emailTmpl.Execute(&sb, struct {
		BatchID     string
		Total       string
		RequestLink string
		Groups      []*dateGroup
		Warnings    []string
	}{
		BatchID:     summary.BatchID,
		Total:       summary.TotalAmount.String(),
		RequestLink: summary.RequestLink,
		Groups:      groups,
		Warnings:    summary.Warnings,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// FileNotifier renders the summary as the email body and writes it to a
// file, for mailing out of band or eyeballing before sending.
type FileNotifier struct {
	Path   string
	Logger *slog.Logger
}

var _ Notifier = (*FileNotifier)(nil)

func (n *FileNotifier) Send(_ context.Context, summary Summary) error {
	body, err := RenderHTML(summary)
	if err != nil {
		return fmt.Errorf("rendering batch summary: %w", err)
	}
	if err := os.WriteFile(n.Path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("writing batch summary: %w", err)
	}
	if n.Logger != nil {
		n.Logger.Info("Wrote batch summary", "path", n.Path, "batch_id", summary.BatchID)
	}
	return nil
}

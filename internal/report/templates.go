package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/okean-yachts/okean-cpq/web"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006")
		},
		"formatDatePtr": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006")
		},
		"formatMoney": formatMoney,
		"formatPct": func(v float64) string {
			s := fmt.Sprintf("%.2f", v)
			s = strings.TrimRight(s, "0")
			s = strings.TrimRight(s, ".")
			return strings.ReplaceAll(s, ".", ",") + "%"
		},
	}
}

// formatMoney renders a value in Brazilian number formatting, e.g.
// 1234567.89 becomes R$ 1.234.567,89.
func formatMoney(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	parts := strings.SplitN(s, ".", 2)
	intPart, decPart := parts[0], parts[1]

	negative := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	out := "R$ " + b.String() + "," + decPart
	if negative {
		out = "-" + out
	}
	return out
}

func parseReportTemplate(name string) (*template.Template, error) {
	tpl, err := template.New(name).Funcs(templateFuncs()).ParseFS(
		web.Templates, "templates/reports/"+name,
	)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return tpl, nil
}

func executeTemplate(tpl *template.Template, name string, data any) (string, error) {
	buf := &bytes.Buffer{}
	if err := tpl.ExecuteTemplate(buf, name, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

package export

import (
	"html/template"
	"strings"

	"github.com/jonathan/resume-builder/internal/rendering"
)

var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>{{.Stylesheet}}</style>
</head>
<body>
{{.Body}}
{{- if .AutoPrint}}
<script>window.addEventListener("load", function () { window.focus(); window.print(); });</script>
{{- end}}
</body>
</html>
`))

type printData struct {
	Title      string
	Stylesheet template.CSS
	Body       template.HTML
	AutoPrint  bool
}

// PrintDocument wraps sanitized sheet markup in a standalone A4 document.
// With autoPrint the document opens the print dialog once loaded.
func PrintDocument(body, fullName string, autoPrint bool) (string, error) {
	title := "Resume"
	if name := strings.Join(strings.Fields(fullName), " "); name != "" {
		title = name + " - Resume"
	}

	var out strings.Builder
	err := printTemplate.Execute(&out, printData{
		Title:      title,
		Stylesheet: template.CSS(rendering.PrintStylesheet()),
		Body:       template.HTML(body),
		AutoPrint:  autoPrint,
	})
	if err != nil {
		return "", &RenderingError{Stage: "print", Message: "failed to build print document", Cause: err}
	}
	return out.String(), nil
}

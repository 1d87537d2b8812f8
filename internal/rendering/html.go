package rendering

import (
	"embed"
	"html/template"
	"strings"
	"sync"
)

// SheetID is the id of the root node of a rendered sheet. Exporters capture this node.
const SheetID = "resume-sheet"

//go:embed templates/*.tmpl templates/print.css
var templateFS embed.FS

var (
	templatesOnce sync.Once
	parsed        *template.Template
	parseErr      error
)

type pageData struct {
	Title      string
	Stylesheet template.CSS
	Sheet      *Sheet
}

func loadTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		parsed, parseErr = template.New("rendering").Funcs(template.FuncMap{
			"imageURL": imageURL,
			"sheetID":  func() string { return SheetID },
		}).ParseFS(templateFS, "templates/*.tmpl")
		if parseErr != nil {
			parseErr = &TemplateError{Cause: parseErr}
		}
	})
	return parsed, parseErr
}

// PrintStylesheet returns the fixed A4 stylesheet used for preview and print.
func PrintStylesheet() string {
	css, err := templateFS.ReadFile("templates/print.css")
	if err != nil {
		return ""
	}
	return string(css)
}

// HTML renders the sheet as an HTML fragment rooted at #resume-sheet.
func HTML(sheet *Sheet) (string, error) {
	return execute("sheet", sheet)
}

// Page renders the sheet as a standalone HTML document with the print stylesheet inlined.
func Page(sheet *Sheet) (string, error) {
	if sheet == nil {
		return "", &RenderError{Reason: "sheet is nil"}
	}
	title := "Resume"
	if !sheet.Header.Placeholder {
		title = sheet.Header.Name + " - Resume"
	}
	return execute("page", pageData{
		Title:      title,
		Stylesheet: template.CSS(PrintStylesheet()),
		Sheet:      sheet,
	})
}

func execute(name string, data any) (string, error) {
	if sheet, ok := data.(*Sheet); ok && sheet == nil {
		return "", &RenderError{Reason: "sheet is nil"}
	}
	tmpl, err := loadTemplates()
	if err != nil {
		return "", err
	}
	var out strings.Builder
	if err := tmpl.ExecuteTemplate(&out, name, data); err != nil {
		return "", &TemplateError{Template: name, Cause: err}
	}
	return out.String(), nil
}

// imageURL marks an accepted image reference as safe for a src attribute.
// html/template would otherwise replace data URLs.
func imageURL(ref string) template.URL {
	if !IsSafeImage(ref) {
		return ""
	}
	return template.URL(strings.TrimSpace(ref))
}

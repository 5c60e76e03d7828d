// Package renderer turns import results into markdown reports.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed *.md
var templates embed.FS

// RenderExtraction renders an extraction report to a markdown string.
func RenderExtraction(e *Extraction) string {
	partials := map[string]string{
		"extraction_rows":         "extraction_rows.md",
		"extraction_errors":       "extraction_errors.md",
		"extraction_transactions": "extraction_transactions.md",
	}
	if len(e.Transactions) == 0 {
		partials["extraction_transactions"] = "extraction_transactions_empty.md"
	}
	return renderTemplate("extraction", "extraction.md", partials, e)
}

// renderTemplate parses the main template and its partials, then executes it.
// Partials are aliased: the key is the name used in the main template, the
// value the file holding it. Errors are returned as the rendered text.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

package api

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/dgallion1/reportcsv/internal/config"
	"github.com/dgallion1/reportcsv/internal/extract"
	"github.com/yuin/goldmark"
)

//go:embed usage.md
var usageMarkdown string

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>JSON to CSV Converter</title>
</head>
<body>
<main>
<h1>JSON to CSV Converter</h1>
<form id="upload" method="post" action="/api/convert/csv" enctype="multipart/form-data">
<input type="file" name="files" accept=".json,application/json" multiple required>
<button type="submit">Convert to CSV</button>
</form>
<section id="usage">
{{.Usage}}
</section>
</main>
</body>
</html>
`))

// renderPage builds the upload page once at startup.
func renderPage(cfg config.Config) ([]byte, error) {
	var cols strings.Builder
	for _, f := range extract.Fields() {
		cols.WriteString("- `" + f + "`\n")
	}
	src := strings.NewReplacer(
		"{{FILENAME}}", cfg.DownloadFilename,
		"{{COLUMNS}}", cols.String(),
	).Replace(usageMarkdown)

	var usage bytes.Buffer
	if err := goldmark.New().Convert([]byte(src), &usage); err != nil {
		return nil, err
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, map[string]any{
		"Usage": template.HTML(usage.String()),
	})
	if err != nil {
		return nil, err
	}
	return page.Bytes(), nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.page)
}

package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"

	"github.com/pagewatch/pagewatch/internal/run"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM, // tables for the summary and diff sections
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		ghtml.WithHardWraps(),
	),
)

var shell = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 920px; margin: 2rem auto; padding: 0 1rem; color: #1f2328; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #d0d7de; padding: 0.4rem 0.7rem; text-align: left; }
th { background: #f6f8fa; }
pre { padding: 0.8rem; border-radius: 6px; overflow-x: auto; }
code { font-size: 0.9em; }
h2 { border-bottom: 1px solid #d0d7de; padding-bottom: 0.3rem; margin-top: 2rem; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML renders the run as a standalone HTML page.
func HTML(w io.Writer, r *run.Run) error {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(r)), &body); err != nil {
		return fmt.Errorf("render report markdown: %w", err)
	}

	return shell.Execute(w, struct {
		Title string
		Body  template.HTML
	}{
		Title: "Pagewatch run " + shortID(r.ID),
		// Body is goldmark output over content the harness itself built;
		// page-sourced strings only appear inside escaped markdown cells.
		Body: template.HTML(body.String()),
	})
}

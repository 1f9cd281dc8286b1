package emitter

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/mark3labs/tera/internal/openapi"
)

// The document is passed to the script block as a value; html/template
// encodes it as JSON safe for embedding.
var htmlTmpl = template.Must(template.New("redoc").Parse(`<!DOCTYPE html>
<html>
  <head>
    <title>{{.Title}}</title>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>
      body { margin: 0; padding: 0; }
    </style>
  </head>
  <body>
    <div id="redoc-container"></div>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
    <script>
      Redoc.init({{.Doc}}, {}, document.getElementById("redoc-container"));
    </script>
  </body>
</html>
`))

// renderHTML renders a self-contained Redoc page with the document inlined.
func renderHTML(doc *openapi.Document) ([]byte, error) {
	var buf bytes.Buffer
	err := htmlTmpl.Execute(&buf, struct {
		Title string
		Doc   *openapi.Document
	}{Title: doc.Info.Title, Doc: doc})
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// Render the embedded browser page for one live view

package render

import (
	"io"
	"text/template"

	"github.com/yumyai/ggview/logger"
	"github.com/yumyai/ggview/pkg/engine"
	"go.uber.org/zap"
)

// Pinned viewer build. The page is the only place the external engine is
// referenced; everything else in this repo just moves configuration around.
const IGV_JS_URL = "https://cdn.jsdelivr.net/npm/igv@3.1.0/dist/igv.min.js"

var view_page_template *template.Template

func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
	    <link href="/static/style.css" rel="stylesheet"></link>
		<title>View: {{ .Genome }} {{ .Locus }}</title>
		<script src="{{ .IGVUrl }}"></script>
	</head>
	<body>
		<div id="{{ .Container }}"></div>
		<script>
			// The synchronized model snapshot, read once per mount. Replacing
			// the model replaces this whole page.
			const viewConfig = {{ .ConfigJSON }};
			const node = document.getElementById("{{ .Container }}");
			igv.createBrowser(node, viewConfig)
				.catch((err) => {
					node.textContent = "View construction failed: " + err;
				});
		</script>
	</body>
	</html>`

	view_page_template = template.Must(template.New("view_page").Parse(mainTmpl))
}

// RenderViewPage writes the igv.js page for a live view. The config JSON is
// inlined so the browser needs no second round trip before first paint.
func RenderViewPage(w io.Writer, view *engine.View) error {

	logger.Debug("Rendering view page", zap.String("container", string(view.Container)))

	config_json, err := view.Config.ToJSON()
	if err != nil {
		return err
	}

	locus := ""
	if len(view.Config.Locus) > 0 {
		locus = view.Config.Locus[0]
	}

	data := struct {
		Container  string
		Genome     string
		Locus      string
		IGVUrl     string
		ConfigJSON string
	}{
		Container:  string(view.Container),
		Genome:     view.Config.Genome.ID,
		Locus:      locus,
		IGVUrl:     IGV_JS_URL,
		ConfigJSON: string(config_json),
	}

	return view_page_template.Execute(w, data)
}

// Render the landing page listing live and saved views

package render

import (
	"io"
	"text/template"
	"time"

	"github.com/yumyai/ggview/pkg/engine"
)

var index_page_template *template.Template

func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
	    <link href="/static/style.css" rel="stylesheet"></link>
		<title>ggview</title>
	</head>
	<body>
		<h1>ggview</h1>
		{{template "live_views" . }}
		{{template "saved_views" . }}
	</body>
	</html>`

	liveTmpl := `
	{{define "live_views"}}
		<h2>Live views</h2>
		<table border="1">
		<tr>
			<th>Container</th>
			<th>Genome</th>
			<th>Tracks</th>
			<th>Created</th>
		</tr>
		{{ range .Live }}
			<tr>
				<td><a href="/view/{{ .Container }}">{{ .Container }}</a></td>
				<td>{{ .Config.Genome.ID }}</td>
				<td>{{ len .Config.Tracks }}</td>
				<td>{{ fmtTime .CreatedAt }}</td>
			</tr>
		{{ else }}
			<tr><td colspan="4">No live views</td></tr>
		{{ end }}
		</table>
	{{end}}`

	savedTmpl := `
	{{define "saved_views"}}
		<h2>Saved views</h2>
		<table border="1">
		<tr>
			<th>Name</th>
			<th>Saved</th>
		</tr>
		{{ range .Saved }}
			<tr>
				<td>{{ .Name }}</td>
				<td>{{ fmtTime .CreatedAt }}</td>
			</tr>
		{{ else }}
			<tr><td colspan="2">No saved views</td></tr>
		{{ end }}
		</table>
	{{end}}`

	funcMap := template.FuncMap{
		"fmtTime": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
	}

	index_page_template = template.New("index_page").Funcs(funcMap)
	index_page_template = template.Must(index_page_template.Parse(mainTmpl))
	index_page_template = template.Must(index_page_template.Parse(liveTmpl))
	index_page_template = template.Must(index_page_template.Parse(savedTmpl))
}

type SavedEntry struct {
	Name      string
	CreatedAt time.Time
}

func RenderIndexPage(w io.Writer, live []*engine.View, saved []SavedEntry) error {

	data := struct {
		Live  []*engine.View
		Saved []SavedEntry
	}{
		Live:  live,
		Saved: saved,
	}

	return index_page_template.Execute(w, data)
}

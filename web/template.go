package web

const indexTemplate = `<!DOCTYPE html>
<html>
<head>
<title>FAQ Extractor</title>
<style>
body { font-family: sans-serif; margin: 2rem; max-width: 72rem; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { border: 1px solid #ccc; padding: 0.4rem; text-align: left; vertical-align: top; }
th { background: #f3f3f3; }
form { margin-bottom: 1rem; }
label { display: block; margin-top: 0.6rem; }
textarea, input[type=text], input[type=password] { width: 32rem; }
.status { padding: 0.6rem; background: #f3f3f3; margin-bottom: 1rem; }
.error { color: #b00; }
.missed { color: #b00; }
</style>
{{if .Status.Running}}<meta http-equiv="refresh" content="2">{{end}}
</head>
<body>
<h1>FAQ Extractor</h1>

<div class="status">
{{if .Status.Running}}
	Processing {{.Status.Current}}/{{.Status.Total}}: {{.Status.URL}}
{{else if .Status.Error}}
	<span class="error">Last batch failed: {{.Status.Error}}</span>
{{else if .Status.Records}}
	Done. {{.Status.Records}} records extracted.
{{else}}
	Idle.
{{end}}
{{if .Status.Missed}}
	<div class="missed">Missed URLs:
	<ul>{{range .Status.Missed}}<li>{{.}}</li>{{end}}</ul>
	</div>
{{end}}
</div>

<form action="/extract" method="post" enctype="multipart/form-data">
	<label>URLs (one per line)<br><textarea name="urls" rows="4"></textarea></label>
	<label>Or a CSV file with a <code>Links</code> or <code>URL</code> column: <input type="file" name="csv"></label>
	<label>Firecrawl API key <input type="password" name="firecrawl_key" placeholder="optional, uses server key"></label>
	<label>Model API key <input type="password" name="model_key" placeholder="optional, uses server key"></label>
	<label>Max URLs (0 = no limit) <input type="text" name="max" value="0"></label>
	<button type="submit" {{if .Status.Running}}disabled{{end}}>Extract FAQs</button>
</form>

<p>
<a href="/export/csv">Download CSV</a> |
<a href="/export/json">Download JSON</a>
{{if .CanUpload}} | <form action="/upload" method="post" style="display:inline"><button type="submit">Upload to bucket</button></form>{{end}}
</p>

<table>
<tr><th>organisation_name</th><th>category</th><th>question</th><th>answer</th><th>links</th><th>URL</th></tr>
{{range .Records}}
<tr>
	<td>{{.Organisation}}</td>
	<td>{{.Category}}</td>
	<td>{{.Question}}</td>
	<td>{{.Answer}}</td>
	<td>{{.Links.String}}</td>
	<td><a href="{{.URL}}">{{.URL}}</a></td>
</tr>
{{end}}
</table>
</body>
</html>
`

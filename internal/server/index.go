package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// indexPage serves a minimal form page driving the JSON API. The real
// presentation layer is expected to live elsewhere; this is the thinnest
// possible stand-in for trying the pipeline from a browser.
func indexPage(c echo.Context) error {
	return c.HTML(http.StatusOK, indexHTML)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Scribe - Research &amp; Writing</title>
<style>
body { font-family: Georgia, serif; max-width: 800px; margin: 0 auto; padding: 30px 20px; line-height: 1.6; }
label { display: block; margin-top: 12px; }
input[type=text], select { width: 100%; padding: 6px; }
button { margin-top: 14px; margin-right: 8px; padding: 8px 14px; }
pre { white-space: pre-wrap; background: #f8f9fa; padding: 14px; border-left: 4px solid #3498db; }
.error { color: #c0392b; }
</style>
</head>
<body>
<h1>Scribe</h1>
<p>Research a topic, generate an article, refine it, download it.</p>
<label>Topic <input type="text" id="topic" value="AI in Healthcare"></label>
<label>Language <select id="language"></select></label>
<label>Model <select id="model"></select></label>
<label>Depth <select id="depth"></select></label>
<button onclick="research()">Research</button>
<button onclick="writeArticle()">Write article</button>
<label>Improvement instruction <input type="text" id="instruction" placeholder="make it shorter"></label>
<button onclick="improve()">Improve</button>
<label>Export format <select id="format"></select></label>
<button onclick="exportArticle()">Download</button>
<div id="status"></div>
<h2 id="stage"></h2>
<pre id="output"></pre>
<script>
let sessionID = null;

async function loadOptions() {
  const opts = await (await fetch('/api/options')).json();
  fill('language', opts.languages);
  fill('model', opts.models);
  fill('depth', opts.depths);
  fill('format', opts.formats);
}
function fill(id, values) {
  const sel = document.getElementById(id);
  for (const v of values) sel.add(new Option(v, v));
}
function show(sess) {
  document.getElementById('stage').textContent = sess.state;
  if (sess.article) {
    document.getElementById('output').textContent = sess.article.body + '\n\n(version ' + sess.article.version + ')';
  } else if (sess.report) {
    document.getElementById('output').textContent = sess.report.raw_text;
  }
  const warn = (sess.warnings || []).join('; ');
  setStatus(warn, false);
}
function setStatus(msg, isError) {
  const el = document.getElementById('status');
  el.textContent = msg;
  el.className = isError ? 'error' : '';
}
async function call(url, body) {
  setStatus('working...', false);
  const resp = await fetch(url, {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify(body || {})
  });
  const data = await resp.json();
  if (!resp.ok) { setStatus(data.error, true); return null; }
  return data;
}
async function research() {
  const sess = await call('/api/sessions', {
    topic: val('topic'), language: val('language'), model: val('model'), depth: val('depth')
  });
  if (sess) { sessionID = sess.id; show(sess); }
}
async function writeArticle() {
  if (!sessionID) { setStatus('research a topic first', true); return; }
  const sess = await call('/api/sessions/' + sessionID + '/article');
  if (sess) show(sess);
}
async function improve() {
  if (!sessionID) { setStatus('research a topic first', true); return; }
  const sess = await call('/api/sessions/' + sessionID + '/improve', {instruction: val('instruction')});
  if (sess) show(sess);
}
function exportArticle() {
  if (!sessionID) { setStatus('research a topic first', true); return; }
  window.location = '/api/sessions/' + sessionID + '/export?format=' + val('format');
}
function val(id) { return document.getElementById(id).value; }
loadOptions();
</script>
</body>
</html>
`

package web

import (
	"fmt"
	"html/template"
	"io"

	"github.com/sweeney/cooling-monitor/internal/logic"
	"github.com/sweeney/cooling-monitor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"orDash": func(v logic.Value) string {
		if !v.Valid {
			return "--"
		}
		return fmt.Sprintf("%.1f", v.V)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Cooling Monitor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
</style>
</head>
<body>
<h1>Cooling Monitor<span id="live-dot" class="live-dot ok" title="live"></span></h1>

<h2>Reading</h2>
<table>
<tr><th>Temperature</th><td><span id="temperature">{{orDash .Temperature}}</span> &deg;C</td></tr>
<tr><th>Humidity</th><td><span id="humidity">{{orDash .Humidity}}</span> %</td></tr>
<tr><th>Display</th><td id="displ">{{.Displ}}</td></tr>
</table>

<h2>Cooling</h2>
<table>
<tr><th>MOSFET</th><td id="mosfet" class="{{if .MosfetOn}}on{{else}}off{{end}}">{{if .MosfetOn}}ON{{else}}OFF{{end}}</td></tr>
<tr><th>On for</th><td><span id="mosfet-time">{{.MosfetOnSec}}</span> s</td></tr>
<tr><th>Summary</th><td id="summary">{{.Summary}}</td></tr>
</table>

<h2>History</h2>
<table>
<tr><th>Max</th><td><span id="max-temp">{{orDash .MaxTemp}}</span> &deg;C</td></tr>
<tr><th>Min</th><td><span id="min-temp">{{orDash .MinTemp}}</span> &deg;C</td></tr>
<tr><th>Average</th><td><span id="avg-temp">{{orDash .AvgTemp}}</span> &deg;C</td></tr>
</table>

<p><a href="/data">JSON</a> | <a href="/metrics">Metrics</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");

  function fmt(v) {
    return v === null ? "--" : v.toFixed(1);
  }

  function set(id, text) {
    document.getElementById(id).textContent = text;
  }

  function render(d) {
    set("temperature", fmt(d.temperature));
    set("humidity", fmt(d.humidity));
    set("displ", d.displ);
    var m = document.getElementById("mosfet");
    m.textContent = d.mosfet_on ? "ON" : "OFF";
    m.className = d.mosfet_on ? "on" : "off";
    set("mosfet-time", d.mosfet_on_time);
    set("summary", d.summary);
    set("max-temp", fmt(d.max_temp));
    set("min-temp", fmt(d.min_temp));
    set("avg-temp", fmt(d.avg_temp));
  }

  function poll() {
    fetch("/data", { cache: "no-store" })
      .then(function(r) { return r.json(); })
      .then(function(d) {
        render(d);
        dot.className = "live-dot ok";
        dot.title = "live";
      })
      .catch(function() {
        dot.className = "live-dot err";
        dot.title = "offline";
      });
  }

  setInterval(poll, 1000);
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	return indexTmpl.Execute(w, status.Build(snap))
}

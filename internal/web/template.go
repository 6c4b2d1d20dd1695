package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/victron-relay/internal/links"
	"github.com/sweeney/victron-relay/internal/schedule"
	"github.com/sweeney/victron-relay/internal/status"
)

// pageView is the data handed to the index template.
type pageView struct {
	Snap      status.Snapshot
	Links     links.Snapshot
	Schedule  schedule.Schedule
	Threshold float64
	Mode      string
}

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"linkClass": func(enabled bool) string {
		if enabled {
			return "enabled"
		}
		return "disabled"
	},
	"linkLabel": func(enabled bool) string {
		if enabled {
			return "ENABLED"
		}
		return "DISABLED"
	},
	"hourLocal": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
	"price": func(p float64) string {
		return fmt.Sprintf("%.5f", p)
	},
}).Parse(indexHTML))

func renderHTML(w io.Writer, view pageView) {
	if err := indexTmpl.Execute(w, view); err != nil {
		log.Printf("web: render template: %v", err)
	}
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Victron Relay</title>
<style>
body { font-family: monospace; max-width: 700px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.enabled { color: green; font-weight: bold; }
.disabled { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.charge_on { color: green; }
.charge_off { color: #c60; }
button { font-family: monospace; padding: 4px 10px; margin: 2px; cursor: pointer; }
</style>
</head>
<body>
<h1>Victron Relay</h1>

<table>
<tr><th>Inverter (ON)</th><td class="{{linkClass .Links.ON}}">{{linkLabel .Links.ON}}</td></tr>
<tr><th>Charger (CH)</th><td class="{{linkClass .Links.CH}}">{{linkLabel .Links.CH}}</td></tr>
<tr><th>Override mode</th><td>{{.Mode}}</td></tr>
{{if .Snap.HasPrice}}<tr><th>Current price</th><td>{{price .Snap.Price}} EUR/kWh ({{hourLocal .Snap.PriceHour}})</td></tr>{{end}}
<tr><th>MQTT</th><td class="{{if .Snap.MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .Snap.MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Serial console</th><td>{{.Snap.Config.SerialPort}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Snap.Uptime}}</td></tr>
</table>

<p>
<button onclick="cmd('ON',1)">ON 1</button>
<button onclick="cmd('ON',0)">ON 0</button>
<button onclick="cmd('CH',1)">CH 1</button>
<button onclick="cmd('CH',0)">CH 0</button>
<button onclick="cmd('ALL',1)">ALL 1</button>
<button onclick="cmd('ALL',0)">ALL 0</button>
</p>
<p>
<button onclick="override('schedule')">Resume schedule</button>
<button onclick="override('force_grid')">Force grid (CH on)</button>
<button onclick="reload_()">Reload prices</button>
</p>

<h2>Schedule (threshold {{price .Threshold}} EUR/kWh)</h2>
<table>
<tr><th>Hour</th><th>EUR/kWh</th><th>Action</th></tr>
{{range .Schedule}}<tr><td>{{hourLocal .Hour}}</td><td>{{price .Price}}</td><td class="{{.Action}}">{{.Action}}</td></tr>
{{else}}<tr><td colspan="3">no schedule loaded</td></tr>
{{end}}
</table>

<script>
async function post(path, body) {
  await fetch(path, {method: 'POST', headers: {'Content-Type': 'application/json'}, body: JSON.stringify(body || {})});
  location.reload();
}
function cmd(kind, val) { post('/api/command', {kind: kind, val: val}); }
function override(mode) { post('/api/override', {mode: mode}); }
function reload_() { post('/api/reload'); }
</script>
</body>
</html>
`

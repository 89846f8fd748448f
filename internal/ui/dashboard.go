package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"customer-dashboard/internal/models"
)

const (
	datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

	// refreshAction sends only the filter signals; the chart signals can
	// hold one entry per order and must not travel back in the URL.
	refreshAction = `@get('/sse/refresh-all', {filterSignals: {include: /^(start|end|states|all)$/}})`
)

// charts lists the chart panels in page order.
var charts = []chartPanel{
	{"ageData", "Revenue by Age Band"},
	{"tenureData", "Discount vs Revenue by Customer Lifetime"},
	{"regionData", "Revenue Share by Region"},
	{"monthlyData", "Revenue by Month"},
	{"genderData", "Revenue by Category and Gender"},
}

type chartPanel struct {
	Signal string
	Title  string
}

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Customer Analysis</title>
<script type="module" src="{{.Script}}"></script>
</head>
<body data-signals="{{.Signals}}" data-init="{{.Refresh}}">
<h1>Customer Analysis</h1>
<details><summary>About</summary><ul>
<li>An analysis of customer revenue in the Greater America region.</li>
<li>Use the date range and state selector in the sidebar to filter every chart.</li>
</ul></details>
<aside class="sidebar" data-on:change="{{.Refresh}}">
<label>From <input type="date" data-bind:start min="{{.Start}}" max="{{.End}}"></label>
<label>To <input type="date" data-bind:end min="{{.Start}}" max="{{.End}}"></label>
<label><input type="checkbox" data-bind:all> Select All</label>
<fieldset data-attr:disabled="$all"><legend>Choose the State:</legend>
{{range .States}}<label><input type="checkbox" value="{{.}}" data-bind:states> {{.}}</label>
{{end}}</fieldset>
</aside>
<main>
<div id="filter-status"></div>
{{range .Charts}}<section class="chart" id="chart-{{.Signal}}"><h2>{{.Title}}</h2><pre data-text="JSON.stringify(${{.Signal}})"></pre></section>
{{end}}<a data-attr:href="'/api/export.xlsx?start=' + $start + '&end=' + $end + '&all=' + $all + $states.map(s => '&state=' + encodeURIComponent(s)).join('')">Download XLSX</a>
</main>
</body>
</html>
`))

// DashboardProps is what the page shell needs before any chart data exists.
type DashboardProps struct {
	States   []string
	Defaults models.DateRange
}

type initialSignals struct {
	Start       string   `json:"start"`
	End         string   `json:"end"`
	States      []string `json:"states"`
	All         bool     `json:"all"`
	RegionData  []any    `json:"regionData"`
	MonthlyData []any    `json:"monthlyData"`
	GenderData  any      `json:"genderData"`
	TenureData  []any    `json:"tenureData"`
	AgeData     []any    `json:"ageData"`
	Rows        int      `json:"rows"`
}

type pageView struct {
	Script  string
	Signals string
	Refresh template.JS
	Start   string
	End     string
	States  []string
	Charts  []chartPanel
}

// Dashboard renders the page: the sidebar filter controls bound to Datastar
// signals and one panel per chart. Any control change asks the server to
// recompute every chart.
func Dashboard(props DashboardProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		start := props.Defaults.Start.Format("2006-01-02")
		end := props.Defaults.End.Format("2006-01-02")

		signals, err := json.Marshal(initialSignals{
			Start:       start,
			End:         end,
			States:      []string{},
			RegionData:  []any{},
			MonthlyData: []any{},
			GenderData:  map[string]any{},
			TenureData:  []any{},
			AgeData:     []any{},
		})
		if err != nil {
			return fmt.Errorf("marshal signals: %w", err)
		}

		return pageTemplate.Execute(w, pageView{
			Script:  datastarScript,
			Signals: string(signals),
			Refresh: template.JS(refreshAction),
			Start:   start,
			End:     end,
			States:  props.States,
			Charts:  charts,
		})
	})
}

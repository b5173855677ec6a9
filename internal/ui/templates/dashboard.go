// Package templates holds the dashboard page as a templ component. The page
// is a static shell: datastar attributes pull the ABC table fragment and the
// RFM/trend/report signals over SSE once the page loads.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Coffee Shop Analytics</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@main/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; background: #faf7f2; }
h1 { color: #4b2e1e; }
.panel { background: #fff; border-radius: 8px; padding: 1rem 1.5rem; margin-bottom: 1.5rem; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
.modern-table { width: 100%; border-collapse: collapse; }
.modern-table th, .modern-table td { text-align: left; padding: .4rem .6rem; border-bottom: 1px solid #eee; }
.tier-badge { padding: .1rem .5rem; border-radius: 4px; font-weight: 600; }
.tier-A { background: #d9f2d9; } .tier-B { background: #fff1cc; } .tier-C { background: #fcd9d9; }
</style>
</head>
<body data-on-load="@get('/sse/refresh-all')">
<h1>&#9749; Coffee Shop Analytics</h1>

<div class="panel">
<h2>Upload Transactions</h2>
<form method="post" action="/api/upload" enctype="multipart/form-data">
<input type="file" name="file" accept=".csv">
<button type="submit">Upload</button>
</form>
</div>

<div class="panel">
<h2>ABC Product Classification</h2>
<div id="abc-content">Loading&hellip;</div>
</div>

<div class="panel">
<h2>Customer Segments (RFM)</h2>
<div id="rfm-content" data-signals="{rfmData: []}">Loading&hellip;</div>
</div>

<div class="panel">
<h2>Sales Trend</h2>
<select data-on-change="@get('/sse/trend?period=' + evt.target.value)">
<option value="daily">Daily</option>
<option value="weekly">Weekly</option>
<option value="monthly">Monthly</option>
</select>
<div id="trend-content" data-signals="{trendData: []}">Loading&hellip;</div>
</div>

<div class="panel">
<h2>Analysis Report</h2>
<button data-on-click="@get('/sse/report')">Generate</button>
<div id="report-content" data-signals="{reportData: {}}"></div>
</div>

</body>
</html>`

// Dashboard renders the single-page dashboard shell.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardPage)
		return err
	})
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: templates.go
Description: HTML template for the learning report.
*/

package reporting

// dashboardTemplate is the learning report page
const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - Akaylee Learner Report</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            color: #333;
        }
        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }
        .card {
            background: rgba(255, 255, 255, 0.95);
            border-radius: 20px;
            padding: 30px;
            margin-bottom: 30px;
            box-shadow: 0 8px 32px rgba(0, 0, 0, 0.1);
        }
        .header { text-align: center; }
        .header h1 { color: #4a5568; font-size: 2.2rem; margin-bottom: 10px; }
        .header p { color: #718096; }
        .stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 20px; }
        .stat { text-align: center; }
        .stat .value { font-size: 2rem; font-weight: 700; color: #5a67d8; }
        .stat .label { color: #718096; text-transform: uppercase; font-size: 0.8rem; }
        .converged { color: #38a169; }
        .bounded { color: #dd6b20; }
        table { width: 100%; border-collapse: collapse; }
        th, td { padding: 8px 12px; border-bottom: 1px solid #e2e8f0; text-align: left; }
        th { color: #4a5568; }
        code, pre { font-family: 'Fira Code', monospace; font-size: 0.9rem; }
        pre { background: #2d3748; color: #e2e8f0; padding: 20px; border-radius: 10px; overflow-x: auto; }
        h2 { color: #4a5568; margin-bottom: 15px; }
    </style>
</head>
<body>
<div class="container">
    <div class="card header">
        <h1>{{.Title}}</h1>
        <p>Session {{.SessionID}} &middot; generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}} &middot; v{{.Version}}</p>
        <p>Target <code>{{.Run.Target}}</code> learned as {{.Run.Domain}}</p>
    </div>

    <div class="card">
        <div class="stats">
            <div class="stat"><div class="value">{{.Run.States}}</div><div class="label">States</div></div>
            <div class="stat"><div class="value">{{.Run.Rounds}}</div><div class="label">Rounds</div></div>
            <div class="stat"><div class="value">{{len .Run.Counterexamples}}</div><div class="label">Counterexamples</div></div>
            <div class="stat"><div class="value">{{.Run.Duration}}</div><div class="label">Duration</div></div>
            {{if .Stats}}
            <div class="stat"><div class="value">{{.Stats.MembershipQueries}}</div><div class="label">Membership queries</div></div>
            <div class="stat"><div class="value">{{.Stats.CacheHits}}</div><div class="label">Cache hits</div></div>
            <div class="stat"><div class="value">{{.Stats.EquivalenceQueries}}</div><div class="label">Equivalence queries</div></div>
            {{end}}
            <div class="stat">
                {{if .Run.Converged}}<div class="value converged">yes</div>{{else}}<div class="value bounded">no</div>{{end}}
                <div class="label">Converged</div>
            </div>
        </div>
    </div>

    {{if .Run.Counterexamples}}
    <div class="card">
        <h2>Counterexamples</h2>
        <table>
            <tr><th>Round</th><th>Word</th></tr>
            {{range $i, $ce := .Run.Counterexamples}}<tr><td>{{inc $i}}</td><td><code>{{$ce}}</code></td></tr>
            {{end}}
        </table>
    </div>
    {{end}}

    <div class="card">
        <h2>Transitions</h2>
        <table>
            <tr><th>From</th><th>Input</th>{{if eq .Model.Kind "mealy"}}<th>Output</th>{{end}}<th>To</th></tr>
            {{range .Model.Transitions}}<tr><td>{{.From}}</td><td><code>{{.Input}}</code></td>{{if eq $.Model.Kind "mealy"}}<td><code>{{.Output}}</code></td>{{end}}<td>{{.To}}</td></tr>
            {{end}}
        </table>
    </div>

    <div class="card">
        <h2>Graphviz</h2>
        <pre>{{.DOT}}</pre>
    </div>
</div>
</body>
</html>
`

package export

import (
	"bytes"
	"html/template"
	"strings"
	"time"
)

var briefTemplate = template.Must(template.New("brief").Funcs(template.FuncMap{
	"label": func(id string) string {
		return strings.Title(strings.ReplaceAll(id, "_", " "))
	},
	"join": func(ids []string) string {
		labels := make([]string, len(ids))
		for i, id := range ids {
			labels[i] = strings.Title(strings.ReplaceAll(id, "_", " "))
		}
		return strings.Join(labels, ", ")
	},
	"formatDate": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
}).Parse(briefHTML))

// TemplateData holds everything the brief template renders.
type TemplateData struct {
	Title        string
	City         string
	PropertyType string
	TotalM2      float64
	SubmittedAt  time.Time

	Styles    []string
	Moods     []string
	Palette   string
	WallColor string
	Preset    string

	QualityTier string
	BudgetMin   float64
	BudgetMax   float64
	Allocation  []WeightRow
	Tradeoffs   []WeightRow

	Rooms          []RoomRow
	Contradictions []string
}

// WeightRow is one row of a percentage table.
type WeightRow struct {
	Label  string
	Weight int
}

// RoomRow is one in-scope room with its repaired measurements.
type RoomRow struct {
	Room         string
	WidthMM      int
	LengthMM     int
	CeilingMM    int
	Confidence   string
	UsedDefaults bool
	DecorDensity string
}

// RenderBriefHTML renders the brief template with provided data.
func RenderBriefHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := briefTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const briefHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Georgia, serif; line-height: 1.5; max-width: 760px; margin: 2rem auto; color: #2b2b2b; }
    h1 { border-bottom: 2px solid #2b2b2b; padding-bottom: 0.5rem; }
    h2 { margin-top: 2rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
    th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; font-size: 0.9em; }
    th { background: #f3efe9; }
    .warning { background: #fdf3e4; padding: 0.8rem 1rem; margin: 0.5rem 0; border-left: 3px solid #c98a2d; }
    .defaults { color: #999; font-size: 0.85em; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">{{label .PropertyType}}{{if .City}} in {{.City}}{{end}} | {{.TotalM2}} m&sup2; | submitted {{formatDate .SubmittedAt}}</div>

  <h2>Direction</h2>
  <p>Styles: {{join .Styles}}<br>
     Moods: {{join .Moods}}<br>
     Palette: {{label .Palette}} | Walls: {{label .WallColor}} | Lighting: {{label .Preset}}</p>

  <h2>Rooms</h2>
  <table>
    <tr><th>Room</th><th>Width</th><th>Length</th><th>Ceiling</th><th>Decor</th><th>Confidence</th></tr>
    {{range .Rooms}}
    <tr>
      <td>{{label .Room}}</td>
      <td>{{.WidthMM}} mm</td>
      <td>{{.LengthMM}} mm</td>
      <td>{{.CeilingMM}} mm</td>
      <td>{{label .DecorDensity}}</td>
      <td>{{label .Confidence}}{{if .UsedDefaults}} <span class="defaults">(defaults)</span>{{end}}</td>
    </tr>
    {{end}}
  </table>

  <h2>Budget</h2>
  <p>{{label .QualityTier}} furniture tier, &euro;{{.BudgetMin}} &ndash; &euro;{{.BudgetMax}}</p>
  <table>
    <tr><th>Allocation</th><th>%</th></tr>
    {{range .Allocation}}<tr><td>{{.Label}}</td><td>{{.Weight}}</td></tr>{{end}}
  </table>
  <table>
    <tr><th>Priority</th><th>%</th></tr>
    {{range .Tradeoffs}}<tr><td>{{.Label}}</td><td>{{.Weight}}</td></tr>{{end}}
  </table>

  {{if .Contradictions}}
  <h2>Acknowledged tensions</h2>
  {{range .Contradictions}}<div class="warning">{{.}}</div>{{end}}
  {{end}}
</body>
</html>`

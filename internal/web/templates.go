package web

import (
	"bytes"
	"html/template"

	"github.com/jaminalder/tictactoe-history/internal/app"
	"github.com/jaminalder/tictactoe-history/internal/domain"
)

type templates struct {
	game  *template.Template
	index *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"iter": func(n int) []int {
			a := make([]int, n)
			for i := range a {
				a[i] = i
			}
			return a
		},
		"add": func(a, b int) int { return a + b },
		"mul": func(a, b int) int { return a * b },
	}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org@1.9.12/dist/ext/sse.js"></script>
<style>` + styles + `</style>
</head><body>{{template "content" .}}</body></html>`))
	// Define the fragment within the same set so the game page can include it
	template.Must(base.New("fragment").Parse(fragmentTemplate))
	index := page(base, `<h1>Tic-Tac-Toe</h1><form action="/game" method="post"><button>New game</button></form>`)
	game := page(base, `
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div sse-swap="game" hx-target="#game" hx-swap="outerHTML">{{template "fragment" .}}</div>
</div>`)
	return &templates{game: game, index: index}
}

// page clones base and defines its "content" block. Executing the result
// renders the whole document.
func page(base *template.Template, content string) *template.Template {
	t := template.Must(base.Clone())
	template.Must(t.New("content").Parse(content))
	return t
}

func renderTemplate(t *template.Template, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if name == "" {
		err = t.Execute(&buf, data)
	} else {
		err = t.ExecuteTemplate(&buf, name, data)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fragmentData is what the game fragment renders.
type fragmentData struct {
	ID   string
	View domain.View
}

func newFragmentData(sess app.Session) fragmentData {
	return fragmentData{ID: sess.ID, View: sess.Game.View()}
}

const fragmentTemplate = `<div id="game" class="game">
  <div class="game-board">
    {{range $r := iter 3}}
    <div class="board-row">
      {{range $c := iter 3}}{{$i := add (mul $r 3) $c}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#game" hx-swap="outerHTML" method="post">
        <input type="hidden" name="cell" value="{{$i}}">
        <button type="submit" class="square{{if $.View.Highlighted $i}} win{{end}}">{{index $.View.Board $i}}</button>
      </form>
      {{end}}
    </div>
    {{end}}
  </div>
  <div class="game-info">
    <div class="status">{{.View.Status}}</div>
    <form hx-post="/game/{{.ID}}/sort" hx-target="#game" hx-swap="outerHTML" method="post">
      <button type="submit" class="sort">{{if .View.SortDescending}}Sort ascending{{else}}Sort descending{{end}}</button>
    </form>
    <ol class="moves"{{if .View.SortDescending}} reversed{{end}}>
      {{range .View.Moves}}
      <li value="{{add .Number 1}}">
        <form hx-post="/game/{{$.ID}}/jump" hx-target="#game" hx-swap="outerHTML" method="post">
          <input type="hidden" name="step" value="{{.Number}}">
          <button type="submit"{{if .Current}} class="bold"{{end}}>{{.Label}}</button>
        </form>
      </li>
      {{end}}
    </ol>
  </div>
</div>
`

const styles = `
body { font: 14px "Century Gothic", Futura, sans-serif; margin: 20px; }
.game { display: flex; flex-direction: row; }
.game-info { margin-left: 20px; }
.board-row { display: flex; }
.board-row form { margin: 0; }
.square { background: #fff; border: 1px solid #999; font-size: 24px; font-weight: bold; height: 34px; width: 34px; margin: -1px -1px 0 0; padding: 0; }
.square.win { background: #ffeb3b; }
.bold { font-weight: bold; }
`

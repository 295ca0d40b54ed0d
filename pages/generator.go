package pages

import (
	"fmt"
	"html/template"
	"io"
	mrand "math/rand"
	"os"
	"path/filepath"
)

// Field is a single form input on a generated page.
type Field struct {
	ID    string
	Type  string
	Label string
}

// Summary contains statistics about the generated pages.
type Summary struct {
	PagesWritten int
	TextInputs   int
	EmailInputs  int
	OtherInputs  int
}

// GeneratorConfig controls fixture generation parameters.
type GeneratorConfig struct {
	Names     []string
	MinInputs int
	MaxInputs int
	Seed      int64
}

// Generator produces deterministic fixture pages from a GeneratorConfig.
type Generator struct {
	cfg GeneratorConfig
	rng *mrand.Rand
}

// NewGenerator creates a Generator from the given config.
func NewGenerator(cfg GeneratorConfig) *Generator {
	if len(cfg.Names) == 0 {
		cfg.Names = Default
	}
	if cfg.MaxInputs < cfg.MinInputs {
		cfg.MaxInputs = cfg.MinInputs
	}

	return &Generator{
		cfg: cfg,
		rng: mrand.New(mrand.NewSource(cfg.Seed)),
	}
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<form id="form">
{{- range .Fields}}
<label for="{{.ID}}">{{.Label}}</label>
<input type="{{.Type}}" id="{{.ID}}" name="{{.ID}}">
{{- end}}
<button type="submit">Submit</button>
</form>
</body>
</html>
`))

// Generate writes one page per configured name into dir.
func (g *Generator) Generate(dir string) (Summary, error) {
	var summary Summary

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return summary, fmt.Errorf("create dir %s: %w", dir, err)
	}

	for _, name := range g.cfg.Names {
		fields := g.fields()

		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return summary, fmt.Errorf("create %s: %w", name, err)
		}

		if err := g.render(f, Label(name), fields); err != nil {
			f.Close()

			return summary, fmt.Errorf("render %s: %w", name, err)
		}

		if err := f.Close(); err != nil {
			return summary, fmt.Errorf("close %s: %w", name, err)
		}

		for _, fld := range fields {
			switch fld.Type {
			case "text":
				summary.TextInputs++
			case "email":
				summary.EmailInputs++
			default:
				summary.OtherInputs++
			}
		}

		summary.PagesWritten++
	}

	return summary, nil
}

func (g *Generator) render(w io.Writer, title string, fields []Field) error {
	return pageTmpl.Execute(w, struct {
		Title  string
		Fields []Field
	}{Title: title, Fields: fields})
}

// Other input types are mixed in so the selector has something to skip.
var inputTypes = []string{"text", "email", "text", "password", "checkbox"}

func (g *Generator) fields() []Field {
	n := g.cfg.MinInputs
	if span := g.cfg.MaxInputs - g.cfg.MinInputs; span > 0 {
		n += g.rng.Intn(span + 1)
	}

	fields := make([]Field, n)
	for i := range fields {
		typ := inputTypes[g.rng.Intn(len(inputTypes))]
		fields[i] = Field{
			ID:    fmt.Sprintf("field%d", i+1),
			Type:  typ,
			Label: fmt.Sprintf("Field %d (%s)", i+1, typ),
		}
	}

	return fields
}

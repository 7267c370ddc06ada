package rendering

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/jonathan/resume-builder/internal/types"
)

//go:embed templates/resume.tex.tmpl
var templateFS embed.FS

const defaultTemplate = "templates/resume.tex.tmpl"

// Templates use [[ ]] so LaTeX braces never collide with actions.
const (
	leftDelim  = "[["
	rightDelim = "]]"
)

// documentView is the data handed to the template. Every string in it is
// already escaped.
type documentView struct {
	Title    string
	Sections []sectionView
}

type sectionView struct {
	Title string
	Items []itemView
}

type itemView struct {
	Subtitle string
	Meta     string
	Content  string
	Bullets  []string
}

// Compiler turns a resume tree into LaTeX source. It holds no mutable state
// and is safe for concurrent use.
type Compiler struct {
	tmpl *template.Template
}

// NewCompiler returns a compiler using the built-in document template.
func NewCompiler() (*Compiler, error) {
	raw, err := templateFS.ReadFile(defaultTemplate)
	if err != nil {
		return nil, &TemplateError{Message: "embedded template missing", Cause: err}
	}
	return newCompiler("resume", string(raw))
}

// NewCompilerFromFile loads a custom document template from path.
func NewCompilerFromFile(path string) (*Compiler, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{Message: fmt.Sprintf("template file not found: %s", path), Cause: err}
		}
		return nil, &TemplateError{Message: fmt.Sprintf("failed to read template file: %s", path), Cause: err}
	}
	return newCompiler(path, string(raw))
}

func newCompiler(name, text string) (*Compiler, error) {
	tmpl, err := template.New(name).Delims(leftDelim, rightDelim).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse template", Cause: err}
	}
	return &Compiler{tmpl: tmpl}, nil
}

// Compile produces the LaTeX source for the included content of resume.
// The input is not modified and the output is identical for identical trees.
func (c *Compiler) Compile(resume *types.Resume) (string, error) {
	if resume == nil {
		return "", &TemplateError{Message: "nil resume"}
	}
	view, err := buildView(resume.Filtered())
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, view); err != nil {
		return "", &TemplateError{Message: "failed to execute template", Cause: err}
	}
	return buf.String(), nil
}

func buildView(r *types.Resume) (*documentView, error) {
	v := &escaper{}
	view := &documentView{
		Title:    v.line("title", r.Title),
		Sections: make([]sectionView, 0, len(r.Sections)),
	}
	for si, s := range r.Sections {
		sv := sectionView{
			Title: v.line(fmt.Sprintf("sections[%d].title", si), s.Title),
			Items: make([]itemView, 0, len(s.Items)),
		}
		for ii, it := range s.Items {
			path := fmt.Sprintf("sections[%d].items[%d]", si, ii)
			iv := itemView{
				Subtitle: v.line(path+".subtitle", it.Subtitle),
				Meta:     metaLine(v.line(path+".date_range", it.DateRange), v.line(path+".location", it.Location)),
				Content:  v.escape(path+".content", it.Content),
			}
			for bi, sub := range it.SubItems {
				iv.Bullets = append(iv.Bullets, v.escape(fmt.Sprintf("%s.subitems[%d].content", path, bi), sub.Content))
			}
			sv.Items = append(sv.Items, iv)
		}
		view.Sections = append(view.Sections, sv)
	}
	if v.err != nil {
		return nil, v.err
	}
	return view, nil
}

// escaper escapes fields and keeps the first invariant violation.
type escaper struct {
	err error
}

func (e *escaper) escape(field, text string) string {
	out := EscapeLaTeX(strings.TrimSpace(text))
	if e.err == nil {
		e.err = CheckEscaped(field, out)
	}
	return out
}

// line escapes a field that lands inside a command argument. Any run of
// whitespace, newlines included, becomes one space so no paragraph break
// can end the argument early.
func (e *escaper) line(field, text string) string {
	return e.escape(field, strings.Join(strings.Fields(text), " "))
}

func metaLine(date, location string) string {
	switch {
	case date != "" && location != "":
		return date + " | " + location
	case date != "":
		return date
	default:
		return location
	}
}

// Package sheet prints human readable documentation of patches, preset banks
// and algorithm libraries from text templates.
package sheet

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/sixop/sixop"
	"github.com/sixop/sixop/algorithm"
	"github.com/sixop/sixop/preset"
	"github.com/sixop/sixop/synth"
)

//go:embed templates/*
var templateFS embed.FS

type (
	Sheet struct {
		Template *template.Template
		Library  *algorithm.Library
	}

	// PatchData is the data given to the patch template.
	PatchData struct {
		sixop.Patch
		Topology  AlgorithmData
		Operators [sixop.NumOperators]OperatorData
		LFO       sixop.LFOPatch
		LFOHz     float64
		LFODelay  float64
		Globals   sixop.Globals
	}

	OperatorData struct {
		Number int // 1-based
		sixop.OperatorPatch
		Carrier    bool
		Modulators []int // 1-based
	}

	AlgorithmData struct {
		ID         int
		Name       string
		Carriers   []int // 1-based
		Edges      []string
		Order      []int // 1-based
		Unresolved []int // 1-based
		Gain       float64
	}

	BankData struct {
		Dirs    []DirData
		Presets int
	}

	DirData struct {
		Name    string
		Presets []PresetData
	}

	PresetData struct {
		Index     int
		Name      string
		Algorithm int
		User      bool
	}
)

// New parses the built-in templates.
func New(lib *algorithm.Library) (*Sheet, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf(`could not create templates: %v`, err)
	}
	return &Sheet{Template: tmpl, Library: lib}, nil
}

// NewFromTemplates parses the templates in a directory instead; they must
// define the same template names as the built-in ones.
func NewFromTemplates(lib *algorithm.Library, templateDirectory string) (*Sheet, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseGlob(filepath.Join(templateDirectory, "*.tmpl"))
	if err != nil {
		return nil, fmt.Errorf(`could not create templates based on directory "%v": %v`, templateDirectory, err)
	}
	return &Sheet{Template: tmpl, Library: lib}, nil
}

func (s *Sheet) Patch(w io.Writer, p sixop.Patch) error {
	return s.execute(w, "patch.tmpl", s.patchData(p))
}

func (s *Sheet) Algorithms(w io.Writer) error {
	var data []AlgorithmData
	for _, id := range s.Library.IDs() {
		data = append(data, algorithmData(s.Library.Get(id)))
	}
	return s.execute(w, "algorithms.tmpl", data)
}

func (s *Sheet) Bank(w io.Writer, b *preset.Bank) error {
	data := BankData{Presets: b.Len()}
	dirIndex := map[string]int{}
	for i, p := range b.Presets {
		dir := p.Directory
		if p.User {
			dir = "user/" + dir
		}
		j, ok := dirIndex[dir]
		if !ok {
			j = len(data.Dirs)
			dirIndex[dir] = j
			data.Dirs = append(data.Dirs, DirData{Name: dir})
		}
		data.Dirs[j].Presets = append(data.Dirs[j].Presets, PresetData{
			Index: i, Name: p.Patch.Name, Algorithm: p.Patch.Algorithm, User: p.User,
		})
	}
	return s.execute(w, "bank.tmpl", data)
}

func (s *Sheet) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := s.Template.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf(`could not execute template "%v": %v`, name, err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (s *Sheet) patchData(p sixop.Patch) PatchData {
	t := s.Library.Get(p.Algorithm)
	d := PatchData{
		Patch:    p,
		Topology: algorithmData(t),
		LFO:      sixop.DefaultLFO(),
		Globals:  p.Apply(sixop.DefaultGlobals()),
	}
	if p.LFO != nil {
		d.LFO = *p.LFO
	}
	d.LFOHz = synth.LFORateHz(d.LFO.Rate)
	d.LFODelay = synth.LFODelaySeconds(d.LFO.Delay)
	for i := range d.Operators {
		d.Operators[i] = OperatorData{
			Number:        i + 1,
			OperatorPatch: p.Operators[i],
			Carrier:       t.IsCarrier(i),
			Modulators:    oneBased(t.Modulators(i)),
		}
	}
	return d
}

func algorithmData(t *algorithm.Topology) AlgorithmData {
	def := t.Def()
	d := AlgorithmData{
		ID:         t.ID(),
		Name:       t.Name(),
		Order:      oneBased(t.Order()),
		Unresolved: oneBased(t.Unresolved()),
		Gain:       algorithm.CarrierGain(t.NumCarriers()),
	}
	for op := 0; op < sixop.NumOperators; op++ {
		if t.IsCarrier(op) {
			d.Carriers = append(d.Carriers, op+1)
		}
	}
	for _, c := range def.Connections {
		d.Edges = append(d.Edges, fmt.Sprintf("%d→%d", c[0], c[1]))
	}
	return d
}

func oneBased(ops []int) []int {
	ret := make([]int, len(ops))
	for i, op := range ops {
		ret[i] = op + 1
	}
	return ret
}

// Package report renders the run's artifacts: a printed summary and
// plotly HTML charts.
package report

import (
	"fmt"
	"os"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
	"github.com/MetalBlueberry/go-plotly/offline"
)

type Plot struct {
	Fig *grob.Fig
	Lay *grob.Layout
}

type Opt func(plot *Plot) *Plot

func NewPlot(opt ...Opt) *Plot {
	fig := &grob.Fig{}
	lay := &grob.Layout{}
	fig.Layout = lay
	p := &Plot{Fig: fig, Lay: lay}
	for _, o := range opt {
		o(p)
	}

	return p
}

func WithWidth(w float64) Opt {
	if w < 0.0 {
		panic(fmt.Errorf("negative width"))
	}
	return func(p *Plot) *Plot {
		p.Lay.Width = w
		return p
	}
}

func WithHeight(h float64) Opt {
	if h < 0.0 {
		panic(fmt.Errorf("negative height"))
	}
	return func(p *Plot) *Plot {
		p.Lay.Height = h
		return p
	}
}

func WithTitle(title string) Opt {
	return func(p *Plot) *Plot { p.Lay.Title = &grob.LayoutTitle{Text: title}; return p }
}

func WithXlabel(label string) Opt {
	return func(p *Plot) *Plot {
		if p.Lay.Xaxis == nil {
			p.Lay.Xaxis = &grob.LayoutXaxis{}
		}
		if p.Lay.Xaxis.Title == nil {
			p.Lay.Xaxis.Title = &grob.LayoutXaxisTitle{}
		}

		p.Lay.Xaxis.Title.Text = label
		return p
	}
}

func WithYlabel(label string) Opt {
	return func(p *Plot) *Plot {
		if p.Lay.Yaxis == nil {
			p.Lay.Yaxis = &grob.LayoutYaxis{}
		}
		if p.Lay.Yaxis.Title == nil {
			p.Lay.Yaxis.Title = &grob.LayoutYaxisTitle{}
		}

		p.Lay.Yaxis.Title.Text = label
		return p
	}
}

// Bar adds a bar trace over string labels.
func (p *Plot) Bar(labels []string, values []float64, seriesName string) {
	tr := &grob.Bar{Name: seriesName, X: labels, Y: values}
	p.Fig.AddTraces(tr)
}

// Line adds a line trace.
func (p *Plot) Line(x, y []float64, seriesName, color string) {
	tr := &grob.Scatter{Name: seriesName, X: x, Y: y,
		Mode: grob.ScatterModeLines, Line: &grob.ScatterLine{Color: color}}
	p.Fig.AddTraces(tr)
}

// Save writes the figure as a standalone HTML file. ToHtml drops write
// errors, so the file is checked after the call.
func (p *Plot) Save(fileName string) error {
	offline.ToHtml(p.Fig, fileName)

	info, e := os.Stat(fileName)
	if e != nil {
		return fmt.Errorf("writing %s: %w", fileName, e)
	}

	if info.Size() == 0 {
		return fmt.Errorf("writing %s: empty file", fileName)
	}

	return nil
}

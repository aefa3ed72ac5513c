package chart

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"nbreport/visual"
)

// plotly default colorway
var palette = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

const (
	marginLeft   = 64.0
	marginRight  = 24.0
	marginTop    = 48.0
	marginBottom = 44.0
	yTicks       = 5
)

// Native draws bar and scatter traces in process. Other trace types are
// reported as unsupported.
type Native struct {
	width, height int
	font          *truetype.Font
}

func NewNative(width, height int) (*Native, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("unable to parse chart font: %w", err)
	}
	return &Native{width: width, height: height, font: f}, nil
}

func (n *Native) Close() error {
	return nil
}

func (n *Native) face(size float64) font.Face {
	return truetype.NewFace(n.font, &truetype.Options{Size: size})
}

// plot maps data space into pixels.
type plot struct {
	x0, y0, w, h float64 // plot area, y0 is top
	ymin, ymax   float64
	xmin, xmax   float64
	categories   []string
	numericX     bool
}

func (p *plot) py(v float64) float64 {
	return p.y0 + p.h - (v-p.ymin)/(p.ymax-p.ymin)*p.h
}

// px returns center of i-th point, v is used for numeric axis only.
func (p *plot) px(i int, v float64) float64 {
	if p.numericX {
		if p.xmax == p.xmin {
			return p.x0 + p.w/2
		}
		return p.x0 + (v-p.xmin)/(p.xmax-p.xmin)*p.w
	}
	slot := p.w / float64(max(len(p.categories), 1))
	return p.x0 + slot*(float64(i)+0.5)
}

func (n *Native) RenderChart(ctx context.Context, spec []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fig, err := parseFigure(spec)
	if err != nil {
		return nil, err
	}
	for i := range fig.Data {
		switch k := fig.Data[i].kind(); k {
		case "bar", "scatter", "scattergl":
		default:
			return nil, fmt.Errorf("%w: trace type %q", visual.ErrUnsupportedOutput, k)
		}
		if fig.Data[i].Y.len() > 0 && !fig.Data[i].Y.numeric {
			return nil, fmt.Errorf("%w: non numeric y values in trace %d", visual.ErrUnsupportedOutput, i)
		}
	}

	W, H := float64(n.width), float64(n.height)
	dc := gg.NewContext(n.width, n.height)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	p := n.axes(fig)
	p.x0, p.y0 = marginLeft, marginTop
	p.w, p.h = W-marginLeft-marginRight, H-marginTop-marginBottom

	n.drawGrid(dc, p)

	bars := 0
	for i := range fig.Data {
		if fig.Data[i].kind() == "bar" {
			bars++
		}
	}
	bar := 0
	for i := range fig.Data {
		t := &fig.Data[i]
		c := t.color()
		if len(c) == 0 {
			c = palette[i%len(palette)]
		}
		dc.SetHexColor(c)
		if t.kind() == "bar" {
			n.drawBars(dc, p, t, bar, bars)
			bar++
			continue
		}
		n.drawScatter(dc, p, t)
	}

	if len(fig.Layout.Title) > 0 {
		dc.SetFontFace(n.face(16))
		dc.SetHexColor("#2a3f5f")
		dc.DrawStringAnchored(string(fig.Layout.Title), W/2, marginTop/2, 0.5, 0.5)
	}
	n.drawLegend(dc, fig, W)

	buf := new(bytes.Buffer)
	if err := dc.EncodePNG(buf); err != nil {
		return nil, fmt.Errorf("unable to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

// axes computes value ranges over all traces.
func (n *Native) axes(fig *figure) *plot {
	p := &plot{ymin: 0, ymax: math.Inf(-1), xmin: math.Inf(1), xmax: math.Inf(-1), numericX: true}
	count := 0
	for i := range fig.Data {
		t := &fig.Data[i]
		if t.kind() == "bar" || (t.X.len() > 0 && !t.X.numeric) {
			p.numericX = false
		}
		count = max(count, t.Y.len())
		for j, v := range t.Y.nums {
			if math.IsNaN(v) {
				continue
			}
			p.ymin, p.ymax = math.Min(p.ymin, v), math.Max(p.ymax, v)
			x := float64(j)
			if j < t.X.len() {
				x = t.X.nums[j]
			}
			if !math.IsNaN(x) {
				p.xmin, p.xmax = math.Min(p.xmin, x), math.Max(p.xmax, x)
			}
		}
	}
	if math.IsInf(p.ymax, -1) || p.ymax <= p.ymin {
		p.ymax = p.ymin + 1
	}
	if math.IsInf(p.xmin, 1) {
		p.xmin, p.xmax = 0, 1
	}
	if !p.numericX {
		p.categories = make([]string, count)
		for i := range p.categories {
			p.categories[i] = strconv.Itoa(i)
		}
		// first trace with x values names categories
		for i := range fig.Data {
			if x := fig.Data[i].X; x.len() > 0 {
				copy(p.categories, x.labels)
				break
			}
		}
	}
	return p
}

func (n *Native) drawGrid(dc *gg.Context, p *plot) {
	dc.SetFontFace(n.face(11))
	dc.SetLineWidth(1)
	for i := 0; i <= yTicks; i++ {
		v := p.ymin + (p.ymax-p.ymin)*float64(i)/yTicks
		y := p.py(v)
		dc.SetHexColor("#e5ecf6")
		dc.DrawLine(p.x0, y, p.x0+p.w, y)
		dc.Stroke()
		dc.SetHexColor("#2a3f5f")
		dc.DrawStringAnchored(strconv.FormatFloat(v, 'g', 4, 64), p.x0-6, y, 1, 0.5)
	}
	dc.SetHexColor("#2a3f5f")
	dc.DrawLine(p.x0, p.y0+p.h, p.x0+p.w, p.y0+p.h)
	dc.DrawLine(p.x0, p.y0, p.x0, p.y0+p.h)
	dc.Stroke()

	base := p.y0 + p.h + 14
	if p.numericX {
		for i := 0; i <= yTicks; i++ {
			v := p.xmin + (p.xmax-p.xmin)*float64(i)/yTicks
			dc.DrawStringAnchored(strconv.FormatFloat(v, 'g', 4, 64), p.px(0, v), base, 0.5, 0.5)
		}
		return
	}
	// skip labels when they do not fit
	step := 1
	if slot := p.w / float64(max(len(p.categories), 1)); slot < 40 {
		step = int(math.Ceil(40 / slot))
	}
	for i := 0; i < len(p.categories); i += step {
		dc.DrawStringAnchored(p.categories[i], p.px(i, 0), base, 0.5, 0.5)
	}
}

func (n *Native) drawBars(dc *gg.Context, p *plot, t *trace, idx, total int) {
	slot := p.w / float64(max(len(p.categories), 1))
	group := slot * 0.8
	bw := group / float64(max(total, 1))
	zero := p.py(math.Max(p.ymin, 0))
	for i, v := range t.Y.nums {
		if math.IsNaN(v) {
			continue
		}
		x := p.px(i, 0) - group/2 + bw*float64(idx)
		y := p.py(v)
		dc.DrawRectangle(x, math.Min(y, zero), bw, math.Abs(zero-y))
	}
	dc.Fill()
}

func (n *Native) drawScatter(dc *gg.Context, p *plot, t *trace) {
	lines := t.Mode == "" || t.Mode == "lines" || t.Mode == "lines+markers"
	markers := t.Mode == "markers" || t.Mode == "lines+markers"

	point := func(i int) (float64, float64, bool) {
		v := t.Y.nums[i]
		if math.IsNaN(v) {
			return 0, 0, false
		}
		x := float64(i)
		if p.numericX && i < t.X.len() {
			x = t.X.nums[i]
		}
		return p.px(i, x), p.py(v), true
	}

	if lines {
		dc.SetLineWidth(2)
		started := false
		for i := range t.Y.nums {
			x, y, ok := point(i)
			if !ok {
				started = false
				continue
			}
			if !started {
				dc.NewSubPath()
				dc.MoveTo(x, y)
				started = true
				continue
			}
			dc.LineTo(x, y)
		}
		dc.Stroke()
	}
	if markers {
		for i := range t.Y.nums {
			if x, y, ok := point(i); ok {
				dc.DrawCircle(x, y, 3.5)
			}
		}
		dc.Fill()
	}
}

func (n *Native) drawLegend(dc *gg.Context, fig *figure, W float64) {
	named := 0
	for i := range fig.Data {
		if len(fig.Data[i].Name) > 0 {
			named++
		}
	}
	if named < 2 {
		return
	}
	dc.SetFontFace(n.face(11))
	y := marginTop
	for i := range fig.Data {
		t := &fig.Data[i]
		if len(t.Name) == 0 {
			continue
		}
		c := t.color()
		if len(c) == 0 {
			c = palette[i%len(palette)]
		}
		dc.SetHexColor(c)
		dc.DrawRectangle(W-marginRight-100, y-5, 10, 10)
		dc.Fill()
		dc.SetHexColor("#2a3f5f")
		dc.DrawStringAnchored(t.Name, W-marginRight-84, y, 0, 0.5)
		y += 16
	}
}

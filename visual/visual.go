// Package visual picks the first renderable visual output of a notebook cell,
// turns it into PNG bitmap and fits it into page regions.
package visual

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"nbreport/config"
	"nbreport/report"
	"nbreport/utils/images"
)

// Kind of visual asset.
type Kind int

const (
	KindRaster Kind = iota
	KindVector
	KindChart
)

func (k Kind) String() string {
	switch k {
	case KindRaster:
		return "raster"
	case KindVector:
		return "vector"
	case KindChart:
		return "chart"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Policy decides what happens to the whole export when asset of some kind
// cannot be produced.
type Policy int

const (
	// Degrade drops the asset, block is rendered without it.
	Degrade Policy = iota
	// Abort fails the export.
	Abort
)

// Policy returns failure policy of the asset kind. Broken images degrade,
// broken charts abort.
func (k Kind) Policy() Policy {
	if k == KindChart {
		return Abort
	}
	return Degrade
}

var (
	// ErrChartRender wraps any chart backend failure, it always aborts export.
	ErrChartRender = errors.New("chart rendering failed")
	// ErrUnsupportedOutput is reported for payloads resolver cannot use.
	ErrUnsupportedOutput = errors.New("unsupported output payload")
	// ErrNotImage is reported for raster payloads which are not images.
	ErrNotImage = errors.New("payload is not an image")
)

// maxRasterSide limits bitmaps we embed, bigger images are downscaled.
const maxRasterSide = 4096

// Placeholder size used when vector images cannot be rasterized.
const (
	PlaceholderWidth  = 100
	PlaceholderHeight = 50
)

// ChartRenderer converts chart specification into raster image.
type ChartRenderer interface {
	RenderChart(ctx context.Context, spec []byte) ([]byte, error)
}

// Asset is decoded visual ready for embedding.
type Asset struct {
	Kind Kind
	// Mime is payload type asset was produced from
	Mime string
	// Data is always PNG
	Data          []byte
	Width, Height int
	Placeholder   bool
}

// Resolver turns cell outputs into assets.
type Resolver struct {
	charts ChartRenderer
	svg    config.SVGConfig
	log    *zap.Logger
}

func NewResolver(svg config.SVGConfig, charts ChartRenderer, log *zap.Logger) *Resolver {
	return &Resolver{charts: charts, svg: svg, log: log.Named("visual")}
}

// First iterates outputs in order and returns the first asset which could be
// produced. Within a single output payloads are considered in order: raster
// image, vector image, chart specification. Failing assets either degrade
// (move on to the next output) or abort according to their kind policy.
// Returns nil asset and nil error when nothing is renderable.
func (r *Resolver) First(ctx context.Context, outputs []report.Output) (*Asset, error) {
	for i, out := range outputs {
		kind, mime, ok := recognize(out)
		if !ok {
			continue
		}
		asset, err := r.produce(ctx, kind, mime, out)
		if err == nil {
			return asset, nil
		}
		if kind.Policy() == Abort {
			return nil, fmt.Errorf("%w: %w", ErrChartRender, err)
		}
		r.log.Warn("Unable to use visual output, skipping", zap.Int("output", i), zap.String("mime", mime), zap.Error(err))
	}
	return nil, nil
}

func recognize(out report.Output) (Kind, string, bool) {
	switch {
	case out.Has(report.MimePNG):
		return KindRaster, report.MimePNG, true
	case out.Has(report.MimeSVG):
		return KindVector, report.MimeSVG, true
	case out.Has(report.MimePlotly):
		return KindChart, report.MimePlotly, true
	}
	return 0, "", false
}

func (r *Resolver) produce(ctx context.Context, kind Kind, mime string, out report.Output) (*Asset, error) {
	var (
		raw []byte
		err error
	)
	switch kind {
	case KindRaster:
		raw, err = decodeRaster(out)
	case KindVector:
		return r.vector(out)
	case KindChart:
		raw, err = r.chart(ctx, out)
	}
	if err != nil {
		return nil, err
	}
	data, w, h, err := images.Normalize(raw, maxRasterSide)
	if err != nil {
		return nil, err
	}
	return &Asset{Kind: kind, Mime: mime, Data: data, Width: w, Height: h}, nil
}

func decodeRaster(out report.Output) ([]byte, error) {
	s, err := out.String(report.MimePNG)
	if err != nil {
		return nil, err
	}
	// notebooks may wrap base64 payload
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("unable to decode base64 image: %w", err)
	}
	if !filetype.IsImage(data) {
		return nil, ErrNotImage
	}
	return data, nil
}

// vector rasterizes SVG. When rasterization is disabled placeholder is used
// instead, rasterizer errors degrade as any other broken image.
func (r *Resolver) vector(out report.Output) (*Asset, error) {
	if !r.svg.Rasterize {
		return &Asset{
			Kind:        KindVector,
			Mime:        report.MimeSVG,
			Data:        images.Placeholder(PlaceholderWidth, PlaceholderHeight, images.PlaceholderColor),
			Width:       PlaceholderWidth,
			Height:      PlaceholderHeight,
			Placeholder: true,
		}, nil
	}
	s, err := out.String(report.MimeSVG)
	if err != nil {
		return nil, err
	}
	img, err := images.RasterizeSVG([]byte(s), r.svg.Width, r.svg.Height)
	if err != nil {
		return nil, fmt.Errorf("unable to rasterize svg: %w", err)
	}
	data, err := images.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &Asset{Kind: KindVector, Mime: report.MimeSVG, Data: data, Width: b.Dx(), Height: b.Dy()}, nil
}

func (r *Resolver) chart(ctx context.Context, out report.Output) ([]byte, error) {
	if r.charts == nil {
		return nil, errors.New("no chart backend configured")
	}
	spec := bytes.TrimSpace(out.Raw(report.MimePlotly))
	if len(spec) == 0 || spec[0] != '{' {
		return nil, fmt.Errorf("%w: chart specification is not an object", ErrUnsupportedOutput)
	}
	return r.charts.RenderChart(ctx, spec)
}

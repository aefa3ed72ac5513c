// Package chart renders plotly chart specifications into PNG bitmaps.
package chart

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"nbreport/common"
	"nbreport/config"
	"nbreport/visual"
)

// Renderer is chart backend which may hold external resources.
type Renderer interface {
	visual.ChartRenderer
	io.Closer
}

// Compile-time interface checks
var (
	_ Renderer = (*Native)(nil)
	_ Renderer = (*Browser)(nil)
	_ Renderer = Disabled{}
)

// ErrDisabled is returned by Disabled backend for every chart.
var ErrDisabled = errors.New("chart rendering is disabled")

// New creates backend selected by configuration.
func New(cfg config.ChartConfig, log *zap.Logger) (Renderer, error) {
	switch cfg.Backend {
	case common.ChartBackendNative:
		return NewNative(cfg.Width, cfg.Height)
	case common.ChartBackendBrowser:
		return NewBrowser(cfg, log), nil
	case common.ChartBackendNone:
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown chart backend %q", cfg.Backend.String())
	}
}

// Disabled fails every chart, which fails the export.
type Disabled struct{}

func (Disabled) RenderChart(context.Context, []byte) ([]byte, error) {
	return nil, ErrDisabled
}

func (Disabled) Close() error {
	return nil
}

package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"nbreport/config"
)

var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageLoad       = errors.New("failed to load chart page")
	ErrPlotly         = errors.New("plotly failed to draw chart")
)

var pageTmpl = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<script src="{{ .Script }}"></script>
<style>html, body { margin: 0; padding: 0; background: #fff; }</style>
</head>
<body>
<div id="chart" style="width: {{ .Width }}px; height: {{ .Height }}px;"></div>
<script>
(function () {
	var fig = {{ .Figure }};
	var layout = Object.assign({}, fig.layout || {}, { width: {{ .Width }}, height: {{ .Height }} });
	Plotly.newPlot("chart", fig.data || [], layout, { staticPlot: true })
		.then(function () { document.body.setAttribute("data-done", "ok"); })
		.catch(function (e) {
			document.body.setAttribute("data-error", String(e));
			document.body.setAttribute("data-done", "error");
		});
})();
</script>
</body>
</html>
`))

// Browser renders charts with plotly.js in headless Chromium. Browser is
// started on first use and reused until Close.
type Browser struct {
	cfg config.ChartConfig
	log *zap.Logger

	launcher *launcher.Launcher
	browser  *rod.Browser
}

func NewBrowser(cfg config.ChartConfig, log *zap.Logger) *Browser {
	return &Browser{cfg: cfg, log: log.Named("chart")}
}

// ensureBrowser lazily connects to the browser.
func (b *Browser) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New().Headless(true).NoSandbox(true)
	if len(b.cfg.Browser.Bin) > 0 {
		l = l.Bin(b.cfg.Browser.Bin)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	b.launcher, b.browser = l, browser
	b.log.Debug("Browser started", zap.String("control", u))
	return nil
}

// Close releases browser resources.
func (b *Browser) Close() error {
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.launcher.Cleanup()
	b.browser, b.launcher = nil, nil
	return err
}

func (b *Browser) RenderChart(ctx context.Context, spec []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "nbreport-chart-")
	if err != nil {
		return nil, fmt.Errorf("unable to create chart directory: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "chart.html")
	if err := writePage(path, spec, b.cfg); err != nil {
		return nil, err
	}

	if err := b.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer page.Close()

	timeout := b.cfg.Browser.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	page = page.Context(ctx).Timeout(timeout)

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	body, err := page.Element("body[data-done]")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	msg, err := body.Attribute("data-error")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if msg != nil {
		return nil, fmt.Errorf("%w: %s", ErrPlotly, *msg)
	}

	el, err := page.Element("#chart")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("unable to capture chart: %w", err)
	}
	return data, nil
}

func writePage(path string, spec []byte, cfg config.ChartConfig) error {
	buf := new(bytes.Buffer)
	err := pageTmpl.Execute(buf, struct {
		Script        string
		Width, Height int
		Figure        template.JS
	}{
		Script: cfg.Browser.PlotlyURL,
		Width:  cfg.Width,
		Height: cfg.Height,
		// script context, closing tags must not terminate the element
		Figure: template.JS(bytes.ReplaceAll(spec, []byte("</"), []byte(`<\/`))),
	})
	if err != nil {
		return fmt.Errorf("unable to prepare chart page: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("unable to write chart page: %w", err)
	}
	return nil
}

package chart

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"nbreport/common"
	"nbreport/config"
	"nbreport/visual"
)

func TestNativeRender(t *testing.T) {
	n, err := NewNative(320, 200)
	if err != nil {
		t.Fatalf("NewNative: %v", err)
	}
	defer n.Close()

	specs := map[string]string{
		"bar":     `{"data":[{"type":"bar","x":["a","b","c"],"y":[1,3,2],"name":"one"},{"type":"bar","x":["a","b","c"],"y":[2,-1,4],"name":"two"}],"layout":{"title":{"text":"Bars"}}}`,
		"scatter": `{"data":[{"x":[0,1.5,3],"y":[2,null,5],"mode":"lines+markers","marker":{"color":"#ff0000"}}],"layout":{"title":"Line"}}`,
		"typed":   `{"data":[{"type":"scatter","y":{"dtype":"i1","bdata":"AQID"}}]}`,
		"empty":   `{"data":[]}`,
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			data, err := n.RenderChart(context.Background(), []byte(spec))
			if err != nil {
				t.Fatalf("RenderChart: %v", err)
			}
			cfg, err := png.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("result is not PNG: %v", err)
			}
			if cfg.Width != 320 || cfg.Height != 200 {
				t.Errorf("got %dx%d, want 320x200", cfg.Width, cfg.Height)
			}
		})
	}
}

func TestNativeUnsupported(t *testing.T) {
	n, err := NewNative(320, 200)
	if err != nil {
		t.Fatalf("NewNative: %v", err)
	}
	tests := map[string]string{
		"pie":        `{"data":[{"type":"pie","values":[1,2]}]}`,
		"text y":     `{"data":[{"type":"bar","y":["x","y"]}]}`,
		"bad json":   `{"data":`,
		"bad dtype":  `{"data":[{"y":{"dtype":"c16","bdata":"AAAA"}}]}`,
		"bad length": `{"data":[{"y":{"dtype":"f8","bdata":"AQID"}}]}`,
	}
	for name, spec := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := n.RenderChart(context.Background(), []byte(spec)); err == nil {
				t.Error("got nil error")
			}
		})
	}
	_, err = n.RenderChart(context.Background(), []byte(tests["pie"]))
	if !errors.Is(err, visual.ErrUnsupportedOutput) {
		t.Errorf("got %v, want ErrUnsupportedOutput", err)
	}
}

func TestDecodeTyped(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []float64
	}{
		{"i1", `{"dtype":"i1","bdata":"/wE="}`, []float64{-1, 1}},
		{"u2", `{"dtype":"u2","bdata":"AQACAA=="}`, []float64{1, 2}},
		{"i4", `{"dtype":"i4","bdata":"/////w=="}`, []float64{-1}},
		{"f8", `{"dtype":"f8","bdata":"AAAAAAAA+D8="}`, []float64{1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeTyped([]byte(tt.data))
			if err != nil {
				t.Fatalf("decodeTyped: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestTitleForms(t *testing.T) {
	for _, spec := range []string{`{"layout":{"title":"T"}}`, `{"layout":{"title":{"text":"T"}}}`} {
		fig, err := parseFigure([]byte(spec))
		if err != nil {
			t.Fatalf("parseFigure(%s): %v", spec, err)
		}
		if fig.Layout.Title != "T" {
			t.Errorf("got %q, want %q", fig.Layout.Title, "T")
		}
	}
}

func TestDisabled(t *testing.T) {
	r, err := New(config.ChartConfig{Backend: common.ChartBackendNone}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.RenderChart(context.Background(), []byte(`{}`)); !errors.Is(err, ErrDisabled) {
		t.Errorf("got %v, want ErrDisabled", err)
	}
}

func TestNewNative(t *testing.T) {
	r, err := New(config.ChartConfig{Backend: common.ChartBackendNative, Width: 100, Height: 100}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := r.(*Native); !ok {
		t.Errorf("got %T, want *Native", r)
	}
}

func TestWritePageEscapesScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.html")
	cfg := config.ChartConfig{Width: 300, Height: 200, Browser: config.BrowserConfig{PlotlyURL: "https://example.com/plotly.js"}}
	if err := writePage(path, []byte(`{"layout":{"title":"</script><b>x</b>"}}`), cfg); err != nil {
		t.Fatalf("writePage: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	page := string(data)
	if strings.Count(page, "</script>") != 2 {
		t.Errorf("figure leaked closing tag:\n%s", page)
	}
	for _, want := range []string{`src="https://example.com/plotly.js"`, "width: 300", `Plotly.newPlot("chart"`} {
		if !strings.Contains(page, want) {
			t.Errorf("page does not contain %q", want)
		}
	}
}

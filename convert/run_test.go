package convert

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"nbreport/common"
	"nbreport/config"
	"nbreport/report"
	"nbreport/state"
)

const demoRequest = `{"title": "Demo", "format": "pptx",
  "metadata": {"projectName": "Sales"},
  "content": [{"type": "notebook_markdown", "source": "# Intro\nbody"}]}`

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Document.OutDir = filepath.Join(t.TempDir(), "out")
	cfg.Document.WorkDir = t.TempDir()
	cfg.Document.Chart.Backend = common.ChartBackendNative
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = zaptest.NewLogger(t)
	env.Cfg = cfg
	return ctx, env
}

func writeFile(t *testing.T, path, data string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func artifacts(t *testing.T, dir, pattern string) []string {
	t.Helper()
	names, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		t.Fatal(err)
	}
	return names
}

func TestProcess_SingleFile(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src := writeFile(t, filepath.Join(t.TempDir(), "demo.json"), demoRequest)
	dst := t.TempDir()

	if err := process(ctx, src, dst, nil, env); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if got := artifacts(t, env.Cfg.Document.OutDir, "*.pptx"); len(got) != 1 {
		t.Errorf("published %v, want single deck", got)
	}
	saved := artifacts(t, dst, "*.pptx")
	if len(saved) != 1 || !strings.HasPrefix(filepath.Base(saved[0]), "sales_demo_") {
		t.Errorf("saved %v, want sales_demo_<stamp>.pptx", saved)
	}
}

func TestProcess_Stdin(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Format = "PDF"

	if err := process(ctx, stdinSource, "", strings.NewReader(demoRequest), env); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if got := artifacts(t, env.Cfg.Document.OutDir, "*.pdf"); len(got) != 1 {
		t.Errorf("published %v, want single pdf", got)
	}
}

func TestProcess_Directory(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), demoRequest)
	writeFile(t, filepath.Join(dir, "b.JSON"), demoRequest)
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a request")
	writeFile(t, filepath.Join(dir, "nested", "c.json"), "{")

	if err := process(ctx, dir, "", nil, env); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if got := artifacts(t, env.Cfg.Document.OutDir, "*"); len(got) != 2 {
		t.Errorf("published %v, want 2 decks", got)
	}
}

func TestProcess_Archive(t *testing.T) {
	ctx, env := setupTestEnv(t)
	arc := filepath.Join(t.TempDir(), "requests.zip")
	f, err := os.Create(arc)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, data := range map[string]string{
		"a.json":     demoRequest,
		"sub/b.json": demoRequest,
		"readme.txt": "skip me",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(data)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	if err := process(ctx, arc, "", nil, env); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if got := artifacts(t, env.Cfg.Document.OutDir, "*.pptx"); len(got) != 2 {
		t.Errorf("published %v, want 2 decks", got)
	}
}

func TestProcess_InputErrors(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		format string
		is     error
	}{
		{
			name:  "malformed request stops everything",
			files: map[string]string{"a.json": demoRequest, "b.json": `{"title": `},
			is:    report.ErrMalformed,
		},
		{
			name:  "unknown format in request",
			files: map[string]string{"a.json": `{"title": "x", "format": "docx", "content": []}`},
			is:    report.ErrUnknownFormat,
		},
		{
			name:   "unknown format on command line",
			files:  map[string]string{"a.json": demoRequest},
			format: "docx",
			is:     report.ErrUnknownFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, env := setupTestEnv(t)
			env.Format = tt.format
			dir := t.TempDir()
			for name, data := range tt.files {
				writeFile(t, filepath.Join(dir, name), data)
			}

			err := process(ctx, dir, "", nil, env)
			if !errors.Is(err, tt.is) {
				t.Errorf("process() error = %v, want %v", err, tt.is)
			}
			if got := artifacts(t, env.Cfg.Document.OutDir, "*"); len(got) != 0 {
				t.Errorf("published %v before input was validated", got)
			}
		})
	}
}

func TestProcess_NonExistentPath(t *testing.T) {
	ctx, env := setupTestEnv(t)
	if err := process(ctx, "/nonexistent/path/request.json", "", nil, env); err == nil {
		t.Error("process() should fail for nonexistent path")
	}
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src := writeFile(t, filepath.Join(t.TempDir(), "demo.json"), demoRequest)

	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()
	if err := process(cancelCtx, src, "", nil, env); !errors.Is(err, context.Canceled) {
		t.Errorf("process() error = %v, want %v", err, context.Canceled)
	}
}

func TestProcess_ExportFailure(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Template = filepath.Join(t.TempDir(), "absent.pptx")
	src := writeFile(t, filepath.Join(t.TempDir(), "demo.json"), demoRequest)

	err := process(ctx, src, "", nil, env)
	if err == nil || !strings.Contains(err.Error(), "1 of 1 exports failed") {
		t.Errorf("process() error = %v", err)
	}
	if got := artifacts(t, env.Cfg.Document.OutDir, "*"); len(got) != 0 {
		t.Errorf("failed export published %v", got)
	}
}

func TestProcess_Overwrite(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Cfg.Document.DownloadNameTemplate = "{{ .ProjectName }} {{ .Title }}"
	src := writeFile(t, filepath.Join(t.TempDir(), "demo.json"), demoRequest)
	dst := t.TempDir()

	if err := process(ctx, src, dst, nil, env); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "sales-demo.pptx")); err != nil {
		t.Fatalf("expected templated name: %v", err)
	}
	if err := process(ctx, src, dst, nil, env); err == nil {
		t.Error("second export should refuse to overwrite")
	}
	env.Overwrite = true
	if err := process(ctx, src, dst, nil, env); err != nil {
		t.Errorf("process() with overwrite error = %v", err)
	}
}

func TestSaveAs(t *testing.T) {
	src := writeFile(t, filepath.Join(t.TempDir(), "a.pdf"), "new")
	dst := writeFile(t, filepath.Join(t.TempDir(), "b.pdf"), "old content")

	if _, err := saveAs(src, dst, false); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("saveAs() error = %v", err)
	}
	if _, err := saveAs(src, dst, true); err != nil {
		t.Fatalf("saveAs() error = %v", err)
	}
	if data, _ := os.ReadFile(dst); string(data) != "new" {
		t.Errorf("got %q, want truncated copy", data)
	}
}

func TestEntryName(t *testing.T) {
	if got, want := entryName("/tmp/in/a.json"), "tmp_in_a.json"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := entryName("r.zip:sub/b.json"), "r.zip_sub_b.json"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := entryName("/.cache/odd\tname.json"), "cache_oddname.json"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read %s: %v", f.Name, err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestReport_CloseWritesEntries(t *testing.T) {
	dir := t.TempDir()
	cfg := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}
	r, err := cfg.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	stored := filepath.Join(dir, "stored.txt")
	if err := os.WriteFile(stored, []byte("stored"), 0644); err != nil {
		t.Fatal(err)
	}
	copied := filepath.Join(dir, "copied.txt")
	if err := os.WriteFile(copied, []byte("before"), 0644); err != nil {
		t.Fatal(err)
	}

	r.Store("files/stored.txt", stored)
	r.StoreData("config/effective.yaml", []byte("version: 1\n"))
	if err := r.StoreCopy("files/copied.txt", copied); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	// copy must capture content at the time of the call
	if err := os.WriteFile(copied, []byte("after"), 0644); err != nil {
		t.Fatal(err)
	}
	r.Store("missing.log", filepath.Join(dir, "never-created.log"))

	scratch := append([]string(nil), r.scratch...)
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got := readArchive(t, cfg.Destination)
	if got["files/stored.txt"] != "stored" {
		t.Errorf("stored entry = %q, want %q", got["files/stored.txt"], "stored")
	}
	if got["config/effective.yaml"] != "version: 1\n" {
		t.Errorf("data entry = %q", got["config/effective.yaml"])
	}
	if got["files/copied.txt"] != "before" {
		t.Errorf("copied entry = %q, want %q", got["files/copied.txt"], "before")
	}
	if _, ok := got["missing.log"]; ok {
		t.Error("absent file should be skipped")
	}
	if !strings.Contains(got["MANIFEST"], "files/stored.txt") {
		t.Errorf("MANIFEST does not list stored entry:\n%s", got["MANIFEST"])
	}
	for _, d := range scratch {
		if _, err := os.Stat(d); !os.IsNotExist(err) {
			t.Errorf("scratch directory %s should be removed", d)
		}
	}
}

func TestReport_NilIsNoop(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreData("c", []byte("d"))
	if err := r.StoreCopy("e", "f"); err != nil {
		t.Errorf("StoreCopy on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name() on nil report = %q, want empty", r.Name())
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}

func TestReport_StoreDataTwicePanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.StoreData("x", []byte("1"))
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate data name")
		}
	}()
	r.StoreData("x", []byte("2"))
}

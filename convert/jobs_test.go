package convert

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"nbreport/common"
	"nbreport/jobs"
)

func seededStore(t *testing.T) jobs.Store {
	t.Helper()
	store := jobs.NewMemoryStore()
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, j := range []*jobs.Job{
		{ID: "first", Status: common.JobStatusCompleted, Format: common.FormatPdf, Title: "A", DownloadURL: "/exports/first.pdf"},
		{ID: "second", Status: common.JobStatusFailed, Format: common.FormatPptx, Title: "B", Error: "failed: boom"},
	} {
		j.Created = stamp.Add(time.Duration(i) * time.Minute)
		j.Updated = j.Created
		if err := store.Create(context.Background(), j); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestListJobs(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := listJobs(context.Background(), seededStore(t), buf); err != nil {
		t.Fatalf("listJobs() error = %v", err)
	}
	want := "first\tcompleted\tpdf\t2024-01-02 03:04:05\tA\n" +
		"second\tfailed\tpptx\t2024-01-02 03:05:05\tB\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestShowJobs(t *testing.T) {
	buf := new(bytes.Buffer)
	err := showJobs(context.Background(), seededStore(t), []string{"second", "missing", "first"}, buf)
	if !errors.Is(err, jobs.ErrNotFound) || !strings.Contains(err.Error(), "missing") {
		t.Errorf("showJobs() error = %v, want not found for missing", err)
	}
	got := buf.String()
	for _, want := range []string{"Job second\n", "  error: \"failed: boom\"\n", "Job first\n", "  url: /exports/first.pdf\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "Job second") > strings.Index(got, "Job first") {
		t.Error("jobs are not shown in requested order")
	}
}
